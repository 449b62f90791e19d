// internal/casino/casino.go
package casino

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/helios-bot/casino/internal/platform"
)

// Casino-level custom ids (not bound to any table).
const (
	CustomIDDaily     = "casinoDaily"
	CustomIDBalance   = "casinoBalance"
	CustomIDNewPlayer = "casinoNewPlayer"
)

// Settings carries the guild-wide economy knobs.
type Settings struct {
	StartingBalance int64
	DailyAmount     int64
}

// DefaultSettings mirrors the stock economy configuration.
func DefaultSettings() Settings {
	return Settings{StartingBalance: 1000, DailyAmount: 100}
}

// Channel is one guild channel hosting casino tables plus the pinned
// advertisement message that carries the casino-level buttons.
type Channel struct {
	ChannelID string
	LobbyMsg  platform.MessageRef
	tables    map[string]*Table
}

// Tables lists the channel's tables.
func (ch *Channel) Tables() []*Table {
	out := make([]*Table, 0, len(ch.tables))
	for _, t := range ch.tables {
		out = append(out, t)
	}
	return out
}

// Casino is the per-guild root: it owns the player cache, the channel
// registry and interaction routing. One Casino per guild.
type Casino struct {
	mu sync.Mutex

	GuildID string

	client   platform.Client
	store    Store
	registry *Registry
	settings Settings

	players  map[string]*Player
	channels map[string]*Channel
}

// New builds an empty casino for a guild.
func New(client platform.Client, store Store, registry *Registry, guildID string, settings Settings) *Casino {
	return &Casino{
		GuildID:  guildID,
		client:   client,
		store:    store,
		registry: registry,
		settings: settings,
		players:  make(map[string]*Player),
		channels: make(map[string]*Channel),
	}
}

// DayIndex is the UTC day number daily-bonus claims are gated on.
func DayIndex(now time.Time) int {
	return int(now.UTC().Unix() / 86400)
}

// Load rebuilds the casino's tables from storage. A table persisted
// mid-round is recovered conservatively: the round is cancelled, every
// recorded bet refunded and the table reopened in its lobby.
func (c *Casino) Load(ctx context.Context) error {
	recs, err := c.store.FindTables(ctx, c.GuildID)
	if err != nil {
		return fmt.Errorf("load tables for guild %s: %w", c.GuildID, err)
	}
	for i := range recs {
		rec := &recs[i]
		if err := c.loadTable(ctx, rec); err != nil {
			logrus.WithFields(logrus.Fields{
				"guild": c.GuildID,
				"table": rec.MessageID,
			}).Errorf("table recovery failed: %v", err)
		}
	}
	return nil
}

func (c *Casino) loadTable(ctx context.Context, rec *TableRecord) error {
	game, err := c.registry.New(rec.GameKind)
	if err != nil {
		return err
	}
	ref := platform.MessageRef{ChannelID: rec.ChannelID, MessageID: rec.MessageID}
	t := NewTable(c.client, c.store, game, c.GuildID, ref, rec.Settings)
	t.state = StateLobby
	interrupted := rec.State != string(StateLobby) && rec.State != string(StateUnloaded)

	// Probe the public message. A row whose message is gone is dropped
	// from the aggregate; refunds still apply.
	if err := c.client.EditMessage(ctx, ref, t.View()); err != nil {
		logrus.Warnf("table %s: message unreachable, dropping row: %v", rec.MessageID, err)
		if interrupted {
			if rerr := c.refundInterrupted(ctx, rec); rerr != nil {
				return rerr
			}
		} else {
			for _, userID := range rec.Players {
				c.unseatByID(ctx, userID)
			}
		}
		return c.store.DeleteTable(ctx, c.GuildID, rec.MessageID)
	}

	c.mu.Lock()
	ch := c.channelLocked(rec.ChannelID)
	ch.tables[rec.MessageID] = t
	c.mu.Unlock()

	if interrupted {
		if err := c.refundInterrupted(ctx, rec); err != nil {
			return err
		}
		t.CancelRound(ctx)
		return nil
	}

	// A clean lobby restart still unseats the roster so a player is
	// never pinned to a table that forgot them.
	for _, userID := range rec.Players {
		c.unseatByID(ctx, userID)
	}
	if err := c.store.UpsertTable(ctx, t.Record()); err != nil {
		logrus.Warnf("table %s: persist after restart failed: %v", rec.MessageID, err)
	}
	return nil
}

// refundInterrupted credits every recorded bet back and unseats the
// persisted roster.
func (c *Casino) refundInterrupted(ctx context.Context, rec *TableRecord) error {
	for _, userID := range rec.Players {
		p, err := c.Player(ctx, userID)
		if err != nil {
			logrus.Warnf("recovery: player %s not loadable: %v", userID, err)
			continue
		}
		if amount, ok := rec.Bets[userID]; ok && amount > 0 {
			if err := p.Pay(ctx, amount, true); err != nil {
				logrus.Warnf("recovery: refund for %s failed: %v", userID, err)
			}
		}
		if err := p.seat(ctx, ""); err != nil {
			logrus.Warnf("recovery: unseating %s failed: %v", userID, err)
		}
	}
	return nil
}

func (c *Casino) unseatByID(ctx context.Context, userID string) {
	p, err := c.Player(ctx, userID)
	if err != nil {
		return
	}
	if p.TableID() != "" {
		if err := p.seat(ctx, ""); err != nil {
			logrus.Warnf("unseating %s failed: %v", userID, err)
		}
	}
}

// channelLocked returns the channel entry, creating it on first use.
func (c *Casino) channelLocked(channelID string) *Channel {
	ch, ok := c.channels[channelID]
	if !ok {
		ch = &Channel{ChannelID: channelID, tables: make(map[string]*Table)}
		c.channels[channelID] = ch
	}
	return ch
}

// AddChannel registers a channel and posts its casino advertisement
// message (daily bonus, balance and opt-in buttons plus the active
// table listing).
func (c *Casino) AddChannel(ctx context.Context, channelID string) (*Channel, error) {
	c.mu.Lock()
	ch := c.channelLocked(channelID)
	view := c.channelViewLocked(ch)
	c.mu.Unlock()

	ref, err := c.client.SendMessage(ctx, channelID, view)
	if err != nil {
		return nil, fmt.Errorf("post casino message in %s: %w", channelID, err)
	}
	c.mu.Lock()
	ch.LobbyMsg = ref
	c.mu.Unlock()
	return ch, nil
}

// channelViewLocked renders the channel's advertisement message.
func (c *Casino) channelViewLocked(ch *Channel) platform.View {
	tables := "No tables yet."
	if len(ch.tables) > 0 {
		var lines []string
		for _, t := range ch.tables {
			lines = append(lines, fmt.Sprintf("%s — %s", t.GameKind(), t.EffectiveState()))
		}
		tables = strings.Join(lines, "\n")
	}
	return platform.View{
		Embeds: []platform.Embed{{
			Title:       "Casino",
			Description: "Welcome! Claim your daily chips and grab a seat.",
			Color:       colorLobby,
			Fields: []platform.Field{
				{Name: "Games", Value: strings.Join(c.registry.Kinds(), ", ")},
				{Name: "Tables", Value: tables},
			},
		}},
		Components: []platform.ActionRow{{Buttons: []platform.Button{
			{CustomID: CustomIDNewPlayer, Label: "New Player", Style: platform.StyleSuccess},
			{CustomID: CustomIDDaily, Label: "Daily Bonus", Style: platform.StylePrimary},
			{CustomID: CustomIDBalance, Label: "Balance", Style: platform.StyleSecondary},
		}}},
	}
}

// updateChannelMessage re-renders the channel advertisement after its
// table collection changes.
func (c *Casino) updateChannelMessage(ctx context.Context, ch *Channel) {
	c.mu.Lock()
	ref := ch.LobbyMsg
	view := c.channelViewLocked(ch)
	c.mu.Unlock()
	if ref.MessageID == "" {
		return
	}
	if err := c.client.EditMessage(ctx, ref, view); err != nil {
		logrus.Warnf("channel %s: advertisement edit failed: %v", ch.ChannelID, err)
	}
}

// CreateTable opens a new table of the given kind in a channel. The
// public message is sent first so the table can be keyed by its id.
func (c *Casino) CreateTable(ctx context.Context, channelID, kind string, settings TableSettings) (*Table, error) {
	game, err := c.registry.New(kind)
	if err != nil {
		return nil, err
	}
	ref, err := c.client.SendMessage(ctx, channelID, platform.View{
		Content: fmt.Sprintf("Setting up a %s table...", game.Name()),
	})
	if err != nil {
		return nil, fmt.Errorf("post table message in %s: %w", channelID, err)
	}
	t := NewTable(c.client, c.store, game, c.GuildID, ref, settings)
	if err := t.Open(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	ch := c.channelLocked(channelID)
	ch.tables[ref.MessageID] = t
	c.mu.Unlock()
	c.updateChannelMessage(ctx, ch)
	return t, nil
}

// Player loads a guild member's casino player, caching on first hit.
// Members who never opted in get ErrNoPlayer.
func (c *Casino) Player(ctx context.Context, userID string) (*Player, error) {
	c.mu.Lock()
	if p, ok := c.players[userID]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	rec, err := c.store.FindPlayer(ctx, c.GuildID, userID)
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNoPlayer
		}
		return nil, fmt.Errorf("load player %s: %w", userID, err)
	}
	p := PlayerFromRecord(c.store, rec)

	c.mu.Lock()
	if cached, ok := c.players[userID]; ok {
		p = cached
	} else {
		c.players[userID] = p
	}
	c.mu.Unlock()
	return p, nil
}

// CreatePlayer opts a member in with the starting balance. Idempotent:
// an existing player is returned unchanged.
func (c *Casino) CreatePlayer(ctx context.Context, userID string) (*Player, bool, error) {
	p, err := c.Player(ctx, userID)
	if err == nil {
		return p, false, nil
	}
	if err != ErrNoPlayer {
		return nil, false, err
	}
	p = NewPlayer(c.store, c.GuildID, userID, c.settings.StartingBalance)
	if err := p.Save(ctx); err != nil {
		return nil, false, err
	}
	c.mu.Lock()
	c.players[userID] = p
	c.mu.Unlock()
	return p, true, nil
}

// Table finds a table by its public message id.
func (c *Casino) Table(messageID string) *Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.channels {
		if t, ok := ch.tables[messageID]; ok {
			return t
		}
	}
	return nil
}

// Tables lists every table across all channels.
func (c *Casino) Tables() []*Table {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Table
	for _, ch := range c.channels {
		for _, t := range ch.tables {
			out = append(out, t)
		}
	}
	return out
}

// Channels lists the registered channel ids.
func (c *Casino) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.channels))
	for id := range c.channels {
		out = append(out, id)
	}
	return out
}

// HandleInteraction routes one inbound interaction: casino-level buttons
// are handled here, everything else is dispatched to the table owning
// the message the actor clicked on.
func (c *Casino) HandleInteraction(ctx context.Context, in platform.Interaction) {
	switch in.CustomID {
	case CustomIDNewPlayer:
		c.handleNewPlayer(ctx, in)
		return
	case CustomIDDaily:
		c.handleDaily(ctx, in)
		return
	case CustomIDBalance:
		c.handleBalance(ctx, in)
		return
	}

	t := c.Table(in.MessageID)
	if t == nil {
		c.respond(ctx, in, "That table is no longer active.", true)
		return
	}
	p, err := c.Player(ctx, in.ActorID)
	if err != nil {
		c.respond(ctx, in, ErrNoPlayer.Error(), true)
		return
	}
	t.HandleInteraction(ctx, in, p)
}

func (c *Casino) handleNewPlayer(ctx context.Context, in platform.Interaction) {
	p, created, err := c.CreatePlayer(ctx, in.ActorID)
	if err != nil {
		logrus.Warnf("create player %s: %v", in.ActorID, err)
		c.respond(ctx, in, "Something went wrong creating your player.", true)
		return
	}
	if !created {
		c.respond(ctx, in, fmt.Sprintf("You already have a player. Balance: %d chips.", p.Balance()), true)
		return
	}
	c.respond(ctx, in, fmt.Sprintf("Welcome! You start with %d chips.", p.Balance()), true)
}

func (c *Casino) handleDaily(ctx context.Context, in platform.Interaction) {
	p, err := c.Player(ctx, in.ActorID)
	if err != nil {
		c.respond(ctx, in, ErrNoPlayer.Error(), true)
		return
	}
	claimed, err := p.claimDaily(ctx, DayIndex(time.Now()), c.settings.DailyAmount)
	if err != nil {
		logrus.Warnf("daily claim for %s failed to persist: %v", in.ActorID, err)
	}
	if !claimed {
		c.respond(ctx, in, "You already claimed today's bonus. Come back tomorrow!", true)
		return
	}
	c.respond(ctx, in, fmt.Sprintf("You claimed %d chips! Balance: %d chips.", c.settings.DailyAmount, p.Balance()), true)
}

func (c *Casino) handleBalance(ctx context.Context, in platform.Interaction) {
	p, err := c.Player(ctx, in.ActorID)
	if err != nil {
		c.respond(ctx, in, ErrNoPlayer.Error(), true)
		return
	}
	c.respond(ctx, in, fmt.Sprintf("Your balance is %d chips.", p.Balance()), true)
}

func (c *Casino) respond(ctx context.Context, in platform.Interaction, msg string, ephemeral bool) {
	if err := c.client.UpdateInteractionResponse(ctx, in.ID, platform.View{
		Content:   msg,
		Ephemeral: ephemeral,
	}); err != nil {
		logrus.Warnf("interaction response failed: %v", err)
	}
}

// RefreshChannels re-mints every channel's casino message and every
// table's public message, re-keying tables under their new ids.
func (c *Casino) RefreshChannels(ctx context.Context) error {
	c.mu.Lock()
	chans := make([]*Channel, 0, len(c.channels))
	for _, ch := range c.channels {
		chans = append(chans, ch)
	}
	c.mu.Unlock()

	for _, ch := range chans {
		c.mu.Lock()
		view := c.channelViewLocked(ch)
		tables := make([]*Table, 0, len(ch.tables))
		for _, t := range ch.tables {
			tables = append(tables, t)
		}
		c.mu.Unlock()

		ref, err := c.client.SendMessage(ctx, ch.ChannelID, view)
		if err != nil {
			return fmt.Errorf("refresh casino message in %s: %w", ch.ChannelID, err)
		}
		c.mu.Lock()
		ch.LobbyMsg = ref
		c.mu.Unlock()

		for _, t := range tables {
			oldID := t.ID()
			if err := t.Refresh(ctx); err != nil {
				logrus.Warnf("table %s refresh failed: %v", oldID, err)
				continue
			}
			c.mu.Lock()
			delete(ch.tables, oldID)
			ch.tables[t.ID()] = t
			c.mu.Unlock()
		}
		c.updateChannelMessage(ctx, ch)
	}
	return nil
}
