// internal/casino/table.go
package casino

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/helios-bot/casino/internal/cache"
	"github.com/helios-bot/casino/internal/cards"
	"github.com/helios-bot/casino/internal/platform"
)

// Custom ids the table dispatches on.
const (
	CustomIDJoin  = "casinoTableJoin"
	CustomIDLeave = "casinoTableLeave"
	CustomIDStart = "casinoTableStart"
	CustomIDBet   = "casinoTableBet"
	CustomIDHit   = "casinoTableHit"
	CustomIDStay  = "casinoTableStay"
)

// State is a table's lifecycle phase.
type State string

const (
	StateUnloaded  State = "unloaded"
	StateLobby     State = "lobby"
	StateBetting   State = "betting"
	StatePlaying   State = "playing"
	StateEnded     State = "ended"
	StatePaused    State = "paused"
	StateCancelled State = "cancelled"
)

// minEditInterval spaces successive edits of the table's public message.
// This is platform rate-limit courtesy, not a correctness requirement.
var minEditInterval = time.Second

// fallbackEndTime re-arms the return to Lobby when the operator zeroes
// the end timer. No interaction leaves Ended, so a finished round must
// always carry a pending timer.
var fallbackEndTime = 10 * time.Second

// Table is one seated multiplayer game cycling
// Lobby -> Betting -> Playing -> Ended -> Lobby. Its identity is the id
// of its public message; Refresh re-mints the message and renames the
// persisted row. The game-specific play loop is delegated to the Game.
type Table struct {
	mu sync.Mutex

	guildID   string
	channelID string
	msg       platform.MessageRef

	client platform.Client
	store  Store

	state    State
	paused   bool
	players  []*Player
	bets     map[string]int64
	settings TableSettings
	deck     *cards.Deck
	game     Game

	// Single one-shot timer; the generation counter invalidates stale
	// callbacks after a stop or reschedule.
	timer    *time.Timer
	timerGen int

	editMu   sync.Mutex
	nextEdit time.Time
}

// NewTable constructs a table around an already-sent public message. It
// starts Unloaded; call Open to make it joinable.
func NewTable(client platform.Client, store Store, game Game, guildID string, msg platform.MessageRef, settings TableSettings) *Table {
	return &Table{
		guildID:   guildID,
		channelID: msg.ChannelID,
		msg:       msg,
		client:    client,
		store:     store,
		state:     StateUnloaded,
		bets:      make(map[string]int64),
		settings:  settings,
		deck:      cards.NewDeck(),
		game:      game,
	}
}

// ID is the table's identity: the id of its public message.
func (t *Table) ID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.msg.MessageID
}

// ChannelID returns the owning channel.
func (t *Table) ChannelID() string { return t.channelID }

// GameKind returns the registered game id.
func (t *Table) GameKind() string { return t.game.Kind() }

// State returns the nominal lifecycle phase.
func (t *Table) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// EffectiveState short-circuits to Paused while the table's message is
// being re-minted; internal transition logic keeps using the nominal
// state.
func (t *Table) EffectiveState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.effectiveStateLocked()
}

func (t *Table) effectiveStateLocked() State {
	if t.paused {
		return StatePaused
	}
	return t.state
}

// Open persists the freshly created table and enters Lobby.
func (t *Table) Open(ctx context.Context) error {
	t.mu.Lock()
	if t.state != StateUnloaded {
		t.mu.Unlock()
		return fmt.Errorf("casino: table %s already opened", t.msg.MessageID)
	}
	t.state = StateLobby
	rec := t.recordLocked()
	view := t.renderLocked()
	ref := t.msg
	t.mu.Unlock()

	if err := t.store.UpsertTable(ctx, rec); err != nil {
		return fmt.Errorf("persist new table: %w", err)
	}
	if err := t.client.EditMessage(ctx, ref, view); err != nil {
		logrus.Warnf("table %s: initial render failed: %v", ref.MessageID, err)
	}
	return nil
}

// HandleInteraction routes a player's button/select press. Rejections
// are answered ephemerally; successful mutations answer with the updated
// table view in place.
func (t *Table) HandleInteraction(ctx context.Context, in platform.Interaction, p *Player) {
	t.mu.Lock()
	var uerr error
	switch in.CustomID {
	case CustomIDJoin:
		uerr = t.joinLocked(ctx, p)
	case CustomIDLeave:
		uerr = t.leaveLocked(ctx, p)
	case CustomIDStart:
		uerr = t.startEarlyLocked(ctx, p)
	case CustomIDBet:
		var amount int64
		if len(in.Values) > 0 {
			amount, _ = strconv.ParseInt(in.Values[0], 10, 64)
		}
		uerr = t.placeBetLocked(ctx, p, amount)
	case CustomIDHit, CustomIDStay:
		if t.state != StatePlaying {
			uerr = ErrWrongPhase
			break
		}
		action := "hit"
		if in.CustomID == CustomIDStay {
			action = "stay"
		}
		// The game schedules its own follow-up timer (next turn or the
		// dealer delay), so the table has nothing to arm here.
		uerr = t.game.ResolveAction(ctx, t, p.UserID, action)
		if uerr == nil {
			t.audit(p.UserID, "casino_table_"+action, nil)
		}
	default:
		uerr = ErrWrongPhase
	}

	if uerr != nil {
		t.mu.Unlock()
		t.respondEphemeral(ctx, in, uerr.Error())
		return
	}
	t.persistLocked()
	view := t.renderLocked()
	t.mu.Unlock()

	if err := t.client.UpdateInteractionResponse(ctx, in.ID, view); err != nil {
		logrus.Warnf("table %s: interaction response failed: %v", in.MessageID, err)
	}
}

// joinLocked seats a player. Rejected if the table is not in Lobby, the
// player is seated anywhere (guild-wide single-table rule), the table is
// full, or their balance is below the minimum bet.
func (t *Table) joinLocked(ctx context.Context, p *Player) error {
	if t.state != StateLobby {
		return ErrWrongPhase
	}
	if p.TableID() != "" {
		return ErrAlreadySeated
	}
	if len(t.players) >= t.settings.MaxPlayers {
		return ErrTableFull
	}
	if p.Balance() < t.settings.MinBet {
		return ErrInsufficientBalance
	}
	t.players = append(t.players, p)
	if err := p.seat(ctx, t.msg.MessageID); err != nil {
		logrus.Warnf("table %s: persisting seat for %s failed: %v", t.msg.MessageID, p.UserID, err)
	}
	t.audit(p.UserID, "casino_table_join", nil)
	if len(t.players) >= t.settings.MinPlayers && t.settings.LobbyTime() > 0 {
		t.scheduleRunLocked(t.settings.LobbyTime(), false)
	}
	return nil
}

// leaveLocked unseats a player. Leaving is only permitted in Lobby.
func (t *Table) leaveLocked(ctx context.Context, p *Player) error {
	if t.state != StateLobby {
		return ErrWrongPhase
	}
	idx := -1
	for i, seated := range t.players {
		if seated.UserID == p.UserID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotSeated
	}
	t.players = append(t.players[:idx], t.players[idx+1:]...)
	if amount, ok := t.bets[p.UserID]; ok {
		delete(t.bets, p.UserID)
		if err := p.Pay(ctx, amount, true); err != nil {
			logrus.Warnf("table %s: refund on leave failed for %s: %v", t.msg.MessageID, p.UserID, err)
		}
	}
	if err := p.seat(ctx, ""); err != nil {
		logrus.Warnf("table %s: unseating %s failed: %v", t.msg.MessageID, p.UserID, err)
	}
	t.audit(p.UserID, "casino_table_leave", nil)
	if len(t.players) < t.settings.MinPlayers {
		t.stopRunLocked()
	}
	return nil
}

// startEarlyLocked begins betting without waiting out the lobby timer.
// Only a seated player may start the round.
func (t *Table) startEarlyLocked(ctx context.Context, p *Player) error {
	if t.state != StateLobby {
		return ErrWrongPhase
	}
	if !t.seatedLocked(p.UserID) {
		return ErrNotSeated
	}
	if len(t.players) < t.settings.MinPlayers {
		return ErrWrongPhase
	}
	t.runLocked(ctx)
	return nil
}

// placeBetLocked records (or replaces) a wager during Betting. An
// amount the player cannot cover clears their wager silently; the
// re-rendered view shows "None". When every seated player has a
// recorded bet, betting ends early.
func (t *Table) placeBetLocked(ctx context.Context, p *Player, amount int64) error {
	if t.state != StateBetting {
		return ErrWrongPhase
	}
	if !t.seatedLocked(p.UserID) {
		return ErrNotSeated
	}
	if amount < t.settings.MinBet || amount > t.settings.MaxBet {
		return ErrBetOutOfRange
	}
	placed, err := p.Bet(ctx, amount, t)
	if err != nil {
		logrus.Warnf("table %s: persisting bet for %s failed: %v", t.msg.MessageID, p.UserID, err)
	}
	t.audit(p.UserID, "casino_table_bet", map[string]interface{}{
		"amount": amount,
		"placed": placed,
	})
	if len(t.bets) == len(t.players) {
		// All seated players have a recorded bet: the authoritative
		// early-exit condition for the betting phase.
		t.runLocked(ctx)
	}
	return nil
}

func (t *Table) seatedLocked(userID string) bool {
	for _, p := range t.players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (t *Table) playerLocked(userID string) *Player {
	for _, p := range t.players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// scheduleRunLocked arms the table's single one-shot timer. With
// override=false a pending timer wins and the call is a no-op; with
// override=true the pending timer is cancelled and replaced.
func (t *Table) scheduleRunLocked(d time.Duration, override bool) {
	if t.timer != nil {
		if !override {
			return
		}
		t.timer.Stop()
	}
	t.timerGen++
	gen := t.timerGen
	t.timer = time.AfterFunc(d, func() {
		t.runScheduled(gen)
	})
}

// stopRunLocked cancels any pending timer and invalidates in-flight
// callbacks. Always safe; must be called before any alternate
// transition is taken from the same state.
func (t *Table) stopRunLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.timerGen++
}

// runScheduled is the timer callback. A stale generation means the
// table already left the phase this timer was armed for.
func (t *Table) runScheduled(gen int) {
	t.mu.Lock()
	if gen != t.timerGen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.runLocked(context.Background())
	t.persistLocked()
	view := t.renderLocked()
	ref := t.msg
	t.mu.Unlock()

	t.pushEdit(ref, view)
}

// runLocked advances the phase machine. Every path cancels the pending
// timer first so a timer armed for an already-left phase can never
// re-trigger its transition.
func (t *Table) runLocked(ctx context.Context) {
	t.stopRunLocked()
	switch t.state {
	case StateLobby:
		if len(t.players) < t.settings.MinPlayers {
			return
		}
		t.state = StateBetting
		t.audit("", "casino_table_betting", nil)
		if t.settings.BettingTime() > 0 {
			t.scheduleRunLocked(t.settings.BettingTime(), true)
		}
	case StateBetting:
		// Forced minimum-bet fill-in is a separate step that runs before
		// the play hand-off, never part of the early-exit check.
		for _, p := range t.players {
			if _, ok := t.bets[p.UserID]; !ok {
				if _, err := p.Bet(ctx, t.settings.MinBet, t); err != nil {
					logrus.Warnf("table %s: forced bet for %s failed to persist: %v", t.msg.MessageID, p.UserID, err)
				}
			}
		}
		t.state = StatePlaying
		t.audit("", "casino_table_playing", nil)
		if err := t.game.StartPlaying(ctx, t); err != nil {
			// A deal that cannot complete is a defect; cancel the round
			// rather than play on corrupted state.
			logrus.WithField("table", t.msg.MessageID).Errorf("deal failed: %v", err)
			t.cancelLocked(ctx)
		}
	case StatePlaying:
		if t.game.RoundOver(t) {
			t.endRoundLocked(ctx)
		} else {
			t.game.ForceProgress(ctx, t)
			if t.game.RoundOver(t) && t.timer == nil {
				t.endRoundLocked(ctx)
			}
		}
	case StateEnded:
		t.cleanupLocked(ctx, false)
	}
}

// endRoundLocked settles the finished round and shows results.
func (t *Table) endRoundLocked(ctx context.Context) {
	t.game.SettleRound(ctx, t)
	t.state = StateEnded
	t.audit("", "casino_table_ended", t.settlementPayloadLocked())
	d := t.settings.EndTime()
	if d <= 0 {
		d = fallbackEndTime
	}
	t.scheduleRunLocked(d, true)
}

func (t *Table) settlementPayloadLocked() map[string]interface{} {
	bets := make(map[string]interface{}, len(t.bets))
	for uid, amount := range t.bets {
		bets[uid] = amount
	}
	return map[string]interface{}{"bets": bets}
}

// cleanupLocked returns the table to Lobby between rounds: seating and
// bets are cleared (optionally refunded) and the shared deck reset.
func (t *Table) cleanupLocked(ctx context.Context, returnBets bool) {
	t.game.Cleanup(t)
	for _, p := range t.players {
		if returnBets {
			if amount, ok := t.bets[p.UserID]; ok {
				if err := p.Pay(ctx, amount, true); err != nil {
					logrus.Warnf("table %s: refund for %s failed: %v", t.msg.MessageID, p.UserID, err)
				}
			}
		}
		if err := p.seat(ctx, ""); err != nil {
			logrus.Warnf("table %s: unseating %s failed: %v", t.msg.MessageID, p.UserID, err)
		}
	}
	t.players = t.players[:0]
	t.bets = make(map[string]int64)
	t.deck.DetachHands()
	t.deck.Reset()
	t.state = StateLobby
	t.audit("", "casino_table_lobby", nil)
}

// cancelLocked aborts the current round from any phase: bets refunded,
// seating cleared, then back to Lobby.
func (t *Table) cancelLocked(ctx context.Context) {
	t.stopRunLocked()
	t.state = StateCancelled
	t.audit("", "casino_table_cancelled", t.settlementPayloadLocked())
	t.cleanupLocked(ctx, true)
}

// CancelRound is the recovery entry point: a table found mid-round at
// process start refunds all bets, clears seating, announces the
// cancellation and re-enters Lobby.
func (t *Table) CancelRound(ctx context.Context) {
	t.mu.Lock()
	t.cancelLocked(ctx)
	rec := t.recordLocked()
	view := t.renderLocked()
	ref := t.msg
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.UpsertTable(ctx, rec); err != nil {
			logrus.Warnf("table %s: persist after cancel failed: %v", rec.MessageID, err)
		}
	}
	if _, err := t.client.SendMessage(ctx, t.channelID, platform.View{
		Content: fmt.Sprintf("The %s round in progress was cancelled; all bets have been refunded.", t.game.Name()),
	}); err != nil {
		logrus.Warnf("table %s: cancel announcement failed: %v", ref.MessageID, err)
	}
	t.pushEdit(ref, view)
}

// Refresh re-mints the table's public message: the table pauses, sends a
// replacement message, adopts its identity, repoints seated players and
// renames the persisted row (a single record update, never an insert).
func (t *Table) Refresh(ctx context.Context) error {
	t.mu.Lock()
	t.paused = true
	oldID := t.msg.MessageID
	view := t.renderLocked()
	t.mu.Unlock()

	ref, err := t.client.SendMessage(ctx, t.channelID, view)
	if err != nil {
		t.mu.Lock()
		t.paused = false
		t.mu.Unlock()
		return fmt.Errorf("re-mint table message: %w", err)
	}

	t.mu.Lock()
	t.msg = ref
	for _, p := range t.players {
		if err := p.seat(ctx, ref.MessageID); err != nil {
			logrus.Warnf("table %s: repointing %s failed: %v", ref.MessageID, p.UserID, err)
		}
	}
	t.paused = false
	fresh := t.renderLocked()
	t.mu.Unlock()

	if err := t.store.RenameTable(ctx, t.guildID, oldID, ref.MessageID); err != nil {
		logrus.Warnf("table rename %s -> %s failed: %v", oldID, ref.MessageID, err)
	}
	t.pushEdit(ref, fresh)
	return nil
}

// Record snapshots the table into its persisted shape.
func (t *Table) Record() *TableRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recordLocked()
}

func (t *Table) recordLocked() *TableRecord {
	players := make([]string, len(t.players))
	for i, p := range t.players {
		players[i] = p.UserID
	}
	bets := make(map[string]int64, len(t.bets))
	for uid, amount := range t.bets {
		bets[uid] = amount
	}
	return &TableRecord{
		GuildID:   t.guildID,
		ChannelID: t.channelID,
		MessageID: t.msg.MessageID,
		GameKind:  t.game.Kind(),
		State:     string(t.state),
		Players:   players,
		Bets:      bets,
		Settings:  t.settings,
	}
}

// persistLocked saves the table snapshot off the hot path. Single-table
// writes serialize behind the event that triggered them, so last write
// wins harmlessly.
func (t *Table) persistLocked() {
	if t.store == nil {
		return
	}
	rec := t.recordLocked()
	go func() {
		if err := t.store.UpsertTable(context.Background(), rec); err != nil {
			logrus.Warnf("table %s: persist failed: %v", rec.MessageID, err)
		}
	}()
}

// View renders the table's current public view.
func (t *Table) View() platform.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renderLocked()
}

// UpdateMessage re-renders the table's public message.
func (t *Table) UpdateMessage(ctx context.Context) {
	t.mu.Lock()
	view := t.renderLocked()
	ref := t.msg
	t.mu.Unlock()
	t.pushEdit(ref, view)
}

// pushEdit edits the public message, spacing successive edits by
// minEditInterval.
func (t *Table) pushEdit(ref platform.MessageRef, view platform.View) {
	t.editMu.Lock()
	if wait := time.Until(t.nextEdit); wait > 0 {
		time.Sleep(wait)
	}
	t.nextEdit = time.Now().Add(minEditInterval)
	t.editMu.Unlock()

	if err := t.client.EditMessage(context.Background(), ref, view); err != nil {
		logrus.Warnf("table %s: message edit failed: %v", ref.MessageID, err)
	}
}

func (t *Table) respondEphemeral(ctx context.Context, in platform.Interaction, msg string) {
	if err := t.client.UpdateInteractionResponse(ctx, in.ID, platform.View{
		Content:   msg,
		Ephemeral: true,
	}); err != nil {
		logrus.Warnf("table %s: ephemeral response failed: %v", in.MessageID, err)
	}
}

// audit publishes an action record to the redis queue, fire-and-forget.
func (t *Table) audit(actorID, actionType string, payload map[string]interface{}) {
	if cache.Rdb == nil {
		return
	}
	rec := cache.NewActionRecord(t.guildID, t.msg.MessageID, actorID, actionType, payload)
	go func() {
		if err := cache.PublishAction(context.Background(), rec); err != nil {
			logrus.Debugf("action log publish failed: %v", err)
		}
	}()
}
