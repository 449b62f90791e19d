// internal/casino/player.go
package casino

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Player is a guild member's casino wallet plus their table-membership
// pointer. A player sits at most one table at a time, guild-wide.
// Balance is only ever mutated through Pay and Bet.
type Player struct {
	mu sync.Mutex

	GuildID string
	UserID  string

	balance int64
	tableID string
	dailyID int

	store Store
}

// NewPlayer creates an in-memory player with the given starting balance.
func NewPlayer(store Store, guildID, userID string, startingBalance int64) *Player {
	return &Player{
		GuildID: guildID,
		UserID:  userID,
		balance: startingBalance,
		store:   store,
	}
}

// PlayerFromRecord rebuilds a player from its persisted record.
func PlayerFromRecord(store Store, rec *PlayerRecord) *Player {
	return &Player{
		GuildID: rec.GuildID,
		UserID:  rec.UserID,
		balance: rec.Balance,
		tableID: rec.TableID,
		dailyID: rec.DailyID,
		store:   store,
	}
}

// Balance returns the current balance.
func (p *Player) Balance() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance
}

// TableID returns the id of the table the player is seated at, or "".
func (p *Player) TableID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tableID
}

// DailyID returns the day index of the last claimed daily bonus.
func (p *Player) DailyID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dailyID
}

// Pay credits amount to the balance. The caller decides the amount (a
// loss credits 0, a win 2x the bet, a push 1x); this method only credits
// and optionally persists.
func (p *Player) Pay(ctx context.Context, amount int64, persist bool) error {
	p.mu.Lock()
	p.balance += amount
	p.mu.Unlock()
	if !persist {
		return nil
	}
	return p.Save(ctx)
}

// Bet places or replaces the player's wager at the table. Any prior
// wager for the same table is refunded first; if the new amount exceeds
// the balance the wager is simply cleared (no debit, no error — the
// re-rendered view shows no recorded bet). Returns whether a wager is
// now recorded. Always persists.
//
// Must be called with the table's lock held (it mutates the bet map).
func (p *Player) Bet(ctx context.Context, amount int64, t *Table) (bool, error) {
	p.mu.Lock()
	if prev, ok := t.bets[p.UserID]; ok {
		p.balance += prev
		delete(t.bets, p.UserID)
	}
	placed := false
	if amount <= p.balance {
		p.balance -= amount
		t.bets[p.UserID] = amount
		placed = true
	}
	p.mu.Unlock()
	return placed, p.Save(ctx)
}

// seat points the player at a table ("" to unseat). Persists.
func (p *Player) seat(ctx context.Context, tableID string) error {
	p.mu.Lock()
	p.tableID = tableID
	p.mu.Unlock()
	return p.Save(ctx)
}

// claimDaily credits the bonus if the player has not claimed it for the
// given day index. Returns whether the claim succeeded.
func (p *Player) claimDaily(ctx context.Context, dayIndex int, amount int64) (bool, error) {
	p.mu.Lock()
	if p.dailyID >= dayIndex {
		p.mu.Unlock()
		return false, nil
	}
	p.dailyID = dayIndex
	p.balance += amount
	p.mu.Unlock()
	return true, p.Save(ctx)
}

// Record snapshots the player into its persisted shape.
func (p *Player) Record() *PlayerRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &PlayerRecord{
		GuildID: p.GuildID,
		UserID:  p.UserID,
		Balance: p.balance,
		TableID: p.tableID,
		DailyID: p.dailyID,
	}
}

// Save persists the current player state. Storage faults are logged and
// returned; callers treat them as recoverable (the in-memory state stays
// authoritative for the session).
func (p *Player) Save(ctx context.Context) error {
	if p.store == nil {
		return nil
	}
	if err := p.store.UpsertPlayer(ctx, p.Record()); err != nil {
		logrus.WithFields(logrus.Fields{
			"guild": p.GuildID,
			"user":  p.UserID,
		}).Warnf("failed to persist player: %v", err)
		return err
	}
	return nil
}
