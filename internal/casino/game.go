// internal/casino/game.go
package casino

import (
	"context"
	"fmt"

	"github.com/helios-bot/casino/internal/platform"
)

// Game is the per-game-kind capability a Table delegates to while in the
// Playing and Ended phases. All methods are called with the owning
// table's lock held.
type Game interface {
	// Kind is the registry identifier ("blackjack").
	Kind() string
	// Name and Description feed the lobby view.
	Name() string
	Description() string

	// StartPlaying deals the round: reset the shared deck, attach hands
	// in turn order, shuffle, deal, initialize seat state and schedule
	// the first turn timer.
	StartPlaying(ctx context.Context, t *Table) error
	// ResolveAction applies a player action ("hit", "stay"). Returns a
	// user-input rejection for out-of-turn or unknown actions.
	ResolveAction(ctx context.Context, t *Table, actorID, action string) error
	// RoundOver reports whether every seat has resolved.
	RoundOver(t *Table) bool
	// ForceProgress is invoked when the turn timer fires before the
	// seated player acts; idle players default to staying.
	ForceProgress(ctx context.Context, t *Table)
	// SettleRound computes verdicts and pays winnings. Must be
	// idempotent: calling it twice on the same finished round pays once.
	SettleRound(ctx context.Context, t *Table)
	// Render produces the game-specific view; handled=false falls back
	// to the table's base rendering for the current phase.
	Render(t *Table) (embeds []platform.Embed, rows []platform.ActionRow, handled bool)
	// Cleanup resets round state between rounds.
	Cleanup(t *Table)
}

// GameFactory builds a fresh Game for a new table.
type GameFactory func() Game

// Registry maps game-kind ids to factories. It is injected into the
// Casino at construction; nothing registers itself via side effects.
type Registry struct {
	factories map[string]GameFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]GameFactory)}
}

// Register binds a game kind to its factory.
func (r *Registry) Register(kind string, f GameFactory) {
	r.factories[kind] = f
}

// New instantiates a game by kind.
func (r *Registry) New(kind string) (Game, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("casino: unknown game kind %q", kind)
	}
	return f(), nil
}

// Kinds lists the registered game kinds.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	return out
}
