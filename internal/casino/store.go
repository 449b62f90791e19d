// internal/casino/store.go
package casino

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store lookups that match nothing.
var ErrNotFound = errors.New("casino: not found")

// User-input rejections. These are reported back to the triggering actor
// only (ephemeral responses); table state is never mutated on rejection.
var (
	ErrAlreadySeated       = errors.New("you are already seated at a table")
	ErrNotSeated           = errors.New("you are not seated at this table")
	ErrTableFull           = errors.New("this table is full")
	ErrWrongPhase          = errors.New("that action is not available right now")
	ErrInsufficientBalance = errors.New("your balance is too low for that")
	ErrNotYourTurn         = errors.New("it is not your turn")
	ErrNoPlayer            = errors.New("you need a casino player first; use the New Player button")
	ErrBetOutOfRange       = errors.New("that bet is outside the table limits")
)

// PlayerRecord is the persisted shape of a casino player, keyed by
// (guildId, userId). All ids are platform id strings.
type PlayerRecord struct {
	GuildID string `json:"guildId"`
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
	TableID string `json:"tableId,omitempty"`
	DailyID int    `json:"dailyId"`
}

// TableSettings carries the operator-configured limits plus the phase
// timers. Durations persist as milliseconds.
type TableSettings struct {
	MinBet        int64 `json:"minBet"`
	MaxBet        int64 `json:"maxBet"`
	MinPlayers    int   `json:"minPlayers"`
	MaxPlayers    int   `json:"maxPlayers"`
	LobbyTimeMs   int64 `json:"lobbyTime"`
	BettingTimeMs int64 `json:"bettingTime"`
	TurnTimeMs    int64 `json:"turnTime"`
	EndTimeMs     int64 `json:"endTime"`
}

func (s TableSettings) LobbyTime() time.Duration   { return time.Duration(s.LobbyTimeMs) * time.Millisecond }
func (s TableSettings) BettingTime() time.Duration { return time.Duration(s.BettingTimeMs) * time.Millisecond }
func (s TableSettings) TurnTime() time.Duration    { return time.Duration(s.TurnTimeMs) * time.Millisecond }
func (s TableSettings) EndTime() time.Duration     { return time.Duration(s.EndTimeMs) * time.Millisecond }

// DefaultTableSettings returns the stock phase timers with the given
// operator limits applied.
func DefaultTableSettings(minBet, maxBet int64, maxPlayers int) TableSettings {
	return TableSettings{
		MinBet:        minBet,
		MaxBet:        maxBet,
		MinPlayers:    1,
		MaxPlayers:    maxPlayers,
		LobbyTimeMs:   15000,
		BettingTimeMs: 30000,
		TurnTimeMs:    15000,
		EndTimeMs:     10000,
	}
}

// TableRecord is the persisted shape of a table. The key is the table's
// public message id; RenameTable moves a row to a new key when the
// message is re-minted.
type TableRecord struct {
	GuildID   string           `json:"guildId"`
	ChannelID string           `json:"channelId"`
	MessageID string           `json:"messageId"`
	GameKind  string           `json:"gameId"`
	State     string           `json:"state"`
	Players   []string         `json:"players"`
	Bets      map[string]int64 `json:"bets"`
	Settings  TableSettings    `json:"settings"`
}

// Store is the persistence collaborator. Implementations must treat the
// records as plain JSON-serializable attribute maps; the pgx-backed
// implementation lives in internal/database.
type Store interface {
	FindPlayer(ctx context.Context, guildID, userID string) (*PlayerRecord, error)
	UpsertPlayer(ctx context.Context, rec *PlayerRecord) error
	FindTables(ctx context.Context, guildID string) ([]TableRecord, error)
	UpsertTable(ctx context.Context, rec *TableRecord) error
	RenameTable(ctx context.Context, guildID, oldMessageID, newMessageID string) error
	DeleteTable(ctx context.Context, guildID, messageID string) error
}
