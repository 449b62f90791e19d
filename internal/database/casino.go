// internal/database/casino.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helios-bot/casino/internal/casino"
)

// CasinoStore is the pgx-backed casino.Store.
type CasinoStore struct {
	pool *pgxpool.Pool
}

// NewCasinoStore wraps a connection pool; pass the global DB.
func NewCasinoStore(pool *pgxpool.Pool) *CasinoStore {
	return &CasinoStore{pool: pool}
}

func (s *CasinoStore) FindPlayer(ctx context.Context, guildID, userID string) (*casino.PlayerRecord, error) {
	var rec casino.PlayerRecord
	q := `
	SELECT guild_id, user_id, balance, table_id, daily_id
	FROM casino_players
	WHERE guild_id=$1 AND user_id=$2
	`
	err := s.pool.QueryRow(ctx, q, guildID, userID).Scan(
		&rec.GuildID, &rec.UserID, &rec.Balance, &rec.TableID, &rec.DailyID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, casino.ErrNotFound
		}
		return nil, fmt.Errorf("find player %s/%s: %w", guildID, userID, err)
	}
	return &rec, nil
}

func (s *CasinoStore) UpsertPlayer(ctx context.Context, rec *casino.PlayerRecord) error {
	q := `
	INSERT INTO casino_players (guild_id, user_id, balance, table_id, daily_id)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (guild_id, user_id)
	DO UPDATE SET balance=$3, table_id=$4, daily_id=$5
	`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			rec.GuildID, rec.UserID, rec.Balance, rec.TableID, rec.DailyID,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("upsert player %s/%s: %w", rec.GuildID, rec.UserID, err)
	}
	return nil
}

func (s *CasinoStore) FindTables(ctx context.Context, guildID string) ([]casino.TableRecord, error) {
	q := `
	SELECT guild_id, message_id, channel_id, game_kind, state, players, bets, settings
	FROM casino_tables
	WHERE guild_id=$1
	`
	rows, err := s.pool.Query(ctx, q, guildID)
	if err != nil {
		return nil, fmt.Errorf("find tables for %s: %w", guildID, err)
	}
	defer rows.Close()

	var out []casino.TableRecord
	for rows.Next() {
		var rec casino.TableRecord
		var players, bets, settings []byte
		if err := rows.Scan(
			&rec.GuildID, &rec.MessageID, &rec.ChannelID, &rec.GameKind,
			&rec.State, &players, &bets, &settings,
		); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		if err := json.Unmarshal(players, &rec.Players); err != nil {
			return nil, fmt.Errorf("decode players for table %s: %w", rec.MessageID, err)
		}
		if err := json.Unmarshal(bets, &rec.Bets); err != nil {
			return nil, fmt.Errorf("decode bets for table %s: %w", rec.MessageID, err)
		}
		if err := json.Unmarshal(settings, &rec.Settings); err != nil {
			return nil, fmt.Errorf("decode settings for table %s: %w", rec.MessageID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *CasinoStore) UpsertTable(ctx context.Context, rec *casino.TableRecord) error {
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}
	bets, err := json.Marshal(rec.Bets)
	if err != nil {
		return fmt.Errorf("encode bets: %w", err)
	}
	settings, err := json.Marshal(rec.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	q := `
	INSERT INTO casino_tables (guild_id, message_id, channel_id, game_kind, state, players, bets, settings)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (guild_id, message_id)
	DO UPDATE SET channel_id=$3, game_kind=$4, state=$5, players=$6, bets=$7, settings=$8
	`
	err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			rec.GuildID, rec.MessageID, rec.ChannelID, rec.GameKind,
			rec.State, players, bets, settings,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("upsert table %s/%s: %w", rec.GuildID, rec.MessageID, err)
	}
	return nil
}

// RenameTable moves a table row to its re-minted message id and repoints
// every player seated under the old id, atomically.
func (s *CasinoStore) RenameTable(ctx context.Context, guildID, oldMessageID, newMessageID string) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, e := tx.Exec(ctx,
			`UPDATE casino_tables SET message_id=$3 WHERE guild_id=$1 AND message_id=$2`,
			guildID, oldMessageID, newMessageID,
		)
		if e != nil {
			return e
		}
		if tag.RowsAffected() == 0 {
			return casino.ErrNotFound
		}
		_, e = tx.Exec(ctx,
			`UPDATE casino_players SET table_id=$3 WHERE guild_id=$1 AND table_id=$2`,
			guildID, oldMessageID, newMessageID,
		)
		return e
	})
	if err != nil {
		if errors.Is(err, casino.ErrNotFound) {
			return casino.ErrNotFound
		}
		return fmt.Errorf("rename table %s -> %s: %w", oldMessageID, newMessageID, err)
	}
	return nil
}

func (s *CasinoStore) DeleteTable(ctx context.Context, guildID, messageID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM casino_tables WHERE guild_id=$1 AND message_id=$2`,
		guildID, messageID,
	)
	if err != nil {
		return fmt.Errorf("delete table %s/%s: %w", guildID, messageID, err)
	}
	return nil
}
