// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/joho/godotenv/autoload"
)

// DB is the global connection pool. Call ConnectDB once at startup.
var DB *pgxpool.Pool

// ConnectDB opens the pool from environment variables:
//   - POSTGRES_USER, POSTGRES_PASSWORD
//   - PG_HOST, PG_PORT (default localhost:5432)
//   - POSTGRES_DB (default "casino")
func ConnectDB() error {
	host := os.Getenv("PG_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("PG_PORT")
	if port == "" {
		port = "5432"
	}
	dbname := os.Getenv("POSTGRES_DB")
	if dbname == "" {
		dbname = "casino"
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host, port, dbname,
	)
	var err error
	DB, err = pgxpool.New(context.Background(), connStr)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	return nil
}

// EnsureSchema creates the casino tables if they do not exist.
func EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS casino_players (
		guild_id TEXT NOT NULL,
		user_id  TEXT NOT NULL,
		balance  BIGINT NOT NULL DEFAULT 0,
		table_id TEXT NOT NULL DEFAULT '',
		daily_id INT NOT NULL DEFAULT 0,
		PRIMARY KEY (guild_id, user_id)
	);
	CREATE TABLE IF NOT EXISTS casino_tables (
		guild_id   TEXT NOT NULL,
		message_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		game_kind  TEXT NOT NULL,
		state      TEXT NOT NULL,
		players    JSONB NOT NULL DEFAULT '[]',
		bets       JSONB NOT NULL DEFAULT '{}',
		settings   JSONB NOT NULL DEFAULT '{}',
		PRIMARY KEY (guild_id, message_id)
	);
	`
	if _, err := DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure casino schema: %w", err)
	}
	return nil
}
