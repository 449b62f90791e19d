// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/helios-bot/casino/internal/cache"
	"github.com/helios-bot/casino/internal/casino"
	"github.com/helios-bot/casino/internal/database"
	"github.com/helios-bot/casino/internal/handlers"
	"github.com/helios-bot/casino/internal/middleware"
	"github.com/helios-bot/casino/internal/platform"
)

func envInt64(key string, def int64) int64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := database.ConnectDB(); err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("schema: %v", err)
	}
	if err := cache.ConnectRedis(); err != nil {
		// The action log is best-effort; the casino runs without it.
		logger.Warnf("redis unavailable, action log disabled: %v", err)
	}

	client := platform.NewRESTClient(
		os.Getenv("PLATFORM_API_URL"),
		os.Getenv("PLATFORM_TOKEN"),
	)

	registry := casino.NewRegistry()
	registry.Register(casino.KindBlackjack, casino.NewBlackjack)

	settings := casino.Settings{
		StartingBalance: envInt64("CASINO_STARTING_BALANCE", 1000),
		DailyAmount:     envInt64("CASINO_DAILY_AMOUNT", 100),
	}

	store := database.NewCasinoStore(database.DB)
	srv := handlers.NewCasinoServer(client, store, registry, settings)

	logged := middleware.LogMiddleware(logger)
	mux := http.NewServeMux()
	mux.Handle("/interactions", logged(srv.InteractionHandler()))
	mux.Handle("/casino/channels", logged(srv.ChannelsHandler()))
	mux.Handle("/casino/tables", logged(srv.TablesHandler()))
	mux.Handle("/casino/players", logged(srv.PlayersHandler()))
	mux.Handle("/casino/refresh", logged(srv.RefreshHandler()))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
