// internal/handlers/casino.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/helios-bot/casino/internal/casino"
	"github.com/helios-bot/casino/internal/platform"
)

// CasinoServer owns one Casino per guild, created and recovered lazily
// on first touch.
type CasinoServer struct {
	mu sync.Mutex

	client   platform.Client
	store    casino.Store
	registry *casino.Registry
	settings casino.Settings

	casinos map[string]*casino.Casino
}

// NewCasinoServer builds the per-guild casino registry.
func NewCasinoServer(client platform.Client, store casino.Store, registry *casino.Registry, settings casino.Settings) *CasinoServer {
	return &CasinoServer{
		client:   client,
		store:    store,
		registry: registry,
		settings: settings,
		casinos:  make(map[string]*casino.Casino),
	}
}

// Casino returns the guild's casino, loading persisted tables on first
// access.
func (s *CasinoServer) Casino(ctx context.Context, guildID string) (*casino.Casino, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.casinos[guildID]; ok {
		return c, nil
	}
	c := casino.New(s.client, s.store, s.registry, guildID, s.settings)
	if err := c.Load(ctx); err != nil {
		return nil, err
	}
	s.casinos[guildID] = c
	return c, nil
}

// interactionRequest is the inbound envelope from the gateway process.
type interactionRequest struct {
	GuildID string `json:"guildId"`
	platform.Interaction
}

// InteractionHandler receives button and select interactions relayed by
// the gateway and routes them into the guild's casino.
func (s *CasinoServer) InteractionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req interactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad interaction payload", http.StatusBadRequest)
			return
		}
		if req.GuildID == "" || req.ActorID == "" {
			http.Error(w, "guildId and actorId are required", http.StatusBadRequest)
			return
		}
		c, err := s.Casino(r.Context(), req.GuildID)
		if err != nil {
			logrus.Errorf("casino load for guild %s: %v", req.GuildID, err)
			http.Error(w, "casino unavailable", http.StatusInternalServerError)
			return
		}
		c.HandleInteraction(r.Context(), req.Interaction)
		w.WriteHeader(http.StatusNoContent)
	}
}

type addChannelRequest struct {
	GuildID   string `json:"guildId"`
	ChannelID string `json:"channelId"`
}

// ChannelsHandler registers casino channels (POST) and lists them (GET).
func (s *CasinoServer) ChannelsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req addChannelRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad channel payload", http.StatusBadRequest)
				return
			}
			if req.GuildID == "" || req.ChannelID == "" {
				http.Error(w, "guildId and channelId are required", http.StatusBadRequest)
				return
			}
			c, err := s.Casino(r.Context(), req.GuildID)
			if err != nil {
				http.Error(w, "casino unavailable", http.StatusInternalServerError)
				return
			}
			ch, err := c.AddChannel(r.Context(), req.ChannelID)
			if err != nil {
				logrus.Errorf("add channel %s: %v", req.ChannelID, err)
				http.Error(w, "failed to register channel", http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"channelId": ch.ChannelID,
				"messageId": ch.LobbyMsg.MessageID,
			})
		case http.MethodGet:
			guildID := r.URL.Query().Get("guildId")
			if guildID == "" {
				http.Error(w, "guildId is required", http.StatusBadRequest)
				return
			}
			c, err := s.Casino(r.Context(), guildID)
			if err != nil {
				http.Error(w, "casino unavailable", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(c.Channels())
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

type createTableRequest struct {
	GuildID    string `json:"guildId"`
	ChannelID  string `json:"channelId"`
	GameID     string `json:"gameId"`
	MinBet     int64  `json:"minBet"`
	MaxBet     int64  `json:"maxBet"`
	MaxPlayers int    `json:"maxPlayers"`
}

// TablesHandler creates tables (POST) and lists them (GET).
func (s *CasinoServer) TablesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createTableRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad table payload", http.StatusBadRequest)
				return
			}
			if req.GuildID == "" || req.ChannelID == "" || req.GameID == "" {
				http.Error(w, "guildId, channelId and gameId are required", http.StatusBadRequest)
				return
			}
			if req.MinBet <= 0 || req.MaxBet < req.MinBet {
				http.Error(w, "invalid bet limits", http.StatusBadRequest)
				return
			}
			if req.MaxPlayers <= 0 {
				req.MaxPlayers = 6
			}
			c, err := s.Casino(r.Context(), req.GuildID)
			if err != nil {
				http.Error(w, "casino unavailable", http.StatusInternalServerError)
				return
			}
			settings := casino.DefaultTableSettings(req.MinBet, req.MaxBet, req.MaxPlayers)
			tab, err := c.CreateTable(r.Context(), req.ChannelID, req.GameID, settings)
			if err != nil {
				logrus.Errorf("create %s table in %s: %v", req.GameID, req.ChannelID, err)
				http.Error(w, "failed to create table", http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"messageId": tab.ID(),
				"channelId": tab.ChannelID(),
				"gameId":    tab.GameKind(),
			})
		case http.MethodGet:
			guildID := r.URL.Query().Get("guildId")
			if guildID == "" {
				http.Error(w, "guildId is required", http.StatusBadRequest)
				return
			}
			c, err := s.Casino(r.Context(), guildID)
			if err != nil {
				http.Error(w, "casino unavailable", http.StatusInternalServerError)
				return
			}
			type tableInfo struct {
				MessageID string `json:"messageId"`
				ChannelID string `json:"channelId"`
				GameID    string `json:"gameId"`
				State     string `json:"state"`
			}
			var out []tableInfo
			for _, tab := range c.Tables() {
				out = append(out, tableInfo{
					MessageID: tab.ID(),
					ChannelID: tab.ChannelID(),
					GameID:    tab.GameKind(),
					State:     string(tab.EffectiveState()),
				})
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(out)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

type createPlayerRequest struct {
	GuildID string `json:"guildId"`
	UserID  string `json:"userId"`
}

// PlayersHandler opts players in (POST) and reports balances (GET).
func (s *CasinoServer) PlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createPlayerRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad player payload", http.StatusBadRequest)
				return
			}
			if req.GuildID == "" || req.UserID == "" {
				http.Error(w, "guildId and userId are required", http.StatusBadRequest)
				return
			}
			c, err := s.Casino(r.Context(), req.GuildID)
			if err != nil {
				http.Error(w, "casino unavailable", http.StatusInternalServerError)
				return
			}
			p, _, err := c.CreatePlayer(r.Context(), req.UserID)
			if err != nil {
				http.Error(w, "failed to create player", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(p.Record())
		case http.MethodGet:
			guildID := r.URL.Query().Get("guildId")
			userID := r.URL.Query().Get("userId")
			if guildID == "" || userID == "" {
				http.Error(w, "guildId and userId are required", http.StatusBadRequest)
				return
			}
			c, err := s.Casino(r.Context(), guildID)
			if err != nil {
				http.Error(w, "casino unavailable", http.StatusInternalServerError)
				return
			}
			p, err := c.Player(r.Context(), userID)
			if err != nil {
				http.Error(w, "player not found", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(p.Record())
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

type refreshRequest struct {
	GuildID string `json:"guildId"`
}

// RefreshHandler re-mints every casino and table message for a guild.
func (s *CasinoServer) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad refresh payload", http.StatusBadRequest)
			return
		}
		if req.GuildID == "" {
			http.Error(w, "guildId is required", http.StatusBadRequest)
			return
		}
		c, err := s.Casino(r.Context(), req.GuildID)
		if err != nil {
			http.Error(w, "casino unavailable", http.StatusInternalServerError)
			return
		}
		if err := c.RefreshChannels(r.Context()); err != nil {
			logrus.Errorf("refresh guild %s: %v", req.GuildID, err)
			http.Error(w, "refresh failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
