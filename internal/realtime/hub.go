// Package realtime pushes balance snapshots to connected clients over
// websockets. Clients connect to /ws?token=<jwt>; every time records
// involving them change, the hub recomputes their snapshot from scratch and
// sends it.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/olahol/melody"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/pkg/api"
)

const userKey = "user_id"

// EventBalances is the only event type sent today.
const EventBalances = "balances"

// Event is the JSON message written to sessions.
type Event struct {
	Type     string               `json:"type"`
	Balances *api.BalanceSnapshot `json:"balances"`
}

// SnapshotFunc computes the current balance view of userID.
type SnapshotFunc func(ctx context.Context, userID string) (*api.BalanceSnapshot, error)

// Hub tracks websocket sessions per user.
type Hub struct {
	m        *melody.Melody
	jwt      *auth.JWTManager
	snapshot SnapshotFunc
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu        sync.Mutex
	connected map[string]int // user id -> open sessions
}

// NewHub creates a hub that authenticates with jwt and computes snapshots
// with snapshot.
func NewHub(jwt *auth.JWTManager, snapshot SnapshotFunc, m *metrics.Metrics, logger *slog.Logger) *Hub {
	h := &Hub{
		m:         melody.New(),
		jwt:       jwt,
		snapshot:  snapshot,
		metrics:   m,
		logger:    logger,
		connected: make(map[string]int),
	}

	h.m.Config.MaxMessageSize = 1024
	h.m.Config.PingPeriod = 30 * time.Second
	h.m.Config.PongWait = 60 * time.Second

	h.m.HandleConnect(h.onConnect)
	h.m.HandleDisconnect(h.onDisconnect)
	h.m.HandleError(func(s *melody.Session, err error) {
		userID, _ := s.Get(userKey)
		h.logger.Warn("WebSocket error", "user_id", userID, "error", err)
	})
	return h
}

// ServeHTTP authenticates the request and upgrades it. The token is read
// from the token query parameter, falling back to the Authorization header.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		var err error
		if token, err = auth.BearerToken(r.Header.Get("Authorization")); err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
	}
	claims, err := h.jwt.Validate(token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.m.HandleRequestWithKeys(w, r, map[string]any{userKey: claims.UserID}); err != nil {
		h.logger.Warn("Failed to upgrade websocket", "user_id", claims.UserID, "error", err)
	}
}

func (h *Hub) onConnect(s *melody.Session) {
	userID := sessionUser(s)
	h.mu.Lock()
	h.connected[userID]++
	h.mu.Unlock()
	h.metrics.Sessions.Inc()
	h.logger.Info("Client connected", "user_id", userID)

	msg, err := h.event(context.Background(), userID)
	if err != nil {
		h.logger.Error("Initial snapshot failed", "user_id", userID, "error", err)
		return
	}
	if err := s.Write(msg); err != nil {
		h.logger.Warn("Initial snapshot not delivered", "user_id", userID, "error", err)
	}
}

func (h *Hub) onDisconnect(s *melody.Session) {
	userID := sessionUser(s)
	h.mu.Lock()
	if h.connected[userID]--; h.connected[userID] <= 0 {
		delete(h.connected, userID)
	}
	h.mu.Unlock()
	h.metrics.Sessions.Dec()
	h.logger.Info("Client disconnected", "user_id", userID)
}

// Connected reports whether userID has at least one open session.
func (h *Hub) Connected(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected[userID] > 0
}

// RecordsChanged recomputes and pushes a snapshot to every connected
// participant. Participants without a session are skipped.
func (h *Hub) RecordsChanged(ctx context.Context, participants []string) {
	seen := make(map[string]bool, len(participants))
	for _, userID := range participants {
		if seen[userID] || !h.Connected(userID) {
			continue
		}
		seen[userID] = true

		msg, err := h.event(ctx, userID)
		if err != nil {
			h.logger.Error("Snapshot failed", "user_id", userID, "error", err)
			continue
		}
		err = h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
			return sessionUser(s) == userID
		})
		if err != nil {
			h.logger.Warn("Broadcast failed", "user_id", userID, "error", err)
		}
	}
}

// Close disconnects every session.
func (h *Hub) Close() error {
	return h.m.Close()
}

func (h *Hub) event(ctx context.Context, userID string) ([]byte, error) {
	snap, err := h.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: EventBalances, Balances: snap})
}

func sessionUser(s *melody.Session) string {
	v, _ := s.Get(userKey)
	id, _ := v.(string)
	return id
}
