package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/logging"
)

// fakeSnapshots returns an increasing OwedToUser per call so tests can tell
// pushes apart.
type fakeSnapshots struct {
	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeSnapshots) snapshot(ctx context.Context, userID string) (*api.BalanceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[userID]++
	return &api.BalanceSnapshot{OwedToUser: decimal.NewFromInt(int64(f.calls[userID]))}, nil
}

func setupHub(t *testing.T) (*Hub, *auth.JWTManager, *httptest.Server) {
	t.Helper()
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	snaps := &fakeSnapshots{calls: make(map[string]int)}
	hub := NewHub(jwt, snaps.snapshot, metrics.New(), logging.Discard())
	server := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return hub, jwt, server
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("bad event %s: %v", data, err)
	}
	return ev
}

func TestHub_PushesOnConnectAndChange(t *testing.T) {
	hub, jwt, server := setupHub(t)

	alice := models.NewUser("alice@example.com", "Alice", "")
	token, err := jwt.Generate(alice)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	conn := dial(t, server, token)

	first := readEvent(t, conn)
	if first.Type != EventBalances || !first.Balances.OwedToUser.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected initial event: %+v", first)
	}
	if !hub.Connected(alice.ID) {
		t.Fatal("alice should be connected after the initial snapshot")
	}

	// Duplicates and offline participants are ignored.
	hub.RecordsChanged(context.Background(), []string{alice.ID, "offline-bob", alice.ID})

	second := readEvent(t, conn)
	if !second.Balances.OwedToUser.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected a single recomputed snapshot, got %+v", second.Balances)
	}
}

func TestHub_RejectsBadToken(t *testing.T) {
	_, _, server := setupHub(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %+v", resp)
	}
}
