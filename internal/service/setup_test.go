package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/logging"
)

// recordingNotifier remembers every RecordsChanged call.
type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]string
}

func (n *recordingNotifier) RecordsChanged(ctx context.Context, participants []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, append([]string(nil), participants...))
}

func (n *recordingNotifier) last() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		return nil
	}
	return n.calls[len(n.calls)-1]
}

type testEnv struct {
	store    *sqlite.SQLiteStore
	metrics  *metrics.Metrics
	notifier *recordingNotifier
	ledger   *LedgerService

	auth    *api.AuthServiceClient
	friends *api.FriendServiceClient
	groups  *api.GroupServiceClient
	ledgerc *api.LedgerServiceClient
}

// setupTestServer wires every service behind the production interceptor
// chain on top of a temp SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := logging.Discard()
	m := metrics.New()
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticatorWithCost(store, bcrypt.MinCost)
	snaps := NewSnapshotter(store, "USD", m)
	notifier := &recordingNotifier{}
	ledger := NewLedgerService(store, snaps, notifier, m, "USD", logger)

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwt, api.PublicProcedures...),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwt, store, logger), interceptors))
	mux.Handle(api.NewFriendServiceHandler(NewFriendService(store, logger), interceptors))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store, snaps, logger), interceptors))
	mux.Handle(api.NewLedgerServiceHandler(ledger, interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:    store,
		metrics:  m,
		notifier: notifier,
		ledger:   ledger,
		auth:     api.NewAuthServiceClient(http.DefaultClient, server.URL),
		friends:  api.NewFriendServiceClient(http.DefaultClient, server.URL),
		groups:   api.NewGroupServiceClient(http.DefaultClient, server.URL),
		ledgerc:  api.NewLedgerServiceClient(http.DefaultClient, server.URL),
	}
}

// user is a registered account and its session token.
type user struct {
	ID    string
	Token string
}

func (e *testEnv) register(t *testing.T, name string) user {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register %s failed: %v", name, err)
	}
	return user{ID: resp.Msg.User.ID, Token: resp.Msg.Token}
}

func (e *testEnv) addFriend(t *testing.T, owner user, name string) string {
	t.Helper()
	resp, err := e.friends.AddFriend(context.Background(), as(owner, &api.AddFriendRequest{Name: name}))
	if err != nil {
		t.Fatalf("AddFriend %s failed: %v", name, err)
	}
	return resp.Msg.Friend.ID
}

// as builds a request authenticated as u.
func as[T any](u user, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.Token)
	return req
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected %v, got %v (%v)", want, got, err)
	}
}

func balanceOf(snap *api.BalanceSnapshot, id string) (decimal.Decimal, bool) {
	for _, c := range snap.Counterparties {
		if c.ParticipantID == id {
			return c.Amount, true
		}
	}
	return decimal.Zero, false
}
