package session

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/avdeenkov/shopsync/internal/client/api"
	"github.com/avdeenkov/shopsync/internal/client/bus"
	"github.com/avdeenkov/shopsync/internal/client/models"
	"github.com/avdeenkov/shopsync/internal/client/storage"
	"github.com/avdeenkov/shopsync/internal/logging"
)

// ---- helpers ----

func mintToken(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).
		SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func testLogger() logging.Logger {
	return logging.NewText(io.Discard, "error")
}

func testUser() models.User {
	return models.User{ID: "u1", Email: "ann@example.com", Role: models.RoleCustomer}
}

// ---- fake storage ----

// memRepo implements storage.Repository in memory.
type memRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	changes []storage.Change
}

func newMemRepo() *memRepo {
	return &memRepo{data: make(map[string][]byte)}
}

func (m *memRepo) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *memRepo) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.changes = append(m.changes, storage.Change{Seq: int64(len(m.changes) + 1), Key: key})
	return nil
}

func (m *memRepo) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		m.changes = append(m.changes, storage.Change{Seq: int64(len(m.changes) + 1), Key: k})
	}
	return nil
}

func (m *memRepo) LastSeq(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.changes)), nil
}

func (m *memRepo) ChangesSince(ctx context.Context, seq int64) ([]storage.Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.Change
	for _, c := range m.changes {
		if c.Seq > seq {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRepo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// ---- fake API client ----

// fakeAPI implements api.Client for Manager unit tests.
type fakeAPI struct {
	mu sync.Mutex

	LoginCred *models.Credential
	LoginErr  error

	RegisterCred *models.Credential
	RegisterErr  error

	LogoutErr error

	RefreshCred *models.Credential
	RefreshErr  error
	// RefreshGate, when non-nil, blocks Refresh until closed.
	RefreshGate chan struct{}

	LoginCalls   int
	LogoutCalls  int
	RefreshCalls int

	LastLoginEmail string
	LastLogoutTok  string
	LastRefreshTok string
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*models.Credential, error) {
	f.mu.Lock()
	f.LoginCalls++
	f.LastLoginEmail = email
	f.mu.Unlock()
	return f.LoginCred, f.LoginErr
}

func (f *fakeAPI) Register(ctx context.Context, req api.RegisterRequest) (*models.Credential, error) {
	return f.RegisterCred, f.RegisterErr
}

func (f *fakeAPI) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	f.LogoutCalls++
	f.LastLogoutTok = token
	f.mu.Unlock()
	return f.LogoutErr
}

func (f *fakeAPI) Refresh(ctx context.Context, token string) (*models.Credential, error) {
	f.mu.Lock()
	f.RefreshCalls++
	f.LastRefreshTok = token
	gate := f.RefreshGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.RefreshCred, f.RefreshErr
}

func (f *fakeAPI) GetCart(ctx context.Context, token string) (models.Cart, error) { return nil, nil }

func (f *fakeAPI) PutCart(ctx context.Context, token string, cart models.Cart) error { return nil }

func (f *fakeAPI) Close() error { return nil }

func (f *fakeAPI) refreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.RefreshCalls
}

// ---- wiring ----

func busForManager(t *testing.T) *bus.MemBus {
	t.Helper()
	b := bus.NewMemBus(8)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func newTestManager(t *testing.T, apiClient api.Client, repo storage.Repository) *Manager {
	t.Helper()
	b := bus.NewMemBus(8)
	t.Cleanup(func() { _ = b.Close() })

	creds := NewCredentialStore(repo, b, testLogger())
	return NewManager(apiClient, creds, b, testLogger())
}
