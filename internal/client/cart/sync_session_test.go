package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenkov/shopsync/internal/client/api"
	"github.com/avdeenkov/shopsync/internal/client/bus"
	"github.com/avdeenkov/shopsync/internal/client/models"
	"github.com/avdeenkov/shopsync/internal/client/session"
	"github.com/avdeenkov/shopsync/internal/common"
)

func mintToken(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).
		SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

// rotatingTokenAPI issues tokens[0] on login and tokens[1] on refresh, and
// rejects cart reads made with the stale first token.
type rotatingTokenAPI struct {
	mu sync.Mutex

	tokens     []string
	user       models.User
	serverCart models.Cart

	getCalls     int
	refreshCalls int
}

func (f *rotatingTokenAPI) Login(ctx context.Context, email, password string) (*models.Credential, error) {
	return &models.Credential{Token: f.tokens[0], User: f.user}, nil
}

func (f *rotatingTokenAPI) Register(ctx context.Context, req api.RegisterRequest) (*models.Credential, error) {
	return nil, common.ErrUnavailable
}

func (f *rotatingTokenAPI) Logout(ctx context.Context, token string) error { return nil }

func (f *rotatingTokenAPI) Refresh(ctx context.Context, token string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	return &models.Credential{Token: f.tokens[1], User: f.user}, nil
}

func (f *rotatingTokenAPI) GetCart(ctx context.Context, token string) (models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if token == f.tokens[0] {
		return nil, common.ErrUnauthorized
	}
	return append(models.Cart(nil), f.serverCart...), nil
}

func (f *rotatingTokenAPI) PutCart(ctx context.Context, token string, cart models.Cart) error {
	return nil
}

func (f *rotatingTokenAPI) Close() error { return nil }

func (f *rotatingTokenAPI) counts() (gets, refreshes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls, f.refreshCalls
}

// Composes the engine with the real session manager. The manager rotates
// its epoch when a refresh replaces the token, and the retried read runs
// under that new epoch, so its result must be applied, not discarded.
func TestEngine_LoadRetriesAfterManagerRefresh(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	b := bus.NewMemBus(8)
	log := testLogger()

	apiClient := &rotatingTokenAPI{
		tokens:     []string{mintToken(t, "t1"), mintToken(t, "t2")},
		user:       models.User{ID: "u1", Email: "ann@example.com", Role: models.RoleCustomer},
		serverCart: models.Cart{line("S", 3, 2)},
	}

	creds := session.NewCredentialStore(repo, b, log)
	mgr := session.NewManager(apiClient, creds, b, log)
	require.NoError(t, mgr.Login(ctx, "ann@example.com", "password123"))
	epochBefore := mgr.Epoch()

	e := NewEngine(NewStore(), repo, apiClient, mgr, DefaultRetryPolicy, log)
	e.Load(ctx)

	lines := e.store.Lines()
	require.Len(t, lines, 1, "retried read must be applied")
	assert.Equal(t, "S", lines[0].ProductID)

	assert.NotEqual(t, epochBefore, mgr.Epoch(), "refresh rotates the epoch")
	assert.True(t, mgr.IsAuthenticated())

	gets, refreshes := apiClient.counts()
	assert.Equal(t, 2, gets, "one retry after the refresh")
	assert.Equal(t, 1, refreshes)

	local := repo.snapshot(t)
	require.Len(t, local, 1, "local slot rewritten with the server cart")
	assert.Equal(t, "S", local[0].ProductID)
}
