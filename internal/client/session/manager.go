package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/avdeenkov/shopsync/internal/client/api"
	"github.com/avdeenkov/shopsync/internal/client/bus"
	"github.com/avdeenkov/shopsync/internal/client/models"
	"github.com/avdeenkov/shopsync/internal/common"
	"github.com/avdeenkov/shopsync/internal/logging"
)

// LoginInput carries validated login fields.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Email    string      `validate:"required,email"`
	Password string      `validate:"required,min=8"`
	Name     string      `validate:"omitempty,max=128"`
	Role     models.Role `validate:"required,oneof=customer seller courier admin"`
}

// Manager owns the session state machine. It is the single owner of
// credential mutation: consumers call Login/Logout/Refresh here and read
// state through Current and the derived accessors; nothing else writes the
// credential slots.
//
// Derived accessors (IsAuthenticated, HasRole, Token, Epoch) are pure
// projections of the in-memory snapshot and perform no I/O. The snapshot is
// re-derived from the credential store whenever a credential-changed
// notification arrives, so a change made by another process is observed
// rather than overwritten.
type Manager struct {
	api      api.Client
	creds    *CredentialStore
	bus      bus.Bus
	log      logging.Logger
	validate *validator.Validate

	mu         sync.RWMutex
	snapshot   *models.Credential
	epoch      string
	refreshing bool

	sf   singleflight.Group
	stop func()
}

func NewManager(apiClient api.Client, creds *CredentialStore, b bus.Bus, log logging.Logger) *Manager {
	return &Manager{
		api:      apiClient,
		creds:    creds,
		bus:      b,
		log:      log.With("component", "session"),
		validate: validator.New(),
		epoch:    uuid.NewString(),
	}
}

// Start hydrates the snapshot from durable storage and begins re-deriving
// it on credential-changed notifications. Call Stop when done.
func (m *Manager) Start(ctx context.Context) {
	m.hydrate(ctx)

	sub := m.bus.Subscribe()
	done := make(chan struct{})
	m.stop = func() {
		_ = sub.Close()
		<-done
	}

	go func() {
		defer close(done)
		for ev := range sub.Events() {
			if ev.Kind == bus.KindCredentialChanged {
				m.hydrate(context.Background())
			}
		}
	}()
}

// Stop ends the notification loop started by Start.
func (m *Manager) Stop() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
}

// hydrate re-reads the credential store and replaces the snapshot.
// Corrupt or missing credentials surface here as nil, which is the
// self-healing authenticated -> anonymous transition.
func (m *Manager) hydrate(ctx context.Context) {
	m.setSnapshot(m.creds.Get(ctx))
}

func (m *Manager) setSnapshot(cred *models.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := (m.snapshot == nil) != (cred == nil) ||
		(m.snapshot != nil && cred != nil && m.snapshot.Token != cred.Token)
	m.snapshot = cred
	if changed {
		m.epoch = uuid.NewString()
	}
}

// Current returns a point-in-time session snapshot.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch {
	case m.snapshot == nil:
		return Session{Status: StatusAnonymous}
	case m.refreshing:
		return Session{Status: StatusRefreshing, Credential: m.snapshot}
	default:
		return Session{Status: StatusAuthenticated, Credential: m.snapshot}
	}
}

// IsAuthenticated reports whether a credential is held. No I/O.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot != nil
}

// Token returns the current bearer token, or "" when anonymous. No I/O.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snapshot == nil {
		return ""
	}
	return m.snapshot.Token
}

// Epoch identifies the current credential generation. It changes whenever
// the session transitions; in-flight work tagged with an older epoch should
// discard its result instead of applying it.
func (m *Manager) Epoch() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

// HasRole reports whether the current profile carries the role tag. No I/O.
func (m *Manager) HasRole(role models.Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot != nil && m.snapshot.User.Role == role
}

func (m *Manager) IsAdmin() bool   { return m.HasRole(models.RoleAdmin) }
func (m *Manager) IsSeller() bool  { return m.HasRole(models.RoleSeller) }
func (m *Manager) IsCourier() bool { return m.HasRole(models.RoleCourier) }

// Login authenticates against the server and persists the credential.
// Failures propagate to the caller for display: common.ErrInvalidCredentials
// for rejections, common.ErrUnavailable for transport failures.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	in := LoginInput{Email: email, Password: password}
	if err := m.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	cred, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return m.accept(ctx, cred)
}

// Register creates an account and signs the session in with the returned
// credential.
func (m *Manager) Register(ctx context.Context, in RegisterInput) error {
	if err := m.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	cred, err := m.api.Register(ctx, api.RegisterRequest{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Role:     in.Role,
	})
	if err != nil {
		return err
	}
	return m.accept(ctx, cred)
}

// accept validates a server-issued credential and makes it current. A
// malformed token is rejected before anything touches storage, so the
// session stays exactly as it was.
func (m *Manager) accept(ctx context.Context, cred *models.Credential) error {
	token := StripBearer(cred.Token)
	if err := ValidateToken(token); err != nil {
		m.log.Warn(ctx, "server issued malformed token", "error", err)
		return err
	}

	m.creds.Set(ctx, token, cred.User)
	m.setSnapshot(&models.Credential{Token: token, User: cred.User})
	return nil
}

// Logout notifies the server best-effort and then clears local state.
// Local clearing is never blocked by network failure, and callers never
// see an error.
func (m *Manager) Logout(ctx context.Context) {
	token := m.Token()
	if token != "" {
		if err := m.api.Logout(ctx, token); err != nil {
			m.log.Warn(ctx, "logout notification failed", "error", err)
		}
	}

	m.creds.Clear(ctx)
	m.setSnapshot(nil)
}

// Refresh exchanges the current token for a fresh one. Only one refresh is
// ever in flight: concurrent callers join the same attempt and observe its
// outcome. An anonymous session fails immediately. On failure the session
// transitions to anonymous and the credential store is cleared. Refresh
// never returns an error; the boolean is the whole story.
func (m *Manager) Refresh(ctx context.Context) bool {
	token := m.Token()
	if token == "" {
		return false
	}

	v, _, _ := m.sf.Do("refresh", func() (any, error) {
		return m.refreshOnce(ctx, token), nil
	})
	return v.(bool)
}

func (m *Manager) refreshOnce(ctx context.Context, token string) bool {
	m.setRefreshing(true)
	defer m.setRefreshing(false)

	cred, err := m.api.Refresh(ctx, token)
	if err != nil {
		m.log.Warn(ctx, "token refresh failed", "error", err)
		m.creds.Clear(ctx)
		m.setSnapshot(nil)
		return false
	}

	fresh := StripBearer(cred.Token)
	if err := ValidateToken(fresh); err != nil {
		m.log.Warn(ctx, "refresh returned malformed token", "error", err)
		m.creds.Clear(ctx)
		m.setSnapshot(nil)
		return false
	}

	m.creds.Set(ctx, fresh, cred.User)
	m.setSnapshot(&models.Credential{Token: fresh, User: cred.User})
	return true
}

func (m *Manager) setRefreshing(v bool) {
	m.mu.Lock()
	m.refreshing = v
	m.mu.Unlock()
}
