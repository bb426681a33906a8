package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/avdeenkov/shopsync/internal/client/api"
	"github.com/avdeenkov/shopsync/internal/client/models"
	"github.com/avdeenkov/shopsync/internal/client/storage"
	"github.com/avdeenkov/shopsync/internal/common"
	"github.com/avdeenkov/shopsync/internal/logging"
)

// SessionState is the slice of the session manager the engine needs.
type SessionState interface {
	IsAuthenticated() bool
	Token() string
	Epoch() string
	Refresh(ctx context.Context) bool
}

// RetryPolicy bounds the recovery of 401-class failures. The bound is a
// first-class parameter rather than an artifact of call structure: a call
// that keeps getting 401 performs at most MaxRefreshRetries refresh
// attempts (each one more request), then gives up and the local copy wins.
type RetryPolicy struct {
	MaxRefreshRetries int
}

// DefaultRetryPolicy is one refresh and one retry per operation.
var DefaultRetryPolicy = RetryPolicy{MaxRefreshRetries: 1}

// Engine reconciles the local store with the server cart resource.
//
// Reads: Load replaces the local cart with the server copy for
// authenticated sessions, falling back to the durable local snapshot on any
// unrecoverable failure. Writes: every mutation updates the local store
// synchronously, persists the durable snapshot, and then pushes the whole
// cart to the server asynchronously with last-write-wins coalescing.
// Cart-level failures never propagate; the user is always left with a
// usable cart.
type Engine struct {
	store   *Store
	repo    storage.Repository
	api     api.Client
	session SessionState
	policy  RetryPolicy
	log     logging.Logger

	mu      sync.Mutex
	dirty   bool
	pushing bool
	wg      sync.WaitGroup
}

func NewEngine(store *Store, repo storage.Repository, apiClient api.Client, session SessionState, policy RetryPolicy, log logging.Logger) *Engine {
	if policy.MaxRefreshRetries < 0 {
		policy.MaxRefreshRetries = 0
	}
	return &Engine{
		store:   store,
		repo:    repo,
		api:     apiClient,
		session: session,
		policy:  policy,
		log:     log.With("component", "cartsync"),
	}
}

// Load populates the in-memory cart. Call it on startup and after every
// session status change. Anonymous sessions read the durable local snapshot
// and never touch the network. Authenticated sessions read the server cart;
// a 401 triggers the bounded refresh-and-retry path, and every terminal
// failure degrades to the local snapshot instead of surfacing.
func (e *Engine) Load(ctx context.Context) {
	if !e.session.IsAuthenticated() {
		e.loadLocal(ctx)
		return
	}

	lines, epoch, err := e.fetchServerCart(ctx)
	if err != nil {
		e.log.Warn(ctx, "server cart unavailable, using local copy", "error", err)
		e.loadLocal(ctx)
		return
	}

	// The session may have changed while the read was in flight (logout,
	// another process rotating the credential). A stale result is
	// discarded rather than applied. The epoch is the one the successful
	// attempt ran under, so a refresh performed by this very load does
	// not make its own retry stale.
	if e.session.Epoch() != epoch {
		e.log.Info(ctx, "discarding stale cart load", "epoch", epoch)
		return
	}

	e.store.Replace(lines)
	e.saveLocal(ctx)
}

// AddItem updates the cart and schedules persistence.
func (e *Engine) AddItem(ctx context.Context, line models.CartLine) {
	e.store.AddItem(line)
	e.persist(ctx)
}

// UpdateQuantity updates the cart and schedules persistence.
func (e *Engine) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	e.store.UpdateQuantity(productID, quantity)
	e.persist(ctx)
}

// RemoveItem updates the cart and schedules persistence.
func (e *Engine) RemoveItem(ctx context.Context, productID string) {
	e.store.RemoveItem(productID)
	e.persist(ctx)
}

// Clear empties the cart (post-checkout) and schedules persistence.
func (e *Engine) Clear(ctx context.Context) {
	e.store.Replace(nil)
	e.persist(ctx)
}

// Lines returns a copy of the current cart.
func (e *Engine) Lines() models.Cart {
	return e.store.Lines()
}

// Flush waits for any in-flight server push to settle.
func (e *Engine) Flush() {
	e.wg.Wait()
}

// persist writes the durable snapshot first (cheap, offline-safe), then
// schedules an asynchronous server push when authenticated.
func (e *Engine) persist(ctx context.Context) {
	e.saveLocal(ctx)
	if e.session.IsAuthenticated() {
		e.schedulePush()
	}
}

// schedulePush coalesces bursts of mutations: while a push is in flight the
// dirty flag accumulates, and the push loop re-sends until clean. Only the
// final state reaches the server (last-write-wins).
func (e *Engine) schedulePush() {
	e.mu.Lock()
	e.dirty = true
	if e.pushing {
		e.mu.Unlock()
		return
	}
	e.pushing = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.pushLoop()
}

func (e *Engine) pushLoop() {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		if !e.dirty {
			e.pushing = false
			e.mu.Unlock()
			return
		}
		e.dirty = false
		e.mu.Unlock()

		e.pushOnce(context.Background())
	}
}

// pushOnce sends the current cart to the server, recovering a 401 with the
// bounded refresh-and-retry policy. Terminal failures are logged and
// swallowed: the local copy is already correct and is not rolled back.
func (e *Engine) pushOnce(ctx context.Context) {
	if !e.session.IsAuthenticated() {
		return
	}
	lines := e.store.Lines()

	var err error
	for attempt := 0; ; attempt++ {
		err = e.api.PutCart(ctx, e.session.Token(), lines)
		if err == nil {
			return
		}
		if !e.recoverable(ctx, err, attempt) {
			break
		}
	}
	e.log.Warn(ctx, "cart push failed, local copy retained", "error", err)
}

// fetchServerCart reads the server cart, recovering 401s within the retry
// policy. Alongside the lines it returns the session epoch the successful
// attempt was issued under: a refresh between attempts rotates the epoch,
// and the retry runs under the new one.
func (e *Engine) fetchServerCart(ctx context.Context) (models.Cart, string, error) {
	for attempt := 0; ; attempt++ {
		epoch := e.session.Epoch()
		lines, err := e.api.GetCart(ctx, e.session.Token())
		if err == nil {
			return lines, epoch, nil
		}
		if !e.recoverable(ctx, err, attempt) {
			return nil, "", err
		}
	}
}

// recoverable reports whether a failed attempt should be retried: only a
// 401-class error, only within the policy bound, and only after a
// successful refresh. The refresh itself is single-flight inside the
// session manager, so concurrent cart operations cannot storm the server.
func (e *Engine) recoverable(ctx context.Context, err error, attempt int) bool {
	if !errors.Is(err, common.ErrUnauthorized) {
		return false
	}
	if attempt >= e.policy.MaxRefreshRetries {
		return false
	}
	return e.session.Refresh(ctx)
}

func (e *Engine) saveLocal(ctx context.Context) {
	data, err := json.Marshal(e.store.Lines())
	if err != nil {
		e.log.Error(ctx, "cart serialization failed", "error", err)
		return
	}
	if err := e.repo.Set(ctx, storage.KeyCart, data); err != nil {
		e.log.Error(ctx, "local cart write failed", "error", err)
	}
}

func (e *Engine) loadLocal(ctx context.Context) {
	data, err := e.repo.Get(ctx, storage.KeyCart)
	if err != nil {
		e.log.Error(ctx, "local cart read failed", "error", err)
		return
	}
	if data == nil {
		e.store.Replace(nil)
		return
	}

	var lines models.Cart
	if err := json.Unmarshal(data, &lines); err != nil {
		e.log.Warn(ctx, "local cart snapshot unreadable, starting empty", "error", err)
		e.store.Replace(nil)
		return
	}
	e.store.Replace(lines)
}
