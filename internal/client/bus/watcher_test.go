package bus

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avdeenkov/shopsync/internal/client/storage"
	"github.com/avdeenkov/shopsync/internal/logging"
)

// fakeRepo implements storage.Repository with an in-memory change log.
type fakeRepo struct {
	mu      sync.Mutex
	changes []storage.Change
}

func (f *fakeRepo) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }

func (f *fakeRepo) Set(ctx context.Context, key string, value []byte) error {
	f.record(key)
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		f.record(k)
	}
	return nil
}

func (f *fakeRepo) record(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, storage.Change{Seq: int64(len(f.changes) + 1), Key: key})
}

func (f *fakeRepo) LastSeq(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.changes)), nil
}

func (f *fakeRepo) ChangesSince(ctx context.Context, seq int64) ([]storage.Change, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.Change
	for _, c := range f.changes {
		if c.Seq > seq {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestStorageWatcher_PublishesOnCredentialChange(t *testing.T) {
	repo := &fakeRepo{}
	b := NewMemBus(4)
	t.Cleanup(func() { _ = b.Close() })

	w := NewStorageWatcher(repo, b, 5*time.Millisecond, logging.NewText(io.Discard, "error"))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sub := b.Subscribe()
	go w.Run(ctx)

	// Simulate another process writing the credential slots.
	require.NoError(t, repo.Set(ctx, storage.KeyAuthToken, []byte("tok")))
	require.NoError(t, repo.Set(ctx, storage.KeyAuthUser, []byte("{}")))

	select {
	case ev := <-sub.Events():
		require.Equal(t, KindCredentialChanged, ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a credential-changed event")
	}
}

func TestStorageWatcher_IgnoresCartOnlyChanges(t *testing.T) {
	repo := &fakeRepo{}
	b := NewMemBus(4)
	t.Cleanup(func() { _ = b.Close() })

	w := NewStorageWatcher(repo, b, 5*time.Millisecond, logging.NewText(io.Discard, "error"))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sub := b.Subscribe()
	go w.Run(ctx)

	require.NoError(t, repo.Set(ctx, storage.KeyCart, []byte("[]")))

	select {
	case ev := <-sub.Events():
		t.Fatalf("cart-only change must not signal, got %v", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}
