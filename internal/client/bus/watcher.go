package bus

import (
	"context"
	"time"

	"github.com/avdeenkov/shopsync/internal/client/storage"
	"github.com/avdeenkov/shopsync/internal/logging"
)

// StorageWatcher polls the durable area's change log and republishes
// credential changes on the bus. It is the cross-process edge of the
// contract: a write made by another client pointed at the same database
// shows up here. Our own writes show up too; that is harmless because
// subscribers re-derive from storage, which is idempotent.
type StorageWatcher struct {
	repo     storage.Repository
	bus      Bus
	interval time.Duration
	log      logging.Logger
}

func NewStorageWatcher(repo storage.Repository, b Bus, interval time.Duration, log logging.Logger) *StorageWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &StorageWatcher{repo: repo, bus: b, interval: interval, log: log}
}

// Run polls until ctx is cancelled. Poll errors are logged and retried on
// the next tick.
func (w *StorageWatcher) Run(ctx context.Context) {
	lastSeq, err := w.repo.LastSeq(ctx)
	if err != nil {
		w.log.Warn(ctx, "storage watcher: initial seq read failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lastSeq = w.poll(ctx, lastSeq)
		case <-ctx.Done():
			return
		}
	}
}

func (w *StorageWatcher) poll(ctx context.Context, lastSeq int64) int64 {
	changes, err := w.repo.ChangesSince(ctx, lastSeq)
	if err != nil {
		w.log.Warn(ctx, "storage watcher: change poll failed", "error", err)
		return lastSeq
	}
	if len(changes) == 0 {
		return lastSeq
	}

	credential := false
	for _, c := range changes {
		if c.Key == storage.KeyAuthToken || c.Key == storage.KeyAuthUser {
			credential = true
		}
		lastSeq = c.Seq
	}

	if credential {
		w.bus.Publish(Event{Kind: KindCredentialChanged, At: time.Now()})
	}
	return lastSeq
}
