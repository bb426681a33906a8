// Package storage implements the client's durable key/value area: the
// local-storage analog that survives restarts and is shared by every client
// process pointed at the same database file.
//
// Every slot holds a single serialized JSON value and is replaced wholesale
// on write; there are no partial-field updates. Each write also appends a
// row to a change log inside the same transaction, which is what lets other
// processes observe credential changes (see the bus package).
package storage

import "context"

// Well-known slot keys. One slot for the bearer token, one for the user
// profile snapshot, one for the anonymous/fallback cart snapshot.
const (
	KeyAuthToken = "auth_token"
	KeyAuthUser  = "auth_user"
	KeyCart      = "cart"
)

// Change is one entry of the storage change log.
type Change struct {
	Seq int64
	Key string
}

// Repository is the durable key/value area.
//
// Contract:
//   - Get returns nil (no error) when the key is absent.
//   - Set replaces the whole value atomically and records a change row.
//   - Delete removes the given keys and records a change row per key,
//     all in one transaction; absent keys still produce a change row so
//     observers learn about clears.
//   - LastSeq returns the newest change sequence number (0 when empty).
//   - ChangesSince returns changes with Seq > seq in ascending order.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	LastSeq(ctx context.Context) (int64, error)
	ChangesSince(ctx context.Context, seq int64) ([]Change, error)
}
