// Package session owns authentication state: the durable credential store,
// the session manager's state machine (anonymous / authenticated /
// refreshing), and structural token validation.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avdeenkov/shopsync/internal/client/bus"
	"github.com/avdeenkov/shopsync/internal/client/models"
	"github.com/avdeenkov/shopsync/internal/client/storage"
	"github.com/avdeenkov/shopsync/internal/logging"
)

// CredentialStore wraps the durable area's credential slots.
//
// Contract:
//   - Get returns the stored credential, or nil when absent. A structurally
//     invalid token or a partial credential (token without profile, profile
//     without token) is corruption: the slots are purged and nil returned.
//     Corruption is self-healing and never surfaces as an error.
//   - Set strips a Bearer prefix, re-validates, and only then writes both
//     slots. An invalid token is a logged no-op.
//   - Clear removes both slots unconditionally.
//
// Every Set and Clear publishes a credential-changed notification so other
// subscribers (including other processes, via the storage watcher)
// re-derive their session state.
type CredentialStore struct {
	repo storage.Repository
	bus  bus.Bus
	log  logging.Logger
}

func NewCredentialStore(repo storage.Repository, b bus.Bus, log logging.Logger) *CredentialStore {
	return &CredentialStore{repo: repo, bus: b, log: log.With("component", "credstore")}
}

// Get reads the credential from durable storage.
func (s *CredentialStore) Get(ctx context.Context) *models.Credential {
	rawToken, err := s.repo.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		s.log.Error(ctx, "token slot read failed", "error", err)
		return nil
	}
	rawUser, err := s.repo.Get(ctx, storage.KeyAuthUser)
	if err != nil {
		s.log.Error(ctx, "profile slot read failed", "error", err)
		return nil
	}

	if rawToken == nil && rawUser == nil {
		return nil
	}

	token := StripBearer(string(rawToken))
	if err := ValidateToken(token); err != nil {
		s.purge(ctx, "malformed token", err)
		return nil
	}
	if rawUser == nil {
		s.purge(ctx, "token without profile", nil)
		return nil
	}

	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		s.purge(ctx, "unreadable profile", err)
		return nil
	}
	if user.ID == "" || !user.Role.Valid() {
		s.purge(ctx, "incomplete profile", nil)
		return nil
	}

	return &models.Credential{Token: token, User: user}
}

// Set validates and writes the credential.
func (s *CredentialStore) Set(ctx context.Context, token string, user models.User) {
	token = StripBearer(token)
	if err := ValidateToken(token); err != nil {
		s.log.Warn(ctx, "refusing to store invalid token", "error", err)
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		s.log.Error(ctx, "profile serialization failed", "error", err)
		return
	}

	if err := s.repo.Set(ctx, storage.KeyAuthToken, []byte(token)); err != nil {
		s.log.Error(ctx, "token slot write failed", "error", err)
		return
	}
	if err := s.repo.Set(ctx, storage.KeyAuthUser, data); err != nil {
		s.log.Error(ctx, "profile slot write failed", "error", err)
		return
	}

	s.notify()
}

// Clear removes both credential slots.
func (s *CredentialStore) Clear(ctx context.Context) {
	if err := s.repo.Delete(ctx, storage.KeyAuthToken, storage.KeyAuthUser); err != nil {
		s.log.Error(ctx, "credential clear failed", "error", err)
	}
	s.notify()
}

func (s *CredentialStore) purge(ctx context.Context, reason string, err error) {
	s.log.Warn(ctx, "purging corrupt credential", "reason", reason, "error", err)
	if derr := s.repo.Delete(ctx, storage.KeyAuthToken, storage.KeyAuthUser); derr != nil {
		s.log.Error(ctx, "credential purge failed", "error", derr)
	}
	s.notify()
}

func (s *CredentialStore) notify() {
	s.bus.Publish(bus.Event{Kind: bus.KindCredentialChanged, At: time.Now()})
}
