package session

import "github.com/avdeenkov/shopsync/internal/client/models"

// Status is the session state. It is derived from the stored credential and
// the in-flight refresh flag, never stored itself.
type Status string

const (
	StatusAnonymous     Status = "anonymous"
	StatusAuthenticated Status = "authenticated"
	StatusRefreshing    Status = "refreshing"
)

// Session is a point-in-time snapshot of authentication state.
type Session struct {
	Status     Status
	Credential *models.Credential
}

// IsAuthenticated reports whether the session holds a credential. A session
// mid-refresh still counts: the old token stays presentable until the
// refresh resolves.
func (s Session) IsAuthenticated() bool {
	return s.Credential != nil
}

// HasRole reports whether the session's profile carries the given role tag.
func (s Session) HasRole(role models.Role) bool {
	return s.Credential != nil && s.Credential.User.Role == role
}
