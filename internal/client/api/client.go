// Package api implements the HTTP client for the storefront boundary:
// auth (login, register, logout, refresh) and the per-user server cart.
// Errors are mapped to the sentinels in internal/common so callers can
// drive the refresh-and-retry policy with errors.Is.
package api

import (
	"context"

	"github.com/avdeenkov/shopsync/internal/client/models"
)

// RegisterRequest carries the fields of a registration call. Role is part
// of the public contract because sellers and couriers self-register.
type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name,omitempty"`
	Role     models.Role `json:"role"`
}

// Client is the storefront API boundary.
//
// Contract:
//   - Login/Register return a full credential on success, or
//     common.ErrInvalidCredentials (with the server message) on 4xx and
//     common.ErrUnavailable on transport/5xx failures.
//   - Logout is best-effort; callers are expected to ignore its error.
//   - Refresh exchanges a still-presentable bearer token for a fresh
//     credential; 401 maps to common.ErrUnauthorized.
//   - GetCart/PutCart carry the bearer token per call; 401-class responses
//     map to common.ErrUnauthorized, which is the sole trigger for the
//     caller's refresh-and-retry path.
//
// All methods must honor context cancellation/timeouts.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.Credential, error)
	Register(ctx context.Context, req RegisterRequest) (*models.Credential, error)
	Logout(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (*models.Credential, error)
	GetCart(ctx context.Context, token string) (models.Cart, error)
	PutCart(ctx context.Context, token string, cart models.Cart) error
	Close() error
}
