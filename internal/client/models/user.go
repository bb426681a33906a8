// Package models defines the client-side domain types: user profiles,
// bearer credentials, and cart lines. JSON tags match the storefront API
// wire format; the same shapes are used for the durable local snapshots.
package models

import "time"

// Role tags a user profile. The set is closed; anything else is rejected.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleCourier  Role = "courier"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleCourier, RoleAdmin:
		return true
	}
	return false
}

// User is the profile snapshot stored alongside the bearer token.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name,omitempty"`
	Role      Role       `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Credential pairs an opaque bearer token with the profile it belongs to.
// A credential is either absent entirely or present with both parts;
// anything partial is treated as corruption and cleared by the store.
type Credential struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
