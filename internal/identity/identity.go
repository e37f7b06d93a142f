// Package identity verifies bearer tokens against the deployment's identity
// provider. Tokens are never decoded and trusted locally; every claim comes
// back from a verifying collaborator.
package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when the provider rejects the presented token.
var ErrInvalidToken = errors.New("invalid or expired token")

// Role is the flat role claim carried by a session.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// Claims is the verified session identity.
type Claims struct {
	Subject string
	Email   string
	Role    Role
}

// Verifier validates a bearer token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
