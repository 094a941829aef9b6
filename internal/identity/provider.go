package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tour-booking/internal/data/entity"
)

var (
	// ErrInvalidCredentials covers unknown accounts and wrong passwords alike.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")

	// ErrAccountDisabled is returned for deactivated accounts.
	ErrAccountDisabled = errors.New("identity: account is disabled")

	// ErrRoleNotFound is returned when no role record exists for an identity.
	// Callers fall back to entity.RoleUser.
	ErrRoleNotFound = errors.New("identity: role record not found")
)

// NetworkError wraps provider or store reachability failures so callers can
// distinguish them from credential problems.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("identity: provider unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Identity is what the provider asserts about a signed-in account. The role is
// deliberately absent: roles are authoritative from the role store, never
// self-asserted by the provider.
type Identity struct {
	ID          uuid.UUID
	Email       string
	DisplayName *string
}

// Provider is the identity-provider boundary.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context, id uuid.UUID) error
}

// RoleStore resolves the authoritative role for an identity.
type RoleStore interface {
	Role(ctx context.Context, id uuid.UUID) (entity.UserRole, error)
}

// Principal is the resolved authenticated actor: provider identity plus the
// role record from the data store.
type Principal struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Role        entity.UserRole
}
