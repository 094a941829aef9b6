package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/pkg/utils"
)

// LocalProvider implements Provider against the users table with bcrypt
// password checks.
type LocalProvider struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewLocalProvider(users repository.UserRepository, log *zap.Logger) *LocalProvider {
	return &LocalProvider{
		users: users,
		log:   log.With(zap.String("provider", "local")),
	}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		p.log.Error("Failed to look up user", zap.Error(err), zap.String("email", email))
		return nil, &NetworkError{Err: err}
	}
	if user == nil {
		p.log.Warn("Sign-in for unknown email", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		p.log.Warn("Wrong password", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		p.log.Warn("Disabled account tried to sign in", zap.String("user_id", user.ID.String()))
		return nil, ErrAccountDisabled
	}

	return &Identity{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}

// SignOut tears down provider-side state. The local provider keeps none: auth
// sessions are minted and revoked by the session resolver.
func (p *LocalProvider) SignOut(ctx context.Context, id uuid.UUID) error {
	return nil
}

// userRoleStore resolves roles from the users table.
type userRoleStore struct {
	users repository.UserRepository
	log   *zap.Logger
}

func NewUserRoleStore(users repository.UserRepository, log *zap.Logger) RoleStore {
	return &userRoleStore{
		users: users,
		log:   log.With(zap.String("store", "role")),
	}
}

func (s *userRoleStore) Role(ctx context.Context, id uuid.UUID) (entity.UserRole, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to fetch role record", zap.Error(err), zap.String("user_id", id.String()))
		return "", &NetworkError{Err: err}
	}
	if user == nil || !entity.ValidRole(string(user.Role)) {
		return "", ErrRoleNotFound
	}
	return user.Role, nil
}
