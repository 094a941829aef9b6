package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tour-booking/internal/data/entity"
	"tour-booking/pkg/utils"
)

// memUserRepo is an in-memory UserRepository for provider tests.
type memUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*entity.User
	findErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func seedUser(t *testing.T, repo *memUserRepo, password string, active bool) *entity.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := &entity.User{
		Base:         entity.Base{ID: uuid.New()},
		Email:        "traveler@example.com",
		PasswordHash: hash,
		Role:         entity.RoleUser,
		IsActive:     active,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestLocalProviderSignIn(t *testing.T) {
	repo := newMemUserRepo()
	user := seedUser(t, repo, "password123", true)
	provider := NewLocalProvider(repo, zap.NewNop())

	ident, err := provider.SignIn(context.Background(), "traveler@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, ident.ID)
	assert.Equal(t, user.Email, ident.Email)
}

func TestLocalProviderSignInFailures(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		provider := NewLocalProvider(newMemUserRepo(), zap.NewNop())
		_, err := provider.SignIn(context.Background(), "ghost@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := newMemUserRepo()
		seedUser(t, repo, "password123", true)
		provider := NewLocalProvider(repo, zap.NewNop())
		_, err := provider.SignIn(context.Background(), "traveler@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		repo := newMemUserRepo()
		seedUser(t, repo, "password123", false)
		provider := NewLocalProvider(repo, zap.NewNop())
		_, err := provider.SignIn(context.Background(), "traveler@example.com", "password123")
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})

	t.Run("store unreachable", func(t *testing.T) {
		repo := newMemUserRepo()
		repo.findErr = errors.New("connection refused")
		provider := NewLocalProvider(repo, zap.NewNop())
		_, err := provider.SignIn(context.Background(), "traveler@example.com", "password123")
		var netErr *NetworkError
		assert.ErrorAs(t, err, &netErr)
	})
}

func TestUserRoleStore(t *testing.T) {
	repo := newMemUserRepo()
	user := seedUser(t, repo, "password123", true)
	store := NewUserRoleStore(repo, zap.NewNop())

	role, err := store.Role(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, role)

	t.Run("missing user", func(t *testing.T) {
		_, err := store.Role(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("corrupt role value", func(t *testing.T) {
		user.Role = "superuser"
		require.NoError(t, repo.Update(context.Background(), user))
		_, err := store.Role(context.Background(), user.ID)
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})
}
