package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/identity"
	"tour-booking/pkg/utils"
)

// fakeProvider scripts SignIn results per test.
type fakeProvider struct {
	identity *identity.Identity
	err      error

	mu       sync.Mutex
	signOuts int
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (*identity.Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.identity, nil
}

func (p *fakeProvider) SignOut(ctx context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOuts++
	return nil
}

func (p *fakeProvider) signOutCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signOuts
}

// fakeRoleStore returns scripted roles and can block to simulate a slow
// data store.
type fakeRoleStore struct {
	mu    sync.Mutex
	role  entity.UserRole
	err   error
	block chan struct{}
}

func (s *fakeRoleStore) Role(ctx context.Context, id uuid.UUID) (entity.UserRole, error) {
	s.mu.Lock()
	block := s.block
	role, err := s.role, s.err
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	return role, err
}

func (s *fakeRoleStore) set(role entity.UserRole, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role, s.err = role, err
}

// fakeSessionRepo keeps sessions in a map keyed by token.
type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]*entity.Session
	createErr error
	revokeErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Token.String()] = session
	return nil
}

func (r *fakeSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[token], nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, token string) error {
	if r.revokeErr != nil {
		return r.revokeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *fakeSessionRepo) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (r *fakeSessionRepo) CleanExpiredSessions(ctx context.Context) error {
	return nil
}

// fakeUserRepo keeps users in memory.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func testConfig() *utils.Config {
	return &utils.Config{
		Session: utils.SessionConfig{ExpiryHours: 24},
		Booking: utils.BookingConfig{DraftTTLMinutes: 30, SubmitTimeoutSeconds: 30},
	}
}

func newTestResolver(provider identity.Provider, roles identity.RoleStore) (SessionService, *fakeSessionRepo) {
	sessions := newFakeSessionRepo()
	repo := &repository.Repository{
		User:    newFakeUserRepo(),
		Session: sessions,
	}
	return NewSessionResolver(provider, roles, repo, testConfig(), zap.NewNop()), sessions
}

func testIdentity() *identity.Identity {
	name := "Test Traveler"
	return &identity.Identity{
		ID:          uuid.New(),
		Email:       "traveler@example.com",
		DisplayName: &name,
	}
}

func TestLoginResolvesRoleFromStore(t *testing.T) {
	ident := testIdentity()
	provider := &fakeProvider{identity: ident}
	roles := &fakeRoleStore{role: entity.RoleVendor}
	resolver, sessions := newTestResolver(provider, roles)

	resp, err := resolver.Login(context.Background(), &request.LoginRequest{
		Email:    "traveler@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleVendor, resp.Role)
	assert.NotEmpty(t, resp.Token)

	current := resolver.Current()
	require.NotNil(t, current)
	assert.Equal(t, ident.ID, current.ID)
	assert.Equal(t, entity.RoleVendor, current.Role)

	// A session row was minted for the token.
	session, err := sessions.FindValidSession(context.Background(), resp.Token)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, ident.ID, session.UserID)
}

func TestLoginErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		signIn  error
		wantErr error
	}{
		{"wrong password", identity.ErrInvalidCredentials, identity.ErrInvalidCredentials},
		{"disabled account", identity.ErrAccountDisabled, identity.ErrAccountDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{err: tt.signIn}
			resolver, _ := newTestResolver(provider, &fakeRoleStore{role: entity.RoleUser})

			_, err := resolver.Login(context.Background(), &request.LoginRequest{
				Email:    "traveler@example.com",
				Password: "password123",
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resolver.Current())
		})
	}
}

func TestLoginNetworkErrorIsDistinguishable(t *testing.T) {
	provider := &fakeProvider{err: &identity.NetworkError{Err: errors.New("connection refused")}}
	resolver, _ := newTestResolver(provider, &fakeRoleStore{role: entity.RoleUser})

	_, err := resolver.Login(context.Background(), &request.LoginRequest{
		Email:    "traveler@example.com",
		Password: "password123",
	})

	var netErr *identity.NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.NotErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestLoginDefaultsRoleWhenStoreFails(t *testing.T) {
	tests := []struct {
		name    string
		roleErr error
	}{
		{"no role record", identity.ErrRoleNotFound},
		{"role store unreachable", &identity.NetworkError{Err: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident := testIdentity()
			provider := &fakeProvider{identity: ident}
			roles := &fakeRoleStore{err: tt.roleErr}
			resolver, _ := newTestResolver(provider, roles)

			resp, err := resolver.Login(context.Background(), &request.LoginRequest{
				Email:    "traveler@example.com",
				Password: "password123",
			})
			require.NoError(t, err, "a role miss must not block the sign-in")
			assert.Equal(t, entity.RoleUser, resp.Role)

			current := resolver.Current()
			require.NotNil(t, current)
			assert.Equal(t, ident.ID, current.ID)
			assert.Equal(t, entity.RoleUser, current.Role)
			assert.Zero(t, provider.signOutCount())
		})
	}
}

func TestLogoutIsLocalFirst(t *testing.T) {
	provider := &fakeProvider{identity: testIdentity()}
	resolver, sessions := newTestResolver(provider, &fakeRoleStore{role: entity.RoleUser})

	resp, err := resolver.Login(context.Background(), &request.LoginRequest{
		Email:    "traveler@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, resolver.Current())

	// Remote revoke fails, the user is still logged out locally.
	sessions.revokeErr = errors.New("connection refused")
	err = resolver.Logout(context.Background(), resp.Token)
	assert.NoError(t, err)
	assert.Nil(t, resolver.Current())
}

func TestOnIdentityChangeRefreshesRole(t *testing.T) {
	ident := testIdentity()
	provider := &fakeProvider{identity: ident}
	roles := &fakeRoleStore{role: entity.RoleUser}
	resolver, _ := newTestResolver(provider, roles)

	resolver.OnIdentityChange(context.Background(), ident)

	require.Eventually(t, func() bool {
		current := resolver.Current()
		return current != nil && current.Role == entity.RoleUser
	}, time.Second, 5*time.Millisecond)

	// The store now says admin; a new change event picks it up.
	roles.set(entity.RoleAdmin, nil)
	resolver.OnIdentityChange(context.Background(), ident)

	require.Eventually(t, func() bool {
		current := resolver.Current()
		return current != nil && current.Role == entity.RoleAdmin
	}, time.Second, 5*time.Millisecond)
}

// An identity change whose role lookup finds no record must still install
// the principal, with the least-privileged role.
func TestOnIdentityChangeDefaultsRoleOnStoreMiss(t *testing.T) {
	ident := testIdentity()
	provider := &fakeProvider{identity: ident}
	roles := &fakeRoleStore{err: identity.ErrRoleNotFound}
	resolver, _ := newTestResolver(provider, roles)

	resolver.OnIdentityChange(context.Background(), ident)

	require.Eventually(t, func() bool {
		current := resolver.Current()
		return current != nil && current.Role == entity.RoleUser
	}, time.Second, 5*time.Millisecond)
}

func TestOnIdentityChangeNilSignsOut(t *testing.T) {
	ident := testIdentity()
	provider := &fakeProvider{identity: ident}
	resolver, _ := newTestResolver(provider, &fakeRoleStore{role: entity.RoleUser})

	resolver.OnIdentityChange(context.Background(), ident)
	require.Eventually(t, func() bool {
		return resolver.Current() != nil
	}, time.Second, 5*time.Millisecond)

	resolver.OnIdentityChange(context.Background(), nil)
	assert.Nil(t, resolver.Current())
}

// A slow role fetch for an older identity change must never overwrite the
// state of a newer one.
func TestStaleRoleFetchIsDiscarded(t *testing.T) {
	ident := testIdentity()
	provider := &fakeProvider{identity: ident}

	block := make(chan struct{})
	roles := &fakeRoleStore{role: entity.RoleAdmin, block: block}
	resolver, _ := newTestResolver(provider, roles)

	// First change: the role fetch hangs on the blocked store.
	resolver.OnIdentityChange(context.Background(), ident)

	// Second change: sign-out wins the race.
	resolver.OnIdentityChange(context.Background(), nil)
	assert.Nil(t, resolver.Current())

	// The stale fetch completes now. Its result must be dropped.
	close(block)
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, resolver.Current(), "stale fetch must not resurrect the principal")
}

func TestRegisterCreatesUserAccount(t *testing.T) {
	provider := &fakeProvider{}
	resolver, _ := newTestResolver(provider, &fakeRoleStore{role: entity.RoleUser})

	name := "New Traveler"
	resp, err := resolver.Register(context.Background(), &request.RegisterRequest{
		Email:       "new@example.com",
		Password:    "password123",
		DisplayName: &name,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleUser, resp.Role)
	assert.NotEmpty(t, resp.Token, "register logs the user in")

	// Same email again is a conflict.
	_, err = resolver.Register(context.Background(), &request.RegisterRequest{
		Email:    "new@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}
