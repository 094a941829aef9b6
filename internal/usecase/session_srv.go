package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/dto/response"
	"tour-booking/internal/identity"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Current() *identity.Principal
	OnIdentityChange(ctx context.Context, ident *identity.Identity)
}

// sessionResolver owns the resolver-local authenticated principal. Sign-in
// resolves identity first and then the role from the data store; a role
// record that is missing or unreachable defaults to the user role rather
// than blocking the sign-in. Role refreshes triggered by identity changes
// are guarded by a generation counter so a slow fetch can never overwrite
// the result of a newer change.
type sessionResolver struct {
	provider identity.Provider
	roles    identity.RoleStore
	repo     *repository.Repository
	config   *utils.Config
	log      *zap.Logger

	mu         sync.Mutex
	current    *identity.Principal
	generation uint64
}

func NewSessionResolver(
	provider identity.Provider,
	roles identity.RoleStore,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) SessionService {
	return &sessionResolver{
		provider: provider,
		roles:    roles,
		repo:     repo,
		config:   config,
		log:      log,
	}
}

func (r *sessionResolver) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		r.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Check email not taken
	existing, err := r.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		r.log.Error("Failed to check email", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("failed to check email")
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	// 3. Hash password
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		r.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to process password")
	}

	// 4. Create user entity
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        req.Email,
		PasswordHash: hashed,
		DisplayName:  req.DisplayName,
		Phone:        req.Phone,
		Role:         entity.RoleUser,
		IsActive:     true,
	}

	// 5. Save user
	if err := r.repo.User.Create(ctx, user); err != nil {
		r.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("failed to create account")
	}

	// 6. Auto login after register
	session, err := r.createSession(ctx, user.ID)
	if err != nil {
		r.log.Warn("Failed to create session after register",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		// Account exists, caller can log in separately
	} else {
		r.setPrincipal(principalOf(user))
	}

	r.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (r *sessionResolver) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		r.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Resolve identity with the provider
	ident, err := r.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		r.log.Warn("Sign-in rejected", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("sign in: %w", err)
	}

	// 3. Resolve role from the data store. A missing record or a failed
	// fetch falls back to the least-privileged role instead of blocking
	// the sign-in.
	role, err := r.roles.Role(ctx, ident.ID)
	if err != nil {
		r.log.Warn("Role resolution failed, defaulting to user",
			zap.Error(err), zap.String("user_id", ident.ID.String()))
		role = entity.RoleUser
	}

	// 4. Mint a session token
	session, err := r.createSession(ctx, ident.ID)
	if err != nil {
		r.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", ident.ID.String()))
		return nil, fmt.Errorf("failed to create session")
	}

	principal := &identity.Principal{
		ID:    ident.ID,
		Email: ident.Email,
		Role:  role,
	}
	if ident.DisplayName != nil {
		principal.DisplayName = *ident.DisplayName
	}
	r.setPrincipal(principal)

	r.log.Info("User logged in",
		zap.String("user_id", ident.ID.String()),
		zap.String("role", string(role)))

	resp := &response.AuthResponse{
		UserID:      ident.ID.String(),
		Token:       session.Token.String(),
		ExpiresAt:   session.ExpiresAt,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		Role:        role,
	}
	return resp, nil
}

// Logout clears the local principal first, then revokes the remote session.
// A revoke failure is logged but does not fail the logout: locally the user
// is already signed out.
func (r *sessionResolver) Logout(ctx context.Context, token string) error {
	r.mu.Lock()
	var userID uuid.UUID
	if r.current != nil {
		userID = r.current.ID
	}
	r.current = nil
	r.generation++
	r.mu.Unlock()

	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		r.log.Warn("Invalid token format on logout", zap.Error(err))
		return fmt.Errorf("invalid token format")
	}

	if userID != uuid.Nil {
		if err := r.provider.SignOut(ctx, userID); err != nil {
			r.log.Warn("Provider sign-out failed", zap.Error(err), zap.String("user_id", userID.String()))
		}
	}

	if err := r.repo.Session.Revoke(ctx, tokenUUID.String()); err != nil {
		r.log.Warn("Failed to revoke session, local logout already done", zap.Error(err))
	}

	r.log.Info("User logged out")
	return nil
}

// Current returns a copy of the resolved principal, or nil when signed out.
func (r *sessionResolver) Current() *identity.Principal {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	p := *r.current
	return &p
}

// OnIdentityChange reacts to the provider reporting a new identity state. A
// nil identity means signed out. For a live identity the role is re-fetched
// in the background; the result is discarded if another change lands first.
func (r *sessionResolver) OnIdentityChange(ctx context.Context, ident *identity.Identity) {
	r.mu.Lock()
	r.generation++
	gen := r.generation

	if ident == nil {
		r.current = nil
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	go r.refreshRole(ctx, gen, ident)
}

func (r *sessionResolver) refreshRole(ctx context.Context, gen uint64, ident *identity.Identity) {
	role, err := r.roles.Role(ctx, ident.ID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.generation != gen {
		r.log.Debug("Discarding stale role fetch",
			zap.Uint64("generation", gen),
			zap.String("user_id", ident.ID.String()))
		return
	}

	if err != nil {
		r.log.Warn("Role refresh failed, defaulting to user",
			zap.Error(err), zap.String("user_id", ident.ID.String()))
		role = entity.RoleUser
	}

	principal := &identity.Principal{
		ID:    ident.ID,
		Email: ident.Email,
		Role:  role,
	}
	if ident.DisplayName != nil {
		principal.DisplayName = *ident.DisplayName
	}
	r.current = principal
}

// ==================== HELPER METHODS ====================

func (r *sessionResolver) setPrincipal(p *identity.Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.current = p
}

func (r *sessionResolver) createSession(ctx context.Context, userID uuid.UUID) (*entity.Session, error) {
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:    userID,
		Token:     uuid.New(),
		ExpiresAt: time.Now().Add(time.Duration(r.config.Session.ExpiryHours) * time.Hour),
	}

	if err := r.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func principalOf(user *entity.User) *identity.Principal {
	p := &identity.Principal{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}
	if user.DisplayName != nil {
		p.DisplayName = *user.DisplayName
	}
	return p
}
