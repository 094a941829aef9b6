package usecase

import (
	"tour-booking/internal/data/draft"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/identity"
	"tour-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Session SessionService
	User    UserService
	Package PackageService
	Booking BookingService
}

func NewService(
	repo *repository.Repository,
	drafts *draft.Store,
	provider identity.Provider,
	roles identity.RoleStore,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Session: NewSessionResolver(provider, roles, repo, config, log),
		User:    NewUserService(repo.User, log),
		Package: NewPackageService(repo, log),
		Booking: NewBookingService(repo, drafts, config, log),
	}
}
