package adaptor

import (
	"tour-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Package *PackageHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Session, log),
		User:    NewUserHandler(service.User, log),
		Package: NewPackageHandler(service.Package, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}
