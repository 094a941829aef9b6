package wire

import (
	"tour-booking/internal/adaptor"
	"tour-booking/internal/data/repository"
	"tour-booking/pkg/middleware"
	"tour-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/user/profile", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo, log))

		r.Get("/", userHandler.GetProfile)
		r.Patch("/", userHandler.UpdateProfile)
	})
}
