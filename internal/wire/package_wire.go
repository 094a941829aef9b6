package wire

import (
	"tour-booking/internal/adaptor"
	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/pkg/middleware"
	"tour-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePackage(
	r chi.Router,
	packageHandler *adaptor.PackageHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// Browsing the catalog needs no account
	r.Get("/api/packages", packageHandler.List)
	r.Get("/api/packages/{id}", packageHandler.GetByID)

	// ==================== VENDOR ROUTES ====================
	r.Route("/api/vendor/packages", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo, log))
		r.Use(middleware.RequireRoles(log, entity.RoleVendor, entity.RoleAdmin))

		r.Get("/", packageHandler.ListMine)
		r.Post("/", packageHandler.Create)
		r.Put("/{id}", packageHandler.Update)
		r.Delete("/{id}", packageHandler.Delete)
	})
}
