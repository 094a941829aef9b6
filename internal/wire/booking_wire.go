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

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo, log))

		// Booking flow: step-by-step draft editing until submit
		r.Post("/api/booking/flow", bookingHandler.StartFlow)
		r.Route("/api/booking/flow/{id}", func(r chi.Router) {
			r.Get("/", bookingHandler.GetFlow)
			r.Patch("/", bookingHandler.UpdateFlow)
			r.Post("/next", bookingHandler.NextStep)
			r.Post("/back", bookingHandler.BackStep)
			r.Post("/submit", bookingHandler.Submit)
		})

		// GET /api/bookings/{id} - booking details (owner, vendor or admin)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)

		// GET /api/user/bookings - view own booking history
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
	})

	// ==================== VENDOR ROUTES ====================
	r.With(
		middleware.AuthSession(repo, log),
		middleware.RequireRoles(log, entity.RoleVendor, entity.RoleAdmin),
	).Get("/api/vendor/bookings", bookingHandler.GetVendorBookings)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo, log))
		r.Use(middleware.RequireRoles(log, entity.RoleAdmin))

		r.Get("/", bookingHandler.GetAllBookings)
		r.Get("/{id}", bookingHandler.GetBooking)
		r.Put("/{id}/status", bookingHandler.UpdateStatus)
		r.Put("/{id}/payment", bookingHandler.UpdatePaymentStatus)
	})
}
