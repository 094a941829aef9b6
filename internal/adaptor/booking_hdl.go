package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tour-booking/internal/dto/request"
	"tour-booking/internal/flow"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// StartFlow handles POST /api/booking/flow (protected)
func (h *BookingHandler) StartFlow(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.StartFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	flowResp, err := h.service.StartFlow(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "start booking flow")
		return
	}

	utils.ResponseCreated(w, "success", flowResp)
}

// GetFlow handles GET /api/booking/flow/{id} (protected)
func (h *BookingHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	userID, flowID, ok := h.flowParams(w, r)
	if !ok {
		return
	}

	flowResp, err := h.service.GetFlow(r.Context(), userID, flowID)
	if err != nil {
		h.handleServiceError(w, err, "get booking flow")
		return
	}

	utils.ResponseSuccess(w, "success", flowResp)
}

// UpdateFlow handles PATCH /api/booking/flow/{id} (protected)
func (h *BookingHandler) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	userID, flowID, ok := h.flowParams(w, r)
	if !ok {
		return
	}

	var req request.UpdateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	flowResp, err := h.service.UpdateFlow(r.Context(), userID, flowID, &req)
	if err != nil {
		h.handleServiceError(w, err, "update booking flow")
		return
	}

	utils.ResponseSuccess(w, "success", flowResp)
}

// NextStep handles POST /api/booking/flow/{id}/next (protected)
func (h *BookingHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	userID, flowID, ok := h.flowParams(w, r)
	if !ok {
		return
	}

	flowResp, err := h.service.Next(r.Context(), userID, flowID)
	if err != nil {
		h.handleServiceError(w, err, "advance booking flow")
		return
	}

	utils.ResponseSuccess(w, "success", flowResp)
}

// BackStep handles POST /api/booking/flow/{id}/back (protected)
func (h *BookingHandler) BackStep(w http.ResponseWriter, r *http.Request) {
	userID, flowID, ok := h.flowParams(w, r)
	if !ok {
		return
	}

	flowResp, err := h.service.Back(r.Context(), userID, flowID)
	if err != nil {
		h.handleServiceError(w, err, "step back booking flow")
		return
	}

	utils.ResponseSuccess(w, "success", flowResp)
}

// Submit handles POST /api/booking/flow/{id}/submit (protected)
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, flowID, ok := h.flowParams(w, r)
	if !ok {
		return
	}

	flowResp, err := h.service.Submit(r.Context(), userID, flowID)
	if err != nil {
		h.handleServiceError(w, err, "submit booking")
		return
	}

	utils.ResponseCreated(w, "Booking confirmed", flowResp)
}

// GetBooking handles GET /api/bookings/{id} (protected)
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	booking, err := h.service.GetBooking(r.Context(), actorID, actorRole, bookingID)
	if err != nil {
		h.handleServiceError(w, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GetUserBookings handles GET /api/user/bookings (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.service.ListUserBookings(r.Context(), userID, pageFromQuery(r))
	if err != nil {
		h.handleServiceError(w, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetVendorBookings handles GET /api/vendor/bookings (vendor)
func (h *BookingHandler) GetVendorBookings(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.service.ListVendorBookings(r.Context(), vendorID, pageFromQuery(r))
	if err != nil {
		h.handleServiceError(w, err, "get vendor bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetAllBookings handles GET /api/admin/bookings (admin)
func (h *BookingHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListAllBookings(r.Context(), pageFromQuery(r))
	if err != nil {
		h.handleServiceError(w, err, "get all bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// UpdateStatus handles PUT /api/admin/bookings/{id}/status (admin)
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	var req request.UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), bookingID, &req)
	if err != nil {
		h.handleServiceError(w, err, "update booking status")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// UpdatePaymentStatus handles PUT /api/admin/bookings/{id}/payment (admin)
func (h *BookingHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	var req request.UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.UpdatePaymentStatus(r.Context(), bookingID, &req)
	if err != nil {
		h.handleServiceError(w, err, "update payment status")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// handleServiceError maps flow and booking errors. Step violations and
// field validation failures are 400s tied to the submitted data, a
// concurrent submit is a 409, a failed write to the booking store is
// a 502.
func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	var verr *flow.ValidationError
	var perr *flow.BookingPersistenceError

	switch {
	case errors.Is(err, usecase.ErrFlowNotFound),
		errors.Is(err, usecase.ErrBookingNotFound),
		errors.Is(err, usecase.ErrPackageNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrNotOwner):
		h.log.Warn(operation+" failed - not owner", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, flow.ErrSubmitInFlight):
		h.log.Warn(operation+" rejected - submit in flight", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrPackageUnavailable),
		errors.Is(err, flow.ErrNotInReview),
		errors.Is(err, flow.ErrAtFirstStep),
		errors.Is(err, flow.ErrConfirmed):
		h.log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.As(err, &verr):
		h.log.Warn(operation+" validation failed",
			zap.String("field", verr.Field),
			zap.String("reason", verr.Reason))
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{verr.Field: verr.Reason})

	case errors.Is(err, flow.ErrAuthenticationRequired):
		utils.ResponseUnauthorized(w, "Authentication required")

	case errors.As(err, &perr):
		h.log.Error(operation+" failed - persistence", zap.Error(err))
		utils.ResponseBadGateway(w, "Booking could not be saved")

	case strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "invalid package ID"):
		h.log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), err)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func (h *BookingHandler) flowParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	flowID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid flow ID", nil)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, flowID, true
}

func pageFromQuery(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
