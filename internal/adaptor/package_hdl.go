package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PackageHandler struct {
	service usecase.PackageService
	log     *zap.Logger
}

func NewPackageHandler(service usecase.PackageService, log *zap.Logger) *PackageHandler {
	return &PackageHandler{
		service: service,
		log:     log.With(zap.String("handler", "package")),
	}
}

// List handles GET /api/packages (public)
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	packages, err := h.service.List(r.Context(), query.Get("destination"), page)
	if err != nil {
		h.handleServiceError(w, err, "list packages")
		return
	}

	utils.ResponseSuccess(w, "success", packages)
}

// GetByID handles GET /api/packages/{id} (public)
func (h *PackageHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid package ID", nil)
		return
	}

	pkg, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get package")
		return
	}

	utils.ResponseSuccess(w, "success", pkg)
}

// ListMine handles GET /api/vendor/packages (vendor)
func (h *PackageHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	page := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	packages, err := h.service.ListByVendor(r.Context(), vendorID, page)
	if err != nil {
		h.handleServiceError(w, err, "list vendor packages")
		return
	}

	utils.ResponseSuccess(w, "success", packages)
}

// Create handles POST /api/vendor/packages (vendor)
func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreatePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	pkg, err := h.service.Create(r.Context(), vendorID, &req)
	if err != nil {
		h.handleServiceError(w, err, "create package")
		return
	}

	utils.ResponseCreated(w, "success", pkg)
}

// Update handles PUT /api/vendor/packages/{id} (vendor, admin)
func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid package ID", nil)
		return
	}

	var req request.UpdatePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	pkg, err := h.service.Update(r.Context(), actorID, actorRole, id, &req)
	if err != nil {
		h.handleServiceError(w, err, "update package")
		return
	}

	utils.ResponseSuccess(w, "success", pkg)
}

// Delete handles DELETE /api/vendor/packages/{id} (vendor, admin)
func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid package ID", nil)
		return
	}

	if err := h.service.Delete(r.Context(), actorID, actorRole, id); err != nil {
		h.handleServiceError(w, err, "delete package")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

func (h *PackageHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrPackageNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrNotOwner):
		h.log.Warn(operation+" failed - not owner", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidPrice),
		strings.Contains(err.Error(), "validation failed"):
		h.log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), err)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// actorFromContext pulls the authenticated user ID and role set by the
// session middleware.
func actorFromContext(r *http.Request) (uuid.UUID, entity.UserRole, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, "", false
	}
	role, ok := utils.GetRoleFromContext(r.Context())
	if !ok {
		return uuid.Nil, "", false
	}
	return userID, entity.UserRole(role), true
}
