package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tour-booking/internal/data/draft"
	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/dto/response"
	"tour-booking/internal/flow"
	"tour-booking/internal/identity"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	StartFlow(ctx context.Context, userID uuid.UUID, req *request.StartFlowRequest) (*response.FlowResponse, error)
	GetFlow(ctx context.Context, userID, flowID uuid.UUID) (*response.FlowResponse, error)
	UpdateFlow(ctx context.Context, userID, flowID uuid.UUID, req *request.UpdateDraftRequest) (*response.FlowResponse, error)
	Next(ctx context.Context, userID, flowID uuid.UUID) (*response.FlowResponse, error)
	Back(ctx context.Context, userID, flowID uuid.UUID) (*response.FlowResponse, error)
	Submit(ctx context.Context, userID, flowID uuid.UUID) (*response.FlowResponse, error)

	GetBooking(ctx context.Context, userID uuid.UUID, role entity.UserRole, bookingID uuid.UUID) (*response.BookingResponse, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	ListVendorBookings(ctx context.Context, vendorID uuid.UUID, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	ListAllBookings(ctx context.Context, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, req *request.UpdatePaymentStatusRequest) (*response.BookingResponse, error)
}

type bookingService struct {
	repo   *repository.Repository
	drafts *draft.Store
	config *utils.Config
	log    *zap.Logger
}

func NewBookingService(repo *repository.Repository, drafts *draft.Store, config *utils.Config, log *zap.Logger) BookingService {
	return &bookingService{
		repo:   repo,
		drafts: drafts,
		config: config,
		log:    log,
	}
}

// ==================== FLOW ====================

func (s *bookingService) StartFlow(ctx context.Context, userID uuid.UUID, req *request.StartFlowRequest) (*response.FlowResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Start flow validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("invalid package ID")
	}

	// 2. Package must exist and be bookable
	pkg, err := s.repo.Package.FindByID(ctx, packageID)
	if err != nil {
		s.log.Error("Failed to find package", zap.Error(err), zap.String("package_id", req.PackageID))
		return nil, fmt.Errorf("failed to get package")
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if !pkg.Available {
		return nil, ErrPackageUnavailable
	}

	// 3. Pre-fill contact fields from the account
	principal, err := s.principalFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 4. Start and persist the flow
	f := flow.New(*pkg, principal)
	if err := s.drafts.Save(ctx, f.Snapshot()); err != nil {
		s.log.Error("Failed to save flow", zap.Error(err), zap.String("flow_id", f.ID().String()))
		return nil, fmt.Errorf("failed to start booking")
	}

	s.log.Info("Booking flow started",
		zap.String("flow_id", f.ID().String()),
		zap.String("user_id", userID.String()),
		zap.String("package_id", packageID.String()))

	resp := response.FlowToResponse(f)
	return &resp, nil
}

func (s *bookingService) GetFlow(ctx context.Context, userID, flowID uuid.UUID) (*response.FlowResponse, error) {
	f, err := s.loadFlow(ctx, userID, flowID)
	if err != nil {
		return nil, err
	}
	resp := response.FlowToResponse(f)
	return &resp, nil
}

func (s *bookingService) UpdateFlow(ctx context.Context, userID, flowID uuid.UUID, req *request.UpdateDraftRequest) (*response.FlowResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update flow validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	f, err := s.loadFlow(ctx, userID, flowID)
	if err != nil {
		return nil, err
	}

	if err := applyDraftUpdate(f, req); err != nil {
		return nil, err
	}

	if err := s.drafts.Save(ctx, f.Snapshot()); err != nil {
		s.log.Error("Failed to save flow", zap.Error(err), zap.String("flow_id", flowID.String()))
		return nil, fmt.Errorf("failed to save booking draft")
	}

	resp := response.FlowToResponse(f)
	return &resp, nil
}

func (s *bookingService) Next(ctx context.Context, userID, flowID uuid.UUID) (*response.FlowResponse, error) {
	return s.step(ctx, userID, flowID, (*flow.Flow).Next)
}

func (s *bookingService) Back(ctx context.Context, userID, flowID uuid.UUID) (*response.FlowResponse, error) {
	return s.step(ctx, userID, flowID, (*flow.Flow).Back)
}

func (s *bookingService) step(ctx context.Context, userID, flowID uuid.UUID, move func(*flow.Flow) error) (*response.FlowResponse, error) {
	f, err := s.loadFlow(ctx, userID, flowID)
	if err != nil {
		return nil, err
	}

	if err := move(f); err != nil {
		return nil, err
	}

	if err := s.drafts.Save(ctx, f.Snapshot()); err != nil {
		s.log.Error("Failed to save flow", zap.Error(err), zap.String("flow_id", flowID.String()))
		return nil, fmt.Errorf("failed to save booking draft")
	}

	resp := response.FlowToResponse(f)
	return &resp, nil
}

// Submit finalizes the flow into a booking record. Submitting an already
// confirmed flow returns the existing confirmation unchanged; a concurrent
// submit of the same flow from another request is rejected by a Redis
// marker so only one booking is ever created.
func (s *bookingService) Submit(ctx context.Context, userID, flowID uuid.UUID) (*response.FlowResponse, error) {
	f, err := s.loadFlow(ctx, userID, flowID)
	if err != nil {
		return nil, err
	}

	if _, done := f.BookingID(); done {
		resp := response.FlowToResponse(f)
		return &resp, nil
	}

	submitTTL := time.Duration(s.config.Booking.SubmitTimeoutSeconds) * time.Second
	ok, err := s.drafts.TryMarkSubmitting(ctx, flowID, submitTTL)
	if err != nil {
		s.log.Error("Failed to mark submit", zap.Error(err), zap.String("flow_id", flowID.String()))
		return nil, fmt.Errorf("failed to submit booking")
	}
	if !ok {
		return nil, flow.ErrSubmitInFlight
	}
	defer func() {
		if err := s.drafts.ClearSubmitting(context.WithoutCancel(ctx), flowID); err != nil {
			s.log.Warn("Failed to clear submit marker", zap.Error(err), zap.String("flow_id", flowID.String()))
		}
	}()

	principal, err := s.principalFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	creator := &bookingCreator{repo: s.repo.Booking, timeout: submitTTL}
	booking, err := f.Submit(ctx, principal, creator)
	if err != nil {
		var perr *flow.BookingPersistenceError
		if errors.As(err, &perr) {
			s.log.Error("Booking persistence failed",
				zap.Error(perr.Err),
				zap.String("flow_id", flowID.String()))
		}
		return nil, err
	}

	if err := s.drafts.Save(ctx, f.Snapshot()); err != nil {
		// Booking is already persisted, only the cached flow state is stale.
		s.log.Warn("Failed to save confirmed flow", zap.Error(err), zap.String("flow_id", flowID.String()))
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.String("user_id", userID.String()),
		zap.String("total_price", booking.TotalPrice.StringFixed(2)))

	resp := response.FlowToResponse(f)
	return &resp, nil
}

// ==================== BOOKINGS ====================

func (s *bookingService) GetBooking(ctx context.Context, userID uuid.UUID, role entity.UserRole, bookingID uuid.UUID) (*response.BookingResponse, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Owners, the package vendor and admins may see a booking.
	if role != entity.RoleAdmin && booking.UserID != userID && booking.VendorID != userID {
		return nil, ErrNotOwner
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ListUserBookings(ctx context.Context, userID uuid.UUID, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list user bookings", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list bookings")
	}
	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, fmt.Errorf("failed to count bookings")
	}
	return paginatedBookings(bookings, page, total), nil
}

func (s *bookingService) ListVendorBookings(ctx context.Context, vendorID uuid.UUID, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByVendorID(ctx, vendorID, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list vendor bookings", zap.Error(err), zap.String("vendor_id", vendorID.String()))
		return nil, fmt.Errorf("failed to list bookings")
	}
	total, err := s.repo.Booking.CountByVendorID(ctx, vendorID)
	if err != nil {
		s.log.Error("Failed to count vendor bookings", zap.Error(err))
		return nil, fmt.Errorf("failed to count bookings")
	}
	return paginatedBookings(bookings, page, total), nil
}

func (s *bookingService) ListAllBookings(ctx context.Context, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindAll(ctx, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("failed to list bookings")
	}
	total, err := s.repo.Booking.CountAll(ctx)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err))
		return nil, fmt.Errorf("failed to count bookings")
	}
	return paginatedBookings(bookings, page, total), nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, bookingID uuid.UUID, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	next := entity.BookingStatus(req.Status)
	if !booking.CanTransitionStatus(next) {
		s.log.Warn("Booking status transition rejected",
			zap.String("booking_id", bookingID.String()),
			zap.String("from", string(booking.Status)),
			zap.String("to", req.Status))
		return nil, ErrInvalidTransition
	}

	if err := s.repo.Booking.UpdateStatus(ctx, bookingID, next); err != nil {
		s.log.Error("Failed to update booking status", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("failed to update booking")
	}
	booking.Status = next

	s.log.Info("Booking status updated",
		zap.String("booking_id", bookingID.String()),
		zap.String("status", req.Status))

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, req *request.UpdatePaymentStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	next := entity.PaymentStatus(req.Status)
	if !booking.CanTransitionPayment(next) {
		s.log.Warn("Payment status transition rejected",
			zap.String("booking_id", bookingID.String()),
			zap.String("from", string(booking.PaymentStatus)),
			zap.String("to", req.Status))
		return nil, ErrInvalidTransition
	}

	if err := s.repo.Booking.UpdatePaymentStatus(ctx, bookingID, next); err != nil {
		s.log.Error("Failed to update payment status", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("failed to update booking")
	}
	booking.PaymentStatus = next

	s.log.Info("Payment status updated",
		zap.String("booking_id", bookingID.String()),
		zap.String("payment_status", req.Status))

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

// bookingCreator adapts the booking repository to the flow's store boundary
// with a hard timeout on the insert.
type bookingCreator struct {
	repo    repository.BookingRepository
	timeout time.Duration
}

func (c *bookingCreator) CreateBooking(ctx context.Context, booking *entity.Booking) (uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.repo.Create(ctx, booking); err != nil {
		return uuid.Nil, err
	}
	return booking.ID, nil
}

// loadFlow restores a cached flow and enforces ownership. A flow belonging
// to another user is reported as not found.
func (s *bookingService) loadFlow(ctx context.Context, userID, flowID uuid.UUID) (*flow.Flow, error) {
	snap, err := s.drafts.Get(ctx, flowID)
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) {
			return nil, ErrFlowNotFound
		}
		s.log.Error("Failed to load flow", zap.Error(err), zap.String("flow_id", flowID.String()))
		return nil, fmt.Errorf("failed to load booking draft")
	}
	if snap.UserID != userID {
		s.log.Warn("Flow ownership check failed",
			zap.String("flow_id", flowID.String()),
			zap.String("user_id", userID.String()))
		return nil, ErrFlowNotFound
	}

	pkg, err := s.repo.Package.FindByID(ctx, snap.PackageID)
	if err != nil {
		s.log.Error("Failed to find package for flow", zap.Error(err), zap.String("package_id", snap.PackageID.String()))
		return nil, fmt.Errorf("failed to get package")
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	return flow.Restore(*snap, *pkg), nil
}

func (s *bookingService) principalFor(ctx context.Context, userID uuid.UUID) (*identity.Principal, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to get account")
	}
	if user == nil {
		return nil, fmt.Errorf("account not found")
	}

	p := &identity.Principal{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}
	if user.DisplayName != nil {
		p.DisplayName = *user.DisplayName
	}
	return p, nil
}

func (s *bookingService) findBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("failed to get booking")
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// applyDraftUpdate copies non-nil request fields onto the flow. Traveler
// counts go through the Set* methods so their floors hold.
func applyDraftUpdate(f *flow.Flow, req *request.UpdateDraftRequest) error {
	if err := f.Update(func(d *flow.Draft) {
		if req.FullName != nil {
			d.FullName = *req.FullName
		}
		if req.Email != nil {
			d.Email = *req.Email
		}
		if req.Phone != nil {
			d.Phone = *req.Phone
		}
		if req.TravelDate != nil {
			d.TravelDate = *req.TravelDate
		}
		if req.TimeSlot != nil {
			d.TimeSlot = *req.TimeSlot
		}
		if req.SpecialRequests != nil {
			d.SpecialRequests = *req.SpecialRequests
		}
		if req.MealPreference != nil {
			d.MealPreference = *req.MealPreference
		}
		if req.Transportation != nil {
			d.Transportation = *req.Transportation
		}
		if req.TravelInsurance != nil {
			d.TravelInsurance = *req.TravelInsurance
		}
		if req.Photography != nil {
			d.Photography = *req.Photography
		}
		if req.PrivateGuide != nil {
			d.PrivateGuide = *req.PrivateGuide
		}
	}); err != nil {
		return err
	}

	if req.Adults != nil {
		if err := f.SetAdults(*req.Adults); err != nil {
			return err
		}
	}
	if req.Children != nil {
		if err := f.SetChildren(*req.Children); err != nil {
			return err
		}
	}
	if req.Infants != nil {
		if err := f.SetInfants(*req.Infants); err != nil {
			return err
		}
	}
	return nil
}

func paginatedBookings(bookings []*entity.Booking, page *request.PaginatedRequest, total int64) *response.PaginatedResponse[response.BookingResponse] {
	items := make([]response.BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = response.BookingToResponse(b)
	}
	return response.NewPaginatedResponse(items, page.Page, page.Limit(), total)
}
