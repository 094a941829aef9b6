package usecase

import (
	"context"
	"fmt"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/dto/response"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PackageService interface {
	List(ctx context.Context, destination string, page *request.PaginatedRequest) (*response.PaginatedResponse[response.PackageResponse], error)
	GetByID(ctx context.Context, id uuid.UUID) (*response.PackageResponse, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, page *request.PaginatedRequest) ([]response.PackageResponse, error)
	Create(ctx context.Context, vendorID uuid.UUID, req *request.CreatePackageRequest) (*response.PackageResponse, error)
	Update(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, id uuid.UUID, req *request.UpdatePackageRequest) (*response.PackageResponse, error)
	Delete(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, id uuid.UUID) error
}

type packageService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPackageService(repo *repository.Repository, log *zap.Logger) PackageService {
	return &packageService{
		repo: repo,
		log:  log,
	}
}

func (s *packageService) List(ctx context.Context, destination string, page *request.PaginatedRequest) (*response.PaginatedResponse[response.PackageResponse], error) {
	pkgs, err := s.repo.Package.FindAll(ctx, destination, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list packages", zap.Error(err), zap.String("destination", destination))
		return nil, fmt.Errorf("failed to list packages")
	}

	total, err := s.repo.Package.CountAll(ctx, destination)
	if err != nil {
		s.log.Error("Failed to count packages", zap.Error(err))
		return nil, fmt.Errorf("failed to count packages")
	}

	items := make([]response.PackageResponse, len(pkgs))
	for i, pkg := range pkgs {
		items[i] = response.PackageToResponse(pkg)
	}

	return response.NewPaginatedResponse(items, page.Page, page.Limit(), total), nil
}

func (s *packageService) GetByID(ctx context.Context, id uuid.UUID) (*response.PackageResponse, error) {
	pkg, err := s.repo.Package.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find package", zap.Error(err), zap.String("package_id", id.String()))
		return nil, fmt.Errorf("failed to get package")
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	resp := response.PackageToResponse(pkg)
	return &resp, nil
}

func (s *packageService) ListByVendor(ctx context.Context, vendorID uuid.UUID, page *request.PaginatedRequest) ([]response.PackageResponse, error) {
	pkgs, err := s.repo.Package.FindByVendorID(ctx, vendorID, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list vendor packages", zap.Error(err), zap.String("vendor_id", vendorID.String()))
		return nil, fmt.Errorf("failed to list packages")
	}

	items := make([]response.PackageResponse, len(pkgs))
	for i, pkg := range pkgs {
		items[i] = response.PackageToResponse(pkg)
	}
	return items, nil
}

func (s *packageService) Create(ctx context.Context, vendorID uuid.UUID, req *request.CreatePackageRequest) (*response.PackageResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create package validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	// 2. Build entity
	now := time.Now()
	pkg := &entity.TourPackage{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:        req.Title,
		Description:  req.Description,
		Destination:  req.Destination,
		ImageURL:     req.ImageURL,
		Price:        price,
		DurationDays: req.DurationDays,
		VendorID:     vendorID,
		Available:    req.Available,
	}

	// 3. Save
	if err := s.repo.Package.Create(ctx, pkg); err != nil {
		s.log.Error("Failed to create package", zap.Error(err), zap.String("vendor_id", vendorID.String()))
		return nil, fmt.Errorf("failed to create package")
	}

	s.log.Info("Package created",
		zap.String("package_id", pkg.ID.String()),
		zap.String("vendor_id", vendorID.String()),
		zap.String("title", pkg.Title))

	resp := response.PackageToResponse(pkg)
	return &resp, nil
}

func (s *packageService) Update(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, id uuid.UUID, req *request.UpdatePackageRequest) (*response.PackageResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update package validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Load and check ownership
	pkg, err := s.loadOwned(ctx, actorID, actorRole, id)
	if err != nil {
		return nil, err
	}

	// 3. Apply partial update
	if req.Title != nil {
		pkg.Title = *req.Title
	}
	if req.Description != nil {
		pkg.Description = req.Description
	}
	if req.Destination != nil {
		pkg.Destination = *req.Destination
	}
	if req.ImageURL != nil {
		pkg.ImageURL = req.ImageURL
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		pkg.Price = price
	}
	if req.DurationDays != nil {
		pkg.DurationDays = *req.DurationDays
	}
	if req.Available != nil {
		pkg.Available = *req.Available
	}
	pkg.UpdatedAt = time.Now()

	// 4. Save
	if err := s.repo.Package.Update(ctx, pkg); err != nil {
		s.log.Error("Failed to update package", zap.Error(err), zap.String("package_id", id.String()))
		return nil, fmt.Errorf("failed to update package")
	}

	s.log.Info("Package updated", zap.String("package_id", id.String()))

	resp := response.PackageToResponse(pkg)
	return &resp, nil
}

func (s *packageService) Delete(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, actorID, actorRole, id); err != nil {
		return err
	}

	if err := s.repo.Package.Delete(ctx, id); err != nil {
		s.log.Error("Failed to delete package", zap.Error(err), zap.String("package_id", id.String()))
		return fmt.Errorf("failed to delete package")
	}

	s.log.Info("Package deleted", zap.String("package_id", id.String()))
	return nil
}

// loadOwned fetches a package and enforces that the actor owns it. Admins
// may act on any package.
func (s *packageService) loadOwned(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, id uuid.UUID) (*entity.TourPackage, error) {
	pkg, err := s.repo.Package.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find package", zap.Error(err), zap.String("package_id", id.String()))
		return nil, fmt.Errorf("failed to get package")
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if actorRole != entity.RoleAdmin && pkg.VendorID != actorID {
		s.log.Warn("Package ownership check failed",
			zap.String("package_id", id.String()),
			zap.String("actor_id", actorID.String()))
		return nil, ErrNotOwner
	}
	return pkg, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	return price, nil
}
