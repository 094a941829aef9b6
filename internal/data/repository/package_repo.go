package repository

import (
	"context"
	"fmt"

	"tour-booking/internal/data/entity"
	"tour-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PackageRepository interface {
	Create(ctx context.Context, pkg *entity.TourPackage) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TourPackage, error)
	FindAll(ctx context.Context, destination string, limit, offset int) ([]*entity.TourPackage, error)
	CountAll(ctx context.Context, destination string) (int64, error)
	FindByVendorID(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*entity.TourPackage, error)
	Update(ctx context.Context, pkg *entity.TourPackage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type packageRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPackageRepository(db database.PgxIface, log *zap.Logger) PackageRepository {
	return &packageRepository{
		db:  db,
		log: log.With(zap.String("repository", "package")),
	}
}

const packageColumns = `id, title, description, destination, image_url, price,
	       duration_days, vendor_id, available, created_at, updated_at, deleted_at`

func scanPackage(row pgx.Row) (*entity.TourPackage, error) {
	var pkg entity.TourPackage
	err := row.Scan(
		&pkg.ID,
		&pkg.Title,
		&pkg.Description,
		&pkg.Destination,
		&pkg.ImageURL,
		&pkg.Price,
		&pkg.DurationDays,
		&pkg.VendorID,
		&pkg.Available,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
		&pkg.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) Create(ctx context.Context, pkg *entity.TourPackage) error {
	query := `
		INSERT INTO tour_packages (id, title, description, destination, image_url, price,
		                          duration_days, vendor_id, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		pkg.ID,
		pkg.Title,
		pkg.Description,
		pkg.Destination,
		pkg.ImageURL,
		pkg.Price,
		pkg.DurationDays,
		pkg.VendorID,
		pkg.Available,
		pkg.CreatedAt,
		pkg.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create package",
			zap.Error(err),
			zap.String("title", pkg.Title),
			zap.String("vendor_id", pkg.VendorID.String()),
		)
		return fmt.Errorf("create package %s: %w", pkg.Title, err)
	}

	return nil
}

func (r *packageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TourPackage, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM tour_packages
		WHERE id = $1 AND deleted_at IS NULL
	`

	pkg, err := scanPackage(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find package by ID",
			zap.Error(err),
			zap.String("package_id", id.String()),
		)
		return nil, fmt.Errorf("find package by ID %s: %w", id.String(), err)
	}

	return pkg, nil
}

func (r *packageRepository) FindAll(ctx context.Context, destination string, limit, offset int) ([]*entity.TourPackage, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM tour_packages
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR destination ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, destination, limit, offset)
	if err != nil {
		r.log.Error("Failed to find packages",
			zap.Error(err),
			zap.String("destination", destination),
		)
		return nil, fmt.Errorf("find packages: %w", err)
	}
	defer rows.Close()

	var packages []*entity.TourPackage
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			r.log.Error("Failed to scan package row", zap.Error(err))
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		packages = append(packages, pkg)
	}

	return packages, nil
}

func (r *packageRepository) CountAll(ctx context.Context, destination string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM tour_packages
		WHERE deleted_at IS NULL
		  AND ($1 = '' OR destination ILIKE '%' || $1 || '%')
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, destination).Scan(&count); err != nil {
		r.log.Error("Failed to count packages", zap.Error(err))
		return 0, fmt.Errorf("count packages: %w", err)
	}

	return count, nil
}

func (r *packageRepository) FindByVendorID(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*entity.TourPackage, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM tour_packages
		WHERE vendor_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, vendorID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find packages by vendor",
			zap.Error(err),
			zap.String("vendor_id", vendorID.String()),
		)
		return nil, fmt.Errorf("find packages by vendor %s: %w", vendorID.String(), err)
	}
	defer rows.Close()

	var packages []*entity.TourPackage
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			r.log.Error("Failed to scan package row", zap.Error(err))
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		packages = append(packages, pkg)
	}

	return packages, nil
}

func (r *packageRepository) Update(ctx context.Context, pkg *entity.TourPackage) error {
	query := `
		UPDATE tour_packages
		SET title = $2, description = $3, destination = $4, image_url = $5,
		    price = $6, duration_days = $7, available = $8, updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		pkg.ID,
		pkg.Title,
		pkg.Description,
		pkg.Destination,
		pkg.ImageURL,
		pkg.Price,
		pkg.DurationDays,
		pkg.Available,
		pkg.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update package",
			zap.Error(err),
			zap.String("package_id", pkg.ID.String()),
		)
		return fmt.Errorf("update package %s: %w", pkg.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("package %s not found", pkg.ID.String())
	}

	return nil
}

func (r *packageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tour_packages SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete package",
			zap.Error(err),
			zap.String("package_id", id.String()),
		)
		return fmt.Errorf("delete package %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("package %s not found", id.String())
	}

	r.log.Info("Package deleted", zap.String("package_id", id.String()))
	return nil
}
