package response

import (
	"time"

	"tour-booking/internal/data/entity"
)

type PackageResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	Destination  string    `json:"destination"`
	ImageURL     *string   `json:"image_url,omitempty"`
	Price        string    `json:"price"`
	DurationDays int       `json:"duration_days"`
	VendorID     string    `json:"vendor_id"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
}

func PackageToResponse(pkg *entity.TourPackage) PackageResponse {
	return PackageResponse{
		ID:           pkg.ID.String(),
		Title:        pkg.Title,
		Description:  pkg.Description,
		Destination:  pkg.Destination,
		ImageURL:     pkg.ImageURL,
		Price:        pkg.Price.StringFixed(2),
		DurationDays: pkg.DurationDays,
		VendorID:     pkg.VendorID.String(),
		Available:    pkg.Available,
		CreatedAt:    pkg.CreatedAt,
	}
}
