package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TourPackage struct {
	Base
	Title        string          `db:"title"`
	Description  *string         `db:"description"`
	Destination  string          `db:"destination"`
	ImageURL     *string         `db:"image_url"`
	Price        decimal.Decimal `db:"price"`
	DurationDays int             `db:"duration_days"`
	VendorID     uuid.UUID       `db:"vendor_id"`
	Available    bool            `db:"available"`
}
