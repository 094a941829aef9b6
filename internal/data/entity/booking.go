package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Booking struct {
	Base
	OrderID   string    `db:"order_id"`
	UserID    uuid.UUID `db:"user_id"`
	PackageID uuid.UUID `db:"package_id"`
	VendorID  uuid.UUID `db:"vendor_id"`

	// Contact
	FullName string `db:"full_name"`
	Email    string `db:"email"`
	Phone    string `db:"phone"`

	// Travel
	TravelDate    time.Time `db:"travel_date"`
	TimeSlot      string    `db:"time_slot"`
	Adults        int       `db:"adults"`
	Children      int       `db:"children"`
	Infants       int       `db:"infants"`
	TravelerCount int       `db:"traveler_count"`

	// Preferences
	MealPreference  string `db:"meal_preference"`
	Transportation  string `db:"transportation"`
	SpecialRequests string `db:"special_requests"`
	TravelInsurance bool   `db:"travel_insurance"`
	Photography     bool   `db:"photography"`
	PrivateGuide    bool   `db:"private_guide"`

	TotalPrice    decimal.Decimal `db:"total_price"`
	Status        BookingStatus   `db:"status"`
	PaymentStatus PaymentStatus   `db:"payment_status"`
}

// BookingDate is the creation timestamp of the record.
func (b *Booking) BookingDate() time.Time {
	return b.CreatedAt
}

// CanTransitionStatus reports whether the booking status may move to next.
// Pending bookings can be confirmed or cancelled; confirmed ones only cancelled.
func (b *Booking) CanTransitionStatus(next BookingStatus) bool {
	switch b.Status {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	}
	return false
}

// CanTransitionPayment reports whether paymentStatus may move to next.
// Refunds are only possible for paid, cancelled bookings.
func (b *Booking) CanTransitionPayment(next PaymentStatus) bool {
	switch b.PaymentStatus {
	case PaymentStatusPending:
		return next == PaymentStatusPaid
	case PaymentStatusPaid:
		return next == PaymentStatusRefunded && b.Status == BookingStatusCancelled
	}
	return false
}
