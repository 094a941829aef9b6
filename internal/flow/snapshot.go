package flow

import (
	"github.com/google/uuid"

	"tour-booking/internal/data/entity"
)

// Snapshot is the serializable state of a flow, stored between requests.
// The in-flight submit guard is deliberately not part of it: a snapshot is
// never taken while a submit is running.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	PackageID uuid.UUID `json:"package_id"`
	Step      Step      `json:"step"`
	Draft     Draft     `json:"draft"`
	BookingID uuid.UUID `json:"booking_id,omitempty"`
	OrderID   string    `json:"order_id,omitempty"`
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		ID:        f.id,
		UserID:    f.userID,
		PackageID: f.pkg.ID,
		Step:      f.step,
		Draft:     f.draft,
		BookingID: f.bookingID,
		OrderID:   f.orderID,
	}
}

// Restore rebuilds a flow from a snapshot and the package it was started for.
func Restore(snap Snapshot, pkg entity.TourPackage) *Flow {
	return &Flow{
		id:        snap.ID,
		userID:    snap.UserID,
		pkg:       pkg,
		step:      snap.Step,
		draft:     snap.Draft,
		bookingID: snap.BookingID,
		orderID:   snap.OrderID,
	}
}
