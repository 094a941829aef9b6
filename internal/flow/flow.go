package flow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/identity"
	"tour-booking/pkg/utils"
)

// Step identifies a state of the booking flow. Steps are linear: there is no
// branching and no skipping.
type Step string

const (
	StepContactInfo   Step = "contact_info"
	StepTravelDetails Step = "travel_details"
	StepPreferences   Step = "preferences"
	StepReview        Step = "review"
	StepConfirmed     Step = "confirmed"
)

// order of the editable steps; Confirmed is terminal and not reachable by Next.
var stepOrder = []Step{StepContactInfo, StepTravelDetails, StepPreferences, StepReview}

// BookingCreator is the booking-store boundary used at Submit.
type BookingCreator interface {
	CreateBooking(ctx context.Context, booking *entity.Booking) (uuid.UUID, error)
}

// Flow drives one user through the booking steps for a single tour package,
// accumulating a Draft and emitting a Booking record at Submit. A Flow is
// owned by the session that created it; methods are safe for the concurrent
// double-Submit case but the flow is not meant to be shared across sessions.
type Flow struct {
	mu sync.Mutex

	id     uuid.UUID
	userID uuid.UUID
	pkg    entity.TourPackage

	step     Step
	draft    Draft
	inFlight bool

	bookingID uuid.UUID
	orderID   string
}

// New starts a flow for a package. Contact fields are pre-filled from the
// principal when one is supplied; defaults mirror the booking form.
func New(pkg entity.TourPackage, principal *identity.Principal) *Flow {
	f := &Flow{
		id:   uuid.New(),
		pkg:  pkg,
		step: StepContactInfo,
		draft: Draft{
			Adults:         1,
			MealPreference: "standard",
			Transportation: "standard",
		},
	}
	if principal != nil {
		f.userID = principal.ID
		f.draft.FullName = principal.DisplayName
		f.draft.Email = principal.Email
	}
	return f
}

func (f *Flow) ID() uuid.UUID { return f.id }

func (f *Flow) UserID() uuid.UUID { return f.userID }

func (f *Flow) Package() entity.TourPackage { return f.pkg }

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Draft returns a copy of the current draft.
func (f *Flow) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// BookingID returns the persisted booking ID once the flow is confirmed.
func (f *Flow) BookingID() (uuid.UUID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookingID, f.step == StepConfirmed
}

// OrderID returns the human-facing order reference once confirmed.
func (f *Flow) OrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderID
}

// TotalPrice recomputes the total from the current draft. Never cached.
func (f *Flow) TotalPrice() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return TotalPrice(&f.pkg, &f.draft)
}

// Update applies fn to the draft. Traveler counts may not be changed here;
// use the Set* methods so their floors hold.
func (f *Flow) Update(fn func(d *Draft)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepConfirmed {
		return ErrConfirmed
	}
	adults, children, infants := f.draft.Adults, f.draft.Children, f.draft.Infants
	fn(&f.draft)
	f.draft.Adults, f.draft.Children, f.draft.Infants = adults, children, infants
	return nil
}

// SetAdults updates the adult count. At least one adult is always required.
func (f *Flow) SetAdults(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepConfirmed {
		return ErrConfirmed
	}
	if n < 1 {
		return &ValidationError{Field: "adults", Reason: "at least one adult is required"}
	}
	f.draft.Adults = n
	return nil
}

func (f *Flow) SetChildren(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepConfirmed {
		return ErrConfirmed
	}
	if n < 0 {
		return &ValidationError{Field: "children", Reason: "children cannot be negative"}
	}
	f.draft.Children = n
	return nil
}

func (f *Flow) SetInfants(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepConfirmed {
		return ErrConfirmed
	}
	if n < 0 {
		return &ValidationError{Field: "infants", Reason: "infants cannot be negative"}
	}
	f.draft.Infants = n
	return nil
}

// Next advances one step if and only if the current step validates. A
// validation failure keeps the flow in place.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepConfirmed:
		return ErrConfirmed
	case StepReview:
		return ErrNotInReview
	}

	if verr := f.validate(f.step); verr != nil {
		return verr
	}
	for i, s := range stepOrder {
		if s == f.step {
			f.step = stepOrder[i+1]
			break
		}
	}
	return nil
}

// Back returns one step. Entered values are preserved.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepConfirmed:
		return ErrConfirmed
	case StepContactInfo:
		return ErrAtFirstStep
	}

	for i, s := range stepOrder {
		if s == f.step {
			f.step = stepOrder[i-1]
			break
		}
	}
	return nil
}

// Submit finalizes the draft into a Booking and hands it to the creator. It
// is only valid from Review, re-validates every prior step, and requires a
// settled principal. While one Submit is in flight a second call returns
// ErrSubmitInFlight without touching the store, so exactly one booking record
// is ever created. On creator failure the flow stays in Review and the draft
// remains editable.
func (f *Flow) Submit(ctx context.Context, principal *identity.Principal, creator BookingCreator) (*entity.Booking, error) {
	f.mu.Lock()
	if f.step == StepConfirmed {
		f.mu.Unlock()
		return nil, ErrConfirmed
	}
	if f.step != StepReview {
		f.mu.Unlock()
		return nil, ErrNotInReview
	}
	if f.inFlight {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	for _, s := range []Step{StepContactInfo, StepTravelDetails, StepPreferences} {
		if verr := f.validate(s); verr != nil {
			f.mu.Unlock()
			return nil, verr
		}
	}
	if principal == nil {
		f.mu.Unlock()
		return nil, ErrAuthenticationRequired
	}

	booking := f.buildBooking(principal)
	f.inFlight = true
	f.mu.Unlock()

	id, err := creator.CreateBooking(ctx, booking)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if err != nil {
		return nil, &BookingPersistenceError{Err: err}
	}
	booking.ID = id
	f.step = StepConfirmed
	f.bookingID = id
	f.orderID = booking.OrderID
	return booking, nil
}

func (f *Flow) validate(s Step) *ValidationError {
	switch s {
	case StepContactInfo:
		return validateContact(&f.draft)
	case StepTravelDetails:
		return validateTravel(&f.draft)
	case StepPreferences:
		return validatePreferences(&f.draft)
	}
	return nil
}

// buildBooking constructs the immutable record handed to the store. Caller
// holds the lock.
func (f *Flow) buildBooking(principal *identity.Principal) *entity.Booking {
	now := time.Now()
	travelDate, _ := time.Parse(TravelDateLayout, f.draft.TravelDate)

	return &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:   utils.GenerateOrderID(),
		UserID:    principal.ID,
		PackageID: f.pkg.ID,
		VendorID:  f.pkg.VendorID,

		FullName: f.draft.FullName,
		Email:    f.draft.Email,
		Phone:    f.draft.Phone,

		TravelDate:    travelDate,
		TimeSlot:      f.draft.TimeSlot,
		Adults:        f.draft.Adults,
		Children:      f.draft.Children,
		Infants:       f.draft.Infants,
		TravelerCount: f.draft.TravelerCount(),

		MealPreference:  f.draft.MealPreference,
		Transportation:  f.draft.Transportation,
		SpecialRequests: f.draft.SpecialRequests,
		TravelInsurance: f.draft.TravelInsurance,
		Photography:     f.draft.Photography,
		PrivateGuide:    f.draft.PrivateGuide,

		TotalPrice:    TotalPrice(&f.pkg, &f.draft),
		Status:        entity.BookingStatusPending,
		PaymentStatus: entity.PaymentStatusPending,
	}
}
