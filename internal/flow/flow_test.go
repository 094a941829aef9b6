package flow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/identity"
)

func testPackage() entity.TourPackage {
	return entity.TourPackage{
		Base:         entity.Base{ID: uuid.New()},
		Title:        "Komodo Island Expedition",
		Destination:  "Labuan Bajo",
		Price:        decimal.RequireFromString("15999.00"),
		DurationDays: 3,
		VendorID:     uuid.New(),
		Available:    true,
	}
}

func testPrincipal() *identity.Principal {
	return &identity.Principal{
		ID:          uuid.New(),
		Email:       "traveler@example.com",
		DisplayName: "Test Traveler",
		Role:        entity.RoleUser,
	}
}

func validDate() string {
	return time.Now().AddDate(0, 0, 14).Format(TravelDateLayout)
}

// fillContact completes the contact step with valid values.
func fillContact(t *testing.T, f *Flow) {
	t.Helper()
	require.NoError(t, f.Update(func(d *Draft) {
		d.FullName = "Test Traveler"
		d.Email = "traveler@example.com"
		d.Phone = "081234567890"
	}))
}

// fillTravel completes the travel step with valid values.
func fillTravel(t *testing.T, f *Flow) {
	t.Helper()
	require.NoError(t, f.Update(func(d *Draft) {
		d.TravelDate = validDate()
		d.TimeSlot = "morning"
	}))
}

// toReview walks a fresh flow up to the review step.
func toReview(t *testing.T, f *Flow) {
	t.Helper()
	fillContact(t, f)
	require.NoError(t, f.Next())
	fillTravel(t, f)
	require.NoError(t, f.Next())
	require.NoError(t, f.Next())
	require.Equal(t, StepReview, f.Step())
}

// memCreator records created bookings in memory.
type memCreator struct {
	mu       sync.Mutex
	created  []*entity.Booking
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (c *memCreator) CreateBooking(ctx context.Context, booking *entity.Booking) (uuid.UUID, error) {
	if c.started != nil {
		close(c.started)
	}
	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return uuid.Nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, booking)
	return booking.ID, nil
}

func (c *memCreator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.created)
}

func TestNewPrefillsContactFromPrincipal(t *testing.T) {
	p := testPrincipal()
	f := New(testPackage(), p)

	draft := f.Draft()
	assert.Equal(t, StepContactInfo, f.Step())
	assert.Equal(t, p.DisplayName, draft.FullName)
	assert.Equal(t, p.Email, draft.Email)
	assert.Equal(t, 1, draft.Adults)
	assert.Equal(t, "standard", draft.MealPreference)
	assert.Equal(t, "standard", draft.Transportation)
}

func TestNextValidatesCurrentStep(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(t *testing.T, f *Flow)
		wantField string
	}{
		{
			name:      "empty contact step",
			mutate:    func(t *testing.T, f *Flow) {},
			wantField: "full_name",
		},
		{
			name: "missing email reported before phone",
			mutate: func(t *testing.T, f *Flow) {
				require.NoError(t, f.Update(func(d *Draft) {
					d.FullName = "Test Traveler"
				}))
			},
			wantField: "email",
		},
		{
			name: "malformed email",
			mutate: func(t *testing.T, f *Flow) {
				require.NoError(t, f.Update(func(d *Draft) {
					d.FullName = "Test Traveler"
					d.Email = "not-an-email"
				}))
			},
			wantField: "email",
		},
		{
			name: "missing phone",
			mutate: func(t *testing.T, f *Flow) {
				require.NoError(t, f.Update(func(d *Draft) {
					d.FullName = "Test Traveler"
					d.Email = "traveler@example.com"
				}))
			},
			wantField: "phone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(testPackage(), nil)
			tt.mutate(t, f)

			err := f.Next()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, StepContactInfo, f.Step(), "validation failure must not advance")
		})
	}
}

func TestTravelDateWindow(t *testing.T) {
	today := time.Now().Format(TravelDateLayout)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(TravelDateLayout)
	lastDay := time.Now().AddDate(0, 0, 365).Format(TravelDateLayout)
	tooLate := time.Now().AddDate(0, 0, 366).Format(TravelDateLayout)

	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"today is rejected", today, true},
		{"tomorrow is the earliest valid date", tomorrow, false},
		{"day 365 is the latest valid date", lastDay, false},
		{"day 366 is rejected", tooLate, true},
		{"garbage format is rejected", "14-02-2026", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(testPackage(), nil)
			fillContact(t, f)
			require.NoError(t, f.Next())
			require.NoError(t, f.Update(func(d *Draft) {
				d.TravelDate = tt.date
				d.TimeSlot = "morning"
			}))

			err := f.Next()
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "travel_date", verr.Field)
				assert.Equal(t, StepTravelDetails, f.Step())
			} else {
				require.NoError(t, err)
				assert.Equal(t, StepPreferences, f.Step())
			}
		})
	}
}

func TestBackPreservesEnteredValues(t *testing.T) {
	f := New(testPackage(), nil)
	fillContact(t, f)
	require.NoError(t, f.Next())
	fillTravel(t, f)

	require.NoError(t, f.Back())
	assert.Equal(t, StepContactInfo, f.Step())

	draft := f.Draft()
	assert.Equal(t, "Test Traveler", draft.FullName)
	assert.NotEmpty(t, draft.TravelDate, "going back must not clear later steps")

	// Forward again without re-entering anything.
	require.NoError(t, f.Next())
	assert.Equal(t, StepTravelDetails, f.Step())
}

func TestBackFromFirstStep(t *testing.T) {
	f := New(testPackage(), nil)
	assert.ErrorIs(t, f.Back(), ErrAtFirstStep)
}

func TestTravelerCountFloors(t *testing.T) {
	f := New(testPackage(), nil)

	var verr *ValidationError
	require.ErrorAs(t, f.SetAdults(0), &verr)
	assert.Equal(t, "adults", verr.Field)
	assert.Equal(t, 1, f.Draft().Adults)

	require.ErrorAs(t, f.SetChildren(-1), &verr)
	require.ErrorAs(t, f.SetInfants(-2), &verr)

	require.NoError(t, f.SetAdults(2))
	require.NoError(t, f.SetChildren(1))
	require.NoError(t, f.SetInfants(1))
	draft := f.Draft()
	assert.Equal(t, 4, draft.TravelerCount())
}

func TestUpdateCannotTouchTravelerCounts(t *testing.T) {
	f := New(testPackage(), nil)
	require.NoError(t, f.SetAdults(3))

	require.NoError(t, f.Update(func(d *Draft) {
		d.Adults = 0
		d.Children = -5
	}))

	draft := f.Draft()
	assert.Equal(t, 3, draft.Adults)
	assert.Equal(t, 0, draft.Children)
}

func TestSubmitOnlyFromReview(t *testing.T) {
	f := New(testPackage(), nil)
	creator := &memCreator{}

	_, err := f.Submit(context.Background(), testPrincipal(), creator)
	assert.ErrorIs(t, err, ErrNotInReview)
	assert.Zero(t, creator.count())
}

func TestSubmitRequiresPrincipal(t *testing.T) {
	f := New(testPackage(), nil)
	toReview(t, f)
	creator := &memCreator{}

	_, err := f.Submit(context.Background(), nil, creator)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.Equal(t, StepReview, f.Step())
	assert.Zero(t, creator.count())
}

func TestSubmitCreatesBooking(t *testing.T) {
	pkg := testPackage()
	p := testPrincipal()
	f := New(pkg, p)
	toReview(t, f)
	require.NoError(t, f.Update(func(d *Draft) {
		d.TravelInsurance = true
	}))
	require.NoError(t, f.SetAdults(2))
	creator := &memCreator{}

	booking, err := f.Submit(context.Background(), p, creator)
	require.NoError(t, err)
	require.Equal(t, 1, creator.count())

	assert.Equal(t, StepConfirmed, f.Step())
	id, ok := f.BookingID()
	assert.True(t, ok)
	assert.Equal(t, booking.ID, id)

	assert.Equal(t, p.ID, booking.UserID)
	assert.Equal(t, pkg.ID, booking.PackageID)
	assert.Equal(t, pkg.VendorID, booking.VendorID)
	assert.Equal(t, 2, booking.TravelerCount)
	assert.Equal(t, entity.BookingStatusPending, booking.Status)
	assert.Equal(t, entity.PaymentStatusPending, booking.PaymentStatus)
	assert.NotEmpty(t, booking.OrderID)
	// 15999 * 2 + 500 * 2
	assert.Equal(t, "32998.00", booking.TotalPrice.StringFixed(2))
}

func TestSubmitFailureKeepsFlowEditable(t *testing.T) {
	f := New(testPackage(), nil)
	toReview(t, f)
	creator := &memCreator{err: errors.New("connection refused")}

	_, err := f.Submit(context.Background(), testPrincipal(), creator)
	var perr *BookingPersistenceError
	require.ErrorAs(t, err, &perr)

	assert.Equal(t, StepReview, f.Step())
	require.NoError(t, f.Update(func(d *Draft) {
		d.SpecialRequests = "window seat please"
	}))

	// A retry after the store recovers succeeds.
	creator.err = nil
	_, err = f.Submit(context.Background(), testPrincipal(), creator)
	require.NoError(t, err)
	assert.Equal(t, StepConfirmed, f.Step())
	assert.Equal(t, 1, creator.count())
}

func TestConcurrentSubmitCreatesOneBooking(t *testing.T) {
	f := New(testPackage(), nil)
	toReview(t, f)

	creator := &memCreator{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background(), testPrincipal(), creator)
		firstDone <- err
	}()

	// Wait until the first submit is inside the store call, then race it.
	<-creator.started
	_, err := f.Submit(context.Background(), testPrincipal(), creator)
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(creator.release)
	require.NoError(t, <-firstDone)

	assert.Equal(t, 1, creator.count())
	assert.Equal(t, StepConfirmed, f.Step())
}

func TestConfirmedFlowIsImmutable(t *testing.T) {
	f := New(testPackage(), nil)
	toReview(t, f)
	creator := &memCreator{}
	_, err := f.Submit(context.Background(), testPrincipal(), creator)
	require.NoError(t, err)

	assert.ErrorIs(t, f.Next(), ErrConfirmed)
	assert.ErrorIs(t, f.Back(), ErrConfirmed)
	assert.ErrorIs(t, f.SetAdults(2), ErrConfirmed)
	assert.ErrorIs(t, f.Update(func(d *Draft) { d.FullName = "x" }), ErrConfirmed)

	_, err = f.Submit(context.Background(), testPrincipal(), creator)
	assert.ErrorIs(t, err, ErrConfirmed)
	assert.Equal(t, 1, creator.count())
}

func TestSnapshotRoundTrip(t *testing.T) {
	pkg := testPackage()
	f := New(pkg, testPrincipal())
	fillContact(t, f)
	require.NoError(t, f.Next())
	fillTravel(t, f)

	restored := Restore(f.Snapshot(), pkg)

	assert.Equal(t, f.ID(), restored.ID())
	assert.Equal(t, f.UserID(), restored.UserID())
	assert.Equal(t, f.Step(), restored.Step())
	assert.Equal(t, f.Draft(), restored.Draft())
	assert.True(t, f.TotalPrice().Equal(restored.TotalPrice()))
}
