package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionStatus(t *testing.T) {
	tests := []struct {
		name string
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{"pending to confirmed", BookingStatusPending, BookingStatusConfirmed, true},
		{"pending to cancelled", BookingStatusPending, BookingStatusCancelled, true},
		{"confirmed to cancelled", BookingStatusConfirmed, BookingStatusCancelled, true},
		{"confirmed to pending", BookingStatusConfirmed, BookingStatusPending, false},
		{"cancelled is terminal", BookingStatusCancelled, BookingStatusPending, false},
		{"cancelled to confirmed", BookingStatusCancelled, BookingStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.from}
			assert.Equal(t, tt.want, b.CanTransitionStatus(tt.to))
		})
	}
}

func TestCanTransitionPayment(t *testing.T) {
	tests := []struct {
		name   string
		status BookingStatus
		from   PaymentStatus
		to     PaymentStatus
		want   bool
	}{
		{"pending to paid", BookingStatusConfirmed, PaymentStatusPending, PaymentStatusPaid, true},
		{"pending to refunded", BookingStatusCancelled, PaymentStatusPending, PaymentStatusRefunded, false},
		{"refund needs cancellation", BookingStatusConfirmed, PaymentStatusPaid, PaymentStatusRefunded, false},
		{"refund after cancellation", BookingStatusCancelled, PaymentStatusPaid, PaymentStatusRefunded, true},
		{"refunded is terminal", BookingStatusCancelled, PaymentStatusRefunded, PaymentStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.status, PaymentStatus: tt.from}
			assert.Equal(t, tt.want, b.CanTransitionPayment(tt.to))
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("user"))
	assert.True(t, ValidRole("vendor"))
	assert.True(t, ValidRole("admin"))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
