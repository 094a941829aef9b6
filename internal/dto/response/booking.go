package response

import (
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/flow"
)

type FlowResponse struct {
	ID           string     `json:"id"`
	PackageID    string     `json:"package_id"`
	PackageTitle string     `json:"package_title"`
	Step         string     `json:"step"`
	Draft        flow.Draft `json:"draft"`
	TotalPrice   string     `json:"total_price"`
	BookingID    *string    `json:"booking_id,omitempty"`
	OrderID      string     `json:"order_id,omitempty"`
}

type BookingResponse struct {
	ID              string               `json:"id"`
	OrderID         string               `json:"order_id"`
	UserID          string               `json:"user_id"`
	PackageID       string               `json:"package_id"`
	FullName        string               `json:"full_name"`
	Email           string               `json:"email"`
	Phone           string               `json:"phone,omitempty"`
	TravelDate      string               `json:"travel_date"`
	TimeSlot        string               `json:"time_slot"`
	Adults          int                  `json:"adults"`
	Children        int                  `json:"children"`
	Infants         int                  `json:"infants"`
	TravelerCount   int                  `json:"traveler_count"`
	SpecialRequests string               `json:"special_requests,omitempty"`
	MealPreference  string               `json:"meal_preference"`
	Transportation  string               `json:"transportation"`
	TravelInsurance bool                 `json:"travel_insurance"`
	Photography     bool                 `json:"photography"`
	PrivateGuide    bool                 `json:"private_guide"`
	TotalPrice      string               `json:"total_price"`
	Status          entity.BookingStatus `json:"status"`
	PaymentStatus   entity.PaymentStatus `json:"payment_status"`
	CreatedAt       time.Time            `json:"created_at"`
}

// Helper converters
func FlowToResponse(f *flow.Flow) FlowResponse {
	resp := FlowResponse{
		ID:           f.ID().String(),
		PackageID:    f.Package().ID.String(),
		PackageTitle: f.Package().Title,
		Step:         string(f.Step()),
		Draft:        f.Draft(),
		TotalPrice:   f.TotalPrice().StringFixed(2),
		OrderID:      f.OrderID(),
	}

	if id, ok := f.BookingID(); ok {
		s := id.String()
		resp.BookingID = &s
	}

	return resp
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID.String(),
		OrderID:         b.OrderID,
		UserID:          b.UserID.String(),
		PackageID:       b.PackageID.String(),
		FullName:        b.FullName,
		Email:           b.Email,
		Phone:           b.Phone,
		TravelDate:      b.TravelDate.Format(flow.TravelDateLayout),
		TimeSlot:        b.TimeSlot,
		Adults:          b.Adults,
		Children:        b.Children,
		Infants:         b.Infants,
		TravelerCount:   b.TravelerCount,
		SpecialRequests: b.SpecialRequests,
		MealPreference:  b.MealPreference,
		Transportation:  b.Transportation,
		TravelInsurance: b.TravelInsurance,
		Photography:     b.Photography,
		PrivateGuide:    b.PrivateGuide,
		TotalPrice:      b.TotalPrice.StringFixed(2),
		Status:          b.Status,
		PaymentStatus:   b.PaymentStatus,
		CreatedAt:       b.CreatedAt,
	}
}
