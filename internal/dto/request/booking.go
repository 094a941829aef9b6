package request

type StartFlowRequest struct {
	PackageID string `json:"package_id" validate:"required,uuid4"`
}

// UpdateDraftRequest carries a partial edit of the booking draft. Only
// non-nil fields are applied.
type UpdateDraftRequest struct {
	FullName        *string `json:"full_name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	TravelDate      *string `json:"travel_date,omitempty"`
	TimeSlot        *string `json:"time_slot,omitempty"`
	Adults          *int    `json:"adults,omitempty"`
	Children        *int    `json:"children,omitempty"`
	Infants         *int    `json:"infants,omitempty"`
	SpecialRequests *string `json:"special_requests,omitempty"`
	MealPreference  *string `json:"meal_preference,omitempty" validate:"omitempty,oneof=standard vegetarian vegan"`
	Transportation  *string `json:"transportation,omitempty" validate:"omitempty,oneof=standard premium"`
	TravelInsurance *bool   `json:"travel_insurance,omitempty"`
	Photography     *bool   `json:"photography,omitempty"`
	PrivateGuide    *bool   `json:"private_guide,omitempty"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=paid refunded"`
}
