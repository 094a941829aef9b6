package flow

import (
	"regexp"
	"time"
)

// TravelDateLayout is the wire format for the travel date.
const TravelDateLayout = "2006-01-02"

// TimeSlots are the departure slots offered for every package.
var TimeSlots = []string{"morning", "afternoon", "evening"}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// Draft is the mutable booking state collected across the flow steps.
// Mutation goes through the owning Flow only; the total price is never stored
// here, always recomputed from the current field values.
type Draft struct {
	// Contact
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`

	// Travel
	TravelDate      string `json:"travel_date"`
	TimeSlot        string `json:"time_slot"`
	Adults          int    `json:"adults"`
	Children        int    `json:"children"`
	Infants         int    `json:"infants"`
	SpecialRequests string `json:"special_requests"`

	// Preferences
	MealPreference  string `json:"meal_preference"`
	Transportation  string `json:"transportation"`
	TravelInsurance bool   `json:"travel_insurance"`
	Photography     bool   `json:"photography"`
	PrivateGuide    bool   `json:"private_guide"`
}

// TravelerCount is always the sum of the individual counts.
func (d *Draft) TravelerCount() int {
	return d.Adults + d.Children + d.Infants
}

// validateContact checks the contact step, reporting the first missing or
// malformed field in form order.
func validateContact(d *Draft) *ValidationError {
	if d.FullName == "" {
		return &ValidationError{Field: "full_name", Reason: "full name is required"}
	}
	if d.Email == "" {
		return &ValidationError{Field: "email", Reason: "email is required"}
	}
	if !emailPattern.MatchString(d.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email format"}
	}
	if d.Phone == "" {
		return &ValidationError{Field: "phone", Reason: "phone number is required"}
	}
	return nil
}

// validateTravel checks the travel step. The travel date must fall within
// [tomorrow, today+365 days], both inclusive.
func validateTravel(d *Draft) *ValidationError {
	if d.TravelDate == "" {
		return &ValidationError{Field: "travel_date", Reason: "travel date is required"}
	}
	date, err := time.Parse(TravelDateLayout, d.TravelDate)
	if err != nil {
		return &ValidationError{Field: "travel_date", Reason: "travel date must be YYYY-MM-DD"}
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	latest := today.AddDate(0, 0, 365)
	if date.Before(tomorrow) {
		return &ValidationError{Field: "travel_date", Reason: "travel date must be at least tomorrow"}
	}
	if date.After(latest) {
		return &ValidationError{Field: "travel_date", Reason: "travel date must be within one year"}
	}

	if d.TimeSlot == "" {
		return &ValidationError{Field: "time_slot", Reason: "time slot is required"}
	}
	if !validTimeSlot(d.TimeSlot) {
		return &ValidationError{Field: "time_slot", Reason: "unknown time slot"}
	}

	if d.TravelerCount() < 1 {
		return &ValidationError{Field: "travelers", Reason: "at least one traveler is required"}
	}
	return nil
}

// validatePreferences has no required fields.
func validatePreferences(d *Draft) *ValidationError {
	return nil
}

func validTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}
