package models

import "time"

// Reservation represents a booking of a restaurant by a user
type Reservation struct {
	ID           int                `json:"id"`
	UserID       int                `json:"user"`
	RestaurantID int                `json:"restaurantId"`
	ResvDate     time.Time          `json:"resvDate"`
	CreatedAt    time.Time          `json:"createdAt"`
	Restaurant   *RestaurantSummary `json:"restaurant,omitempty"`
}

// RestaurantSummary is the restaurant data embedded in reservation responses
type RestaurantSummary struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Province string `json:"province"`
	Phone    string `json:"phone,omitempty"`
}

// CreateReservationRequest represents a request to book a restaurant
type CreateReservationRequest struct {
	ResvDate *time.Time `json:"resvDate"`
}

// UpdateReservationRequest is a partial reservation update. A nil field is left untouched.
type UpdateReservationRequest struct {
	ResvDate     *time.Time `json:"resvDate,omitempty"`
	RestaurantID *int       `json:"restaurantId,omitempty"`
}

// Empty reports whether no field was provided
func (r *UpdateReservationRequest) Empty() bool {
	return r.ResvDate == nil && r.RestaurantID == nil
}

// ReservationFilter scopes a reservation listing. Zero values mean "any".
type ReservationFilter struct {
	UserID       int
	RestaurantID int
}

// ReservationNotice carries everything needed to email a user about a reservation
type ReservationNotice struct {
	ReservationID  int
	ResvDate       time.Time
	UserEmail      string
	UserFirstname  string
	RestaurantName string
	RestaurantAddr string
	RestaurantTel  string
}
