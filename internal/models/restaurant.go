package models

import (
	"time"

	"github.com/restaurantbooking/backend/internal/query"
)

// Restaurant field limits
const (
	RestaurantNameMaxLength = 100
	PostalCodeMaxLength     = 5
)

// RestaurantSchema lists the restaurant fields usable in list queries
var RestaurantSchema = query.Schema{
	Fields: map[string]string{
		"id":         "id",
		"name":       "name",
		"address":    "address",
		"district":   "district",
		"province":   "province",
		"postalcode": "postal_code",
		"phone":      "phone",
		"hours":      "hours",
		"createdAt":  "created_at",
	},
	DefaultSort: []query.SortField{{Field: "createdAt", Desc: true}},
}

// Restaurant represents a restaurant that accepts reservations
type Restaurant struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	District   string    `json:"district"`
	Province   string    `json:"province"`
	PostalCode string    `json:"postalcode"`
	Phone      string    `json:"phone,omitempty"`
	Hours      string    `json:"hours"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateRestaurantRequest represents a request to create a restaurant
type CreateRestaurantRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	District   string `json:"district"`
	Province   string `json:"province"`
	PostalCode string `json:"postalcode"`
	Phone      string `json:"phone,omitempty"`
	Hours      string `json:"hours"`
}

// UpdateRestaurantRequest is a partial restaurant update. A nil field is left untouched.
type UpdateRestaurantRequest struct {
	Name       *string `json:"name,omitempty"`
	Address    *string `json:"address,omitempty"`
	District   *string `json:"district,omitempty"`
	Province   *string `json:"province,omitempty"`
	PostalCode *string `json:"postalcode,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Hours      *string `json:"hours,omitempty"`
}

// Empty reports whether no field was provided
func (r *UpdateRestaurantRequest) Empty() bool {
	return r.Name == nil && r.Address == nil && r.District == nil && r.Province == nil &&
		r.PostalCode == nil && r.Phone == nil && r.Hours == nil
}
