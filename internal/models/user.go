package models

import (
	"time"

	"github.com/restaurantbooking/backend/internal/query"
)

// Role is the access level of a user
type Role string

// Role constants
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// UserSchema lists the user fields usable in list queries
var UserSchema = query.Schema{
	Fields: map[string]string{
		"id":        "id",
		"firstname": "firstname",
		"lastname":  "lastname",
		"email":     "email",
		"phone":     "phone",
		"role":      "role",
		"createdAt": "created_at",
	},
	DefaultSort: []query.SortField{{Field: "createdAt", Desc: true}},
}

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Firstname    string    `json:"firstname"`
	Lastname     string    `json:"lastname"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated identity making a request
type Principal struct {
	UserID int
	Role   Role
}

// IsAdmin reports whether the principal has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      Role   `json:"role,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateDetailsRequest is a partial update of the profile fields.
// A nil field is left untouched.
type UpdateDetailsRequest struct {
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// Empty reports whether no field was provided
func (r *UpdateDetailsRequest) Empty() bool {
	return r.Firstname == nil && r.Lastname == nil && r.Phone == nil
}

// UpdatePasswordRequest represents a password change request
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
