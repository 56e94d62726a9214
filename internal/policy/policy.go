// Package policy holds the authorization and reservation admission decisions.
// Both policies are pure: they never touch storage and never fail.
package policy

import "github.com/restaurantbooking/backend/internal/models"

// MaxActiveReservations is the number of reservations a non-admin user may own at once
const MaxActiveReservations = 3

// CanRead reports whether principal may read a resource owned by ownerID
func CanRead(principal models.Principal, ownerID int) bool {
	return principal.IsAdmin() || principal.UserID == ownerID
}

// CanWrite reports whether principal may modify or delete a resource owned by ownerID
func CanWrite(principal models.Principal, ownerID int) bool {
	return principal.IsAdmin() || principal.UserID == ownerID
}

// CanCreate reports whether principal may create another reservation
// while already owning currentCount of them.
func CanCreate(principal models.Principal, currentCount int) bool {
	if principal.IsAdmin() {
		return true
	}
	return currentCount < MaxActiveReservations
}
