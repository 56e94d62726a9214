package policy

import (
	"testing"

	"github.com/restaurantbooking/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAccessPolicy(t *testing.T) {
	user := models.Principal{UserID: 1, Role: models.RoleUser}
	admin := models.Principal{UserID: 2, Role: models.RoleAdmin}

	tests := []struct {
		name      string
		principal models.Principal
		ownerID   int
		expected  bool
	}{
		{name: "owner", principal: user, ownerID: 1, expected: true},
		{name: "non-owner user", principal: user, ownerID: 3, expected: false},
		{name: "admin on other owner", principal: admin, ownerID: 3, expected: true},
		{name: "admin on own resource", principal: admin, ownerID: 2, expected: true},
		{name: "unknown role treated as user", principal: models.Principal{UserID: 5, Role: "guest"}, ownerID: 6, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanRead(tt.principal, tt.ownerID))
			assert.Equal(t, tt.expected, CanWrite(tt.principal, tt.ownerID))
		})
	}
}

func TestCanCreate(t *testing.T) {
	user := models.Principal{UserID: 1, Role: models.RoleUser}
	admin := models.Principal{UserID: 2, Role: models.RoleAdmin}

	tests := []struct {
		name      string
		principal models.Principal
		count     int
		expected  bool
	}{
		{name: "user with none", principal: user, count: 0, expected: true},
		{name: "user with two", principal: user, count: 2, expected: true},
		{name: "user at limit", principal: user, count: 3, expected: false},
		{name: "user over limit", principal: user, count: 7, expected: false},
		{name: "admin at limit", principal: admin, count: 3, expected: true},
		{name: "admin far over limit", principal: admin, count: 100, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanCreate(tt.principal, tt.count))
		})
	}
}
