// Package service issues and validates the signed session tokens
package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/restaurantbooking/backend/internal/models"
)

// claims is the JWT payload of a session token
type claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenClaims is the validated content of a session token
type TokenClaims struct {
	UserID    int
	Role      models.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal returns the request principal carried by the token
func (c *TokenClaims) Principal() models.Principal {
	return models.Principal{UserID: c.UserID, Role: c.Role}
}

// TokenGenerator handles JWT token generation and validation
type TokenGenerator struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, expiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Expiry returns the lifetime of issued tokens
func (tg *TokenGenerator) Expiry() time.Duration {
	return tg.expiry
}

// GenerateToken issues a signed token carrying the user id and role
func (tg *TokenGenerator) GenerateToken(userID int, role models.Role) (string, error) {
	now := tg.now()
	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tg.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	tokenString, err := token.SignedString(tg.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies the signature and expiry of a token and returns its claims
func (tg *TokenGenerator) ValidateToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}

	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (any, error) {
		return tg.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(tg.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}

	userID, err := strconv.Atoi(c.Subject)
	if err != nil || userID <= 0 {
		return nil, errors.New("subject is not a user id")
	}
	if !c.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q in token", c.Role)
	}

	tc := &TokenClaims{
		UserID:    userID,
		Role:      c.Role,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}
	if c.IssuedAt != nil {
		tc.IssuedAt = c.IssuedAt.Time
	}
	return tc, nil
}
