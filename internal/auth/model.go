package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is stored in the request context after authentication.
type Identity struct {
	ProfileID uuid.UUID
	Email     string
}

// Claims are the identity provider's access token claims used by the API.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
