package auth

import (
	"github.com/google/uuid"
)

// TokenService issues and verifies the bearer tokens accepted by the API.
type TokenService interface {
	GenerateToken(userID uuid.UUID, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

var _ TokenService = (*JWTService)(nil)
