package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	Store     string
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to operators. Store is the
// partition key every query is scoped by.
type AccessTokenClaims struct {
	AccountID uuid.UUID `json:"account_id"`
	Store     string    `json:"store"`
	jwt.RegisteredClaims
}
