package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avalenz-dev/storefront-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Role     enums.UserRole
}

// AccessTokenClaims represents the typed JWT issued to clients. The claim set
// is trusted for the lifetime of the token; there is no server-side session,
// so role or password changes only take effect once the token expires.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Role     enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
