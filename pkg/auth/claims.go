package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	IsAdmin   bool
	Abilities []string
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	IsAdmin   bool      `json:"is_admin,omitempty"`
	Abilities []string  `json:"abilities,omitempty"`
	jwt.RegisteredClaims
}

// HasAbility reports whether the token carries the named ability or the
// wildcard.
func (c *AccessTokenClaims) HasAbility(ability string) bool {
	for _, candidate := range c.Abilities {
		if candidate == AbilityAll || candidate == ability {
			return true
		}
	}
	return false
}
