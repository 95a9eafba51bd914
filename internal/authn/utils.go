package authn

import (
	"errors"

	"github.com/golang-jwt/jwt"
)

// HubAdminRole is required for endpoints that change state.
const HubAdminRole = "hub_admin"

var ErrInvalidJWT = errors.New("invalid jwt token")
var ErrInvalidClaims = errors.New("invalid claims")

type Claims struct {
	jwt.StandardClaims
	Username    string `json:"preferred_username"`
	Email       string `json:"email"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// HasRole reports whether the realm roles include role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.RealmAccess.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseClaims decodes the claims of a bearer token. Signatures are verified
// by the gateway in front of this service and are not checked here.
func ParseClaims(token string) (Claims, error) {
	claims := Claims{}
	if t, err := jwt.ParseWithClaims(token, &claims, nil); err != nil {
		// Ignore validation errors (no need to check signing of key)
		if _, ok := err.(*jwt.ValidationError); !ok {
			return claims, ErrInvalidJWT
		}

		// Check if token was decoded successfully
		if t == nil {
			return claims, ErrInvalidClaims
		}
	}
	return claims, nil
}
