package auth

import "github.com/golang-jwt/jwt/v5"

// ScopeRead is the only scope the gateway grants: read-only access to /api.
const ScopeRead = "cdr:read"

// Claims identify the operator a gateway access token was minted for.
// There are no tenants or roles; a valid token grants read access to every /api route.
type Claims struct {
	jwt.RegisteredClaims

	Scope string `json:"scope"`
}
