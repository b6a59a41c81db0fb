package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the JWT claims minted by the external auth provider for
// dashboard sessions. The account id is the only field this service trusts.
type SessionClaims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}
