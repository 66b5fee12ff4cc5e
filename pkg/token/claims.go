package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims represents the typed JWT issued to clients. The account id
// is duplicated into the registered subject claim so generic JWT tooling can
// read the identity without knowing our claim name.
type AccessTokenClaims struct {
	AccountID int64 `json:"account_id"`
	jwt.RegisteredClaims
}
