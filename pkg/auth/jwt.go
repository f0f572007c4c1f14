// Package auth is the thin external-collaborator contract named in spec §6:
// the reservation core verifies bearer tokens issued by a separate identity
// provider; it never issues, refreshes, or stores credentials itself
// (explicit non-goal — see SPEC_FULL.md).
package auth

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Verifier parses and validates bearer tokens against a shared secret held
// in the process configuration record, rather than a package-level global.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) ParseValidate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Sub == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
