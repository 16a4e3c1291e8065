package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWT mints an HS256 token shaped like the ones the auth provider
// issues: the user id in "sub", plus "email" and the "authenticated" role.
func GenerateJWT(secret, userID, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  "authenticated",
		"aud":   "authenticated",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})

	return token.SignedString([]byte(secret))
}
