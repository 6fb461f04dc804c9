// Package token issues and parses the bearer credential carried in the
// Authorization header.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiry is the fixed lifetime of every issued credential.
const Expiry = 72 * time.Hour

var ErrInvalid = errors.New("invalid token")

// Sign returns a signed HS256 credential whose payload is the user id.
func Sign(userID, secret string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(Expiry).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Parse validates a credential and returns the user id it carries.
func Parse(tokenStr, secret string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !t.Valid {
		return "", ErrInvalid
	}

	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", ErrInvalid
	}
	return id, nil
}
