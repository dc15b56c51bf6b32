// Package auth issues and verifies the HMAC-signed session tokens used
// by the HTTP API. A token carries the account handle only; the role is
// re-read from the store on every operation, so a demotion takes effect
// on the very next request.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/patchmemory/kindmesh/internal/common"
)

// Claims extends the registered JWT claims with the account handle.
type Claims struct {
	jwt.RegisteredClaims
	Handle string `json:"handle"`
}

// GenerateToken signs a session token for handle, valid for
// validityDuration from now.
func GenerateToken(handle string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Handle: handle,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetHandleFromToken verifies tokenString and returns the handle it was
// issued for. Expired, tampered and malformed tokens all come back as
// common.ErrInvalidToken.
func GetHandleFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Handle, nil
}
