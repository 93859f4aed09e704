package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the operator integration calling the API. Admin gates
// the destructive surface (configure, reset); access control stays entirely
// outside the ledger core.
type Claims struct {
	OperatorID int64
	Admin      bool
}

type tokenClaims struct {
	jwt.RegisteredClaims
	OperatorID string `json:"operator_id"`
	Admin      bool   `json:"admin"`
}

func GenerateToken(operatorID int64, admin bool, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OperatorID: strconv.FormatInt(operatorID, 10),
		Admin:      admin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}

	operatorID, err := strconv.ParseInt(tc.OperatorID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: invalid operator_id in token: %w", err)
	}

	return &Claims{
		OperatorID: operatorID,
		Admin:      tc.Admin,
	}, nil
}
