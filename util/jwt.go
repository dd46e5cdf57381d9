package util

import (
	"fmt"
	"time"

	"HospitalHub/role"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID    string    `json:"user_id"`
	ProfileID string    `json:"profile_id"`
	Role      role.Role `json:"role"`
	Name      string    `json:"name"`
	jwt.RegisteredClaims
}

/*
* Sign an HS256 token carrying the user, profile and role
* Subject mirrors the user id
 */
func GenerateToken(secret string, ttl time.Duration, claims Claims, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken checks the signature and the expiry against now.
func ValidateToken(tokenString, secret string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
