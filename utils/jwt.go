package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// IdentityClaims are the fields of an identity provider id_token that the
// dashboard caches in the session.
type IdentityClaims struct {
	Subject string
	Email   string
	Name    string
	Groups  []string
}

// GenerateSessionToken signs a token carrying the session id. The token only
// names a session; everything else lives in the session store.
func GenerateSessionToken(secret, sessionID string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti": uuid.New().String(),
		"sid": sessionID,
		"iat": now.Unix(),
	}
	if expiration > 0 {
		claims["exp"] = now.Add(expiration).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateSessionToken verifies the signature and returns the session id.
func ValidateSessionToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	sid, ok := mapClaims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalidToken
	}
	return sid, nil
}

// DecodeIdentityClaims reads an id_token without verifying its signature.
// Verification belongs to the identity provider and the backend; the
// dashboard only needs the group claims for navigation decisions.
func DecodeIdentityClaims(idToken string) (*IdentityClaims, error) {
	if idToken == "" {
		return nil, ErrInvalidToken
	}
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, mapClaims); err != nil {
		return nil, err
	}

	claims := &IdentityClaims{}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}

	// Groups (array)
	if groups, ok := mapClaims["cognito:groups"].([]interface{}); ok {
		for _, g := range groups {
			if name, ok := g.(string); ok {
				claims.Groups = append(claims.Groups, name)
			}
		}
	}

	return claims, nil
}
