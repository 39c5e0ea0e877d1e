package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
	ErrTokenInvalid            = errors.New("invalid token")
)

// JWTClaims keeps the {id, role} payload shape the mobile client decodes.
type JWTClaims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret     []byte
	refreshTTL time.Duration
}

func NewTokenIssuer(secret string, refreshTTL time.Duration) *TokenIssuer {
	if refreshTTL <= 0 {
		refreshTTL = JWTRefreshTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), refreshTTL: refreshTTL}
}

// Generate signs an HS256 token for the subject that expires after ttl.
func (t *TokenIssuer) Generate(userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		ID:   userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    AppName,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) Validate(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnexpectedSigningMethod
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		if claims.ID == "" {
			return nil, ErrTokenInvalid
		}
		return claims, nil
	}

	return nil, ErrTokenInvalid
}

// Refresh re-issues a token for the identity in tokenString with the refresh TTL.
func (t *TokenIssuer) Refresh(tokenString string) (string, error) {
	claims, err := t.Validate(tokenString)
	if err != nil {
		return "", err
	}
	return t.Generate(claims.ID, claims.Role, t.refreshTTL)
}
