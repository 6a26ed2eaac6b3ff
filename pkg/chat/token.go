// Package chat mints Stream Chat user tokens.
package chat

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingCredentials = errors.New("chat: api key and secret are required")

// Claims follows the server-side token format Stream Chat expects: an HS256
// JWT carrying the user id.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs user tokens with the application secret. The secret never
// leaves the issuer; APIKey is the public half handed to clients.
type TokenIssuer struct {
	apiKey string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer for the given credentials. A ttl of zero
// mints tokens without an expiry.
func NewTokenIssuer(apiKey, apiSecret string, ttl time.Duration) (*TokenIssuer, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, ErrMissingCredentials
	}
	return &TokenIssuer{
		apiKey: apiKey,
		secret: []byte(apiSecret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (i *TokenIssuer) APIKey() string {
	return i.apiKey
}

// CreateToken signs a token bound to userID.
func (i *TokenIssuer) CreateToken(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("chat: user id is required")
	}

	now := i.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("chat: sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token minted by this issuer and returns its claims.
func (i *TokenIssuer) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("chat: parse token: %w", err)
	}
	return claims, nil
}
