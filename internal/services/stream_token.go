package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultStreamTTL is the lifetime of an inbox stream token
const DefaultStreamTTL = time.Hour

// StreamClaims identify the inbox a stream token opens
type StreamClaims struct {
	PageID string
	Slug   string
}

// StreamTokens issues and checks the short-lived tokens that let an owner
// open the live inbox without resending the owner token.
type StreamTokens struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
}

// NewStreamTokens creates a token issuer signing with secret
func NewStreamTokens(secret string, ttl time.Duration) *StreamTokens {
	if ttl <= 0 {
		ttl = DefaultStreamTTL
	}
	return &StreamTokens{secret: []byte(secret), ttl: ttl, clock: SystemClock}
}

// Issue generates a token for the inbox of pageID
func (t *StreamTokens) Issue(pageID, slug string) (string, error) {
	now := t.clock.Now()
	claims := jwt.MapClaims{
		"page_id": pageID,
		"slug":    slug,
		"exp":     now.Add(t.ttl).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses a stream token and returns its claims
func (t *StreamTokens) Validate(tokenString string) (*StreamClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.clock.Now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	pageID, ok := claims["page_id"].(string)
	if !ok || pageID == "" {
		return nil, fmt.Errorf("page_id not found in token")
	}
	slug, _ := claims["slug"].(string)

	return &StreamClaims{PageID: pageID, Slug: slug}, nil
}
