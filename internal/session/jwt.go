package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long minted bearer tokens are valid. Tokens are
// short-lived; clients re-mint rather than refresh.
const DefaultTokenTTL = 1 * time.Hour

// bearerClaims are the claims carried by minted bearer tokens.
type bearerClaims struct {
	jwt.RegisteredClaims

	// UserID is the signed-in user's ID.
	UserID string `json:"uid"`
}

// tokenMinter signs short-lived HS256 bearer tokens.
type tokenMinter struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func newTokenMinter(signingKey, issuer string, ttl time.Duration) *tokenMinter {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &tokenMinter{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// mint creates a bearer token for the identity and returns it with its expiry.
func (m *tokenMinter) mint(id *Identity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := bearerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateTokenID(),
		},
		UserID: id.ID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing bearer token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseSubject extracts and verifies the user ID from a bearer token.
// Used by the fake backend to key favorites per user.
func ParseSubject(token, signingKey string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &bearerClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(signingKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse bearer token: %w", err)
	}

	claims, ok := parsed.Claims.(*bearerClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidCredentials
	}
	return claims.UserID, nil
}

// generateTokenID creates a random JWT ID for uniqueness.
func generateTokenID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
