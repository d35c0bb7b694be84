package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrInvalidToken covers every way a session token can fail verification.
var ErrInvalidToken = errors.New("invalid session token")

// revocationSize bounds the revocation list. Entries also expire after the
// session TTL, by which point the token itself is no longer accepted.
const revocationSize = 100_000

// Session is an issued, signed session token.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Manager issues and verifies HS256 session tokens and remembers revoked ones.
// It is safe for concurrent use.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoked *expirable.LRU[string, struct{}]
	now     func() time.Time
}

// NewManager creates a session manager signing with secret.
func NewManager(secret []byte, ttl time.Duration) *Manager {
	return &Manager{
		secret:  secret,
		ttl:     ttl,
		revoked: expirable.NewLRU[string, struct{}](revocationSize, nil, ttl),
		now:     time.Now,
	}
}

// Issue signs a new session for userID.
func (m *Manager) Issue(userID string) (*Session, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{Token: token, UserID: userID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify returns the user id carried by a valid, unrevoked token.
func (m *Manager) Verify(token string) (string, error) {
	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}
	if m.revoked.Contains(claims.ID) {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Revoke marks a valid token as no longer usable. Invalid tokens are ignored.
func (m *Manager) Revoke(token string) {
	claims, err := m.parse(token)
	if err != nil {
		return
	}
	m.revoked.Add(claims.ID, struct{}{})
}

func (m *Manager) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
