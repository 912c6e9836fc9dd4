// Package session issues and validates the signed credentials that identify
// a logged-in user, and resolves them back to users.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "moneyrats-api"

// CookieName is the name of the cookie carrying the session token.
const CookieName = "session"

var (
	// ErrInvalidToken is returned for malformed, forged or expired tokens.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrRevoked is returned for well-formed tokens whose session was ended.
	ErrRevoked = errors.New("session revoked")
)

// Claims represents the claims in a session token.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager signs session tokens and keeps track of live sessions in an
// optional Store. With a nil store, tokens are valid until they expire.
type Manager struct {
	secret []byte
	ttl    time.Duration
	store  Store
}

// NewManager creates a Manager. store may be nil.
func NewManager(secret string, ttl time.Duration, store Store) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, store: store}
}

// TTL returns the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a new session for userID and returns its signed token.
func (m *Manager) Issue(ctx context.Context, userID uint) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	if m.store != nil {
		if err := m.store.Save(ctx, claims.ID, userID, m.ttl); err != nil {
			return "", fmt.Errorf("store session: %w", err)
		}
	}
	return token, nil
}

// Validate checks the token's signature, expiry and, when a store is
// configured, that its session is still live.
func (m *Manager) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if m.store != nil {
		userID, ok, err := m.store.Lookup(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("lookup session: %w", err)
		}
		if !ok || userID != claims.UserID {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

// Revoke ends the session behind tokenString. Invalid tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, tokenString string) error {
	if m.store == nil {
		return nil
	}
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (m *Manager) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
