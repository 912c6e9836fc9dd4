package session

import (
	"context"
	"errors"

	"moneyrats/internal/logger"
	"moneyrats/internal/models"
)

// UserLookup loads users by id.
type UserLookup interface {
	GetUserByID(id uint) (*models.User, error)
}

// Resolver maps session tokens to users.
type Resolver struct {
	sessions *Manager
	users    UserLookup
}

// NewResolver creates a Resolver.
func NewResolver(sessions *Manager, users UserLookup) *Resolver {
	return &Resolver{sessions: sessions, users: users}
}

// Resolve returns the user behind token, or nil for an anonymous caller.
// An empty, invalid, expired or revoked token, or one naming a user that no
// longer exists, all resolve to nil.
func (r *Resolver) Resolve(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}

	claims, err := r.sessions.Validate(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrRevoked) {
			logger.Get().Warnw("session validation failed", "error", err)
		}
		return nil
	}

	user, err := r.users.GetUserByID(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}
