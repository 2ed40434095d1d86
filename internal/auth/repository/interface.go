package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserReader is the read side used by other domains through adapters.
type UserReader interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	ListActiveUsers(ctx context.Context, role string) ([]User, error)
	ListActiveByIDs(ctx context.Context, ids []uuid.UUID, roles []string) ([]User, error)
}

// AuthRepository defines the interface for authentication data operations.
type AuthRepository interface {
	UserReader

	CreateUser(ctx context.Context, in NewUser) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error

	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

// Ensure Repository implements AuthRepository
var _ AuthRepository = (*Repository)(nil)
