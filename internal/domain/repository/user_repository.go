package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already taken")
	// ErrUnknownRole is returned for role names outside entity.AllRoles.
	ErrUnknownRole = errors.New("unknown role")
)

// UserRepository defines the interface for user-related database operations.
// Implementations enforce email uniqueness and report violations as ErrEmailTaken.
type UserRepository interface {
	// Create inserts u together with its role memberships and fills ID and timestamps.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Update persists profile fields. Email and roles are not changed.
	Update(ctx context.Context, u *entity.User) error
}

// RoleRepository manages the fixed role set.
type RoleRepository interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, name entity.RoleName) (*entity.Role, error)
	GetByName(ctx context.Context, name entity.RoleName) (*entity.Role, error)
	// Assign links an existing user to a role; assigning twice is a no-op.
	Assign(ctx context.Context, userID string, name entity.RoleName) error
}
