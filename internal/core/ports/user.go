package ports

import (
	"context"

	"github.com/clavisauth/clavis/internal/core/domain/user"
	"github.com/google/uuid"
)

// UserRepository defines the durable user directory operations the flows need.
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
