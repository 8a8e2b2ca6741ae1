package console

import (
	"context"

	domain "user-console/internal/domain/user"
)

// Remote is the users REST API the console reads from and writes to.
// Implementations return a *errors.NetworkError for any failed call.
type Remote interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, in domain.Input) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, in domain.Input) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
