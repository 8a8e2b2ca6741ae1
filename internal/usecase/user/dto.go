package user

import domain "user-console/internal/domain/user"

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name    string `validate:"required,min=3,max=100"`
	Email   string `validate:"required,email"`
	Company string `validate:"required,max=100"`
}

// UpdateUserRequest replaces every field of an existing user.
type UpdateUserRequest struct {
	ID      int64  `validate:"required,gt=0"`
	Name    string `validate:"required,min=3,max=100"`
	Email   string `validate:"required,email"`
	Company string `validate:"required,max=100"`
}

// ListUsersRequest filters and optionally pages the user list. A zero Limit
// returns every matching user.
type ListUsersRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []domain.User
	Pagination domain.Pagination
}

