package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-console/internal/domain/user"
	apperrors "user-console/pkg/errors"
	"user-console/pkg/security"
)

// maxListLimit caps a paged listing.
const maxListLimit = 100

// Service implements the business rules of the users API on top of a
// Repository. Caching lives in the repository decorator, not here.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new Service.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError
// naming the first offending field.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var (
		messages []string
		field    string
	)
	for _, e := range validationErrors {
		if field == "" {
			field = strings.ToLower(e.Field())
		}
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return apperrors.NewValidationError(field, strings.Join(messages, ", "))
}

func (uc *Service) ensureEmailFree(ctx context.Context, email string, self int64) error {
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		uc.log.Error("failed to check existing email", zap.String("email", email), zap.Error(err))
		return apperrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil && existing.ID != self {
		uc.log.Warn("email already exists", zap.String("email", email), zap.Int64("existing_id", existing.ID))
		return apperrors.NewAlreadyExistsError("user", fmt.Sprintf("email %s is already in use", email))
	}
	return nil
}

// CreateUser validates the request, checks email uniqueness and stores the
// user. The stored record, with its assigned id, is returned.
func (uc *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Company = strings.TrimSpace(in.Company)

	uc.log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := uc.ensureEmailFree(ctx, in.Email, 0); err != nil {
		return nil, err
	}

	u, err := uc.repo.Create(ctx, &domain.User{
		Name:    in.Name,
		Email:   in.Email,
		Company: domain.Company{Name: in.Company},
	})
	if err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return u, nil
}

// UpdateUser replaces the user with the given id.
func (uc *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Company = strings.TrimSpace(in.Company)

	uc.log.Info("updating user", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := uc.ensureEmailFree(ctx, in.Email, in.ID); err != nil {
		return nil, err
	}

	u, err := uc.repo.Update(ctx, &domain.User{
		ID:      in.ID,
		Name:    in.Name,
		Email:   in.Email,
		Company: domain.Company{Name: in.Company},
	})
	if err != nil {
		uc.log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	return u, nil
}

// DeleteUser deletes the user with the given id.
func (uc *Service) DeleteUser(ctx context.Context, id int64) error {
	uc.log.Info("deleting user", zap.Int64("id", id))

	if id <= 0 {
		uc.log.Warn("delete user validation failed", zap.Int64("id", id), zap.String("reason", "invalid id"))
		return apperrors.NewValidationError("id", "invalid user id")
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.log.Error("failed to delete user", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// GetUser returns the user with the given id.
func (uc *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		uc.log.Warn("get user validation failed", zap.Int64("id", id), zap.String("reason", "invalid id"))
		return nil, apperrors.NewValidationError("id", "invalid user id")
	}

	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			uc.log.Error("failed to get user", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns users ordered by id, filtered by an optional search term
// over name, email and company. Without a limit every match is returned on a
// single page.
func (uc *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		uc.log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, err
	}

	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit < 0 {
		in.Limit = 0
	}
	if in.Limit > maxListLimit {
		in.Limit = maxListLimit
	}

	filter := ListFilter{Query: query, Limit: in.Limit}
	if in.Limit > 0 {
		filter.Offset = (in.Page - 1) * in.Limit
	}

	uc.log.Debug("listing users", zap.String("query", query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit))

	users, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		uc.log.Error("failed to list users", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	limit := in.Limit
	if limit == 0 {
		limit = max(total, 1)
	}

	return &ListUsersResponse{
		Users:      users,
		Pagination: *domain.NewPagination(total, in.Page, limit),
	}, nil
}
