package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-console/internal/domain/user"
	usecase "user-console/internal/usecase/user"
	apperrors "user-console/pkg/errors"
	"user-console/pkg/security"
)

// UserRepo implements usecase.Repository with GORM over sqlite or postgres.
type UserRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ usecase.Repository = (*UserRepo)(nil)

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"not null"`
	Email       string `gorm:"not null;uniqueIndex:idx_users_email"`
	CompanyName string `gorm:"column:company_name;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func toSchema(u *user.User) UserSchema {
	return UserSchema{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		CompanyName: u.Company.Name,
	}
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:      m.ID,
		Name:    m.Name,
		Email:   m.Email,
		Company: user.Company{Name: m.CompanyName},
	}
}

func notFound(id int64) error {
	return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}

// Create inserts a new user and returns it with its assigned id.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := toSchema(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewAlreadyExistsError("user", fmt.Sprintf("email %s is already in use", u.Email))
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.toDomain(), nil
}

// Update overwrites name, email and company of an existing user.
func (r *UserRepo) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	res := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":         u.Name,
		"email":        u.Email,
		"company_name": u.Company.Name,
	})
	if err := res.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewAlreadyExistsError("user", fmt.Sprintf("email %s is already in use", u.Email))
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", u.ID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("user not found for update", zap.Int64("id", u.ID))
		return nil, notFound(u.ID)
	}

	r.log.Info("user updated in db", zap.Int64("id", u.ID))
	return r.GetByID(ctx, u.ID)
}

// Delete removes a user from the database by ID.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.NewValidationError("id", "invalid user id")
	}

	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if err := res.Error; err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("user not found for delete", zap.Int64("id", id))
		return notFound(id)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, notFound(id)
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByEmail retrieves a user by email address, or nil when none has it.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return model.toDomain(), nil
}

// List returns users ordered by id together with the number of matches. The
// query, if any, matches name, email or company case-insensitively.
func (r *UserRepo) List(ctx context.Context, filter usecase.ListFilter) ([]user.User, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&UserSchema{})
		if filter.Query != "" {
			pattern := security.ContainsPattern(filter.Query)
			q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(company_name) LIKE ? ESCAPE '\'`,
				pattern, pattern, pattern)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		r.log.Error("failed to count users in db", zap.Error(err), zap.String("query", filter.Query))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	q := scoped().Order("id")
	if filter.Limit > 0 {
		q = q.Offset(int(filter.Offset)).Limit(int(filter.Limit))
	}

	var models []UserSchema
	if err := q.Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("query", filter.Query))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toDomain()
	}
	return users, total, nil
}

// Count returns the number of stored users.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
