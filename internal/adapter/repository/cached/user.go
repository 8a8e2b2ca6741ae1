package cached

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-console/internal/adapter/cache"
	domain "user-console/internal/domain/user"
	"user-console/internal/usecase/user"
)

// UserRepository decorates a user.Repository with cache-aside reads. Misses
// for the same key are collapsed with singleflight so only one caller reaches
// the database.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create stores the user and invalidates cached listings.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := r.dbRepo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	r.invalidateLists(ctx)
	return created, nil
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	key := fmt.Sprintf("user:%d", id)
	result, err, shared := r.group.Do(key, func() (any, error) {
		// another caller may have filled the cache while we waited
		if cachedUser, err := r.cache.Get(ctx, id); err == nil && cachedUser != nil {
			return cachedUser, nil
		}

		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(ctx, u); err != nil {
			r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.log.Debug("user lookup shared with concurrent caller", zap.Int64("id", id))
	}

	u := *result.(*domain.User)
	return &u, nil
}

// GetByEmail delegates to the DB repository.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// Update updates the user in DB and invalidates its cache entry and listings.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	updated, err := r.dbRepo.Update(ctx, u)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Delete(ctx, u.ID); err != nil {
		r.log.Warn("failed to invalidate cache after update", zap.Int64("id", u.ID), zap.Error(err))
	}
	r.invalidateLists(ctx)
	return updated, nil
}

// Delete deletes the user from DB and invalidates its cache entry and listings.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache after delete", zap.Int64("id", id), zap.Error(err))
	}
	r.invalidateLists(ctx)
	return nil
}

// List serves listings from cache, collapsing concurrent misses.
func (r *UserRepository) List(ctx context.Context, filter user.ListFilter) ([]domain.User, int64, error) {
	key := fmt.Sprintf("q=%s:%d:%d", filter.Query, filter.Offset, filter.Limit)

	cachedList, err := r.cache.GetList(ctx, key)
	if err != nil {
		r.log.Warn("list cache get error, falling back to database", zap.String("key", key), zap.Error(err))
	} else if cachedList != nil {
		return cachedList.Users, cachedList.Total, nil
	}

	result, err, _ := r.group.Do("list:"+key, func() (any, error) {
		users, total, err := r.dbRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		list := &cache.UserList{Users: users, Total: total}
		if err := r.cache.SetList(ctx, key, list); err != nil {
			r.log.Warn("failed to cache user list", zap.String("key", key), zap.Error(err))
		}
		return list, nil
	})
	if err != nil {
		return nil, 0, err
	}

	list := result.(*cache.UserList)
	return append([]domain.User(nil), list.Users...), list.Total, nil
}

func (r *UserRepository) invalidateLists(ctx context.Context) {
	if err := r.cache.InvalidateLists(ctx); err != nil {
		r.log.Warn("failed to invalidate list cache", zap.Error(err))
	}
}
