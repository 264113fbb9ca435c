package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-management-service/internal/adapter/cache"
	domain "user-management-service/internal/domain/user"
	"user-management-service/internal/usecase/user"
	"user-management-service/pkg/logger"
)

// UserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// FindByID retrieves a user by ID using the cache-aside pattern.
// Absent users are not cached.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, r.log)

	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	// Cache miss - use single-flight to prevent stampede
	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		u, err := r.dbRepo.FindByID(ctx, id)
		if err != nil || u == nil {
			return u, err
		}

		if err := r.cache.Set(ctx, u); err != nil {
			log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u, _ := result.(*domain.User)
	// Callers sharing a flight must not share the pointer.
	return u.Clone(), nil
}

// FindAll delegates to the DB repository.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.FindAll(ctx)
}

// Save delegates to the DB repository.
func (r *UserRepository) Save(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.dbRepo.Save(ctx, u)
}

// Update updates the user in DB and invalidates the cache.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	updated, err := r.dbRepo.Update(ctx, u)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, u.ID)
	return updated, nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id)
	return nil
}

// FindByEmail delegates to the DB repository.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.FindByEmail(ctx, email)
}

// IsEmailExistsForOtherUser delegates to the DB repository.
func (r *UserRepository) IsEmailExistsForOtherUser(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.dbRepo.IsEmailExistsForOtherUser(ctx, email, excludeID)
}

func (r *UserRepository) invalidate(ctx context.Context, id int64) {
	if err := r.cache.Delete(ctx, id); err != nil {
		logger.WithContext(ctx, r.log).Warn("failed to invalidate cache", zap.Int64("id", id), zap.Error(err))
	}
}
