package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-management-service/internal/domain/user"
	pkgerrors "user-management-service/pkg/errors"
	"user-management-service/pkg/logger"
)

// UserRepo implements the user Repository interface on top of GORM.
// Writes run inside a transaction that is rolled back on error; reads do not
// open one.
type UserRepo struct {
	db  *gorm.DB    // GORM database handle
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`      // Unique identifier with auto-increment
	Name      string    `gorm:"size:100;not null"`             // User's full name (required)
	Email     string    `gorm:"size:150;not null;uniqueIndex"` // User's unique email address
	Age       *int      // Optional age
	CreatedAt time.Time // Set by GORM on insert
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate creates or updates the users table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

func toDomain(m *UserSchema) *user.User {
	return &user.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Age:       m.Age,
		CreatedAt: m.CreatedAt,
	}
}

// FindByID retrieves a user by ID. It returns nil when the user does not exist.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*user.User, error) {
	log := logger.WithContext(ctx, r.log)

	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug("user not found", zap.Int64("id", id))
			return nil, nil
		}
		log.Error("failed to find user by id", zap.Error(err), zap.Int64("id", id))
		return nil, pkgerrors.NewStorageError("failed to find user by id", err)
	}

	log.Debug("user found", zap.Int64("id", id))
	return toDomain(&model), nil
}

// FindAll retrieves every user ordered by ID.
func (r *UserRepo) FindAll(ctx context.Context) ([]user.User, error) {
	log := logger.WithContext(ctx, r.log)

	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		log.Error("failed to find all users", zap.Error(err))
		return nil, pkgerrors.NewStorageError("failed to find all users", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *toDomain(&models[i])
	}

	log.Debug("users found", zap.Int("count", len(users)))
	return users, nil
}

// Save inserts a new user and returns it with the assigned ID.
func (r *UserRepo) Save(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, pkgerrors.NewStorageError("user cannot be nil", nil)
	}
	log := logger.WithContext(ctx, r.log)

	model := UserSchema{
		Name:  u.Name,
		Email: u.Email,
		Age:   u.Age,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		log.Error("failed to save user", zap.Error(err), zap.String("email", u.Email))
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.NewConflictError("user", fmt.Sprintf("User with this email already exists: %s", u.Email))
		}
		return nil, pkgerrors.NewStorageError("failed to save user", err)
	}

	log.Info("user saved", zap.Int64("id", model.ID))
	return toDomain(&model), nil
}

// Update overwrites name, email and age of an existing user and returns the
// stored record.
func (r *UserRepo) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, pkgerrors.NewStorageError("user cannot be nil", nil)
	}
	log := logger.WithContext(ctx, r.log)

	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&UserSchema{}).Where("id = ?", u.ID).Updates(map[string]any{
			"name":  u.Name,
			"email": u.Email,
			"age":   u.Age,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&model, u.ID).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			log.Warn("attempt to update non-existing user", zap.Int64("id", u.ID))
			return nil, pkgerrors.NewNotFoundError("user", fmt.Sprintf("User not found with id: %d", u.ID))
		case errors.Is(err, gorm.ErrDuplicatedKey):
			log.Warn("duplicate email on update", zap.Int64("id", u.ID), zap.String("email", u.Email))
			return nil, pkgerrors.NewConflictError("user", fmt.Sprintf("Another user with this email already exists: %s", u.Email))
		default:
			log.Error("failed to update user", zap.Error(err), zap.Int64("id", u.ID))
			return nil, pkgerrors.NewStorageError("failed to update user", err)
		}
	}

	log.Info("user updated", zap.Int64("id", model.ID))
	return toDomain(&model), nil
}

// Delete removes a user by ID. It returns a NotFoundError when no such user exists.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	log := logger.WithContext(ctx, r.log)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserSchema
		if err := tx.First(&model, id).Error; err != nil {
			return err
		}
		return tx.Delete(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("attempt to delete non-existing user", zap.Int64("id", id))
			return pkgerrors.NewNotFoundError("user", fmt.Sprintf("User not found with id: %d", id))
		}
		log.Error("failed to delete user", zap.Error(err), zap.Int64("id", id))
		return pkgerrors.NewStorageError("failed to delete user", err)
	}

	log.Info("user deleted", zap.Int64("id", id))
	return nil
}

// FindByEmail retrieves a user by email. It returns nil when no user holds it.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	log := logger.WithContext(ctx, r.log)

	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		log.Error("failed to find user by email", zap.Error(err), zap.String("email", email))
		return nil, pkgerrors.NewStorageError("failed to find user by email", err)
	}

	return toDomain(&model), nil
}

// IsEmailExistsForOtherUser reports whether a user other than excludeID holds email.
func (r *UserRepo) IsEmailExistsForOtherUser(ctx context.Context, email string, excludeID int64) (bool, error) {
	log := logger.WithContext(ctx, r.log)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	if err != nil {
		log.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, pkgerrors.NewStorageError("failed to check email existence", err)
	}

	exists := count > 0
	log.Debug("email exists for other users", zap.String("email", email), zap.Int64("exclude_id", excludeID), zap.Bool("exists", exists))
	return exists, nil
}
