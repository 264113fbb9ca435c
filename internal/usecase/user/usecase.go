package user

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-management-service/internal/domain/user"
	pkgerrors "user-management-service/pkg/errors"
	"user-management-service/pkg/logger"
)

// Service implements the business logic for user management operations.
// It provides a clean separation between the front-ends and the data layer.
type Service struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

var _ Usecase = (*Service)(nil)

// New creates a new Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: newValidator()}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// notblank rejects empty and whitespace-only strings.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// formatValidationError converts validator.ValidationErrors into a human-readable error message.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.NewValidationError("", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		isString := e.Kind() == reflect.String
		switch {
		case e.Field() == "ID":
			messages = append(messages, "User ID must be positive")
		case e.Tag() == "notblank":
			messages = append(messages, fmt.Sprintf("%s cannot be empty", e.Field()))
		case e.Tag() == "contains":
			messages = append(messages, fmt.Sprintf("%s must contain %s symbol", e.Field(), e.Param()))
		case e.Tag() == "max" && isString:
			messages = append(messages, fmt.Sprintf("%s cannot exceed %s characters", e.Field(), e.Param()))
		case e.Tag() == "max":
			messages = append(messages, fmt.Sprintf("%s cannot exceed %s", e.Field(), e.Param()))
		case e.Tag() == "min" && e.Param() == "0":
			messages = append(messages, fmt.Sprintf("%s cannot be negative", e.Field()))
		case e.Tag() == "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
}

func invalidIDError() error {
	return pkgerrors.NewValidationError("", "User ID must be positive")
}

func userNotFoundError(id int64) error {
	return pkgerrors.NewNotFoundError("user", fmt.Sprintf("User not found with id: %d", id))
}

// CreateUser creates a new user after validating the request and checking email uniqueness.
func (uc *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email), zapAge(in.Age))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	unique, err := uc.IsEmailUnique(ctx, in.Email)
	if err != nil {
		log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	if !unique {
		log.Warn("email already exists", zap.String("email", in.Email))
		return nil, pkgerrors.NewConflictError("user", fmt.Sprintf("User with this email already exists: %s", in.Email))
	}

	saved, err := uc.repo.Save(ctx, &domain.User{
		Name:  in.Name,
		Email: in.Email,
		Age:   copyAge(in.Age),
	})
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return saved, nil
}

// GetUserByID retrieves a user by ID. It returns nil when no user has that ID.
func (uc *Service) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("getting user by id", zap.Int64("id", id))

	if id <= 0 {
		log.Warn("get user validation failed", zap.Int64("id", id), zap.String("reason", "invalid id"))
		return nil, invalidIDError()
	}

	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		log.Error("failed to get user", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

// GetAllUsers returns every user in the order storage provides them.
func (uc *Service) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("getting all users")

	users, err := uc.repo.FindAll(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

// UpdateUser applies a partial update to an existing user. Blank strings and
// a nil age keep the stored values. A supplied email must not belong to a
// different user.
func (uc *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating user", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email), zapAge(in.Age))

	if strings.TrimSpace(in.Name) == "" {
		in.Name = ""
	}
	if strings.TrimSpace(in.Email) == "" {
		in.Email = ""
	}

	if in.ID <= 0 {
		log.Warn("update user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, invalidIDError()
	}

	existing, err := uc.repo.FindByID(ctx, in.ID)
	if err != nil {
		log.Error("failed to load user for update", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	if existing == nil {
		log.Warn("user to update not found", zap.Int64("id", in.ID))
		return nil, userNotFoundError(in.ID)
	}

	// Supplied fields are only checked once the user is known to exist.
	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	updated := existing.Clone()

	if in.Email != "" {
		taken, err := uc.repo.IsEmailExistsForOtherUser(ctx, in.Email, in.ID)
		if err != nil {
			log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
			return nil, err
		}
		if taken {
			log.Warn("email already exists", zap.String("email", in.Email), zap.Int64("id", in.ID))
			return nil, pkgerrors.NewConflictError("user", fmt.Sprintf("Another user with this email already exists: %s", in.Email))
		}
		updated.Email = in.Email
	}
	if in.Name != "" {
		updated.Name = in.Name
	}
	if in.Age != nil {
		updated.Age = copyAge(in.Age)
	}

	result, err := uc.repo.Update(ctx, updated)
	if err != nil {
		log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// DeleteUser deletes a user after checking that it exists.
func (uc *Service) DeleteUser(ctx context.Context, id int64) error {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.Int64("id", id))

	if id <= 0 {
		log.Warn("delete user validation failed", zap.Int64("id", id), zap.String("reason", "invalid id"))
		return invalidIDError()
	}

	existing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		log.Error("failed to load user for delete", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if existing == nil {
		log.Warn("user to delete not found", zap.Int64("id", id))
		return userNotFoundError(id)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		log.Error("failed to delete user", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

// GetUserByEmail retrieves a user by email. It returns nil when no user holds it.
func (uc *Service) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("getting user by email", zap.String("email", email))

	if strings.TrimSpace(email) == "" {
		log.Warn("get user by email validation failed", zap.String("reason", "empty email"))
		return nil, pkgerrors.NewValidationError("", "Email cannot be empty")
	}

	u, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		log.Error("failed to get user by email", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return u, nil
}

// IsEmailUnique reports whether no user currently holds email.
func (uc *Service) IsEmailUnique(ctx context.Context, email string) (bool, error) {
	u, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return u == nil, nil
}

func copyAge(age *int) *int {
	if age == nil {
		return nil
	}
	v := *age
	return &v
}

func zapAge(age *int) zap.Field {
	if age == nil {
		return zap.Skip()
	}
	return zap.Int("age", *age)
}
