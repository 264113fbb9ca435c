package user

import (
	"context"

	domain "user-management-service/internal/domain/user"
)

// Usecase defines the interface for user business logic operations.
// Lookups return a nil user and a nil error when the record is absent.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	IsEmailUnique(ctx context.Context, email string) (bool, error)
}

// Repository defines the interface for user data access operations.
// It abstracts the data layer so the GORM implementation and the caching
// decorator can be used interchangeably.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)                               // nil when absent
	FindAll(ctx context.Context) ([]domain.User, error)                                         // storage order
	Save(ctx context.Context, u *domain.User) (*domain.User, error)                             // assigns ID
	Update(ctx context.Context, u *domain.User) (*domain.User, error)                           // full overwrite
	Delete(ctx context.Context, id int64) error                                                 // NotFoundError when absent
	FindByEmail(ctx context.Context, email string) (*domain.User, error)                        // nil when absent
	IsEmailExistsForOtherUser(ctx context.Context, email string, excludeID int64) (bool, error) // ignores excludeID's own row
}
