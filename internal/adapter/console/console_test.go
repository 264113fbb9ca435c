package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-management-service/internal/domain/user"
	"user-management-service/internal/usecase/user"
	pkgerrors "user-management-service/pkg/errors"
	"user-management-service/pkg/logger"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req user.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUsecase) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUsecase) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, req user.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserUsecase) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUsecase) IsEmailUnique(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func intPtr(i int) *int { return &i }

// runConsole feeds the given lines to a console and returns everything it printed.
func runConsole(t *testing.T, uc *MockUserUsecase, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	c := New(uc, in, &out, zaptest.NewLogger(t))
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestConsole_ExitAndInvalidChoice(t *testing.T) {
	uc := new(MockUserUsecase)
	out := runConsole(t, uc, "9", "0")

	assert.Contains(t, out, "=== User Service ===")
	assert.Contains(t, out, "7. Check Email Availability")
	assert.Contains(t, out, "Enter your choice: ")
	assert.Contains(t, out, "Invalid choice. Please try again.")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
	uc.AssertExpectations(t)
}

func TestConsole_EndOfInputExits(t *testing.T) {
	out := runConsole(t, new(MockUserUsecase))
	assert.Contains(t, out, "Goodbye!")
}

func TestConsole_CancelledContextExits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	c := New(new(MockUserUsecase), strings.NewReader("1\n"), &out, zaptest.NewLogger(t))
	require.NoError(t, c.Run(ctx))
	assert.Equal(t, "Goodbye!\n", out.String())
}

func TestConsole_CreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		uc := new(MockUserUsecase)
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		uc.On("CreateUser", mock.Anything, user.CreateUserRequest{Name: "John", Email: "john@example.com", Age: intPtr(30)}).
			Return(&domain.User{ID: 1, Name: "John", Email: "john@example.com", Age: intPtr(30), CreatedAt: created}, nil)

		out := runConsole(t, uc, "1", "John", "john@example.com", "30", "0")

		assert.Contains(t, out, `User created successfully: User{id=1, name="John", email="john@example.com", age=30, createdAt=2024-01-02 03:04:05}`)
		uc.AssertExpectations(t)
	})

	t.Run("Blank Age", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("CreateUser", mock.Anything, user.CreateUserRequest{Name: "Jane", Email: "jane@example.com"}).
			Return(&domain.User{ID: 2, Name: "Jane", Email: "jane@example.com"}, nil)

		out := runConsole(t, uc, "1", "Jane", "jane@example.com", "", "0")

		assert.Contains(t, out, "age=none")
		uc.AssertExpectations(t)
	})

	t.Run("Invalid Age", func(t *testing.T) {
		uc := new(MockUserUsecase)
		out := runConsole(t, uc, "1", "John", "john@example.com", "abc", "0")

		assert.Contains(t, out, "Error: Age must be a valid number!")
		uc.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("Conflict Continues Loop", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewConflictError("user", "User with this email already exists: john@example.com"))

		out := runConsole(t, uc, "1", "John", "john@example.com", "", "9", "0")

		assert.Contains(t, out, "Error: User with this email already exists: john@example.com")
		assert.Contains(t, out, "Invalid choice. Please try again.")
	})
}

func TestConsole_GetUserByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("GetUserByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Name: "John", Email: "john@example.com"}, nil)

		out := runConsole(t, uc, "2", "1", "0")
		assert.Contains(t, out, `User found: User{id=1, name="John"`)
	})

	t.Run("Not Found", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("GetUserByID", mock.Anything, int64(42)).Return(nil, nil)

		out := runConsole(t, uc, "2", "42", "0")
		assert.Contains(t, out, "User not found with ID: 42")
	})

	t.Run("Invalid ID", func(t *testing.T) {
		uc := new(MockUserUsecase)
		out := runConsole(t, uc, "2", "x", "0")
		assert.Contains(t, out, "Error: ID must be a valid number!")
	})

	t.Run("Validation Error", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("GetUserByID", mock.Anything, int64(-1)).Return(nil, pkgerrors.NewValidationError("", "User ID must be positive"))

		out := runConsole(t, uc, "2", "-1", "0")
		assert.Contains(t, out, "Error: validation failed: User ID must be positive")
	})
}

func TestConsole_GetAllUsers(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("GetAllUsers", mock.Anything).Return([]domain.User{}, nil)

		out := runConsole(t, uc, "3", "0")
		assert.Contains(t, out, "No users found.")
	})

	t.Run("Lists Each User", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("GetAllUsers", mock.Anything).Return([]domain.User{
			{ID: 1, Name: "A", Email: "a@example.com"},
			{ID: 2, Name: "B", Email: "b@example.com"},
		}, nil)

		out := runConsole(t, uc, "3", "0")
		assert.Contains(t, out, `User{id=1, name="A"`)
		assert.Contains(t, out, `User{id=2, name="B"`)
	})

	t.Run("Storage Error", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("GetAllUsers", mock.Anything).Return(nil, errors.New("connection refused"))

		out := runConsole(t, uc, "3", "0")
		assert.Contains(t, out, "Error: connection refused")
	})
}

func TestConsole_UpdateUser(t *testing.T) {
	t.Run("Blank Keeps Current", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("GetUserByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Name: "Old", Email: "old@example.com", Age: intPtr(20)}, nil)
		uc.On("UpdateUser", mock.Anything, user.UpdateUserRequest{ID: 1, Name: "New"}).
			Return(&domain.User{ID: 1, Name: "New", Email: "old@example.com", Age: intPtr(20)}, nil)

		out := runConsole(t, uc, "4", "1", "New", "", "", "0")

		assert.Contains(t, out, "Enter new name (current: Old): ")
		assert.Contains(t, out, "Enter new email (current: old@example.com): ")
		assert.Contains(t, out, "Enter new age (current: 20): ")
		assert.Contains(t, out, `User updated successfully: User{id=1, name="New"`)
		uc.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("GetUserByID", mock.Anything, int64(5)).Return(nil, nil)

		out := runConsole(t, uc, "4", "5", "0")
		assert.Contains(t, out, "User not found with ID: 5")
		uc.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	})

	t.Run("Invalid Age", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("GetUserByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Name: "Old", Email: "old@example.com"}, nil)

		out := runConsole(t, uc, "4", "1", "", "", "old", "0")
		assert.Contains(t, out, "Enter new age (current: none): ")
		assert.Contains(t, out, "Error: Age must be a valid number!")
		uc.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	})

	t.Run("Conflict", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("GetUserByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Name: "Old", Email: "old@example.com"}, nil)
		uc.On("UpdateUser", mock.Anything, user.UpdateUserRequest{ID: 1, Email: "taken@example.com"}).
			Return(nil, pkgerrors.NewConflictError("user", "Another user with this email already exists: taken@example.com"))

		out := runConsole(t, uc, "4", "1", "", "taken@example.com", "", "0")
		assert.Contains(t, out, "Error: Another user with this email already exists: taken@example.com")
	})
}

func TestConsole_DeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("DeleteUser", mock.Anything, int64(3)).Return(nil)

		out := runConsole(t, uc, "5", "3", "0")
		assert.Contains(t, out, "User deleted successfully.")
	})

	t.Run("Not Found", func(t *testing.T) {
		uc := new(MockUserUsecase)
		uc.On("DeleteUser", mock.Anything, int64(3)).Return(pkgerrors.NewNotFoundError("user", "User not found with id: 3"))

		out := runConsole(t, uc, "5", "3", "0")
		assert.Contains(t, out, "User not found with ID: 3")
	})

	t.Run("Invalid ID", func(t *testing.T) {
		uc := new(MockUserUsecase)
		out := runConsole(t, uc, "5", "three", "0")
		assert.Contains(t, out, "Error: ID must be a valid number!")
		uc.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	})
}

func TestConsole_FindUserByEmail(t *testing.T) {
	uc := new(MockUserUsecase)
	uc.On("GetUserByEmail", mock.Anything, "john@example.com").Return(&domain.User{ID: 1, Name: "John", Email: "john@example.com"}, nil)
	uc.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	out := runConsole(t, uc, "6", "john@example.com", "6", "ghost@example.com", "0")

	assert.Contains(t, out, `User found: User{id=1, name="John"`)
	assert.Contains(t, out, "User not found with email: ghost@example.com")
}

func TestConsole_CheckEmail(t *testing.T) {
	uc := new(MockUserUsecase)
	uc.On("IsEmailUnique", mock.Anything, "free@example.com").Return(true, nil)
	uc.On("IsEmailUnique", mock.Anything, "taken@example.com").Return(false, nil)

	out := runConsole(t, uc, "7", "free@example.com", "7", "taken@example.com", "0")

	assert.Contains(t, out, "Email free@example.com is available.")
	assert.Contains(t, out, "Email taken@example.com is already taken.")
}

func TestConsole_FreshRequestIDPerCommand(t *testing.T) {
	uc := new(MockUserUsecase)
	var ids []string
	uc.On("GetAllUsers", mock.Anything).Run(func(args mock.Arguments) {
		ids = append(ids, logger.GetRequestID(args.Get(0).(context.Context)))
	}).Return([]domain.User{}, nil)

	runConsole(t, uc, "3", "3", "0")

	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestParseAge(t *testing.T) {
	age, err := parseAge("  ")
	require.NoError(t, err)
	assert.Nil(t, age)

	age, err = parseAge(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, *age)

	_, err = parseAge("4.2")
	assert.Error(t, err)
}
