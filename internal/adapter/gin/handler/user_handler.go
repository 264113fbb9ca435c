package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-management-service/internal/domain/user"
	"user-management-service/internal/usecase/user"
	pkgerrors "user-management-service/pkg/errors"
	"user-management-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user.
// Field rules are enforced by the user service.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age,omitempty"`
}

// UpdateUserRequest represents the HTTP request body for updating a user.
// Omitted or blank fields keep their current value.
type UpdateUserRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Age   *int   `json:"age,omitempty"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// EmailAvailabilityResponse reports whether an email is free to use
type EmailAvailabilityResponse struct {
	Email  string `json:"email"`
	Unique bool   `json:"unique"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateUser handles POST /v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	log.Info("Gin CreateUser request", zap.String("name", req.Name), zap.String("email", req.Email))

	created, err := h.uc.CreateUser(ctx, user.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	})
	if err != nil {
		h.handleError(c, "CreateUser", err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(created))
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("Gin GetUser request", zap.Int64("id", id))

	u, err := h.uc.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, "GetUser", err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "User not found with id: " + strconv.FormatInt(id, 10),
		})
		return
	}

	c.JSON(http.StatusOK, toResponse(u))
}

// ListUsers handles GET /v1/users. With an email query parameter it returns
// the single matching user instead.
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	if email, ok := c.GetQuery("email"); ok {
		logger.WithContext(ctx, h.log).Info("Gin GetUserByEmail request", zap.String("email", email))

		u, err := h.uc.GetUserByEmail(ctx, email)
		if err != nil {
			h.handleError(c, "GetUserByEmail", err)
			return
		}
		if u == nil {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "User not found with email: " + email,
			})
			return
		}
		c.JSON(http.StatusOK, toResponse(u))
		return
	}

	logger.WithContext(ctx, h.log).Info("Gin ListUsers request")

	users, err := h.uc.GetAllUsers(ctx)
	if err != nil {
		h.handleError(c, "ListUsers", err)
		return
	}

	resp := ListUsersResponse{Users: make([]UserResponse, len(users))}
	for i := range users {
		resp.Users[i] = toResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateUser handles PUT /v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	log := logger.WithContext(c.Request.Context(), h.log)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	log.Info("Gin UpdateUser request", zap.Int64("id", id), zap.String("name", req.Name), zap.String("email", req.Email))

	updated, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	})
	if err != nil {
		h.handleError(c, "UpdateUser", err)
		return
	}

	c.JSON(http.StatusOK, toResponse(updated))
}

// DeleteUser handles DELETE /v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("Gin DeleteUser request", zap.Int64("id", id))

	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		h.handleError(c, "DeleteUser", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id": id,
	})
}

// CheckEmail handles GET /v1/email-availability?email=
func (h *UserHandler) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if strings.TrimSpace(email) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Email cannot be empty",
		})
		return
	}

	unique, err := h.uc.IsEmailUnique(c.Request.Context(), email)
	if err != nil {
		h.handleError(c, "CheckEmail", err)
		return
	}

	c.JSON(http.StatusOK, EmailAvailabilityResponse{Email: email, Unique: unique})
}

func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("Invalid user ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a valid number",
		})
		return 0, false
	}
	return id, true
}

// handleError converts usecase errors to HTTP responses using the status
// carried by the error type.
func (h *UserHandler) handleError(c *gin.Context, op string, err error) {
	log := logger.WithContext(c.Request.Context(), h.log)
	status := pkgerrors.HTTPStatusOf(err)

	switch {
	case pkgerrors.IsValidation(err):
		log.Warn("Gin "+op+" rejected", zap.Error(err))
		c.JSON(status, ErrorResponse{Error: "validation_error", Message: err.Error()})
	case pkgerrors.IsNotFound(err):
		log.Info("Gin "+op+" not found", zap.Error(err))
		c.JSON(status, ErrorResponse{Error: "not_found", Message: err.Error()})
	case pkgerrors.IsConflict(err):
		log.Warn("Gin "+op+" conflict", zap.Error(err))
		c.JSON(status, ErrorResponse{Error: "conflict", Message: err.Error()})
	default:
		log.Error("Gin "+op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

func toResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
	}
}
