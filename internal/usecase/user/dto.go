package user

// CreateUserRequest represents the input for creating a new user.
type CreateUserRequest struct {
	Name  string `validate:"notblank,max=100"`
	Email string `validate:"notblank,max=150,contains=@"`
	Age   *int   `validate:"omitempty,min=0,max=150"`
}

// UpdateUserRequest represents a partial update of an existing user.
// Blank Name or Email and a nil Age leave the stored value unchanged.
type UpdateUserRequest struct {
	ID    int64  `validate:"gt=0"`
	Name  string `validate:"omitempty,max=100"`
	Email string `validate:"omitempty,max=150,contains=@"`
	Age   *int   `validate:"omitempty,min=0,max=150"`
}
