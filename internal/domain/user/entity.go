package user

import "time"

// Name, email and age bounds. The validate tags on the service request
// types must use the same values.
const (
	MaxNameLength  = 100
	MaxEmailLength = 150
	MinAge         = 0
	MaxAge         = 150
)

// User represents a user entity in the system.
type User struct {
	ID        int64     // ID is assigned by storage on creation and never changes
	Name      string    // Name is the full name of the user
	Email     string    // Email is the unique email address of the user
	Age       *int      // Age is optional; nil means unknown
	CreatedAt time.Time // CreatedAt is set by storage on insert
}

// Clone returns a deep copy so callers can mutate the result freely.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Age != nil {
		age := *u.Age
		c.Age = &age
	}
	return &c
}
