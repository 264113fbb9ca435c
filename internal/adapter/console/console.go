// Package console implements the interactive text menu over the user service.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	domain "user-management-service/internal/domain/user"
	"user-management-service/internal/usecase/user"
	pkgerrors "user-management-service/pkg/errors"
	"user-management-service/pkg/logger"
)

const menu = `
=== User Service ===
1. Create User
2. Get User by ID
3. Get All Users
4. Update User
5. Delete User
6. Find User by Email
7. Check Email Availability
0. Exit`

// Console drives the user service from line-oriented input.
type Console struct {
	uc  user.Usecase
	in  *bufio.Scanner
	out io.Writer
	log *zap.Logger
}

// New creates a Console reading commands from in and writing to out.
func New(uc user.Usecase, in io.Reader, out io.Writer, log *zap.Logger) *Console {
	return &Console{
		uc:  uc,
		in:  bufio.NewScanner(in),
		out: out,
		log: log,
	}
}

// Run shows the menu and executes commands until the user exits, the input
// ends or ctx is cancelled. Service errors are printed and never end the loop.
func (c *Console) Run(ctx context.Context) error {
	c.log.Info("console session started")
	defer c.log.Info("console session stopped")

	for {
		select {
		case <-ctx.Done():
			c.println("Goodbye!")
			return nil
		default:
		}

		c.println(menu)
		choice, ok := c.prompt("\nEnter your choice: ")
		if !ok {
			c.println("Goodbye!")
			return c.in.Err()
		}

		cmdCtx := logger.NewRequestContext(ctx)
		switch strings.TrimSpace(choice) {
		case "1":
			c.createUser(cmdCtx)
		case "2":
			c.getUserByID(cmdCtx)
		case "3":
			c.getAllUsers(cmdCtx)
		case "4":
			c.updateUser(cmdCtx)
		case "5":
			c.deleteUser(cmdCtx)
		case "6":
			c.findUserByEmail(cmdCtx)
		case "7":
			c.checkEmail(cmdCtx)
		case "0":
			c.println("Goodbye!")
			return nil
		default:
			c.println("Invalid choice. Please try again.")
		}
	}
}

func (c *Console) createUser(ctx context.Context) {
	c.println("\n--- Create New User ---")
	name, _ := c.prompt("Enter name: ")
	email, _ := c.prompt("Enter email: ")
	ageInput, _ := c.prompt("Enter age (optional): ")

	age, err := parseAge(ageInput)
	if err != nil {
		c.println("Error: Age must be a valid number!")
		return
	}

	created, err := c.uc.CreateUser(ctx, user.CreateUserRequest{Name: name, Email: email, Age: age})
	if err != nil {
		c.printError(ctx, "create user", err)
		return
	}
	c.println("User created successfully: " + formatUser(created))
}

func (c *Console) getUserByID(ctx context.Context) {
	c.println("\n--- Get User by ID ---")
	id, ok := c.promptID("Enter user ID: ")
	if !ok {
		return
	}

	u, err := c.uc.GetUserByID(ctx, id)
	if err != nil {
		c.printError(ctx, "get user", err)
		return
	}
	if u == nil {
		c.printf("User not found with ID: %d\n", id)
		return
	}
	c.println("User found: " + formatUser(u))
}

func (c *Console) getAllUsers(ctx context.Context) {
	c.println("\n--- All Users ---")
	users, err := c.uc.GetAllUsers(ctx)
	if err != nil {
		c.printError(ctx, "list users", err)
		return
	}
	if len(users) == 0 {
		c.println("No users found.")
		return
	}
	for i := range users {
		c.println(formatUser(&users[i]))
	}
}

func (c *Console) updateUser(ctx context.Context) {
	c.println("\n--- Update User ---")
	id, ok := c.promptID("Enter user ID to update: ")
	if !ok {
		return
	}

	current, err := c.uc.GetUserByID(ctx, id)
	if err != nil {
		c.printError(ctx, "get user", err)
		return
	}
	if current == nil {
		c.printf("User not found with ID: %d\n", id)
		return
	}

	name, _ := c.prompt(fmt.Sprintf("Enter new name (current: %s): ", current.Name))
	email, _ := c.prompt(fmt.Sprintf("Enter new email (current: %s): ", current.Email))
	ageInput, _ := c.prompt(fmt.Sprintf("Enter new age (current: %s): ", formatAge(current.Age)))

	age, err := parseAge(ageInput)
	if err != nil {
		c.println("Error: Age must be a valid number!")
		return
	}

	updated, err := c.uc.UpdateUser(ctx, user.UpdateUserRequest{ID: id, Name: name, Email: email, Age: age})
	if err != nil {
		c.printError(ctx, "update user", err)
		return
	}
	c.println("User updated successfully: " + formatUser(updated))
}

func (c *Console) deleteUser(ctx context.Context) {
	c.println("\n--- Delete User ---")
	id, ok := c.promptID("Enter user ID to delete: ")
	if !ok {
		return
	}

	err := c.uc.DeleteUser(ctx, id)
	switch {
	case pkgerrors.IsNotFound(err):
		c.printf("User not found with ID: %d\n", id)
		return
	case err != nil:
		c.printError(ctx, "delete user", err)
		return
	}
	c.println("User deleted successfully.")
}

func (c *Console) findUserByEmail(ctx context.Context) {
	c.println("\n--- Find User by Email ---")
	email, _ := c.prompt("Enter email: ")

	u, err := c.uc.GetUserByEmail(ctx, email)
	if err != nil {
		c.printError(ctx, "find user by email", err)
		return
	}
	if u == nil {
		c.printf("User not found with email: %s\n", email)
		return
	}
	c.println("User found: " + formatUser(u))
}

func (c *Console) checkEmail(ctx context.Context) {
	c.println("\n--- Check Email Availability ---")
	email, _ := c.prompt("Enter email: ")

	unique, err := c.uc.IsEmailUnique(ctx, email)
	if err != nil {
		c.printError(ctx, "check email", err)
		return
	}
	if unique {
		c.printf("Email %s is available.\n", email)
	} else {
		c.printf("Email %s is already taken.\n", email)
	}
}

// prompt writes label and reads one line. ok is false once input is exhausted.
func (c *Console) prompt(label string) (string, bool) {
	c.printf("%s", label)
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

func (c *Console) promptID(label string) (int64, bool) {
	raw, _ := c.prompt(label)
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		c.println("Error: ID must be a valid number!")
		return 0, false
	}
	return id, true
}

func (c *Console) printError(ctx context.Context, op string, err error) {
	logger.WithContext(ctx, c.log).Warn("command failed", zap.String("operation", op), zap.Error(err))
	c.println("Error: " + err.Error())
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// parseAge treats blank input as "no age".
func parseAge(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	age, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &age, nil
}

func formatAge(age *int) string {
	if age == nil {
		return "none"
	}
	return strconv.Itoa(*age)
}

func formatUser(u *domain.User) string {
	return fmt.Sprintf("User{id=%d, name=%q, email=%q, age=%s, createdAt=%s}",
		u.ID, u.Name, u.Email, formatAge(u.Age), u.CreatedAt.Format("2006-01-02 15:04:05"))
}
