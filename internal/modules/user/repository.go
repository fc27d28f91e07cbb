package user

import "context"

// Repository defines data access for users.
type Repository interface {
	// CreateUser inserts a new row and sets u.ID.
	CreateUser(ctx context.Context, u *User) error

	// GetUserByEmail returns the first user with the given email, lowest id first.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID returns the user with the given id.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// UpdateUser overwrites name, email and password and stamps updated_at.
	// It sets u.UpdatedAt to the stored value.
	UpdateUser(ctx context.Context, u *User) error
}
