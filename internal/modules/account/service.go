package account

import (
	"context"
	"errors"

	"github.com/georgemunganga/account-service/internal/modules/activity"
	"github.com/georgemunganga/account-service/internal/modules/user"
)

var (
	ErrRegistrationFailed = errors.New("registration failed")
	ErrUpdateFailed       = errors.New("update failed")
)

// Service defines the account operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	Login(ctx context.Context, req LoginRequest) (*user.PublicUser, error)
	GetProfile(ctx context.Context, id int64) (*user.PublicUser, error)
	UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) error
}

// ActivityRecorder receives account events. Record must not block the caller
// for long and has no failure path.
type ActivityRecorder interface {
	Record(ctx context.Context, e activity.Entry)
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

type RegisterResult struct {
	ID int64
}

type LoginRequest struct {
	Email    string
	Password string
}

// UpdateProfileRequest replaces every mutable field. Password is required on
// each update and is always rehashed.
type UpdateProfileRequest struct {
	Name     string
	Email    string
	Password string
}
