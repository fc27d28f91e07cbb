package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgemunganga/account-service/internal/common"
	"github.com/georgemunganga/account-service/internal/logging"
	"github.com/georgemunganga/account-service/internal/modules/activity"
	"github.com/georgemunganga/account-service/internal/modules/auth"
	"github.com/georgemunganga/account-service/internal/modules/user"
)

type service struct {
	users    user.Repository
	hasher   auth.Hasher
	recorder ActivityRecorder
	logger   logging.Logger
}

func NewService(users user.Repository, hasher auth.Hasher, recorder ActivityRecorder, logger logging.Logger) Service {
	return &service{
		users:    users,
		hasher:   hasher,
		recorder: recorder,
		logger:   logger.With("component", "account_service"),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	u := &user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: digest,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		s.logger.Warn(ctx, "register failed", "email", req.Email, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	s.recorder.Record(ctx, activity.Entry{
		Name:   u.Name,
		Email:  u.Email,
		Action: activity.ActionRegistered,
	})
	s.logger.Info(ctx, "user registered", "user_id", u.ID)

	return &RegisterResult{ID: u.ID}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*user.PublicUser, error) {
	u, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error(ctx, "login lookup failed", "email", req.Email, "error", err)
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, u.PasswordHash) {
		s.logger.Info(ctx, "login rejected", "user_id", u.ID)
		return nil, common.ErrInvalidCredentials
	}

	s.recorder.Record(ctx, activity.Entry{
		Email:  u.Email,
		Action: activity.ActionLogin,
	})
	s.logger.Info(ctx, "user logged in", "user_id", u.ID)

	return u.Public(), nil
}

func (s *service) GetProfile(ctx context.Context, id int64) (*user.PublicUser, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (s *service) UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) error {
	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	u := &user.User{
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: digest,
	}
	if err := s.users.UpdateUser(ctx, u); err != nil {
		s.logger.Warn(ctx, "profile update failed", "user_id", id, "error", err)
		return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	s.logger.Info(ctx, "profile updated", "user_id", id)
	return nil
}
