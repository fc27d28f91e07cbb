package account

import (
	"context"
	"errors"
	"testing"

	"github.com/georgemunganga/account-service/internal/common"
	"github.com/georgemunganga/account-service/internal/logging"
	"github.com/georgemunganga/account-service/internal/modules/activity"
	"github.com/georgemunganga/account-service/internal/modules/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(repo *memRepo, rec *fakeRecorder) Service {
	return NewService(repo, auth.NewBcryptHasher(bcrypt.MinCost), rec, logging.Discard())
}

func TestRegisterThenLogin(t *testing.T) {
	repo, rec := newMemRepo(), &fakeRecorder{}
	svc := newTestService(repo, rec)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ID)

	stored := repo.row(res.ID)
	assert.NotEqual(t, "p1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("p1")))

	u, err := svc.Login(ctx, LoginRequest{Email: "ann@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", u.Email)
	assert.Equal(t, "Ann", u.Name)

	entries := rec.recorded()
	require.Len(t, entries, 2)
	assert.Equal(t, activity.Entry{Name: "Ann", Email: "ann@x.com", Action: activity.ActionRegistered}, entries[0])
	assert.Equal(t, activity.Entry{Email: "ann@x.com", Action: activity.ActionLogin}, entries[1])
}

func TestLogin_UnknownEmail(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newTestService(newMemRepo(), rec)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@x.com", Password: "p1"})

	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, rec.recorded())
}

func TestLogin_WrongPassword(t *testing.T) {
	repo, rec := newMemRepo(), &fakeRecorder{}
	svc := newTestService(repo, rec)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "ann@x.com", Password: "wrong"})

	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Len(t, rec.recorded(), 1, "failed login is not recorded")
}

func TestLogin_StoreFailurePassesThrough(t *testing.T) {
	repo := newMemRepo()
	repo.err = common.ErrStoreUnavailable
	svc := newTestService(repo, &fakeRecorder{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ann@x.com", Password: "p1"})

	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Run("no unique constraint", func(t *testing.T) {
		svc := newTestService(newMemRepo(), &fakeRecorder{})
		ctx := context.Background()

		first, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})
		require.NoError(t, err)
		second, err := svc.Register(ctx, RegisterRequest{Name: "Ann 2", Email: "ann@x.com", Password: "p2"})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		// Lowest id wins the lookup.
		u, err := svc.Login(ctx, LoginRequest{Email: "ann@x.com", Password: "p1"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, u.ID)
	})

	t.Run("unique constraint", func(t *testing.T) {
		repo, rec := newMemRepo(), &fakeRecorder{}
		repo.uniqueEmail = true
		svc := newTestService(repo, rec)
		ctx := context.Background()

		_, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})
		require.NoError(t, err)
		_, err = svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRegistrationFailed)
		assert.ErrorIs(t, err, common.ErrConstraintViolation)
		assert.Contains(t, err.Error(), "users_email_key")
		assert.Len(t, rec.recorded(), 1, "rejected registration is not recorded")
	})
}

func TestRegister_HashFailure(t *testing.T) {
	repo, rec := newMemRepo(), &fakeRecorder{}
	svc := NewService(repo, failingHasher{}, rec, logging.Discard())

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})

	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.Empty(t, repo.rows)
	assert.Empty(t, rec.recorded())
}

func TestGetProfile(t *testing.T) {
	svc := newTestService(newMemRepo(), &fakeRecorder{})
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, 42)
	assert.ErrorIs(t, err, common.ErrNotFound)

	res, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})
	require.NoError(t, err)

	u, err := svc.GetProfile(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, u.ID)
	assert.Nil(t, u.UpdatedAt)
}

func TestUpdateProfile_ReplacesAllFields(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &fakeRecorder{})
	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "p1"})
	require.NoError(t, err)

	err = svc.UpdateProfile(ctx, res.ID, UpdateProfileRequest{Name: "Anne", Email: "anne@x.com", Password: "p2"})
	require.NoError(t, err)

	u, err := svc.GetProfile(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anne", u.Name)
	assert.Equal(t, "anne@x.com", u.Email)
	assert.NotNil(t, u.UpdatedAt)

	digest := repo.row(res.ID).PasswordHash
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(digest), []byte("p2")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(digest), []byte("p1")))

	_, err = svc.Login(ctx, LoginRequest{Email: "anne@x.com", Password: "p1"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestUpdateProfile_Failures(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		svc := newTestService(newMemRepo(), &fakeRecorder{})

		err := svc.UpdateProfile(context.Background(), 7, UpdateProfileRequest{Name: "x", Email: "x@x.com", Password: "p"})

		assert.ErrorIs(t, err, ErrUpdateFailed)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("store error", func(t *testing.T) {
		repo := newMemRepo()
		repo.err = errors.New("db error: statement timeout")
		svc := newTestService(repo, &fakeRecorder{})

		err := svc.UpdateProfile(context.Background(), 1, UpdateProfileRequest{Name: "x", Email: "x@x.com", Password: "p"})

		assert.ErrorIs(t, err, ErrUpdateFailed)
		assert.Contains(t, err.Error(), "statement timeout")
	})

	t.Run("hash error", func(t *testing.T) {
		svc := NewService(newMemRepo(), failingHasher{}, &fakeRecorder{}, logging.Discard())

		err := svc.UpdateProfile(context.Background(), 1, UpdateProfileRequest{Password: "p"})

		assert.ErrorIs(t, err, ErrUpdateFailed)
	})
}
