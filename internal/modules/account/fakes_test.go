package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/georgemunganga/account-service/internal/common"
	"github.com/georgemunganga/account-service/internal/modules/activity"
	"github.com/georgemunganga/account-service/internal/modules/user"
)

// memRepo is an in-memory user.Repository. With uniqueEmail set it rejects
// duplicate emails the way a unique index would.
type memRepo struct {
	mu          sync.Mutex
	rows        map[int64]user.User
	nextID      int64
	uniqueEmail bool
	err         error
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[int64]user.User{}}
}

func (m *memRepo) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.uniqueEmail {
		for _, row := range m.rows {
			if row.Email == u.Email {
				return fmt.Errorf("%w: %w", common.ErrConstraintViolation,
					errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`))
			}
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.rows[u.ID] = *u
	return nil
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var found *user.User
	for id, row := range m.rows {
		if row.Email == email && (found == nil || id < found.ID) {
			r := row
			found = &r
		}
	}
	if found == nil {
		return nil, common.ErrNotFound
	}
	return found, nil
}

func (m *memRepo) GetUserByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &row, nil
}

func (m *memRepo) UpdateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[u.ID]; !ok {
		return common.ErrNotFound
	}
	now := time.Now().UTC()
	u.UpdatedAt = &now
	m.rows[u.ID] = *u
	return nil
}

func (m *memRepo) row(id int64) user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e activity.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

func (f *fakeRecorder) recorded() []activity.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]activity.Entry(nil), f.entries...)
}

// failingHasher fails every Hash call.
type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) {
	return "", errors.New("hash password: bcrypt: password length exceeds 72 bytes")
}

func (failingHasher) Verify(string, string) bool { return false }
