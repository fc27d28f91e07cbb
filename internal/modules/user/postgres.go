package user

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/georgemunganga/account-service/internal/common"
	"github.com/georgemunganga/account-service/internal/dbx"
	"github.com/lib/pq"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
// Every write runs in its own transaction.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return tx.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash).Scan(&u.ID)
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password, updated_at
		FROM users
		WHERE email = $1
		ORDER BY id
		LIMIT 1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, name, email, password, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRepository) UpdateUser(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, password = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	var updatedAt time.Time
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return tx.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.ID).Scan(&updatedAt)
	})
	if err != nil {
		return classify(err)
	}
	u.UpdatedAt = &updatedAt
	return nil
}

func (r *postgresRepository) scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	var updatedAt sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &updatedAt); err != nil {
		return nil, classify(err)
	}
	if updatedAt.Valid {
		u.UpdatedAt = &updatedAt.Time
	}
	return u, nil
}

// classify maps driver errors onto the common error kinds while keeping the
// original message in the chain.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "23":
			return fmt.Errorf("%w: %w", common.ErrConstraintViolation, err)
		case pqErr.Code.Class() == "08", strings.HasPrefix(string(pqErr.Code), "57P"):
			return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
		}
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("db error: %w", err)
}
