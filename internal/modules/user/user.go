package user

import "time"

// User is a row of the users table. PasswordHash holds the bcrypt digest.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// PublicUser is the outward-facing view of a user. It has no credential
// field, so handing it to a response encoder can never leak the digest.
type PublicUser struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// Public projects u onto its public view.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		UpdatedAt: u.UpdatedAt,
	}
}
