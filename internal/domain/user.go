package domain

import "time"

type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	ConfirmedAt  *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Confirmed reports whether the email confirmation code has been exchanged.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

// Auth token purposes stored in auth_tokens.purpose
const (
	TokenPurposeConfirm = "confirm"
	TokenPurposeReset   = "reset"
)

// AuthToken is a one-time code for email confirmation or password reset.
type AuthToken struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	Purpose   string    `db:"purpose"`
	ExpiresAt time.Time `db:"expires_at"`
}
