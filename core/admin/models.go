package admin

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MaxLoginAttempts is the number of consecutive failed logins before the
// account locks. A locked account stays locked until an operator unlocks it.
const MaxLoginAttempts = 5

var (
	// errors
	ErrNotFound        = errors.New("admin credential not set")
	ErrInvalidPassword = errors.New("invalid password")
	ErrAccountLocked   = errors.New("account locked")
)

// Credential is the back office's single password credential. There is exactly
// one admin account; no usernames.
type Credential struct {
	PasswordHash      []byte    `json:"-"`
	LoginAttempts     int       `json:"login_attempts"`
	Locked            bool      `json:"locked"`
	LastLogin         time.Time `json:"last_login"`   // UTC
	LastAttempt       time.Time `json:"last_attempt"` // UTC
	PasswordChangedAt time.Time `json:"password_changed_at"`
}

func (c *Credential) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	return nil
}

func (c *Credential) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(pwd))
}

// ChangePassword defines the input for a password rotation.
type ChangePassword struct {
	CurrentPassword    string `json:"current_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// Repository persists the single admin credential.
type Repository interface {
	GetCredential(ctx context.Context) (Credential, error)
	SaveCredential(ctx context.Context, cred Credential) error
}
