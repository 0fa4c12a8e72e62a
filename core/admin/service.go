package admin

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rawadhq/rawad/core"
)

var NowFunc = time.Now // mockable

// Service manages the back office credential: authentication with lockout,
// password rotation and operator unlock.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   core.Logger

	// attrs a new password may not resemble, e.g. the app name and admin email
	pwdAttrs []string
}

func NewService(repo Repository, validate *validator.Validate, logger core.Logger, pwdAttrs ...string) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		logger:   logger,
		pwdAttrs: pwdAttrs,
	}
}

// Authenticate checks pwd against the stored credential.
//
// Each failure increments the attempt counter; the counter reaching
// MaxLoginAttempts locks the account, and the locking attempt itself already
// reports ErrAccountLocked. Success resets the counter and stamps LastLogin.
// A locked account rejects all attempts, correct password included.
func (svc *Service) Authenticate(ctx context.Context, pwd string) error {
	cred, err := svc.repo.GetCredential(ctx)
	if err != nil {
		return err
	}
	if cred.Locked {
		return ErrAccountLocked
	}

	now := NowFunc().UTC()
	if err := cred.CheckPassword(pwd); err != nil {
		cred.LoginAttempts++
		cred.LastAttempt = now
		if cred.LoginAttempts >= MaxLoginAttempts {
			cred.Locked = true
			svc.logger.Warn("admin account locked after repeated failed logins")
		}
		if err := svc.repo.SaveCredential(ctx, cred); err != nil {
			return err
		}
		if cred.Locked {
			return ErrAccountLocked
		}
		return ErrInvalidPassword
	}

	cred.LoginAttempts = 0
	cred.LastLogin = now
	cred.LastAttempt = now
	return svc.repo.SaveCredential(ctx, cred)
}

// ChangePassword rotates the credential after re-authenticating with the
// current password and applying the password policy to the new one.
func (svc *Service) ChangePassword(ctx context.Context, cp ChangePassword) error {
	if err := svc.validate.Struct(cp); err != nil {
		return err
	}
	if err := svc.Authenticate(ctx, cp.CurrentPassword); err != nil {
		return err
	}
	if err := CheckPasswordPolicy(cp.NewPassword, svc.pwdAttrs...); err != nil {
		return err
	}

	cred, err := svc.repo.GetCredential(ctx)
	if err != nil {
		return err
	}
	if err := cred.SetPassword(cp.NewPassword); err != nil {
		return err
	}
	cred.PasswordChangedAt = NowFunc().UTC()
	return svc.repo.SaveCredential(ctx, cred)
}

// SetPassword seeds or overwrites the credential without knowing the current
// password. Operator use only (CLI); it also clears any lockout.
func (svc *Service) SetPassword(ctx context.Context, pwd string) error {
	if err := CheckPasswordPolicy(pwd, svc.pwdAttrs...); err != nil {
		return err
	}

	cred, err := svc.repo.GetCredential(ctx)
	if err != nil && err != ErrNotFound {
		return err
	}
	if err := cred.SetPassword(pwd); err != nil {
		return err
	}
	cred.Locked = false
	cred.LoginAttempts = 0
	cred.PasswordChangedAt = NowFunc().UTC()
	return svc.repo.SaveCredential(ctx, cred)
}

// Unlock clears the lockout and resets the attempt counter.
func (svc *Service) Unlock(ctx context.Context) error {
	cred, err := svc.repo.GetCredential(ctx)
	if err != nil {
		return err
	}
	cred.Locked = false
	cred.LoginAttempts = 0
	return svc.repo.SaveCredential(ctx, cred)
}
