package admin

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawadhq/rawad/core"
)

type fakeRepo struct {
	mu     sync.Mutex
	cred   Credential
	seeded bool
}

func (r *fakeRepo) GetCredential(ctx context.Context) (Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.seeded {
		return Credential{}, ErrNotFound
	}
	return r.cred, nil
}

func (r *fakeRepo) SaveCredential(ctx context.Context, cred Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cred = cred
	r.seeded = true
	return nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

const testPassword = "Sup3r.Secret"

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{}
	validate, _ := core.NewValidator()
	svc := NewService(repo, validate, nopLogger{}, "Rawad", "admin@rawad.test")
	require.NoError(t, svc.SetPassword(context.Background(), testPassword))
	return svc, repo
}

func TestServiceAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("correct password", func(t *testing.T) {
		svc, repo := newTestService(t)
		require.NoError(t, svc.Authenticate(ctx, testPassword))
		assert.Zero(t, repo.cred.LoginAttempts)
		assert.False(t, repo.cred.LastLogin.IsZero())
	})

	t.Run("wrong password increments attempts", func(t *testing.T) {
		svc, repo := newTestService(t)
		assert.ErrorIs(t, svc.Authenticate(ctx, "nope"), ErrInvalidPassword)
		assert.Equal(t, 1, repo.cred.LoginAttempts)
		assert.False(t, repo.cred.Locked)
	})

	t.Run("success resets the counter", func(t *testing.T) {
		svc, repo := newTestService(t)
		for i := 0; i < MaxLoginAttempts-1; i++ {
			require.ErrorIs(t, svc.Authenticate(ctx, "nope"), ErrInvalidPassword)
		}
		require.NoError(t, svc.Authenticate(ctx, testPassword))
		assert.Zero(t, repo.cred.LoginAttempts)
	})

	t.Run("fifth failure locks", func(t *testing.T) {
		svc, repo := newTestService(t)
		for i := 0; i < MaxLoginAttempts-1; i++ {
			require.ErrorIs(t, svc.Authenticate(ctx, "nope"), ErrInvalidPassword)
		}
		// the locking attempt itself reports the lockout
		assert.ErrorIs(t, svc.Authenticate(ctx, "nope"), ErrAccountLocked)
		assert.True(t, repo.cred.Locked)
	})

	t.Run("locked account rejects the correct password", func(t *testing.T) {
		svc, _ := newTestService(t)
		for i := 0; i < MaxLoginAttempts; i++ {
			_ = svc.Authenticate(ctx, "nope")
		}
		assert.ErrorIs(t, svc.Authenticate(ctx, testPassword), ErrAccountLocked)
	})

	t.Run("unseeded credential", func(t *testing.T) {
		validate, _ := core.NewValidator()
		svc := NewService(&fakeRepo{}, validate, nopLogger{})
		assert.ErrorIs(t, svc.Authenticate(ctx, testPassword), ErrNotFound)
	})
}

func TestServiceUnlock(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	for i := 0; i < MaxLoginAttempts; i++ {
		_ = svc.Authenticate(ctx, "nope")
	}
	require.True(t, repo.cred.Locked)

	require.NoError(t, svc.Unlock(ctx))
	assert.False(t, repo.cred.Locked)
	assert.Zero(t, repo.cred.LoginAttempts)
	assert.NoError(t, svc.Authenticate(ctx, testPassword))
}

func TestServiceChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates and invalidates the old password", func(t *testing.T) {
		svc, repo := newTestService(t)
		cp := ChangePassword{
			CurrentPassword:    testPassword,
			NewPassword:        "N3w.Secret!",
			NewPasswordConfirm: "N3w.Secret!",
		}
		require.NoError(t, svc.ChangePassword(ctx, cp))
		assert.False(t, repo.cred.PasswordChangedAt.IsZero())

		assert.ErrorIs(t, svc.Authenticate(ctx, testPassword), ErrInvalidPassword)
		assert.NoError(t, svc.Authenticate(ctx, "N3w.Secret!"))
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc, _ := newTestService(t)
		cp := ChangePassword{
			CurrentPassword:    "nope",
			NewPassword:        "N3w.Secret!",
			NewPasswordConfirm: "N3w.Secret!",
		}
		assert.ErrorIs(t, svc.ChangePassword(ctx, cp), ErrInvalidPassword)
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		svc, _ := newTestService(t)
		cp := ChangePassword{
			CurrentPassword:    testPassword,
			NewPassword:        "N3w.Secret!",
			NewPasswordConfirm: "Other.Secret1!",
		}
		assert.Error(t, svc.ChangePassword(ctx, cp))
	})

	t.Run("policy violations", func(t *testing.T) {
		svc, _ := newTestService(t)
		for name, pwd := range map[string]string{
			"too short":           "Ab1.",
			"whitespace":          "Ab1. pass",
			"all numeric":         "1234567890",
			"no complexity":       "alllowercase1",
			"similar to app name": "Rawad...1",
		} {
			t.Run(name, func(t *testing.T) {
				cp := ChangePassword{CurrentPassword: testPassword, NewPassword: pwd, NewPasswordConfirm: pwd}
				err := svc.ChangePassword(ctx, cp)
				var verr *core.ValidationError
				require.ErrorAs(t, err, &verr, "password %q must violate the policy", pwd)
				assert.Equal(t, "new_password", verr.Fields[0].Field)
			})
		}
	})
}

func TestCheckPasswordPolicy(t *testing.T) {
	tests := []struct {
		name  string
		pwd   string
		attrs []string
		valid bool
	}{
		{name: "valid", pwd: "Sup3r.Secret", valid: true},
		{name: "exactly 8 chars", pwd: "Ab1.efgh", valid: true},
		{name: "7 chars", pwd: "Ab1.efg"},
		{name: "tab", pwd: "Ab1.\tefgh"},
		{name: "numeric only", pwd: "123456789"},
		{name: "no special", pwd: "Abc1efgh"},
		{name: "no digit", pwd: "Abc.efgh"},
		{name: "no upper", pwd: "abc1.fgh"},
		{name: "similar to attr", pwd: "Admin@Rawad.test1", attrs: []string{"admin@rawad.test"}},
		{name: "unrelated attr", pwd: "Sup3r.Secret", attrs: []string{"admin@rawad.test"}, valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPasswordPolicy(tt.pwd, tt.attrs...)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
