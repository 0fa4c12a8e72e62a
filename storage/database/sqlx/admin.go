package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/rawadhq/rawad/core/admin"
)

// admin_config holds exactly one row; onerow is a constrained bool PK.
type credentialRow struct {
	OneRow            bool      `db:"onerow"`
	PasswordHash      []byte    `db:"password_hash"`
	LoginAttempts     int       `db:"login_attempts"`
	Locked            bool      `db:"locked"`
	LastLogin         null.Time `db:"last_login"`
	LastAttempt       null.Time `db:"last_attempt"`
	PasswordChangedAt null.Time `db:"password_changed_at"`
}

type adminRepository struct {
	db *sqlx.DB
}

var _ admin.Repository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(db *sql.DB) *adminRepository {
	return &adminRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *adminRepository) GetCredential(ctx context.Context) (admin.Credential, error) {
	var row credentialRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM admin_config WHERE onerow`)
	if err != nil {
		if err == sql.ErrNoRows {
			return admin.Credential{}, admin.ErrNotFound
		}
		return admin.Credential{}, errors.Wrap(err, "finding admin credential")
	}
	return admin.Credential{
		PasswordHash:      row.PasswordHash,
		LoginAttempts:     row.LoginAttempts,
		Locked:            row.Locked,
		LastLogin:         row.LastLogin.Time,
		LastAttempt:       row.LastAttempt.Time,
		PasswordChangedAt: row.PasswordChangedAt.Time,
	}, nil
}

func (repo *adminRepository) SaveCredential(ctx context.Context, cred admin.Credential) error {
	row := credentialRow{
		OneRow:            true,
		PasswordHash:      cred.PasswordHash,
		LoginAttempts:     cred.LoginAttempts,
		Locked:            cred.Locked,
		LastLogin:         nullTime(cred.LastLogin),
		LastAttempt:       nullTime(cred.LastAttempt),
		PasswordChangedAt: nullTime(cred.PasswordChangedAt),
	}

	query := `
	INSERT INTO admin_config (
		onerow, password_hash, login_attempts, locked, last_login, last_attempt, password_changed_at
	) VALUES (
		:onerow, :password_hash, :login_attempts, :locked, :last_login, :last_attempt, :password_changed_at
	)
	ON CONFLICT (onerow) DO UPDATE SET
		password_hash = EXCLUDED.password_hash,
		login_attempts = EXCLUDED.login_attempts,
		locked = EXCLUDED.locked,
		last_login = EXCLUDED.last_login,
		last_attempt = EXCLUDED.last_attempt,
		password_changed_at = EXCLUDED.password_changed_at`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return errors.Wrap(err, "saving admin credential")
	}
	return nil
}

func nullTime(t time.Time) null.Time {
	return null.NewTime(t.UTC(), !t.IsZero())
}
