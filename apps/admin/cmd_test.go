package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/pkg/errors"

	"github.com/rawadhq/rawad/core"
	"github.com/rawadhq/rawad/core/admin"
	inmemdb "github.com/rawadhq/rawad/storage/database/inmem"
	testutil "github.com/rawadhq/rawad/tests"
)

var adminRepo admin.Repository

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *commandLine {
	testutil.InitConf()

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	adminRepo = inmemdb.NewAdminRepository(db)

	validate, _ := core.NewValidator()
	adminSvc := admin.NewService(adminRepo, validate, nopLogger{}, core.Conf.AppName, core.Conf.AdminEmail.Address)

	// start CLI
	return &commandLine{
		adminSvc: adminSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "registration", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_setPassword(t *testing.T) {
	cli := setup(t)

	cred := testutil.SeedAdmin(t, adminRepo, "Sup3r.Secret")

	type extra struct {
		pwd     string
		confirm string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "empty password", args: []string{"setpassword"}, wantErr: errHelp},
		{name: "mismatched confirmation", args: []string{"setpassword"}, extra: extra{pwd: "N3w.Secret!", confirm: "Other.Secret1"}, wantErrStr: "passwords do not match"},
		{name: "weak password rejected", args: []string{"setpassword"}, extra: extra{pwd: "short", confirm: "short"}, wantErrStr: "validation error"},
		{name: "set", args: []string{"setpassword"}, extra: extra{pwd: "N3w.Secret!", confirm: "N3w.Secret!"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		prompts := 0
		readPasswordFunc = func(fd int) ([]byte, error) {
			prompts++
			if extra, ok := tt.extra.(extra); ok {
				if prompts == 1 {
					return []byte(extra.pwd), nil
				}
				return []byte(extra.confirm), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := adminRepo.GetCredential(context.Background())
				if err != nil {
					t.Fatalf("GetCredential() failed: %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, cred.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if tt.wantErrStr == "validation error" {
				var vErr *core.ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("cli.run() error = %v, want a validation error", err)
				}
			} else if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			} else if err.Error() != tt.wantErrStr {
				t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
			}
		})
	}
}

func Test_commandLine_unlock(t *testing.T) {
	cli := setup(t)

	testutil.SeedAdmin(t, adminRepo, "Sup3r.Secret")

	// lock the account through repeated wrong passwords
	ctx := context.Background()
	for i := 0; i < admin.MaxLoginAttempts; i++ {
		if err := cli.adminSvc.Authenticate(ctx, "nope"); !errors.Is(err, admin.ErrInvalidPassword) && !errors.Is(err, admin.ErrAccountLocked) {
			t.Fatalf("Authenticate() error = %v", err)
		}
	}
	if err := cli.adminSvc.Authenticate(ctx, "Sup3r.Secret"); !errors.Is(err, admin.ErrAccountLocked) {
		t.Fatalf("Authenticate() error = %v, want %v", err, admin.ErrAccountLocked)
	}

	if err := cli.run([]string{"admin", "unlock"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	if err := cli.adminSvc.Authenticate(ctx, "Sup3r.Secret"); err != nil {
		t.Errorf("Authenticate() after unlock error = %v", err)
	}
}
