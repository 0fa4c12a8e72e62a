package main

import (
	"database/sql"
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/rawadhq/rawad/core/admin"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	adminSvc *admin.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  setpassword - set the back office password (prompted)")
	fmt.Println("  unlock - clear a login lockout")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "setpassword":
		fmt.Print("Enter new password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cli.printUsage()
			return errHelp
		}
		fmt.Print("Confirm new password:")
		confirm, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if string(pwd) != string(confirm) {
			return errors.New("passwords do not match")
		}
		return cli.setPassword(string(pwd))
	case "unlock":
		return cli.unlock()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
