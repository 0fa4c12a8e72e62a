package main

import "context"

func (cli *commandLine) setPassword(pwd string) error {
	return cli.adminSvc.SetPassword(context.Background(), pwd)
}
