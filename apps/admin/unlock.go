package main

import "context"

func (cli *commandLine) unlock() error {
	return cli.adminSvc.Unlock(context.Background())
}
