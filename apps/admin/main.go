package main

import (
	"log"
	"os"

	"github.com/rawadhq/rawad/core"
	"github.com/rawadhq/rawad/core/admin"
	logsvc "github.com/rawadhq/rawad/services/logger"
	"github.com/rawadhq/rawad/storage/database"
	sqlxrepos "github.com/rawadhq/rawad/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.InitConf()

	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(database.Ping(db))

	validate, _ := core.NewValidator()
	adminSvc := admin.NewService(
		sqlxrepos.NewAdminRepository(db), validate, svcLogger,
		conf.AppName, conf.AdminEmail.Address,
	)

	// start CLI
	cli := commandLine{
		db:       db,
		adminSvc: adminSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
