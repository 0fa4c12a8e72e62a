package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"

	echoapi "github.com/rawadhq/rawad/apps/api/echo"
	"github.com/rawadhq/rawad/core"
	"github.com/rawadhq/rawad/core/admin"
	"github.com/rawadhq/rawad/core/registration"
	emailsvc "github.com/rawadhq/rawad/services/email"
	filesvc "github.com/rawadhq/rawad/services/filestore"
	logsvc "github.com/rawadhq/rawad/services/logger"
	"github.com/rawadhq/rawad/storage/database"
	sqlxrepos "github.com/rawadhq/rawad/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.InitConf()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	regRepo := sqlxrepos.NewRegistrationRepository(db)
	adminRepo := sqlxrepos.NewAdminRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var files core.FileStorage
	if conf.Debug {
		files = filesvc.NewDummyService()
	} else {
		if files, err = filesvc.NewS3Service(context.Background()); err != nil {
			logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
		}
	}

	validate, translator := core.NewValidator()

	regSvc := registration.NewService(regRepo, files, mailSvc, logger, conf.AdminEmail)
	adminSvc := admin.NewService(adminRepo, validate, logger, conf.AppName, conf.AdminEmail.Address)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof and /debug/vars are served on a separate mux so they never
	// leak onto the public listener.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		debugMux := http.NewServeMux()
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.Handle("/debug/vars", expvar.Handler())
		if err = http.ListenAndServe("localhost:6060", debugMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		conf.Server.Address(),
		&echoapi.Deps{
			Logger:          logger,
			RegistrationSvc: regSvc,
			AdminSvc:        adminSvc,
			Validate:        validate,
			Translator:      translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Ping(db); err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
