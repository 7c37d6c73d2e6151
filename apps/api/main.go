package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/storage/database/sqlxrepos"
	"github.com/trezcool/darasa/storage/files"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if err := run(std); err != nil {
		std.Fatalf("%+v", err)
	}
}

func run(std *log.Logger) error {
	workDir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getting working directory")
	}
	conf, err := core.NewConfig(workDir)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()
	if err = db.Ping(); err != nil {
		return errors.Wrap(err, "pinging database")
	}

	var mailSvc core.EmailService
	if conf.Debug || conf.TestMode {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	fileStore, err := files.NewLocalStore(conf.Uploads.Dir)
	if err != nil {
		return errors.Wrap(err, "setting up file store")
	}

	validate, translator := core.NewValidators()

	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(db), mailSvc, conf.AppName)
	assignmentSvc := assignment.NewService(sqlxrepos.NewAssignmentRepository(db), fileStore)
	noticeSvc := notice.NewService(sqlxrepos.NewNoticeRepository(db))

	codec := auth.NewCodec(conf.SecretKey, conf.AppName, conf.Server.JWTExpirationDelta, conf.Server.JWTRefreshWindow)

	server := echoapi.NewServer(echoapi.Options{
		Addr:          conf.Server.Address(),
		Conf:          conf,
		Logger:        logger,
		Codec:         codec,
		Admin:         auth.AdminIdentity{Name: conf.Admin.Username},
		StudentSvc:    studentSvc,
		AssignmentSvc: assignmentSvc,
		NoticeSvc:     noticeSvc,
		Validate:      validate,
		Translator:    translator,
	})

	// handle graceful shutdown
	errChan := make(chan error, 1)
	go func() { errChan <- server.Start() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-errChan:
		return errors.Wrap(err, "server error")
	case sig := <-sigChan:
		logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})
		if err = server.Stop(); err != nil {
			return errors.Wrap(err, "stopping server")
		}
	}
	return nil
}
