package echoapi

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/student"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Conf   *core.Config
		Logger core.Logger

		Codec *auth.Codec
		Admin auth.AdminIdentity

		StudentSvc    *student.Service
		AssignmentSvc *assignment.Service
		NoticeSvc     *notice.Service

		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start() error
		Stop() error
	}

	server struct {
		app  *echo.Echo
		addr string

		conf   *core.Config
		logger core.Logger

		codec *auth.Codec
		admin auth.AdminIdentity

		studentSvc    *student.Service
		assignmentSvc *assignment.Service
		noticeSvc     *notice.Service

		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Server = (*server)(nil)

func NewServer(opts Options) Server {
	s := &server{
		app:           echo.New(),
		addr:          opts.Addr,
		conf:          opts.Conf,
		logger:        opts.Logger,
		codec:         opts.Codec,
		admin:         opts.Admin,
		studentSvc:    opts.StudentSvc,
		assignmentSvc: opts.AssignmentSvc,
		noticeSvc:     opts.NoticeSvc,
		validate:      opts.Validate,
		translator:    opts.Translator,
	}
	s.setup(opts.DisableReqLogs)
	return s
}

func (s *server) setup(disableReqLogs bool) {
	s.app.HideBanner = true
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.translator, s.signalShutdown)
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Logger.SetLevel(log.ERROR)
	}

	// middleware
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !disableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(middleware.Recover())
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{s.conf.FrontendBaseURL},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		ExposeHeaders: []string{newTokenHeader},
	}))

	// routes
	v1 := s.app.Group("/v1")
	registerStudentAPI(v1, s)
	registerAssignmentAPI(v1, s)
	registerNoticeAPI(v1, s)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func (s *server) Start() error {
	return s.app.Start(s.addr)
}

func (s *server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.Shutdown(ctx)
}

// signalShutdown lets the error handler trigger a graceful stop when an
// unrecoverable error bubbles up.
func (s *server) signalShutdown() {
	go func() {
		if err := s.Stop(); err != nil {
			s.app.Logger.Error(err)
		}
	}()
}
