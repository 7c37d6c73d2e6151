package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/notice"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/storage/database/inmem"
	"github.com/trezcool/darasa/storage/files"
)

type testLogger struct{ t *testing.T }

var _ core.Logger = (*testLogger)(nil)

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Logf("DEBUG: %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Logf("INFO: %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s %v", msg, args) }

type testApp struct {
	server Server
	conf   *core.Config
	codec  *auth.Codec
	admin  auth.AdminIdentity

	studentSvc    *student.Service
	assignmentSvc *assignment.Service
	noticeSvc     *notice.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{
		Debug:           true,
		TestMode:        true,
		Env:             "TEST",
		AppName:         "Darasa",
		SecretKey:       "secret",
		FrontendBaseURL: "http://localhost:5173",
		Server: core.ServerConfig{
			JWTExpirationDelta: 24 * time.Hour,
			JWTRefreshWindow:   5 * time.Minute,
		},
		Admin:   core.AdminConfig{Username: "admin", Password: "s3cr3tpwd"},
		Uploads: core.UploadConfig{MaxSize: 10 << 20},
	}

	db := inmemdb.Open()
	fileStore, err := files.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	validate, translator := core.NewValidators()

	app := &testApp{
		conf:          conf,
		codec:         auth.NewCodec(conf.SecretKey, conf.AppName, conf.Server.JWTExpirationDelta, conf.Server.JWTRefreshWindow),
		admin:         auth.AdminIdentity{Name: conf.Admin.Username},
		studentSvc:    student.NewService(inmemdb.NewStudentRepository(db), nil, conf.AppName),
		assignmentSvc: assignment.NewService(inmemdb.NewAssignmentRepository(db), fileStore),
		noticeSvc:     notice.NewService(inmemdb.NewNoticeRepository(db)),
	}
	app.server = NewServer(Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         testLogger{t: t},
		Codec:          app.codec,
		Admin:          app.admin,
		StudentSvc:     app.studentSvc,
		AssignmentSvc:  app.assignmentSvc,
		NoticeSvc:      app.noticeSvc,
		Validate:       validate,
		Translator:     translator,
	})
	return app
}

// request performs an in-process request against the server.
func (app *testApp) request(t *testing.T, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echoHeaderContentType, "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// createStudent registers a student directly through the service.
func (app *testApp) createStudent(t *testing.T, name, email, pwd string, year student.Year) student.Student {
	t.Helper()
	st, err := app.studentSvc.Create(context.Background(), student.NewStudent{
		Name:     name,
		Email:    email,
		Password: pwd,
		Year:     string(year),
	})
	require.NoError(t, err)
	return st
}

func (app *testApp) studentToken(t *testing.T, st student.Student) string {
	t.Helper()
	token, err := app.codec.SignStudent(st)
	require.NoError(t, err)
	return token
}

func (app *testApp) adminToken(t *testing.T) string {
	t.Helper()
	token, err := app.codec.SignAdmin(app.admin)
	require.NoError(t, err)
	return token
}

func (app *testApp) createAssignment(t *testing.T, title string, year student.Year, due time.Time) assignment.Assignment {
	t.Helper()
	a, err := app.assignmentSvc.Create(context.Background(), assignment.NewAssignment{
		Title:       title,
		Description: "do the thing",
		DueDate:     due,
		TargetYear:  string(year),
	})
	require.NoError(t, err)
	return a
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "unexpected status: %s", rec.Body.String())
}
