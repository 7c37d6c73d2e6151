package echoapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/student"
)

// upload performs a multipart submission request.
func (app *testApp) upload(t *testing.T, path, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echoHeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func TestAssignmentCreateAndList(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)
	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	t.Run("create", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/assignments", adminToken, jsonBody(t, map[string]interface{}{
			"title":       "Trigonometry worksheet",
			"description": "Solve all problems",
			"due_date":    due,
			"target_year": "2nd",
		}))
		checkCode(t, rec, http.StatusCreated)

		var a assignment.Assignment
		decodeBody(t, rec, &a)
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, student.Year2, a.TargetYear)
	})

	t.Run("create with invalid year", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/assignments", adminToken, jsonBody(t, map[string]interface{}{
			"title":       "Bad",
			"description": "Bad",
			"due_date":    due,
			"target_year": "5th",
		}))
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("admin list includes all years", func(t *testing.T) {
		app.createAssignment(t, "History essay", student.Year3, due)

		rec := app.request(t, http.MethodGet, "/v1/assignments/all", adminToken, nil)
		checkCode(t, rec, http.StatusOK)

		var all []assignment.Assignment
		decodeBody(t, rec, &all)
		assert.Len(t, all, 2)
	})

	t.Run("student list only shows their year", func(t *testing.T) {
		st := app.createStudent(t, "awa", "awa@test.cd", "secretpwd", student.Year2)

		rec := app.request(t, http.MethodGet, "/v1/assignments", app.studentToken(t, st), nil)
		checkCode(t, rec, http.StatusOK)

		var mine []assignment.StudentAssignment
		decodeBody(t, rec, &mine)
		require.Len(t, mine, 1)
		assert.Equal(t, "Trigonometry worksheet", mine[0].Title)
		assert.False(t, mine[0].Submitted)
	})
}

func TestAssignmentSubmit(t *testing.T) {
	app := newTestApp(t)
	st := app.createStudent(t, "awa", "awa@test.cd", "secretpwd", student.Year2)
	token := app.studentToken(t, st)
	due := time.Now().Add(48 * time.Hour)
	a := app.createAssignment(t, "Trigonometry worksheet", student.Year2, due)

	t.Run("ok", func(t *testing.T) {
		rec := app.upload(t, "/v1/assignments/"+a.ID+"/submit", token, "homework.pdf", []byte("%PDF-1.4 data"))
		checkCode(t, rec, http.StatusOK)

		// the student listing now folds in the submission
		rec = app.request(t, http.MethodGet, "/v1/assignments", token, nil)
		checkCode(t, rec, http.StatusOK)
		var mine []assignment.StudentAssignment
		decodeBody(t, rec, &mine)
		require.Len(t, mine, 1)
		assert.True(t, mine[0].Submitted)
		assert.Equal(t, "homework.pdf", mine[0].OriginalName.String)
		assert.False(t, mine[0].Grade.Valid)
	})

	t.Run("resubmission replaces the file and resets the grade", func(t *testing.T) {
		full, err := app.assignmentSvc.GetByID(context.Background(), a.ID)
		require.NoError(t, err)
		require.Len(t, full.Submissions, 1)
		firstFile := full.Submissions[0].FileName

		// grade the first submission
		_, err = app.assignmentSvc.Grade(context.Background(), a.ID, full.Submissions[0].ID, assignment.GradeSubmission{Grade: 80})
		require.NoError(t, err)

		rec := app.upload(t, "/v1/assignments/"+a.ID+"/submit", token, "homework-v2.docx", []byte("docx data"))
		checkCode(t, rec, http.StatusOK)

		full, err = app.assignmentSvc.GetByID(context.Background(), a.ID)
		require.NoError(t, err)
		require.Len(t, full.Submissions, 1) // replaced, not duplicated
		sub := full.Submissions[0]
		assert.NotEqual(t, firstFile, sub.FileName)
		assert.Equal(t, "homework-v2.docx", sub.OriginalName)
		assert.False(t, sub.Grade.Valid)
		assert.Equal(t, assignment.StatusSubmitted, sub.Status)
	})

	t.Run("disallowed file type", func(t *testing.T) {
		rec := app.upload(t, "/v1/assignments/"+a.ID+"/submit", token, "homework.exe", []byte("MZ"))
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("file too large", func(t *testing.T) {
		app.conf.Uploads.MaxSize = 16
		defer func() { app.conf.Uploads.MaxSize = 10 << 20 }()

		rec := app.upload(t, "/v1/assignments/"+a.ID+"/submit", token, "big.pdf", bytes.Repeat([]byte("x"), 64))
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("past deadline", func(t *testing.T) {
		overdue := app.createAssignment(t, "Late one", student.Year2, time.Now().Add(-time.Hour))
		rec := app.upload(t, "/v1/assignments/"+overdue.ID+"/submit", token, "homework.pdf", []byte("data"))
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		rec := app.upload(t, "/v1/assignments/nope/submit", token, "homework.pdf", []byte("data"))
		checkCode(t, rec, http.StatusNotFound)
	})
}

func TestAssignmentGrade(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)
	st := app.createStudent(t, "awa", "awa@test.cd", "secretpwd", student.Year2)
	a := app.createAssignment(t, "Trigonometry worksheet", student.Year2, time.Now().Add(48*time.Hour))

	rec := app.upload(t, "/v1/assignments/"+a.ID+"/submit", app.studentToken(t, st), "homework.pdf", []byte("data"))
	checkCode(t, rec, http.StatusOK)
	full, err := app.assignmentSvc.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	subID := full.Submissions[0].ID

	t.Run("ok", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/assignments/"+a.ID+"/grade/"+subID, adminToken,
			jsonBody(t, map[string]interface{}{"grade": 85, "feedback": "Well done"}))
		checkCode(t, rec, http.StatusOK)

		full, err := app.assignmentSvc.GetByID(context.Background(), a.ID)
		require.NoError(t, err)
		sub := full.Submissions[0]
		assert.Equal(t, 85, sub.Grade.Int)
		assert.Equal(t, "Well done", sub.Feedback.String)
		assert.Equal(t, assignment.StatusGraded, sub.Status)
	})

	t.Run("grade out of range", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/assignments/"+a.ID+"/grade/"+subID, adminToken,
			jsonBody(t, map[string]interface{}{"grade": 120}))
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("unknown submission", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/assignments/"+a.ID+"/grade/nope", adminToken,
			jsonBody(t, map[string]interface{}{"grade": 50}))
		checkCode(t, rec, http.StatusNotFound)
	})
}

func TestAssignmentDownload(t *testing.T) {
	app := newTestApp(t)
	owner := app.createStudent(t, "awa", "awa@test.cd", "secretpwd", student.Year2)
	other := app.createStudent(t, "beni", "beni@test.cd", "secretpwd", student.Year2)
	a := app.createAssignment(t, "Trigonometry worksheet", student.Year2, time.Now().Add(48*time.Hour))

	rec := app.upload(t, "/v1/assignments/"+a.ID+"/submit", app.studentToken(t, owner), "homework.pdf", []byte("%PDF data"))
	checkCode(t, rec, http.StatusOK)
	full, err := app.assignmentSvc.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	fileName := full.Submissions[0].FileName
	path := "/v1/assignments/" + a.ID + "/download/" + fileName

	t.Run("no token", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, path, "", nil)
		checkCode(t, rec, http.StatusUnauthorized)
	})

	t.Run("owner downloads their file", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, path, app.studentToken(t, owner), nil)
		checkCode(t, rec, http.StatusOK)
		assert.Equal(t, "%PDF data", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "homework.pdf")
	})

	t.Run("another student is denied", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, path, app.studentToken(t, other), nil)
		checkCode(t, rec, http.StatusForbidden)
	})

	t.Run("admin downloads any file", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, path, app.adminToken(t), nil)
		checkCode(t, rec, http.StatusOK)
	})

	t.Run("unknown file", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/assignments/"+a.ID+"/download/nope.pdf", app.adminToken(t), nil)
		checkCode(t, rec, http.StatusNotFound)
	})
}

func TestAssignmentFixTargetYears(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)
	due := time.Now().Add(48 * time.Hour)

	// legacy labels slip in through the service, which does not validate
	legacy, err := app.assignmentSvc.Create(context.Background(), assignment.NewAssignment{
		Title: "Legacy", Description: "d", DueDate: due, TargetYear: "2",
	})
	require.NoError(t, err)
	blank, err := app.assignmentSvc.Create(context.Background(), assignment.NewAssignment{
		Title: "Blank", Description: "d", DueDate: due, TargetYear: "",
	})
	require.NoError(t, err)
	app.createAssignment(t, "Fine", student.Year3, due)

	rec := app.request(t, http.MethodPost, "/v1/assignments/fix-target-years", adminToken, nil)
	checkCode(t, rec, http.StatusOK)

	var report assignment.FixReport
	decodeBody(t, rec, &report)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Fixed)

	fixed, err := app.assignmentSvc.GetByID(context.Background(), legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, student.Year2, fixed.TargetYear)
	fixed, err = app.assignmentSvc.GetByID(context.Background(), blank.ID)
	require.NoError(t, err)
	assert.Equal(t, student.Year1, fixed.TargetYear)

	// idempotent
	rec = app.request(t, http.MethodPost, "/v1/assignments/fix-target-years", adminToken, nil)
	checkCode(t, rec, http.StatusOK)
	decodeBody(t, rec, &report)
	assert.Equal(t, 0, report.Fixed)
}

func TestAssignmentDelete(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.adminToken(t)
	st := app.createStudent(t, "awa", "awa@test.cd", "secretpwd", student.Year2)
	a := app.createAssignment(t, "Trigonometry worksheet", student.Year2, time.Now().Add(48*time.Hour))

	rec := app.upload(t, "/v1/assignments/"+a.ID+"/submit", app.studentToken(t, st), "homework.pdf", []byte("data"))
	checkCode(t, rec, http.StatusOK)
	full, err := app.assignmentSvc.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	fileName := full.Submissions[0].FileName

	rec = app.request(t, http.MethodDelete, "/v1/assignments/"+a.ID, adminToken, nil)
	checkCode(t, rec, http.StatusOK)

	_, err = app.assignmentSvc.GetByID(context.Background(), a.ID)
	assert.Equal(t, assignment.ErrNotFound, err)

	// the stored file went with it
	_, err = app.assignmentSvc.OpenFile(fileName)
	assert.Error(t, err)

	rec = app.request(t, http.MethodDelete, "/v1/assignments/"+a.ID, adminToken, nil)
	checkCode(t, rec, http.StatusNotFound)
}
