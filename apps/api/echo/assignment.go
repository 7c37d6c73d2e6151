package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/auth"
)

type assignmentApi struct {
	srv *server
}

func registerAssignmentAPI(g *echo.Group, srv *server) {
	api := assignmentApi{srv: srv}

	ag := g.Group("/assignments")
	ag.GET("", api.listForStudent, srv.studentAuth)
	ag.POST("/:id/submit", api.submit, srv.studentAuth)
	// download checks the token itself: both roles may get at files
	ag.GET("/:id/download/:fileName", api.download)

	ag.GET("/all", api.listAll, srv.adminAuth)
	ag.POST("", api.create, srv.adminAuth)
	ag.POST("/:id/grade/:submissionID", api.grade, srv.adminAuth)
	ag.POST("/fix-target-years", api.fixTargetYears, srv.adminAuth)
	ag.DELETE("/:id", api.remove, srv.adminAuth)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var na assignment.NewAssignment
	if err := ctx.Bind(&na); err != nil {
		return err
	}
	if err := na.Validate(api.srv.validate); err != nil {
		return err
	}

	a, err := api.srv.assignmentSvc.Create(ctx.Request().Context(), na)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) listAll(ctx echo.Context) error {
	assignments, err := api.srv.assignmentSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) listForStudent(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	assignments, err := api.srv.assignmentSvc.QueryForStudent(ctx.Request().Context(), st)
	if err != nil {
		return errors.Wrap(err, "querying student assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	if fh.Size > api.srv.conf.Uploads.MaxSize {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(
			"File too large. Maximum size is %dMB", api.srv.conf.Uploads.MaxSize>>20))
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	sub, err := api.srv.assignmentSvc.Submit(ctx.Request().Context(), ctx.Param("id"), st, assignment.Upload{
		Content:      f,
		OriginalName: fh.Filename,
	})
	if err != nil {
		switch errors.Cause(err) {
		case assignment.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Assignment not found")
		case assignment.ErrDeadlinePassed, assignment.ErrFileType:
			return echo.NewHTTPError(http.StatusBadRequest, errors.Cause(err).Error())
		}
		return errors.Wrap(err, "submitting assignment")
	}
	return ctx.JSON(http.StatusOK, struct {
		messageResponse
		Submission assignment.Submission `json:"submission"`
	}{messageResponse{Message: "Assignment submitted successfully"}, sub})
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	var gs assignment.GradeSubmission
	if err := ctx.Bind(&gs); err != nil {
		return err
	}
	if err := gs.Validate(api.srv.validate); err != nil {
		return err
	}

	sub, err := api.srv.assignmentSvc.Grade(ctx.Request().Context(), ctx.Param("id"), ctx.Param("submissionID"), gs)
	if err != nil {
		switch errors.Cause(err) {
		case assignment.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Assignment not found")
		case assignment.ErrSubmissionNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Submission not found")
		}
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, struct {
		messageResponse
		Submission assignment.Submission `json:"submission"`
	}{messageResponse{Message: "Submission graded successfully"}, sub})
}

// download serves a submitted file to the admin or to the student who owns it.
func (api *assignmentApi) download(ctx echo.Context) error {
	claims, err := api.srv.verifyRequest(ctx)
	if err != nil {
		return err
	}
	ident, err := claims.Identity()
	if err != nil {
		return errAccessDenied
	}

	sub, err := api.srv.assignmentSvc.FindSubmissionByFile(
		ctx.Request().Context(), ctx.Param("id"), ctx.Param("fileName"))
	if err != nil {
		switch errors.Cause(err) {
		case assignment.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "Assignment not found")
		case assignment.ErrSubmissionNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		}
		return errors.Wrap(err, "locating submission")
	}

	switch id := ident.(type) {
	case auth.AdminIdentity:
		if id != api.srv.admin {
			return errAccessDenied
		}
	case auth.StudentIdentity:
		// students only get at their own files
		if sub.StudentID != id.ID {
			return errAccessDenied
		}
	default:
		return errAccessDenied
	}

	f, err := api.srv.assignmentSvc.OpenFile(sub.FileName)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "File not found on server")
	}
	defer f.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, sub.OriginalName))
	return ctx.Stream(http.StatusOK, echo.MIMEOctetStream, f)
}

func (api *assignmentApi) fixTargetYears(ctx echo.Context) error {
	report, err := api.srv.assignmentSvc.FixTargetYears(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "fixing target years")
	}
	return ctx.JSON(http.StatusOK, struct {
		messageResponse
		assignment.FixReport
	}{
		messageResponse{Message: fmt.Sprintf("Fixed %d out of %d assignments", report.Fixed, report.Total)},
		report,
	})
}

func (api *assignmentApi) remove(ctx echo.Context) error {
	if err := api.srv.assignmentSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == assignment.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Assignment not found")
		}
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Assignment deleted successfully"})
}
