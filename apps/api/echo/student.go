package echoapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/student"
)

type (
	loginRequest struct {
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	authResponse struct {
		Token   string           `json:"token"`
		Student *student.Student `json:"student,omitempty"`
		IsAdmin bool             `json:"isAdmin,omitempty"`
		Name    string           `json:"name,omitempty"`
	}

	messageResponse struct {
		Message string `json:"message"`
	}
)

func (r *loginRequest) validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

type studentApi struct {
	srv *server
}

func registerStudentAPI(g *echo.Group, srv *server) {
	api := studentApi{srv: srv}

	sg := g.Group("/students")
	sg.POST("/register", api.register)
	sg.POST("/login", api.login)
	sg.GET("/profile", api.profile, srv.studentAuth)
	sg.PUT("/profile", api.profileUpdate, srv.studentAuth)

	ag := g.Group("/admin")
	ag.POST("/login", api.adminLogin)
	ag.GET("/students", api.adminList, srv.adminAuth)
	ag.POST("/students", api.adminCreate, srv.adminAuth)
	ag.PUT("/students/:id", api.adminUpdate, srv.adminAuth)
	ag.DELETE("/students/:id", api.adminDelete, srv.adminAuth)
}

func (api *studentApi) register(ctx echo.Context) error {
	var ns student.NewStudent
	if err := ctx.Bind(&ns); err != nil {
		return err
	}
	if err := ns.Validate(api.srv.validate, api.srv.studentSvc); err != nil {
		return err
	}

	st, err := api.srv.studentSvc.Create(ctx.Request().Context(), ns)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	token, err := api.srv.codec.SignStudent(st)
	if err != nil {
		return errors.Wrap(err, "signing token")
	}
	return ctx.JSON(http.StatusCreated, authResponse{Token: token, Student: &st})
}

func (api *studentApi) login(ctx echo.Context) error {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := req.validate(api.srv.validate); err != nil {
		return err
	}
	// the admin account never logs in here
	if req.Name == api.srv.admin.Name {
		return errInvalidCredentials
	}

	st, err := api.srv.studentSvc.Authenticate(ctx.Request().Context(), req.Name, req.Password)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "authenticating student")
	}
	token, err := api.srv.codec.SignStudent(st)
	if err != nil {
		return errors.Wrap(err, "signing token")
	}
	return ctx.JSON(http.StatusOK, authResponse{Token: token, Student: &st})
}

func (api *studentApi) profile(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) profileUpdate(ctx echo.Context) error {
	st, err := getContextStudent(ctx)
	if err != nil {
		return err
	}

	var us student.UpdateStudent
	if err = ctx.Bind(&us); err != nil {
		return err
	}
	if err = us.Validate(st, api.srv.validate, api.srv.studentSvc); err != nil {
		return err
	}

	updated, err := api.srv.studentSvc.Update(ctx.Request().Context(), st.ID, us)
	if err != nil {
		return notFoundErr(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, updated)
}

func (api *studentApi) adminLogin(ctx echo.Context) error {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := req.validate(api.srv.validate); err != nil {
		return err
	}

	nameOK := subtle.ConstantTimeCompare([]byte(req.Name), []byte(api.srv.conf.Admin.Username)) == 1
	pwdOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(api.srv.conf.Admin.Password)) == 1
	if !(nameOK && pwdOK) {
		return errInvalidAdminCreds
	}

	token, err := api.srv.codec.SignAdmin(api.srv.admin)
	if err != nil {
		return errors.Wrap(err, "signing token")
	}
	return ctx.JSON(http.StatusOK, authResponse{Token: token, IsAdmin: true, Name: api.srv.admin.Name})
}

func (api *studentApi) adminList(ctx echo.Context) error {
	students, err := api.srv.studentSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) adminCreate(ctx echo.Context) error {
	var ns student.NewStudent
	if err := ctx.Bind(&ns); err != nil {
		return err
	}
	if err := ns.Validate(api.srv.validate, api.srv.studentSvc); err != nil {
		return err
	}

	st, err := api.srv.studentSvc.Create(ctx.Request().Context(), ns)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) adminUpdate(ctx echo.Context) error {
	orig, err := api.srv.studentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return notFoundErr(err, "getting student")
	}

	var us student.UpdateStudent
	if err = ctx.Bind(&us); err != nil {
		return err
	}
	if err = us.Validate(orig, api.srv.validate, api.srv.studentSvc); err != nil {
		return err
	}

	st, err := api.srv.studentSvc.Update(ctx.Request().Context(), orig.ID, us)
	if err != nil {
		return notFoundErr(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) adminDelete(ctx echo.Context) error {
	if err := api.srv.studentSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return notFoundErr(err, "deleting student")
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Student deleted successfully"})
}
