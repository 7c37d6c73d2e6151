package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/student"
)

const (
	// newTokenHeader carries a silently refreshed token back to the client
	// whenever the presented one is close to expiry.
	newTokenHeader = "New-Access-Token"

	claimsCtxKey  = "claims"
	studentCtxKey = "student"
	adminCtxKey   = "admin"
)

// verifyRequest extracts and verifies the bearer token, mapping verification
// failures to the appropriate gate errors.
func (s *server) verifyRequest(ctx echo.Context) (*auth.Claims, error) {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, errAuthRequired
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return nil, errTokenInvalid
	}

	claims, err := s.codec.Verify(token)
	if err != nil {
		switch errors.Cause(err) {
		case auth.ErrTokenExpired:
			return nil, errTokenExpired
		default:
			return nil, errTokenInvalid
		}
	}
	return claims, nil
}

// refreshToken sets the newTokenHeader when the claims fall within the
// refresh window. A signing failure is logged but never fails the request.
func (s *server) refreshToken(ctx echo.Context, claims *auth.Claims) {
	token, err := s.codec.MaybeRefresh(claims)
	if err != nil {
		s.logger.Error("refreshing token", errors.Wrap(err, "refreshing token"))
		return
	}
	if token != "" {
		ctx.Response().Header().Set(newTokenHeader, token)
	}
}

// studentAuth only lets authenticated students through. The student account
// must still exist; a token that outlives its account is rejected.
func (s *server) studentAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := s.verifyRequest(ctx)
		if err != nil {
			return err
		}
		ident, err := claims.Identity()
		if err != nil {
			return errAccessDenied
		}
		stIdent, ok := ident.(auth.StudentIdentity)
		if !ok {
			return errAccessDenied
		}

		st, err := s.studentSvc.GetByID(ctx.Request().Context(), stIdent.ID)
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return errStudentNotFound
			}
			return errors.Wrap(err, "loading student")
		}

		ctx.Set(claimsCtxKey, claims)
		ctx.Set(studentCtxKey, st)
		s.refreshToken(ctx, claims)
		return next(ctx)
	}
}

// adminAuth only lets the configured admin through.
func (s *server) adminAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := s.verifyRequest(ctx)
		if err != nil {
			return err
		}
		ident, err := claims.Identity()
		if err != nil {
			return errAccessDenied
		}
		admin, ok := ident.(auth.AdminIdentity)
		if !ok || admin != s.admin {
			return errAccessDenied
		}

		ctx.Set(claimsCtxKey, claims)
		ctx.Set(adminCtxKey, admin)
		s.refreshToken(ctx, claims)
		return next(ctx)
	}
}

func getContextStudent(ctx echo.Context) (student.Student, error) {
	if st, ok := ctx.Get(studentCtxKey).(student.Student); ok {
		return st, nil
	}
	return student.Student{}, errors.New("student not found in echo.Context")
}

func getContextAdmin(ctx echo.Context) (auth.AdminIdentity, error) {
	if admin, ok := ctx.Get(adminCtxKey).(auth.AdminIdentity); ok {
		return admin, nil
	}
	return auth.AdminIdentity{}, errors.New("admin not found in echo.Context")
}
