package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

// errorResponse is the JSON envelope of every error reply. Message is a
// string for most failures and a {field: error} map for validation failures.
// IsExpired is only ever set on expired-token replies so clients can
// distinguish "log in again" from other 401s.
type errorResponse struct {
	Message   interface{} `json:"message"`
	IsExpired bool        `json:"isExpired,omitempty"`
}

// authError is a gate failure: it short-circuits the request with an HTTP
// status and carries the expired flag through to the response envelope.
type authError struct {
	code    int
	message string
	expired bool
}

func (e *authError) Error() string { return e.message }

var (
	errAuthRequired       = &authError{code: http.StatusUnauthorized, message: "Authentication required"}
	errTokenExpired       = &authError{code: http.StatusUnauthorized, message: "Token has expired. Please login again.", expired: true}
	errTokenInvalid       = &authError{code: http.StatusUnauthorized, message: "Invalid token. Please login again."}
	errAccessDenied       = &authError{code: http.StatusForbidden, message: "Access denied"}
	errStudentNotFound    = &authError{code: http.StatusUnauthorized, message: "Student not found"}
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	errInvalidAdminCreds  = echo.NewHTTPError(http.StatusUnauthorized, "Invalid admin credentials")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var res errorResponse
		var code int

		switch origErr := errors.Cause(err).(type) {
		case *authError:
			code = origErr.code
			res.Message = origErr.message
			res.IsExpired = origErr.expired
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			res.Message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			res.Message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				res.Message = fldErrs
			} else {
				res.Message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			res.Message = "Server error"

			args := []interface{}{errors.Wrap(err, "request failed")}
			if st, cErr := getContextStudent(ctx); cErr == nil {
				args = append(args, st)
			}
			logger.Error("request failed", args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, res)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// notFoundErr maps a domain "not found" error to a 404, passing anything
// else through (wrapped) to be treated as a server error.
func notFoundErr(err error, msg string) error {
	switch errors.Cause(err) {
	case student.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "Student not found")
	}
	return errors.Wrap(err, msg)
}
