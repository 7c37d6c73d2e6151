package echoapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/student"
)

func setNow(t *testing.T, now time.Time) {
	t.Helper()
	auth.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { auth.NowFunc = time.Now })
}

// signRaw mints tokens with arbitrary claim shapes for gate tests.
func signRaw(t *testing.T, app *testApp, claims *auth.Claims) string {
	t.Helper()
	token, err := app.codec.Sign(claims)
	require.NoError(t, err)
	return token
}

func TestStudentAuthGate(t *testing.T) {
	app := newTestApp(t)
	st := app.createStudent(t, "awa", "awa@test.cd", "secretpwd", student.Year2)
	now := time.Now()

	tests := []struct {
		name        string
		token       func(t *testing.T) string
		requestedAt time.Time
		wantCode    int
		wantMessage string
		wantExpired bool
	}{
		{
			name:        "no token",
			token:       func(t *testing.T) string { return "" },
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Authentication required",
		},
		{
			name:        "garbage token",
			token:       func(t *testing.T) string { return "not.a.token" },
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Invalid token. Please login again.",
		},
		{
			name:        "expired token",
			token:       func(t *testing.T) string { return app.studentToken(t, st) },
			requestedAt: now.Add(24*time.Hour + time.Second),
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Token has expired. Please login again.",
			wantExpired: true,
		},
		{
			name:        "admin token",
			token:       func(t *testing.T) string { return app.adminToken(t) },
			wantCode:    http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name: "ambiguous shape: admin flag with subject id",
			token: func(t *testing.T) string {
				return signRaw(t, app, &auth.Claims{
					Name:             st.Name,
					IsAdmin:          true,
					RegisteredClaims: jwt.RegisteredClaims{Subject: st.ID},
				})
			},
			wantCode:    http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name: "no subject id",
			token: func(t *testing.T) string {
				return signRaw(t, app, &auth.Claims{Name: st.Name})
			},
			wantCode:    http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name: "token for a deleted account",
			token: func(t *testing.T) string {
				ghost := app.createStudent(t, "ghost", "ghost@test.cd", "secretpwd", student.Year1)
				token := app.studentToken(t, ghost)
				require.NoError(t, app.studentSvc.Delete(context.Background(), ghost.ID))
				return token
			},
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Student not found",
		},
		{
			name:     "valid student token",
			token:    func(t *testing.T) string { return app.studentToken(t, st) },
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setNow(t, now)
			token := tt.token(t)
			if !tt.requestedAt.IsZero() {
				setNow(t, tt.requestedAt)
			}

			rec := app.request(t, http.MethodGet, "/v1/students/profile", token, nil)
			checkCode(t, rec, tt.wantCode)
			if tt.wantMessage != "" {
				var res struct {
					Message   string `json:"message"`
					IsExpired bool   `json:"isExpired"`
				}
				decodeBody(t, rec, &res)
				assert.Equal(t, tt.wantMessage, res.Message)
				assert.Equal(t, tt.wantExpired, res.IsExpired)
			}
		})
	}
}

func TestAdminAuthGate(t *testing.T) {
	app := newTestApp(t)
	st := app.createStudent(t, "awa", "awa@test.cd", "secretpwd", student.Year2)
	now := time.Now()

	tests := []struct {
		name        string
		token       func(t *testing.T) string
		wantCode    int
		wantMessage string
	}{
		{
			name:        "no token",
			token:       func(t *testing.T) string { return "" },
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Authentication required",
		},
		{
			name:        "student token",
			token:       func(t *testing.T) string { return app.studentToken(t, st) },
			wantCode:    http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name: "admin flag but wrong name",
			token: func(t *testing.T) string {
				return signRaw(t, app, &auth.Claims{Name: "impostor", IsAdmin: true})
			},
			wantCode:    http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name: "admin name is case sensitive",
			token: func(t *testing.T) string {
				return signRaw(t, app, &auth.Claims{Name: "Admin", IsAdmin: true})
			},
			wantCode:    http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name: "ambiguous shape: admin flag with subject id",
			token: func(t *testing.T) string {
				return signRaw(t, app, &auth.Claims{
					Name:             app.admin.Name,
					IsAdmin:          true,
					RegisteredClaims: jwt.RegisteredClaims{Subject: st.ID},
				})
			},
			wantCode:    http.StatusForbidden,
			wantMessage: "Access denied",
		},
		{
			name:     "valid admin token",
			token:    func(t *testing.T) string { return app.adminToken(t) },
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setNow(t, now)
			rec := app.request(t, http.MethodGet, "/v1/admin/students", tt.token(t), nil)
			checkCode(t, rec, tt.wantCode)
			if tt.wantMessage != "" {
				var res struct {
					Message string `json:"message"`
				}
				decodeBody(t, rec, &res)
				assert.Equal(t, tt.wantMessage, res.Message)
			}
		})
	}
}

func TestSilentRefresh(t *testing.T) {
	app := newTestApp(t)
	st := app.createStudent(t, "awa", "awa@test.cd", "secretpwd", student.Year2)
	now := time.Now()

	t.Run("fresh token gets no replacement", func(t *testing.T) {
		setNow(t, now)
		token := app.studentToken(t, st)

		rec := app.request(t, http.MethodGet, "/v1/students/profile", token, nil)
		checkCode(t, rec, http.StatusOK)
		assert.Empty(t, rec.Header().Get(newTokenHeader))
	})

	t.Run("token near expiry gets a replacement", func(t *testing.T) {
		setNow(t, now)
		token := app.studentToken(t, st)

		setNow(t, now.Add(23*time.Hour+56*time.Minute))
		rec := app.request(t, http.MethodGet, "/v1/students/profile", token, nil)
		checkCode(t, rec, http.StatusOK)

		refreshed := rec.Header().Get(newTokenHeader)
		require.NotEmpty(t, refreshed)
		assert.NotEqual(t, token, refreshed)

		// the replacement works and carries the same identity
		rec = app.request(t, http.MethodGet, "/v1/students/profile", refreshed, nil)
		checkCode(t, rec, http.StatusOK)

		// the original keeps working until its own expiry
		rec = app.request(t, http.MethodGet, "/v1/students/profile", token, nil)
		checkCode(t, rec, http.StatusOK)
	})

	t.Run("admin tokens refresh too", func(t *testing.T) {
		setNow(t, now)
		token := app.adminToken(t)

		setNow(t, now.Add(23*time.Hour+58*time.Minute))
		rec := app.request(t, http.MethodGet, "/v1/admin/students", token, nil)
		checkCode(t, rec, http.StatusOK)

		refreshed := rec.Header().Get(newTokenHeader)
		require.NotEmpty(t, refreshed)

		rec = app.request(t, http.MethodGet, "/v1/admin/students", refreshed, nil)
		checkCode(t, rec, http.StatusOK)
	})
}
