package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_sessionGate(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Gate Student", "gate.student@test.cd", "", user.RoleStudent, true)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{name: "public home", method: http.MethodGet, path: "/", wantCode: http.StatusOK},
		{name: "public FAQ needs no cookie", method: http.MethodGet, path: "/api/support/faq", wantCode: http.StatusOK},
		{
			name: "API without cookie", method: http.MethodGet, path: "/api/courses",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthenticated),
		},
		{
			name: "API with garbage cookie", method: http.MethodGet, path: "/api/courses", token: "lol.lol.lol",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthenticated),
		},
		{
			name: "student on admin API", method: http.MethodGet, path: "/api/admin/users", token: studentToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "prefix is boundary aware", method: http.MethodGet, path: "/api/support/faqqq", token: studentToken,
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("navigation without cookie redirects to login", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/dashboard")
		req.Header.Set("Accept", "text/html")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusFound {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusFound)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("Location = %q; want /login", loc)
		}
	})

	t.Run("navigation with stale cookie clears it", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/dashboard", "expired.or.garbage")
		req.Header.Set("Accept", "text/html")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusFound {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusFound)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("Location = %q; want /login", loc)
		}
		var cleared bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == conf.Server.SessionCookieName && c.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Error("stale session cookie was not cleared")
		}
	})

	t.Run("student navigation on admin path goes to dashboard", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/admin", studentToken)
		req.Header.Set("Accept", "text/html")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusFound {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusFound)
		}
		if loc := rec.Header().Get("Location"); loc != "/dashboard" {
			t.Errorf("Location = %q; want /dashboard", loc)
		}
	})
}

func Test_authApi_login(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "Login User", "login.user@test.cd", "s3cret", user.RoleStudent, true)
	testutil.CreateUser(t, usrRepo, "Sleeper", "sleeper@test.cd", "s3cret", user.RoleStudent, false)

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", body: []byte(`{"email":"nope@test.cd","password":"s3cret"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: []byte(`{"email":"login.user@test.cd","password":"nope"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: []byte(`{"email":"sleeper@test.cd","password":"s3cret"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("login sets the session cookie", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/auth/login", []byte(`{"email":"login.user@test.cd","password":"s3cret"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var token string
		for _, c := range rec.Result().Cookies() {
			if c.Name == conf.Server.SessionCookieName {
				token = c.Value
				if !c.HttpOnly {
					t.Error("session cookie must be HttpOnly")
				}
			}
		}
		if token == "" {
			t.Fatal("session cookie not set")
		}

		// the cookie authenticates subsequent API calls
		req, rec = newAuthRequest(http.MethodGet, "/api/courses", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusOK)
		}

		refreshed, err := usrRepo.GetUserByID(req.Context(), usr.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		if refreshed.LastLogin.IsZero() {
			t.Error("LastLogin not set")
		}
	})

	t.Run("logout clears the session cookie", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/auth/logout", getToken(t, usr))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		var cleared bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == conf.Server.SessionCookieName && c.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Error("session cookie was not cleared")
		}
	})
}

func Test_authApi_passwordReset(t *testing.T) {
	testutil.CreateUser(t, usrRepo, "Reset User", "reset.user@test.cd", "0ldpwd", user.RoleStudent, true)

	successData := marchallObj(t, map[string]string{
		"success": "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	tests := []httpTest{
		{
			name: "known email", body: []byte(`{"email":"reset.user@test.cd"}`),
			wantCode: http.StatusOK, wantData: successData,
		},
		{
			name: "unknown email gets the same answer", body: []byte(`{"email":"whoami@test.cd"}`),
			wantCode: http.StatusOK, wantData: successData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/password-reset", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
