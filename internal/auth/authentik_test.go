package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMockAuthLoginCreatesSession(t *testing.T) {
	m := NewMockAuth()

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	w := httptest.NewRecorder()
	m.LoginHandler(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("session_id cookie not set")
	}

	m.sessionMu.RLock()
	session := m.sessions[sessionCookie.Value]
	m.sessionMu.RUnlock()
	if session == nil {
		t.Fatal("session not stored")
	}
	if !IsCommissioner(session.User) {
		t.Error("dev user should be in the commissioners group")
	}
}

func TestMockAuthMiddleware(t *testing.T) {
	m := NewMockAuth()

	// No session cookie redirects to login
	req := httptest.NewRequest(http.MethodGet, "/api/league", nil)
	w := httptest.NewRecorder()
	m.Middleware(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a session")
	})(w, req)
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303 redirect", w.Code)
	}

	// Login, then use the cookie
	loginReq := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	loginW := httptest.NewRecorder()
	m.LoginHandler(loginW, loginReq)

	var sessionCookie *http.Cookie
	for _, c := range loginW.Result().Cookies() {
		if c.Name == "session_id" {
			sessionCookie = c
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/api/league", nil)
	req.AddCookie(sessionCookie)
	w = httptest.NewRecorder()
	called := false
	m.Middleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user := GetUser(r)
		if user == nil || user.Username != "devuser" {
			t.Errorf("unexpected user in context: %+v", user)
		}
	})(w, req)
	if !called {
		t.Error("handler did not run with a valid session")
	}
}

func TestMockAuthLogoutClearsSession(t *testing.T) {
	m := NewMockAuth()

	loginW := httptest.NewRecorder()
	m.LoginHandler(loginW, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	var sessionCookie *http.Cookie
	for _, c := range loginW.Result().Cookies() {
		if c.Name == "session_id" {
			sessionCookie = c
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.AddCookie(sessionCookie)
	w := httptest.NewRecorder()
	m.LogoutHandler(w, req)

	m.sessionMu.RLock()
	_, exists := m.sessions[sessionCookie.Value]
	m.sessionMu.RUnlock()
	if exists {
		t.Error("session should be deleted on logout")
	}
}

func TestIsCommissioner(t *testing.T) {
	cases := []struct {
		name string
		user *User
		want bool
	}{
		{"nil user", nil, false},
		{"no groups", &User{}, false},
		{"regular user", &User{Groups: []string{"users"}}, false},
		{"commissioner", &User{Groups: []string{"users", "commissioners"}}, true},
	}
	for _, tc := range cases {
		if got := IsCommissioner(tc.user); got != tc.want {
			t.Errorf("%s: IsCommissioner = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAuthentikLoginRedirects(t *testing.T) {
	a := NewAuthentikAuth(&AuthentikConfig{
		BaseURL:     "https://auth.example.com",
		ClientID:    "client",
		RedirectURL: "https://app.example.com/auth/callback",
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	w := httptest.NewRecorder()
	a.LoginHandler(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", w.Code)
	}
	loc := w.Header().Get("Location")
	if loc == "" {
		t.Fatal("no redirect location")
	}

	var stateCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
		}
	}
	if stateCookie == nil || stateCookie.Value == "" {
		t.Error("oauth_state cookie not set")
	}
}

func TestCallbackRejectsBadState(t *testing.T) {
	a := NewAuthentikAuth(&AuthentikConfig{BaseURL: "https://auth.example.com"})

	// Missing cookie
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=x&code=y", nil)
	w := httptest.NewRecorder()
	a.CallbackHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing cookie: status = %d, want 400", w.Code)
	}

	// Mismatched state
	req = httptest.NewRequest(http.MethodGet, "/auth/callback?state=wrong&code=y", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "right"})
	w = httptest.NewRecorder()
	a.CallbackHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("state mismatch: status = %d, want 400", w.Code)
	}
}
