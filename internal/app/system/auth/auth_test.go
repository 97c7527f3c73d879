package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sessionhub/internal/app/system/auth"
	"go.uber.org/zap"
)

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRequireSignedIn_NoUser(t *testing.T) {
	next, called := okHandler()
	handler := auth.RequireSignedIn(next)

	req := httptest.NewRequest(http.MethodGet, "/api/requests/abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if *called {
		t.Error("next handler must not run for anonymous callers")
	}
}

func TestRequireSignedIn_WithUser(t *testing.T) {
	next, called := okHandler()
	handler := auth.RequireSignedIn(next)

	req := httptest.NewRequest(http.MethodGet, "/api/requests/abc", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "64b0c2f7a1b2c3d4e5f60718", Name: "Test User"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !*called {
		t.Error("next handler should run for signed-in callers")
	}
}

func TestCurrentUser_NotSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := auth.CurrentUser(req); ok {
		t.Error("expected no user on a bare request")
	}
}

func TestLoadSessionUser_UninitializedStoreIsNoop(t *testing.T) {
	auth.Store = nil

	next, called := okHandler()
	handler := auth.LoadSessionUser(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !*called {
		t.Error("middleware must pass through when the store is not initialized")
	}
}

func TestInitSessionStore_EmptyKeyGeneratesOne(t *testing.T) {
	if err := auth.InitSessionStore("", "", "", false, zap.NewNop()); err != nil {
		t.Fatalf("InitSessionStore failed: %v", err)
	}
	if auth.Store == nil {
		t.Fatal("expected the session store to be initialized")
	}
}

func TestLoadSessionUser_RoundTrip(t *testing.T) {
	if err := auth.InitSessionStore("test-session-key-must-be-32-chars-long", "test-session", "", false, zap.NewNop()); err != nil {
		t.Fatalf("InitSessionStore failed: %v", err)
	}

	// Establish a session the way the upstream identity callback would:
	// write the auth values and save the cookie.
	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	seedRec := httptest.NewRecorder()
	sess, _ := auth.Store.Get(seed, auth.SessionName)
	sess.Values["is_authenticated"] = true
	sess.Values["user_id"] = "64b0c2f7a1b2c3d4e5f60718"
	sess.Values["user_name"] = "Test User"
	if err := sess.Save(seed, seedRec); err != nil {
		t.Fatalf("session save failed: %v", err)
	}
	cookies := seedRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie to be set")
	}

	var got *auth.SessionUser
	handler := auth.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected a user in context after the session round trip")
	}
	if got.ID != "64b0c2f7a1b2c3d4e5f60718" {
		t.Errorf("ID: got %q", got.ID)
	}
	if got.Name != "Test User" {
		t.Errorf("Name: got %q", got.Name)
	}
}
