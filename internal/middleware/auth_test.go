package middleware_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/media-catalog/internal/auth"
	"github.com/vyrodovalexey/media-catalog/internal/middleware"
	"github.com/vyrodovalexey/media-catalog/internal/model"
)

// testAuthenticator is a mock authenticator for middleware tests.
type testAuthenticator struct {
	info  *auth.AuthInfo
	err   error
	calls int
}

func (a *testAuthenticator) Authenticate(
	_ *http.Request,
) (*auth.AuthInfo, error) {
	a.calls++
	return a.info, a.err
}

func (a *testAuthenticator) Method() auth.AuthMethod {
	return auth.AuthMethodAdminKey
}

// successHandler is a simple handler that writes 200 OK.
func successHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func TestAuth_ReadsArePublic(t *testing.T) {
	methods := []string{http.MethodGet, http.MethodHead, http.MethodOptions}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			// Arrange
			failAuth := &testAuthenticator{err: auth.ErrUnauthenticated}
			handler := middleware.Auth(failAuth, zap.NewNop())(successHandler())
			rr := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(rr, httptest.NewRequest(method, "/api/books", nil))

			// Assert
			if rr.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
			}
			if failAuth.calls != 0 {
				t.Errorf("authenticator called %d times, want 0", failAuth.calls)
			}
		})
	}
}

func TestAuth_WritesRequireCredential(t *testing.T) {
	methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			// Arrange
			failAuth := &testAuthenticator{err: auth.ErrUnauthenticated}
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})
			handler := middleware.Auth(failAuth, zap.NewNop())(next)
			rr := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(rr, httptest.NewRequest(method, "/api/books/book-1", nil))

			// Assert
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			if called {
				t.Error("next handler should not be called on 401")
			}
		})
	}
}

func TestAuth_401Response(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "missing key", err: auth.ErrUnauthenticated},
		{name: "wrong key", err: auth.ErrInvalidAdminKey},
		{name: "wrapped error", err: fmt.Errorf("adminkey: %w", auth.ErrInvalidAdminKey)},
		{name: "unexpected error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler := middleware.Auth(&testAuthenticator{err: tt.err}, zap.NewNop())(successHandler())
			rr := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/books", nil))

			// Assert
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			if got := rr.Header().Get("WWW-Authenticate"); got != auth.AdminKeyHeader {
				t.Errorf("WWW-Authenticate = %q, want %q", got, auth.AdminKeyHeader)
			}
			var body model.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != "Unauthorized" {
				t.Errorf("error = %q, want %q", body.Error, "Unauthorized")
			}
		})
	}
}

func TestAuth_ValidAuth_StoresInfoInContext(t *testing.T) {
	// Arrange
	okAuth := &testAuthenticator{
		info: &auth.AuthInfo{Method: auth.AuthMethodAdminKey, Subject: "admin"},
	}
	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, ok := auth.FromContext(r.Context())
		if !ok || info == nil {
			t.Error("AuthInfo not found in context")
			w.WriteHeader(http.StatusInternalServerError)

			return
		}
		subject = info.Subject
		w.WriteHeader(http.StatusCreated)
	})
	handler := middleware.Auth(okAuth, zap.NewNop())(next)
	rr := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/books", nil))

	// Assert
	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if subject != "admin" {
		t.Errorf("subject = %q, want %q", subject, "admin")
	}
}

func TestAuth_WithRealAdminKeyAuthenticator(t *testing.T) {
	// Arrange
	authenticator, err := auth.NewAdminKeyAuthenticator("s3cret", "")
	if err != nil {
		t.Fatalf("NewAdminKeyAuthenticator() error: %v", err)
	}
	handler := middleware.Auth(authenticator, zap.NewNop())(successHandler())

	tests := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{name: "correct key", key: "s3cret", wantStatus: http.StatusOK},
		{name: "wrong key", key: "guess", wantStatus: http.StatusUnauthorized},
		{name: "no key", key: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/books/book-1", nil)
			if tt.key != "" {
				req.Header.Set(auth.AdminKeyHeader, tt.key)
			}
			rr := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(rr, req)

			// Assert
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}
