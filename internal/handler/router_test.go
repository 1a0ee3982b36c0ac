package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/authapp/internal/auth"
	"github.com/hitoshi/authapp/internal/token"
)

func TestSetupAuthRoutes_SignUpEndpoint(t *testing.T) {
	router := SetupAuthRoutes(&mockAuthService{}, &mockAuthenticator{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Errorf("POST /api/auth/signup status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}
}

func TestSetupAuthRoutes_SignInEndpoint(t *testing.T) {
	svc := &mockAuthService{
		signInFn: func(ctx context.Context, email, password string) (*auth.SignInResult, error) {
			return &auth.SignInResult{Token: "t"}, nil
		},
	}
	router := SetupAuthRoutes(svc, &mockAuthenticator{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("POST /api/auth/signin status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestSetupAuthRoutes_MeEndpoint_RequiresBearer(t *testing.T) {
	authn := &mockAuthenticator{
		authenticateFn: func(ctx context.Context, raw string) (*token.Identity, error) {
			return &token.Identity{ID: "account-1"}, nil
		},
	}
	router := SetupAuthRoutes(&mockAuthService{}, authn)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /api/auth/me without token status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer t")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("GET /api/auth/me with token status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestSetupAuthRoutes_UnknownRoute_Returns404Or405(t *testing.T) {
	router := SetupAuthRoutes(&mockAuthService{}, &mockAuthenticator{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/signup"},
		{http.MethodGet, "/api/auth/unknown"},
		{http.MethodDelete, "/api/auth/signin"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		code := w.Result().StatusCode
		if code != http.StatusNotFound && code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want 404 or 405", tt.method, tt.path, code)
		}
	}
}

func TestNewRouter_HealthAndMetricsRoutes(t *testing.T) {
	metricsCalled := false
	router := NewRouter(&RouterDeps{
		CORSAllowedOrigin: "http://localhost:3000",
		Authenticator:     &mockAuthenticator{},
		AuthService:       &mockAuthService{},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metricsCalled = true
		}),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("GET /api/health status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if got := w.Result().Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Result().Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	if !metricsCalled {
		t.Error("metrics handler should be mounted at /metrics")
	}
}

func TestNewRouter_RecoversFromPanic(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, in auth.SignUpInput) error {
			panic("unexpected")
		},
	}
	router := NewRouter(&RouterDeps{
		CORSAllowedOrigin: "http://localhost:3000",
		Authenticator:     &mockAuthenticator{},
		AuthService:       svc,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}
