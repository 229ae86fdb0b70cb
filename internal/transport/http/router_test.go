package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	providerhandler "procura/internal/provider/handler"
	providerservice "procura/internal/provider/service"
	providerstore "procura/internal/provider/store"
	"procura/internal/reference"
	referencehandler "procura/internal/reference/handler"
)

const testJWTKey = "router-test-key"

func newTestRouter(t *testing.T, health func() error) http.Handler {
	t.Helper()

	providerSvc, err := providerservice.New(providerstore.NewInMemoryStore())
	if err != nil {
		t.Fatalf("failed to build provider service: %v", err)
	}

	return NewRouter(Handlers{
		Provider:  providerhandler.New(providerSvc, slog.Default()),
		Reference: referencehandler.New(reference.NewService()),
	}, slog.Default(), Options{
		AdminJWTKey: testJWTKey,
		Health:      health,
	})
}

func mintToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTKey))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/providers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/providers", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "inspector-1"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReferenceRoutesAreOpen(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/reference/countries", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open reference endpoint, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		router := newTestRouter(t, nil)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("unready", func(t *testing.T) {
		router := newTestRouter(t, func() error { return errors.New("postgres unreachable") })
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}
