package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/security/audit"
)

type fakeValidator struct {
	sessions map[string]*domain.Session
}

func (f *fakeValidator) ValidateSession(token string) (*domain.Session, error) {
	return f.sessions[token], nil
}

func newFakeValidator() *fakeValidator {
	return &fakeValidator{sessions: map[string]*domain.Session{
		"good-token": {
			Address:   "0xabc",
			Role:      domain.RoleTenant,
			Token:     "good-token",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthMissingHeader(t *testing.T) {
	h := RequireAuth(newFakeValidator(), slog.Default())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contracts", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	h := RequireAuth(newFakeValidator(), slog.Default())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/contracts", nil)
	req.Header.Set("Authorization", "Bearer unknown-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthAttachesSession(t *testing.T) {
	var got *domain.Session
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
	})
	h := RequireAuth(newFakeValidator(), slog.Default())(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/contracts", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.Address != "0xabc" {
		t.Fatalf("expected session in context, got %+v", got)
	}
}

func TestRequireRoleMismatch(t *testing.T) {
	h := RequireAuth(newFakeValidator(), slog.Default())(
		RequireRole(domain.RoleLandlord)(okHandler()))

	req := httptest.NewRequest(http.MethodPost, "/api/contracts", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for role mismatch, got %d", rec.Code)
	}
}

func TestOptionalAuthPassesThrough(t *testing.T) {
	var got *domain.Session
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := OptionalAuth(newFakeValidator(), slog.Default())(inner)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contracts", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected anonymous request to pass, got %d", rec.Code)
	}
	if got != nil {
		t.Fatal("expected no session for anonymous request")
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORSMiddleware([]string{"https://app.proofin.example"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/contracts", nil)
	req.Header.Set("Origin", "https://app.proofin.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.proofin.example" {
		t.Fatal("expected origin to be allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/contracts", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("expected unknown origin to be rejected")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	h := RequestIDMiddleware(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "abc123" {
		t.Fatal("expected client request id to be echoed")
	}
}

func TestRequestIDReachesContext(t *testing.T) {
	var got string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Value(audit.RequestIDContextKey{}).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "abc123" {
		t.Fatalf("expected request id in context, got %q", got)
	}
}
