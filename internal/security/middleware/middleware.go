package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/security/audit"
	"github.com/ProofINer/proofin-backend/internal/security/auth"
	"github.com/ProofINer/proofin-backend/internal/security/ratelimit"
)

// SessionValidator resolves a bearer token to a live session. The auth
// service implements it; handing sessions out here means the middleware
// never trusts token contents alone.
type SessionValidator interface {
	ValidateSession(token string) (*domain.Session, error)
}

type sessionContextKey struct{}

// RequireAuth rejects requests without a live session.
func RequireAuth(validator SessionValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, errStatus, errMsg := resolveSession(validator, r)
			if session == nil {
				writeAuthError(w, errStatus, errMsg)
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		})
	}
}

// OptionalAuth attaches a session when a valid token is present and
// passes the request through untouched otherwise.
func OptionalAuth(validator SessionValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, _, _ := resolveSession(validator, r); session != nil {
				r = r.WithContext(withSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects authenticated sessions holding the wrong role.
// It must run inside RequireAuth.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r.Context())
			if session == nil {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if session.Role != role {
				writeAuthError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveSession(validator SessionValidator, r *http.Request) (*domain.Session, int, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, http.StatusUnauthorized, "missing authorization header"
	}
	token, err := auth.ExtractToken(authHeader)
	if err != nil {
		return nil, http.StatusUnauthorized, "invalid authorization header"
	}
	session, err := validator.ValidateSession(token)
	if err != nil || session == nil {
		return nil, http.StatusUnauthorized, "invalid or expired session"
	}
	return session, 0, ""
}

func withSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the authenticated session, or nil.
func SessionFromContext(ctx context.Context) *domain.Session {
	if s, ok := ctx.Value(sessionContextKey{}).(*domain.Session); ok {
		return s
	}
	return nil
}

// RateLimitMiddleware limits by wallet address when authenticated and
// by remote host otherwise. Health and metrics endpoints are exempt.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" || r.URL.Path == "/metrics" ||
				r.URL.Path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}

			caller := ""
			if session := SessionFromContext(r.Context()); session != nil {
				caller = session.Address
			} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				caller = host
			} else {
				caller = r.RemoteAddr
			}

			if !limiter.Allow(caller) {
				writeAuthError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records chain-mutating requests before they reach
// their handlers.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/") {
				address, role := "", ""
				if session := SessionFromContext(r.Context()); session != nil {
					address, role = session.Address, string(session.Role)
				}
				switch {
				case strings.HasPrefix(r.URL.Path, "/api/contracts"):
					auditLog.LogContractAction(r.Context(), address, role, "create", "", "initiated")
				case strings.HasPrefix(r.URL.Path, "/api/verifier"):
					auditLog.LogAction(r.Context(), address, role, "verify", "landlord", "", "initiated", "")
				case strings.HasPrefix(r.URL.Path, "/api/nft"):
					auditLog.LogAction(r.Context(), address, role, "mint", "nft", "", "initiated", "")
				case strings.HasPrefix(r.URL.Path, "/api/vault"):
					auditLog.LogAction(r.Context(), address, role, "escrow", "deposit", "", "initiated", "")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware assigns each request a random id, echoed in the
// X-Request-ID response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			buf := make([]byte, 8)
			rand.Read(buf)
			id = hex.EncodeToString(buf)
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), audit.RequestIDContextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORSMiddleware applies the configured allowed origins.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := map[string]bool{}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":false,"message":"` + msg + `"}`))
}
