package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/security/auth"
	"github.com/ProofINer/proofin-backend/internal/service"
)

// LoginRequest carries a wallet login attempt.
type LoginRequest struct {
	Address   string `json:"address"`
	Role      string `json:"role"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// LoginResponse returns the opened session. SessionID mirrors Token for
// clients that still read the old field name.
type LoginResponse struct {
	Token     string      `json:"token"`
	SessionID string      `json:"sessionId"`
	Address   string      `json:"address"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// AuthHandler handles login, logout and session validation.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, logger: logger}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.auth.Login(req.Address, domain.Role(req.Role), req.Message, req.Signature)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, LoginResponse{
		Token:     session.Token,
		SessionID: session.Token,
		Address:   session.Address,
		Role:      session.Role,
		ExpiresAt: session.ExpiresAt,
	})
}

// Validate handles POST /api/auth/validate. A bearer header wins over a
// token in the body.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	token := bearerOrBodyToken(r)
	session, err := h.auth.ValidateSession(token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if session == nil {
		writeData(w, http.StatusOK, map[string]any{"valid": false})
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"valid":     true,
		"address":   session.Address,
		"role":      session.Role,
		"expiresAt": session.ExpiresAt,
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerOrBodyToken(r)
	if token == "" {
		writeErrorMessage(w, http.StatusBadRequest, "token is required")
		return
	}

	removed, err := h.auth.Logout(token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"loggedOut": removed})
}

// GetUser handles GET /api/auth/user/{address}/{role}.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	identity, err := h.auth.GetUser(r.PathValue("address"), domain.Role(r.PathValue("role")))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, identity)
}

// GetUsersByRole handles GET /api/auth/users/{role}.
func (h *AuthHandler) GetUsersByRole(w http.ResponseWriter, r *http.Request) {
	identities, err := h.auth.GetUsersByRole(domain.Role(r.PathValue("role")))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeList(w, http.StatusOK, identities, len(identities))
}

// bearerOrBodyToken pulls the session token from the Authorization
// header, falling back to a {"token": ...} body.
func bearerOrBodyToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, err := auth.ExtractToken(header); err == nil {
			return token
		}
	}
	var body struct {
		Token string `json:"token"`
	}
	if r.Body != nil {
		// Best effort; an empty or malformed body means no token.
		_ = decodeJSON(r, &body)
	}
	return body.Token
}
