package service

import (
	"log/slog"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/observability/metrics"
	"github.com/ProofINer/proofin-backend/internal/security/auth"
)

// AuthService turns wallet signatures into time-bounded sessions. The
// session store is authoritative for validity; tokens are never trusted
// on their own.
type AuthService struct {
	sessions   domain.SessionStore
	identities domain.IdentityStore
	profiles   domain.ProfileStore
	verifier   SignatureVerifier
	tokens     *auth.TokenManager
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthService creates the auth service.
func NewAuthService(
	sessions domain.SessionStore,
	identities domain.IdentityStore,
	profiles domain.ProfileStore,
	verifier SignatureVerifier,
	tokens *auth.TokenManager,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		sessions:   sessions,
		identities: identities,
		profiles:   profiles,
		verifier:   verifier,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Login verifies a wallet signature and opens a new session. First
// login for an address+role pair also creates the identity and a
// default unverified profile. Concurrent sessions for the same identity
// are independent.
func (s *AuthService) Login(address string, role domain.Role, message, signature string) (*domain.Session, error) {
	if address == "" {
		return nil, domain.NewValidationError("address is required")
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("role must be tenant or landlord")
	}
	if err := s.verifier.Verify(address, message, signature); err != nil {
		return nil, err
	}

	address = domain.NormalizeAddress(address)
	now := s.now()

	identity, err := s.identities.Get(address, role)
	if err != nil {
		if !domain.IsNotFound(err) {
			return nil, err
		}
		identity = &domain.Identity{Address: address, Role: role, CreatedAt: now}
	}
	identity.LastLogin = now
	if err := s.identities.Save(identity); err != nil {
		return nil, err
	}

	if _, err := s.profiles.Get(address, role); err != nil {
		if !domain.IsNotFound(err) {
			return nil, err
		}
		profile := &domain.Profile{
			Address:   address,
			Role:      role,
			Verified:  false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.profiles.Save(profile); err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.GenerateToken(address, role, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	session := &domain.Session{
		Address:   address,
		Role:      role,
		Token:     token,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	metrics.IncrementSessions()
	s.logger.Info("login",
		slog.String("address", address),
		slog.String("role", string(role)),
	)
	return session, nil
}

// ValidateSession resolves a token to its session. Expired sessions are
// purged on first touch and reported as absent; there is no background
// sweeper.
func (s *AuthService) ValidateSession(token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	session, err := s.sessions.Get(token)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if session.Expired(s.now()) {
		if removed, _ := s.sessions.Delete(token); removed {
			metrics.DecrementSessions()
		}
		return nil, nil
	}
	return session, nil
}

// Logout removes a session and reports whether one existed. A second
// logout of the same token is a no-op.
func (s *AuthService) Logout(token string) (bool, error) {
	removed, err := s.sessions.Delete(token)
	if err != nil {
		return false, err
	}
	if removed {
		metrics.DecrementSessions()
	}
	return removed, nil
}

// GetUser returns the identity for an address+role pair.
func (s *AuthService) GetUser(address string, role domain.Role) (*domain.Identity, error) {
	if !role.Valid() {
		return nil, domain.NewValidationError("role must be tenant or landlord")
	}
	return s.identities.Get(address, role)
}

// GetUsersByRole lists every identity holding a role.
func (s *AuthService) GetUsersByRole(role domain.Role) ([]*domain.Identity, error) {
	if !role.Valid() {
		return nil, domain.NewValidationError("role must be tenant or landlord")
	}
	return s.identities.ListByRole(role)
}
