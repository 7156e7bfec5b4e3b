package service

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/repository"
	"github.com/ProofINer/proofin-backend/internal/security/auth"
)

type acceptAllVerifier struct{}

func (acceptAllVerifier) Verify(address, message, signature string) error { return nil }

type rejectAllVerifier struct{}

func (rejectAllVerifier) Verify(address, message, signature string) error {
	return domain.NewAuthError("invalid signature")
}

func newTestAuthService(t *testing.T, verifier SignatureVerifier) *AuthService {
	t.Helper()
	return NewAuthService(
		repository.NewMemorySessionStore(),
		repository.NewMemoryIdentityStore(),
		repository.NewMemoryProfileStore(),
		verifier,
		auth.NewTokenManager("test-secret", "proofin-test"),
		24*time.Hour,
		slog.Default(),
	)
}

func TestLoginValidateRoundtrip(t *testing.T) {
	s := newTestAuthService(t, acceptAllVerifier{})

	session, err := s.Login("0xABCDEF1234567890abcdef1234567890ABCDEF12", domain.RoleTenant, "msg", "sig")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.Address != "0xabcdef1234567890abcdef1234567890abcdef12" {
		t.Fatalf("expected lowercase address, got %s", session.Address)
	}

	got, err := s.ValidateSession(session.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected live session")
	}
	if got.Address != session.Address || got.Role != domain.RoleTenant {
		t.Fatalf("unexpected session identity: %+v", got)
	}
}

func TestLoginCreatesIdentityAndProfile(t *testing.T) {
	s := newTestAuthService(t, acceptAllVerifier{})

	if _, err := s.Login("0xAA00000000000000000000000000000000000001", domain.RoleLandlord, "msg", "sig"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	identity, err := s.GetUser("0xaa00000000000000000000000000000000000001", domain.RoleLandlord)
	if err != nil {
		t.Fatalf("expected identity after first login: %v", err)
	}
	if identity.LastLogin.IsZero() {
		t.Fatal("expected lastLogin to be set")
	}

	profile, err := s.profiles.Get(identity.Address, domain.RoleLandlord)
	if err != nil {
		t.Fatalf("expected default profile after first login: %v", err)
	}
	if profile.Verified {
		t.Fatal("default profile must start unverified")
	}
}

func TestLoginRejectsBadInput(t *testing.T) {
	s := newTestAuthService(t, acceptAllVerifier{})

	if _, err := s.Login("", domain.RoleTenant, "msg", "sig"); err == nil {
		t.Fatal("expected error for empty address")
	}
	if _, err := s.Login("0xabc", domain.Role("admin"), "msg", "sig"); err == nil {
		t.Fatal("expected error for unknown role")
	}

	var ve *domain.ValidationError
	_, err := s.Login("0xabc", domain.Role("admin"), "msg", "sig")
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestLoginRejectsBadSignature(t *testing.T) {
	s := newTestAuthService(t, rejectAllVerifier{})

	_, err := s.Login("0xabcdef1234567890abcdef1234567890abcdef12", domain.RoleTenant, "msg", "sig")
	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	s := newTestAuthService(t, acceptAllVerifier{})
	address := "0xabcdef1234567890abcdef1234567890abcdef12"

	first, err := s.Login(address, domain.RoleTenant, "msg", "sig")
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	second, err := s.Login(address, domain.RoleTenant, "msg", "sig")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("two logins must issue distinct tokens")
	}

	if removed, _ := s.Logout(first.Token); !removed {
		t.Fatal("expected first logout to remove a session")
	}
	if got, _ := s.ValidateSession(second.Token); got == nil {
		t.Fatal("second session must survive first logout")
	}
}

func TestExpiredSessionPurgedOnFirstTouch(t *testing.T) {
	s := newTestAuthService(t, acceptAllVerifier{})

	session, err := s.Login("0xabcdef1234567890abcdef1234567890abcdef12", domain.RoleTenant, "msg", "sig")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	s.now = func() time.Time { return session.ExpiresAt.Add(time.Minute) }

	if got, err := s.ValidateSession(session.Token); err != nil || got != nil {
		t.Fatalf("expected expired session to resolve to nil, got %v, %v", got, err)
	}
	// Purged on first touch; logout now finds nothing.
	if removed, _ := s.Logout(session.Token); removed {
		t.Fatal("expected expired session to already be purged")
	}
}

func TestDoubleLogout(t *testing.T) {
	s := newTestAuthService(t, acceptAllVerifier{})

	session, err := s.Login("0xabcdef1234567890abcdef1234567890abcdef12", domain.RoleTenant, "msg", "sig")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if removed, _ := s.Logout(session.Token); !removed {
		t.Fatal("expected first logout to remove the session")
	}
	if removed, _ := s.Logout(session.Token); removed {
		t.Fatal("expected second logout to be a no-op")
	}
}

func TestGetUsersByRole(t *testing.T) {
	s := newTestAuthService(t, acceptAllVerifier{})

	if _, err := s.Login("0xaa00000000000000000000000000000000000001", domain.RoleTenant, "m", "s"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := s.Login("0xaa00000000000000000000000000000000000002", domain.RoleLandlord, "m", "s"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	tenants, err := s.GetUsersByRole(domain.RoleTenant)
	if err != nil {
		t.Fatalf("list tenants failed: %v", err)
	}
	if len(tenants) != 1 {
		t.Fatalf("expected 1 tenant, got %d", len(tenants))
	}
	if _, err := s.GetUsersByRole(domain.Role("admin")); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
