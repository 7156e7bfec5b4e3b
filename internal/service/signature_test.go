package service

import (
	"encoding/hex"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func signMessage(t *testing.T, message string) (address, signature string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sig, err := crypto.Sign(personalDigest(message), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	// Present v as 27/28 the way wallets do.
	sig[64] += 27
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), "0x" + hex.EncodeToString(sig)
}

func TestVerifyStrictRoundtrip(t *testing.T) {
	v := NewEthereumVerifier(true, slog.Default())
	message := "Sign in to ProofIn"
	address, signature := signMessage(t, message)

	if err := v.Verify(address, message, signature); err != nil {
		t.Fatalf("expected valid signature to verify, got %v", err)
	}
}

func TestVerifyStrictRejectsWrongAddress(t *testing.T) {
	v := NewEthereumVerifier(true, slog.Default())
	message := "Sign in to ProofIn"
	_, signature := signMessage(t, message)
	other, _ := signMessage(t, message)

	if err := v.Verify(other, message, signature); err == nil {
		t.Fatal("expected mismatched address to fail verification")
	}
}

func TestVerifyStrictRejectsTamperedMessage(t *testing.T) {
	v := NewEthereumVerifier(true, slog.Default())
	address, signature := signMessage(t, "Sign in to ProofIn")

	if err := v.Verify(address, "Sign in as admin", signature); err == nil {
		t.Fatal("expected tampered message to fail verification")
	}
}

func TestVerifyPermissiveRejectsWrongSigner(t *testing.T) {
	v := NewEthereumVerifier(false, slog.Default())
	message := "Sign in to ProofIn"
	_, signature := signMessage(t, message)
	other, _ := signMessage(t, message)

	// The signature recovers cleanly, so the mismatch must be caught
	// even in permissive mode.
	if err := v.Verify(other, message, signature); err == nil {
		t.Fatal("expected recoverable wrong-signer signature to fail in permissive mode")
	}
}

func TestVerifyPermissiveShapeCheck(t *testing.T) {
	v := NewEthereumVerifier(false, slog.Default())
	address := "0x1234567890abcdef1234567890abcdef12345678"

	if err := v.Verify(address, "anything", "not-a-real-signature"); err != nil {
		t.Fatalf("expected permissive mode to accept shaped input, got %v", err)
	}
	if err := v.Verify("0xshort", "anything", "sig"); err == nil {
		t.Fatal("expected permissive mode to reject malformed address")
	}
	if err := v.Verify(address, "anything", ""); err == nil {
		t.Fatal("expected permissive mode to reject empty signature")
	}
}
