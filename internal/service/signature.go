package service

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"

	"github.com/ProofINer/proofin-backend/internal/domain"
)

// SignatureVerifier checks that a wallet signature over a login message
// was produced by the claimed address.
type SignatureVerifier interface {
	Verify(address, message, signature string) error
}

// EthereumVerifier recovers the signer from a personal-message
// signature and compares it to the claimed address. When strict mode is
// off, signatures that cannot be recovered at all fall back to a shape
// check, for local development against wallets that sign nonstandard
// payloads. A recoverable signature from the wrong signer is rejected
// in both modes.
type EthereumVerifier struct {
	strict bool
	logger *slog.Logger
}

func NewEthereumVerifier(strict bool, logger *slog.Logger) *EthereumVerifier {
	return &EthereumVerifier{strict: strict, logger: logger}
}

// Verify checks the signature. Recovery is always attempted first; the
// permissive fallback applies only when recovery itself fails.
func (v *EthereumVerifier) Verify(address, message, signature string) error {
	recovered, err := recoverSigner(message, signature)
	if err == nil {
		if recovered != domain.NormalizeAddress(address) {
			return domain.NewAuthError("signature does not match address")
		}
		return nil
	}

	if v.strict {
		v.logger.Debug("signature recovery failed", slog.String("error", err.Error()))
		return domain.NewAuthError("invalid signature")
	}

	if len(signature) > 0 && len(strings.TrimSpace(address)) == 42 {
		v.logger.Warn("accepting unrecoverable signature",
			slog.String("address", domain.NormalizeAddress(address)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return domain.NewAuthError("malformed address or signature")
}

// recoverSigner returns the lowercase address that signed message under
// the personal-message scheme.
func recoverSigner(message, signature string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != 65 {
		return "", fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}
	// Wallets emit v as 27/28; recovery wants 0/1.
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return "", fmt.Errorf("invalid recovery id %d", sig[64])
	}

	digest := personalDigest(message)
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}
	return domain.NormalizeAddress(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// personalDigest hashes a message the way wallet personal_sign does.
func personalDigest(message string) []byte {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return h.Sum(nil)
}
