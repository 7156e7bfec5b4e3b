package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/repository"
	"github.com/ProofINer/proofin-backend/internal/service"
)

type stubVerificationRegistry struct {
	verified map[string]bool
}

func (s *stubVerificationRegistry) VerifyLandlord(ctx context.Context, landlord, propertyAddress, documentHash string) (*domain.Receipt, error) {
	if s.verified == nil {
		s.verified = map[string]bool{}
	}
	s.verified[landlord] = true
	return &domain.Receipt{TxHash: "0xverify", BlockNumber: 5}, nil
}

func (s *stubVerificationRegistry) IsVerified(ctx context.Context, landlord string) (bool, error) {
	return s.verified[landlord], nil
}

func (s *stubVerificationRegistry) GetVerificationDetails(ctx context.Context, landlord string) (*domain.VerificationDetails, error) {
	return &domain.VerificationDetails{Landlord: landlord, IsVerified: s.verified[landlord]}, nil
}

type stubNFTRegistry struct {
	mintCalls int
}

func (s *stubNFTRegistry) MintNFT(ctx context.Context, tenant string, contractID uint64, tokenURI string) (*domain.Receipt, error) {
	s.mintCalls++
	return &domain.Receipt{TxHash: "0xmint", BlockNumber: 6}, nil
}

func (s *stubNFTRegistry) GetTokensByOwner(ctx context.Context, owner string) ([]uint64, error) {
	return []uint64{1}, nil
}

func (s *stubNFTRegistry) GetTokenURI(ctx context.Context, tokenID uint64) (string, error) {
	return "ipfs://token", nil
}

func (s *stubNFTRegistry) GetOwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	return "0xowner", nil
}

func (s *stubNFTRegistry) GetContractIDForToken(ctx context.Context, tokenID uint64) (uint64, error) {
	return 1, nil
}

func newTestVerifierHandler() (*VerifierHandler, *stubNFTRegistry) {
	nft := &stubNFTRegistry{}
	notifications := service.NewNotificationService(repository.NewMemoryNotificationStore(), nil, slog.Default())
	verifier := service.NewVerifierService(
		&stubVerificationRegistry{}, nft,
		repository.NewMemoryProfileStore(), notifications, slog.Default(),
	)
	return NewVerifierHandler(verifier, slog.Default()), nft
}

func TestVerifyHonorsAutoMintFlag(t *testing.T) {
	h, nft := newTestVerifierHandler()

	off := false
	rec := postJSON(t, h.Verify, "/api/verifier/verify", VerifyRequest{
		Landlord:        "0xAA00000000000000000000000000000000000001",
		PropertyAddress: "1 Main St",
		DocumentHash:    "0xdoc",
		Tenant:          "0xaa00000000000000000000000000000000000002",
		ContractID:      42,
		AutoMintNFT:     &off,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	if data["mintOutcome"] != "skipped" {
		t.Fatalf("expected skipped mint outcome, got %v", data["mintOutcome"])
	}
	if nft.mintCalls != 0 {
		t.Fatalf("expected no mint attempt, got %d", nft.mintCalls)
	}

	// Absent flag defaults to minting.
	rec = postJSON(t, h.Verify, "/api/verifier/verify", VerifyRequest{
		Landlord:        "0xAA00000000000000000000000000000000000001",
		PropertyAddress: "1 Main St",
		DocumentHash:    "0xdoc",
		Tenant:          "0xaa00000000000000000000000000000000000002",
		ContractID:      42,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", rec.Code)
	}
	body = decodeEnvelope(t, rec)
	data = body["data"].(map[string]any)
	if data["mintOutcome"] != "minted" {
		t.Fatalf("expected minted outcome by default, got %v", data["mintOutcome"])
	}
	if nft.mintCalls != 1 {
		t.Fatalf("expected one mint attempt, got %d", nft.mintCalls)
	}
}

func TestStatusReportsLandlordAndFlag(t *testing.T) {
	h, _ := newTestVerifierHandler()

	rec := postJSON(t, h.Verify, "/api/verifier/verify", VerifyRequest{
		Landlord:        "0xAA00000000000000000000000000000000000001",
		PropertyAddress: "1 Main St",
		DocumentHash:    "0xdoc",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/verifier/status/0xAA00000000000000000000000000000000000001", nil)
	req.SetPathValue("address", "0xAA00000000000000000000000000000000000001")
	out := httptest.NewRecorder()
	h.Status(out, req)

	body := decodeEnvelope(t, out)
	data := body["data"].(map[string]any)
	if data["landlord"] != "0xaa00000000000000000000000000000000000001" {
		t.Fatalf("expected lowercase landlord in status, got %v", data["landlord"])
	}
	if data["isVerified"] != true {
		t.Fatalf("expected isVerified true, got %v", data["isVerified"])
	}
}
