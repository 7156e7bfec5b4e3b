package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/repository"
)

type fakeVerificationRegistry struct {
	verifyErr error
	verified  map[string]bool
}

func (f *fakeVerificationRegistry) VerifyLandlord(ctx context.Context, landlord, propertyAddress, documentHash string) (*domain.Receipt, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if f.verified == nil {
		f.verified = map[string]bool{}
	}
	f.verified[landlord] = true
	return &domain.Receipt{TxHash: "0xverify", BlockNumber: 10}, nil
}

func (f *fakeVerificationRegistry) IsVerified(ctx context.Context, landlord string) (bool, error) {
	return f.verified[landlord], nil
}

func (f *fakeVerificationRegistry) GetVerificationDetails(ctx context.Context, landlord string) (*domain.VerificationDetails, error) {
	return &domain.VerificationDetails{Landlord: landlord, IsVerified: f.verified[landlord]}, nil
}

type fakeNFTRegistry struct {
	mintErr   error
	mintCalls int
	tokens    []uint64
}

func (f *fakeNFTRegistry) MintNFT(ctx context.Context, tenant string, contractID uint64, tokenURI string) (*domain.Receipt, error) {
	f.mintCalls++
	if f.mintErr != nil {
		return nil, f.mintErr
	}
	return &domain.Receipt{TxHash: "0xmint", BlockNumber: 11}, nil
}

func (f *fakeNFTRegistry) GetTokensByOwner(ctx context.Context, owner string) ([]uint64, error) {
	return f.tokens, nil
}

func (f *fakeNFTRegistry) GetTokenURI(ctx context.Context, tokenID uint64) (string, error) {
	return "ipfs://token", nil
}

func (f *fakeNFTRegistry) GetOwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	return "0xowner", nil
}

func (f *fakeNFTRegistry) GetContractIDForToken(ctx context.Context, tokenID uint64) (uint64, error) {
	return 1, nil
}

func newTestVerifierService(verifier *fakeVerificationRegistry, nft *fakeNFTRegistry) (*VerifierService, *NotificationService, domain.ProfileStore) {
	notifications := newTestNotificationService(nil)
	profiles := repository.NewMemoryProfileStore()
	return NewVerifierService(verifier, nft, profiles, notifications, slog.Default()), notifications, profiles
}

func TestVerifyLandlordFullRun(t *testing.T) {
	nft := &fakeNFTRegistry{tokens: []uint64{3, 7}}
	s, notifications, profiles := newTestVerifierService(&fakeVerificationRegistry{}, nft)

	landlord := "0xAA00000000000000000000000000000000000001"
	tenant := "0xaa00000000000000000000000000000000000002"
	profiles.Save(&domain.Profile{Address: "0xaa00000000000000000000000000000000000001", Role: domain.RoleLandlord})

	result, err := s.VerifyLandlord(context.Background(), landlord, "1 Main St", "0xdoc", tenant, 42, true)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.MintOutcome != MintOutcomeMinted {
		t.Fatalf("expected minted outcome, got %s", result.MintOutcome)
	}
	if result.NFT == nil || result.NFT.TokenID != 7 {
		t.Fatalf("expected token id 7, got %+v", result.NFT)
	}
	if result.NFT.TokenURI != "ipfs://contract-42" {
		t.Fatalf("unexpected token uri %s", result.NFT.TokenURI)
	}

	// Tenant gets the verification and mint notifications.
	list, _, err := notifications.ListForUser(tenant)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tenant notifications, got %d", len(list))
	}
	if list[0].Type != domain.NotificationNFTMinted || list[1].Type != domain.NotificationContractVerified {
		t.Fatalf("unexpected notification order: %s, %s", list[0].Type, list[1].Type)
	}

	profile, err := profiles.Get(landlord, domain.RoleLandlord)
	if err != nil {
		t.Fatalf("profile lookup failed: %v", err)
	}
	if !profile.Verified {
		t.Fatal("expected landlord profile to be marked verified")
	}
}

func TestVerifyLandlordRegistryFailureAbortsEverything(t *testing.T) {
	registryErr := domain.NewRegistryError("verifier", "verifyLandlord", errors.New("rpc down"))
	nft := &fakeNFTRegistry{}
	s, notifications, _ := newTestVerifierService(&fakeVerificationRegistry{verifyErr: registryErr}, nft)

	_, err := s.VerifyLandlord(context.Background(), "0xlandlord", "1 Main St", "0xdoc", "0xtenant", 42, true)
	var re *domain.RegistryError
	if !errors.As(err, &re) {
		t.Fatalf("expected RegistryError, got %v", err)
	}
	if nft.mintCalls != 0 {
		t.Fatal("mint must never run when verification fails")
	}
	list, _, _ := notifications.ListForUser("0xtenant")
	if len(list) != 0 {
		t.Fatalf("expected no notifications after failed verification, got %d", len(list))
	}
}

func TestVerifyLandlordMintFailureIsSwallowed(t *testing.T) {
	nft := &fakeNFTRegistry{mintErr: domain.NewRegistryError("nft", "mintNFT", errors.New("gas"))}
	s, notifications, _ := newTestVerifierService(&fakeVerificationRegistry{}, nft)

	result, err := s.VerifyLandlord(context.Background(), "0xlandlord", "1 Main St", "0xdoc", "0xtenant", 42, true)
	if err != nil {
		t.Fatalf("verification must succeed despite mint failure, got %v", err)
	}
	if result.MintOutcome != MintOutcomeFailed {
		t.Fatalf("expected failed mint outcome, got %s", result.MintOutcome)
	}
	if result.NFT != nil {
		t.Fatal("expected nil nft on failed mint")
	}
	if result.VerifyReceipt == nil {
		t.Fatal("expected verification receipt")
	}

	// Verified notification still lands; minted one does not.
	list, _, _ := notifications.ListForUser("0xtenant")
	if len(list) != 1 || list[0].Type != domain.NotificationContractVerified {
		t.Fatalf("expected only the verified notification, got %d", len(list))
	}
}

func TestVerifyLandlordSkipsMintWithoutTenant(t *testing.T) {
	nft := &fakeNFTRegistry{}
	s, _, _ := newTestVerifierService(&fakeVerificationRegistry{}, nft)

	result, err := s.VerifyLandlord(context.Background(), "0xlandlord", "1 Main St", "0xdoc", "", 0, true)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.MintOutcome != MintOutcomeSkipped {
		t.Fatalf("expected skipped outcome, got %s", result.MintOutcome)
	}
	if nft.mintCalls != 0 {
		t.Fatal("expected no mint attempt")
	}
}

func TestVerifyLandlordAutoMintDisabled(t *testing.T) {
	nft := &fakeNFTRegistry{tokens: []uint64{3}}
	s, notifications, _ := newTestVerifierService(&fakeVerificationRegistry{}, nft)

	result, err := s.VerifyLandlord(context.Background(), "0xlandlord", "1 Main St", "0xdoc", "0xtenant", 42, false)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.MintOutcome != MintOutcomeSkipped {
		t.Fatalf("expected skipped outcome with auto-mint off, got %s", result.MintOutcome)
	}
	if nft.mintCalls != 0 {
		t.Fatal("expected no mint attempt with auto-mint off")
	}

	// The tenant is still told about the verification.
	list, _, _ := notifications.ListForUser("0xtenant")
	if len(list) != 1 || list[0].Type != domain.NotificationContractVerified {
		t.Fatalf("expected only the verified notification, got %d", len(list))
	}
}

func TestVerifyLandlordNotifiesTenantWithoutContract(t *testing.T) {
	nft := &fakeNFTRegistry{}
	s, notifications, _ := newTestVerifierService(&fakeVerificationRegistry{}, nft)

	result, err := s.VerifyLandlord(context.Background(), "0xlandlord", "1 Main St", "0xdoc", "0xtenant", 0, true)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if result.MintOutcome != MintOutcomeSkipped {
		t.Fatalf("expected skipped outcome without a contract, got %s", result.MintOutcome)
	}
	if nft.mintCalls != 0 {
		t.Fatal("expected no mint attempt without a contract")
	}

	list, _, _ := notifications.ListForUser("0xtenant")
	if len(list) != 1 || list[0].Type != domain.NotificationContractVerified {
		t.Fatalf("expected the verified notification without a contract id, got %d", len(list))
	}
}

func TestVerifyLandlordValidatesInput(t *testing.T) {
	s, _, _ := newTestVerifierService(&fakeVerificationRegistry{}, &fakeNFTRegistry{})

	if _, err := s.VerifyLandlord(context.Background(), "", "1 Main St", "0xdoc", "", 0, true); err == nil {
		t.Fatal("expected error for empty landlord")
	}
	if _, err := s.VerifyLandlord(context.Background(), "0xlandlord", "", "0xdoc", "", 0, true); err == nil {
		t.Fatal("expected error for empty property address")
	}
}
