package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/observability/metrics"
)

// Mint outcomes for a verification run.
const (
	MintOutcomeMinted  = "minted"
	MintOutcomeSkipped = "skipped"
	MintOutcomeFailed  = "failed"
)

// VerificationResult reports one verification run. NFT is nil unless
// MintOutcome is minted.
type VerificationResult struct {
	Landlord      string           `json:"landlord"`
	VerifyReceipt *domain.Receipt  `json:"verifyReceipt"`
	MintOutcome   string           `json:"mintOutcome"`
	MintReceipt   *domain.Receipt  `json:"mintReceipt,omitempty"`
	NFT           *domain.NFTToken `json:"nft"`
}

// VerifierService runs the landlord verification workflow: a mandatory
// on-chain verification, then a best-effort tenancy NFT mint. A failed
// mint never undoes or fails the verification.
type VerifierService struct {
	verifier      domain.VerificationRegistry
	nft           domain.NFTRegistry
	profiles      domain.ProfileStore
	notifications *NotificationService
	logger        *slog.Logger
}

// NewVerifierService creates the verifier service.
func NewVerifierService(
	verifier domain.VerificationRegistry,
	nft domain.NFTRegistry,
	profiles domain.ProfileStore,
	notifications *NotificationService,
	logger *slog.Logger,
) *VerifierService {
	return &VerifierService{
		verifier:      verifier,
		nft:           nft,
		profiles:      profiles,
		notifications: notifications,
		logger:        logger,
	}
}

// VerifyLandlord verifies a landlord on chain, notifies the tenant when
// one is named, then attempts the NFT mint when autoMint is set and a
// contract is named too. The whole run fails only if the verification
// itself fails.
func (s *VerifierService) VerifyLandlord(ctx context.Context, landlord, propertyAddress, documentHash, tenant string, contractID uint64, autoMint bool) (*VerificationResult, error) {
	if landlord == "" {
		return nil, domain.NewValidationError("landlord address is required")
	}
	if propertyAddress == "" || documentHash == "" {
		return nil, domain.NewValidationError("propertyAddress and documentHash are required")
	}

	landlord = domain.NormalizeAddress(landlord)
	tenant = domain.NormalizeAddress(tenant)

	receipt, err := s.verifier.VerifyLandlord(ctx, landlord, propertyAddress, documentHash)
	if err != nil {
		metrics.ObserveWorkflow("failed")
		return nil, err
	}

	s.markProfileVerified(landlord)

	result := &VerificationResult{
		Landlord:      landlord,
		VerifyReceipt: receipt,
		MintOutcome:   MintOutcomeSkipped,
	}

	if tenant != "" {
		s.notifications.NotifyContractVerified(tenant, contractID)
		if autoMint && contractID != 0 {
			s.mintForTenant(ctx, result, tenant, contractID)
		}
	}

	switch result.MintOutcome {
	case MintOutcomeFailed:
		metrics.ObserveWorkflow("mint_failed")
	default:
		metrics.ObserveWorkflow("verified")
	}

	s.logger.Info("landlord verified",
		slog.String("landlord", landlord),
		slog.String("mint_outcome", result.MintOutcome),
		slog.String("tx", receipt.TxHash),
	)
	return result, nil
}

// mintForTenant attempts the tenancy NFT mint. Failures are recorded
// and swallowed.
func (s *VerifierService) mintForTenant(ctx context.Context, result *VerificationResult, tenant string, contractID uint64) {
	tokenURI := fmt.Sprintf("ipfs://contract-%d", contractID)

	receipt, err := s.nft.MintNFT(ctx, tenant, contractID, tokenURI)
	if err != nil {
		result.MintOutcome = MintOutcomeFailed
		s.logger.Error("nft mint failed after verification",
			slog.String("tenant", tenant),
			slog.Uint64("contract_id", contractID),
			slog.String("error", err.Error()),
		)
		return
	}

	result.MintOutcome = MintOutcomeMinted
	result.MintReceipt = receipt

	tokenID := s.latestTokenID(ctx, tenant)
	result.NFT = &domain.NFTToken{
		TokenID:    tokenID,
		Owner:      tenant,
		TokenURI:   tokenURI,
		ContractID: contractID,
	}
	s.notifications.NotifyNFTMinted(tenant, contractID, tokenID)
}

// latestTokenID resolves the freshly minted token as the tenant's
// highest token id. Zero means the read failed; the mint still stands.
func (s *VerifierService) latestTokenID(ctx context.Context, tenant string) uint64 {
	tokens, err := s.nft.GetTokensByOwner(ctx, tenant)
	if err != nil {
		s.logger.Error("failed to resolve minted token id",
			slog.String("tenant", tenant),
			slog.String("error", err.Error()),
		)
		return 0
	}
	var maxID uint64
	for _, id := range tokens {
		if id > maxID {
			maxID = id
		}
	}
	return maxID
}

// markProfileVerified flips the landlord profile's verified flag when a
// profile exists. Verification stands regardless.
func (s *VerifierService) markProfileVerified(landlord string) {
	profile, err := s.profiles.Get(landlord, domain.RoleLandlord)
	if err != nil {
		if !domain.IsNotFound(err) {
			s.logger.Error("failed to load landlord profile",
				slog.String("landlord", landlord),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	profile.Verified = true
	profile.UpdatedAt = time.Now()
	if err := s.profiles.Save(profile); err != nil {
		s.logger.Error("failed to mark profile verified",
			slog.String("landlord", landlord),
			slog.String("error", err.Error()),
		)
	}
}

// IsVerified reads a landlord's verification flag from the registry.
func (s *VerifierService) IsVerified(ctx context.Context, landlord string) (bool, error) {
	if landlord == "" {
		return false, domain.NewValidationError("landlord address is required")
	}
	return s.verifier.IsVerified(ctx, domain.NormalizeAddress(landlord))
}

// GetVerificationDetails reads the full verification record.
func (s *VerifierService) GetVerificationDetails(ctx context.Context, landlord string) (*domain.VerificationDetails, error) {
	if landlord == "" {
		return nil, domain.NewValidationError("landlord address is required")
	}
	return s.verifier.GetVerificationDetails(ctx, domain.NormalizeAddress(landlord))
}
