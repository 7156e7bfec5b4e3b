package service

import (
	"context"
	"log/slog"

	"github.com/ProofINer/proofin-backend/internal/domain"
)

// NFTService fronts the tenancy NFT registry.
type NFTService struct {
	registry  domain.NFTRegistry
	maxFanout int
	logger    *slog.Logger
}

// NewNFTService creates the NFT service.
func NewNFTService(registry domain.NFTRegistry, maxFanout int, logger *slog.Logger) *NFTService {
	return &NFTService{registry: registry, maxFanout: maxFanout, logger: logger}
}

// Mint mints a tenancy token directly, outside the verification
// workflow.
func (s *NFTService) Mint(ctx context.Context, tenant string, contractID uint64, tokenURI string) (*domain.Receipt, error) {
	if tenant == "" {
		return nil, domain.NewValidationError("tenant address is required")
	}
	if contractID == 0 {
		return nil, domain.NewValidationError("contractId is required")
	}
	if tokenURI == "" {
		return nil, domain.NewValidationError("tokenURI is required")
	}

	receipt, err := s.registry.MintNFT(ctx, domain.NormalizeAddress(tenant), contractID, tokenURI)
	if err != nil {
		return nil, err
	}
	s.logger.Info("nft minted",
		slog.String("tenant", domain.NormalizeAddress(tenant)),
		slog.Uint64("contract_id", contractID),
		slog.String("tx", receipt.TxHash),
	)
	return receipt, nil
}

// TokensByOwner lists an owner's tokens with resolved metadata, reading
// details concurrently. One failed read fails the listing.
func (s *NFTService) TokensByOwner(ctx context.Context, owner string) ([]*domain.NFTToken, error) {
	if owner == "" {
		return nil, domain.NewValidationError("owner address is required")
	}
	owner = domain.NormalizeAddress(owner)

	ids, err := s.registry.GetTokensByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	return fetchAll(ctx, ids, s.maxFanout, func(ctx context.Context, tokenID uint64) (*domain.NFTToken, error) {
		uri, err := s.registry.GetTokenURI(ctx, tokenID)
		if err != nil {
			return nil, err
		}
		contractID, err := s.registry.GetContractIDForToken(ctx, tokenID)
		if err != nil {
			return nil, err
		}
		return &domain.NFTToken{
			TokenID:    tokenID,
			Owner:      owner,
			TokenURI:   uri,
			ContractID: contractID,
		}, nil
	})
}

// TokenDetails resolves one token's owner, URI and backing contract.
func (s *NFTService) TokenDetails(ctx context.Context, tokenID uint64) (*domain.NFTToken, error) {
	owner, err := s.registry.GetOwnerOf(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	uri, err := s.registry.GetTokenURI(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	contractID, err := s.registry.GetContractIDForToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return &domain.NFTToken{
		TokenID:    tokenID,
		Owner:      owner,
		TokenURI:   uri,
		ContractID: contractID,
	}, nil
}
