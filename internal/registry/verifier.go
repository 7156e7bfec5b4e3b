package registry

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/infrastructure/chain"
)

const landlordVerifierABI = `[
	{"type":"function","name":"verifyLandlord","stateMutability":"nonpayable","inputs":[{"name":"landlord","type":"address"},{"name":"propertyAddress","type":"string"},{"name":"documentHash","type":"string"}],"outputs":[]},
	{"type":"function","name":"isVerified","stateMutability":"view","inputs":[{"name":"landlord","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getVerificationDetails","stateMutability":"view","inputs":[{"name":"landlord","type":"address"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"isVerified","type":"bool"},{"name":"propertyAddress","type":"string"},{"name":"documentHash","type":"string"},{"name":"verifiedAt","type":"uint256"}]}]}
]`

type rawVerification struct {
	IsVerified      bool
	PropertyAddress string
	DocumentHash    string
	VerifiedAt      *big.Int
}

// VerifierGateway exposes the landlord verification registry.
type VerifierGateway struct {
	gw *gateway
}

// NewVerifierGateway binds the verifier registry at the given address.
func NewVerifierGateway(address string, client *chain.Client, logger *slog.Logger) (*VerifierGateway, error) {
	gw, err := newGateway("verifier", address, landlordVerifierABI, client, logger)
	if err != nil {
		return nil, err
	}
	return &VerifierGateway{gw: gw}, nil
}

// VerifyLandlord submits a landlord verification write.
func (g *VerifierGateway) VerifyLandlord(ctx context.Context, landlord, propertyAddress, documentHash string) (*domain.Receipt, error) {
	return g.gw.submit(ctx, "verifyLandlord", nil,
		common.HexToAddress(landlord), propertyAddress, documentHash)
}

// IsVerified reads the verification flag for a landlord.
func (g *VerifierGateway) IsVerified(ctx context.Context, landlord string) (bool, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "isVerified", &out, common.HexToAddress(landlord)); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// GetVerificationDetails reads the full verification record.
func (g *VerifierGateway) GetVerificationDetails(ctx context.Context, landlord string) (*domain.VerificationDetails, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "getVerificationDetails", &out, common.HexToAddress(landlord)); err != nil {
		return nil, err
	}

	raw := *abi.ConvertType(out[0], new(rawVerification)).(*rawVerification)
	return &domain.VerificationDetails{
		Landlord:        domain.NormalizeAddress(landlord),
		IsVerified:      raw.IsVerified,
		PropertyAddress: raw.PropertyAddress,
		DocumentHash:    raw.DocumentHash,
		VerifiedAt:      unixOrZero(raw.VerifiedAt),
	}, nil
}
