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

const tenantNFTABI = `[
	{"type":"function","name":"mintNFT","stateMutability":"nonpayable","inputs":[{"name":"tenant","type":"address"},{"name":"contractId","type":"uint256"},{"name":"tokenURI","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getTokensByOwner","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getContractIdByToken","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// NFTGateway exposes the tenancy NFT registry.
type NFTGateway struct {
	gw *gateway
}

// NewNFTGateway binds the NFT registry at the given address.
func NewNFTGateway(address string, client *chain.Client, logger *slog.Logger) (*NFTGateway, error) {
	gw, err := newGateway("nft", address, tenantNFTABI, client, logger)
	if err != nil {
		return nil, err
	}
	return &NFTGateway{gw: gw}, nil
}

// MintNFT mints a tenancy token for a contract.
func (g *NFTGateway) MintNFT(ctx context.Context, tenant string, contractID uint64, tokenURI string) (*domain.Receipt, error) {
	return g.gw.submit(ctx, "mintNFT", nil,
		common.HexToAddress(tenant), new(big.Int).SetUint64(contractID), tokenURI)
}

// GetTokensByOwner lists token ids held by an owner.
func (g *NFTGateway) GetTokensByOwner(ctx context.Context, owner string) ([]uint64, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "getTokensByOwner", &out, common.HexToAddress(owner)); err != nil {
		return nil, err
	}
	return toUint64s(*abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)), nil
}

// GetTokenURI reads a token's metadata URI.
func (g *NFTGateway) GetTokenURI(ctx context.Context, tokenID uint64) (string, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "tokenURI", &out, new(big.Int).SetUint64(tokenID)); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// GetOwnerOf reads a token's current owner.
func (g *NFTGateway) GetOwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "ownerOf", &out, new(big.Int).SetUint64(tokenID)); err != nil {
		return "", err
	}
	owner := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	return domain.NormalizeAddress(owner.Hex()), nil
}

// GetContractIDForToken reads the rental contract backing a token.
func (g *NFTGateway) GetContractIDForToken(ctx context.Context, tokenID uint64) (uint64, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "getContractIdByToken", &out, new(big.Int).SetUint64(tokenID)); err != nil {
		return 0, err
	}
	id := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return id.Uint64(), nil
}
