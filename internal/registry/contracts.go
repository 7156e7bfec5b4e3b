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

const contractRegistryABI = `[
	{"type":"function","name":"createContract","stateMutability":"nonpayable","inputs":[{"name":"tenant","type":"address"},{"name":"landlord","type":"address"},{"name":"depositAmount","type":"uint256"},{"name":"propertyAddress","type":"string"},{"name":"startDate","type":"uint256"},{"name":"endDate","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getContractDetails","stateMutability":"view","inputs":[{"name":"contractId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"tenant","type":"address"},{"name":"landlord","type":"address"},{"name":"depositAmount","type":"uint256"},{"name":"propertyAddress","type":"string"},{"name":"startDate","type":"uint256"},{"name":"endDate","type":"uint256"},{"name":"status","type":"uint8"},{"name":"createdAt","type":"uint256"}]}]},
	{"type":"function","name":"getAllContracts","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"getContractsByTenant","stateMutability":"view","inputs":[{"name":"tenant","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"getContractsByLandlord","stateMutability":"view","inputs":[{"name":"landlord","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]}
]`

// rawContractRecord matches the getContractDetails tuple layout.
type rawContractRecord struct {
	Tenant          common.Address
	Landlord        common.Address
	DepositAmount   *big.Int
	PropertyAddress string
	StartDate       *big.Int
	EndDate         *big.Int
	Status          uint8
	CreatedAt       *big.Int
}

// ContractGateway exposes the rental contract registry.
type ContractGateway struct {
	gw *gateway
}

// NewContractGateway binds the contract registry at the given address.
func NewContractGateway(address string, client *chain.Client, logger *slog.Logger) (*ContractGateway, error) {
	gw, err := newGateway("contract", address, contractRegistryABI, client, logger)
	if err != nil {
		return nil, err
	}
	return &ContractGateway{gw: gw}, nil
}

// CreateContract registers a rental contract on chain.
func (g *ContractGateway) CreateContract(ctx context.Context, in domain.ContractInput) (*domain.Receipt, error) {
	return g.gw.submit(ctx, "createContract", nil,
		common.HexToAddress(in.Tenant),
		common.HexToAddress(in.Landlord),
		in.DepositAmount,
		in.PropertyAddress,
		big.NewInt(in.StartDate.Unix()),
		big.NewInt(in.EndDate.Unix()),
	)
}

// GetContractDetails reads one contract record. The record is returned
// as-is and never cached.
func (g *ContractGateway) GetContractDetails(ctx context.Context, contractID uint64) (*domain.ContractRecord, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "getContractDetails", &out, new(big.Int).SetUint64(contractID)); err != nil {
		return nil, err
	}

	raw := *abi.ConvertType(out[0], new(rawContractRecord)).(*rawContractRecord)
	return &domain.ContractRecord{
		ContractID:      contractID,
		Tenant:          domain.NormalizeAddress(raw.Tenant.Hex()),
		Landlord:        domain.NormalizeAddress(raw.Landlord.Hex()),
		DepositAmount:   raw.DepositAmount,
		PropertyAddress: raw.PropertyAddress,
		StartDate:       unixOrZero(raw.StartDate),
		EndDate:         unixOrZero(raw.EndDate),
		Status:          raw.Status,
		CreatedAt:       unixOrZero(raw.CreatedAt),
	}, nil
}

// GetAllContractIDs lists every contract id in the registry.
func (g *ContractGateway) GetAllContractIDs(ctx context.Context) ([]uint64, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "getAllContracts", &out); err != nil {
		return nil, err
	}
	return toUint64s(*abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)), nil
}

// GetContractIDsByTenant lists contract ids where the address is tenant.
func (g *ContractGateway) GetContractIDsByTenant(ctx context.Context, tenant string) ([]uint64, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "getContractsByTenant", &out, common.HexToAddress(tenant)); err != nil {
		return nil, err
	}
	return toUint64s(*abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)), nil
}

// GetContractIDsByLandlord lists contract ids where the address is landlord.
func (g *ContractGateway) GetContractIDsByLandlord(ctx context.Context, landlord string) ([]uint64, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "getContractsByLandlord", &out, common.HexToAddress(landlord)); err != nil {
		return nil, err
	}
	return toUint64s(*abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)), nil
}
