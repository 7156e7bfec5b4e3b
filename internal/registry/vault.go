package registry

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/infrastructure/chain"
)

const depositVaultABI = `[
	{"type":"function","name":"depositFunds","stateMutability":"payable","inputs":[{"name":"contractId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"releaseFunds","stateMutability":"nonpayable","inputs":[{"name":"contractId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"refundDeposit","stateMutability":"nonpayable","inputs":[{"name":"contractId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getDepositAmount","stateMutability":"view","inputs":[{"name":"contractId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getDepositStatus","stateMutability":"view","inputs":[{"name":"contractId","type":"uint256"}],"outputs":[{"name":"","type":"uint8"}]}
]`

// VaultGateway exposes the deposit escrow vault.
type VaultGateway struct {
	gw *gateway
}

// NewVaultGateway binds the vault registry at the given address.
func NewVaultGateway(address string, client *chain.Client, logger *slog.Logger) (*VaultGateway, error) {
	gw, err := newGateway("vault", address, depositVaultABI, client, logger)
	if err != nil {
		return nil, err
	}
	return &VaultGateway{gw: gw}, nil
}

// DepositFunds escrows the deposit; amount travels as transaction value.
func (g *VaultGateway) DepositFunds(ctx context.Context, contractID uint64, amount *big.Int) (*domain.Receipt, error) {
	return g.gw.submit(ctx, "depositFunds", amount, new(big.Int).SetUint64(contractID))
}

// ReleaseFunds pays the escrowed deposit out to the landlord.
func (g *VaultGateway) ReleaseFunds(ctx context.Context, contractID uint64) (*domain.Receipt, error) {
	return g.gw.submit(ctx, "releaseFunds", nil, new(big.Int).SetUint64(contractID))
}

// RefundDeposit returns the escrowed deposit to the tenant.
func (g *VaultGateway) RefundDeposit(ctx context.Context, contractID uint64) (*domain.Receipt, error) {
	return g.gw.submit(ctx, "refundDeposit", nil, new(big.Int).SetUint64(contractID))
}

// GetDepositAmount reads the escrowed amount in wei.
func (g *VaultGateway) GetDepositAmount(ctx context.Context, contractID uint64) (*big.Int, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "getDepositAmount", &out, new(big.Int).SetUint64(contractID)); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// GetDepositStatus reads the escrow state for a contract.
func (g *VaultGateway) GetDepositStatus(ctx context.Context, contractID uint64) (domain.DepositStatus, error) {
	var out []interface{}
	if err := g.gw.read(ctx, "getDepositStatus", &out, new(big.Int).SetUint64(contractID)); err != nil {
		return 0, err
	}
	status := *abi.ConvertType(out[0], new(uint8)).(*uint8)
	return domain.DepositStatus(status), nil
}
