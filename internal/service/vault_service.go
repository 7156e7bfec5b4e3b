package service

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ProofINer/proofin-backend/internal/domain"
)

// DepositInfo is the resolved escrow state for one contract.
type DepositInfo struct {
	ContractID uint64               `json:"contractId"`
	AmountWei  string               `json:"amountWei"`
	Status     domain.DepositStatus `json:"status"`
	StatusText string               `json:"statusText"`
}

// VaultService fronts the deposit escrow vault.
type VaultService struct {
	registry domain.VaultRegistry
	logger   *slog.Logger
}

// NewVaultService creates the vault service.
func NewVaultService(registry domain.VaultRegistry, logger *slog.Logger) *VaultService {
	return &VaultService{registry: registry, logger: logger}
}

// Deposit escrows a tenant's deposit for a contract.
func (s *VaultService) Deposit(ctx context.Context, contractID uint64, amount *big.Int) (*domain.Receipt, error) {
	if contractID == 0 {
		return nil, domain.NewValidationError("contractId is required")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, domain.NewValidationError("amount must be a positive wei amount")
	}

	receipt, err := s.registry.DepositFunds(ctx, contractID, amount)
	if err != nil {
		return nil, err
	}
	s.logger.Info("deposit escrowed",
		slog.Uint64("contract_id", contractID),
		slog.String("amount_wei", amount.String()),
		slog.String("tx", receipt.TxHash),
	)
	return receipt, nil
}

// Release pays the escrowed deposit out to the landlord.
func (s *VaultService) Release(ctx context.Context, contractID uint64) (*domain.Receipt, error) {
	if contractID == 0 {
		return nil, domain.NewValidationError("contractId is required")
	}
	receipt, err := s.registry.ReleaseFunds(ctx, contractID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("deposit released",
		slog.Uint64("contract_id", contractID),
		slog.String("tx", receipt.TxHash),
	)
	return receipt, nil
}

// Refund returns the escrowed deposit to the tenant.
func (s *VaultService) Refund(ctx context.Context, contractID uint64) (*domain.Receipt, error) {
	if contractID == 0 {
		return nil, domain.NewValidationError("contractId is required")
	}
	receipt, err := s.registry.RefundDeposit(ctx, contractID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("deposit refunded",
		slog.Uint64("contract_id", contractID),
		slog.String("tx", receipt.TxHash),
	)
	return receipt, nil
}

// GetDepositInfo reads the escrowed amount and status for a contract.
func (s *VaultService) GetDepositInfo(ctx context.Context, contractID uint64) (*DepositInfo, error) {
	amount, err := s.registry.GetDepositAmount(ctx, contractID)
	if err != nil {
		return nil, err
	}
	status, err := s.registry.GetDepositStatus(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return &DepositInfo{
		ContractID: contractID,
		AmountWei:  amount.String(),
		Status:     status,
		StatusText: status.Text(),
	}, nil
}
