package service

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
)

// ContractService fronts the rental contract registry. The chain is the
// source of truth; nothing here is cached.
type ContractService struct {
	registry      domain.ContractRegistry
	notifications *NotificationService
	maxFanout     int
	logger        *slog.Logger
}

// NewContractService creates the contract service. maxFanout bounds the
// concurrent detail reads behind the listing endpoints.
func NewContractService(registry domain.ContractRegistry, notifications *NotificationService, maxFanout int, logger *slog.Logger) *ContractService {
	return &ContractService{
		registry:      registry,
		notifications: notifications,
		maxFanout:     maxFanout,
		logger:        logger,
	}
}

// CreateContract submits a new rental contract and notifies the
// landlord. The new contract id is resolved as the tenant's highest id
// after the submission confirms.
func (s *ContractService) CreateContract(ctx context.Context, in domain.ContractInput) (*domain.Receipt, uint64, error) {
	if in.Tenant == "" || in.Landlord == "" {
		return nil, 0, domain.NewValidationError("tenant and landlord are required")
	}
	if in.PropertyAddress == "" {
		return nil, 0, domain.NewValidationError("propertyAddress is required")
	}
	if in.DepositAmount == nil || in.DepositAmount.Sign() <= 0 {
		return nil, 0, domain.NewValidationError("depositAmount must be a positive wei amount")
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, 0, domain.NewValidationError("endDate must be after startDate")
	}

	in.Tenant = domain.NormalizeAddress(in.Tenant)
	in.Landlord = domain.NormalizeAddress(in.Landlord)

	receipt, err := s.registry.CreateContract(ctx, in)
	if err != nil {
		return nil, 0, err
	}

	contractID, err := s.latestContractID(ctx, in.Tenant)
	if err != nil {
		// The contract exists on chain; surface it without an id rather
		// than failing the create.
		s.logger.Error("failed to resolve new contract id",
			slog.String("tenant", in.Tenant),
			slog.String("error", err.Error()),
		)
		contractID = 0
	}

	s.notifications.NotifyContractCreated(in.Landlord, in.Tenant, contractID)

	s.logger.Info("contract created",
		slog.Uint64("contract_id", contractID),
		slog.String("tenant", in.Tenant),
		slog.String("landlord", in.Landlord),
		slog.String("tx", receipt.TxHash),
	)
	return receipt, contractID, nil
}

func (s *ContractService) latestContractID(ctx context.Context, tenant string) (uint64, error) {
	ids, err := s.registry.GetContractIDsByTenant(ctx, tenant)
	if err != nil {
		return 0, err
	}
	var maxID uint64
	for _, id := range ids {
		if id > maxID {
			maxID = id
		}
	}
	return maxID, nil
}

// GetContract reads one contract's details.
func (s *ContractService) GetContract(ctx context.Context, contractID uint64) (*domain.ContractRecord, error) {
	return s.registry.GetContractDetails(ctx, contractID)
}

// ListAll reads every contract, fetching details concurrently. One
// failed detail read fails the whole listing.
func (s *ContractService) ListAll(ctx context.Context) ([]*domain.ContractRecord, error) {
	ids, err := s.registry.GetAllContractIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.fetchDetails(ctx, ids)
}

// ListByTenant reads every contract a tenant participates in.
func (s *ContractService) ListByTenant(ctx context.Context, tenant string) ([]*domain.ContractRecord, error) {
	if tenant == "" {
		return nil, domain.NewValidationError("tenant address is required")
	}
	ids, err := s.registry.GetContractIDsByTenant(ctx, domain.NormalizeAddress(tenant))
	if err != nil {
		return nil, err
	}
	return s.fetchDetails(ctx, ids)
}

// ListByLandlord reads every contract a landlord participates in.
func (s *ContractService) ListByLandlord(ctx context.Context, landlord string) ([]*domain.ContractRecord, error) {
	if landlord == "" {
		return nil, domain.NewValidationError("landlord address is required")
	}
	ids, err := s.registry.GetContractIDsByLandlord(ctx, domain.NormalizeAddress(landlord))
	if err != nil {
		return nil, err
	}
	return s.fetchDetails(ctx, ids)
}

func (s *ContractService) fetchDetails(ctx context.Context, ids []uint64) ([]*domain.ContractRecord, error) {
	return fetchAll(ctx, ids, s.maxFanout, s.registry.GetContractDetails)
}

// ParseWei parses a decimal wei amount from its string form.
func ParseWei(amount string) (*big.Int, error) {
	wei, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, domain.NewValidationError("invalid wei amount: %s", amount)
	}
	return wei, nil
}

// ParseUnixDate accepts a unix-seconds timestamp.
func ParseUnixDate(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}
