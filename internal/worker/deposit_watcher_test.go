package worker

import (
	"context"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/repository"
	"github.com/ProofINer/proofin-backend/internal/service"
	"github.com/ProofINer/proofin-backend/pkg/cache"
)

type stubContracts struct {
	ids     []uint64
	records map[uint64]*domain.ContractRecord
}

func (s *stubContracts) CreateContract(ctx context.Context, in domain.ContractInput) (*domain.Receipt, error) {
	return nil, nil
}

func (s *stubContracts) GetContractDetails(ctx context.Context, contractID uint64) (*domain.ContractRecord, error) {
	return s.records[contractID], nil
}

func (s *stubContracts) GetAllContractIDs(ctx context.Context) ([]uint64, error) {
	return s.ids, nil
}

func (s *stubContracts) GetContractIDsByTenant(ctx context.Context, tenant string) ([]uint64, error) {
	return nil, nil
}

func (s *stubContracts) GetContractIDsByLandlord(ctx context.Context, landlord string) ([]uint64, error) {
	return nil, nil
}

type stubVault struct {
	statuses map[uint64]domain.DepositStatus
}

func (s *stubVault) DepositFunds(ctx context.Context, contractID uint64, amount *big.Int) (*domain.Receipt, error) {
	return nil, nil
}

func (s *stubVault) ReleaseFunds(ctx context.Context, contractID uint64) (*domain.Receipt, error) {
	return nil, nil
}

func (s *stubVault) RefundDeposit(ctx context.Context, contractID uint64) (*domain.Receipt, error) {
	return nil, nil
}

func (s *stubVault) GetDepositAmount(ctx context.Context, contractID uint64) (*big.Int, error) {
	return big.NewInt(500), nil
}

func (s *stubVault) GetDepositStatus(ctx context.Context, contractID uint64) (domain.DepositStatus, error) {
	return s.statuses[contractID], nil
}

func newWatcherFixture() (*DepositWatcher, *service.NotificationService, *stubVault) {
	contracts := &stubContracts{
		ids: []uint64{1},
		records: map[uint64]*domain.ContractRecord{
			1: {ContractID: 1, Tenant: "0xtenant", Landlord: "0xlandlord"},
		},
	}
	vault := &stubVault{statuses: map[uint64]domain.DepositStatus{1: domain.DepositPending}}
	notifications := service.NewNotificationService(repository.NewMemoryNotificationStore(), nil, slog.Default())
	watcher := NewDepositWatcher(contracts, vault, notifications, cache.New(), slog.Default(), time.Second)
	return watcher, notifications, vault
}

func TestDepositTransitionNotifiesLandlordOnce(t *testing.T) {
	watcher, notifications, vault := newWatcherFixture()
	ctx := context.Background()

	// Pending baseline produces nothing.
	watcher.poll(ctx)
	list, _, _ := notifications.ListForUser("0xlandlord")
	if len(list) != 0 {
		t.Fatalf("expected no notifications while pending, got %d", len(list))
	}

	vault.statuses[1] = domain.DepositDeposited
	watcher.poll(ctx)
	watcher.poll(ctx)

	list, _, _ = notifications.ListForUser("0xlandlord")
	if len(list) != 1 {
		t.Fatalf("expected exactly one deposit notification, got %d", len(list))
	}
	if list[0].Type != domain.NotificationDepositReceived {
		t.Fatalf("unexpected type %s", list[0].Type)
	}
}

func TestReleaseNotifiesBothParties(t *testing.T) {
	watcher, notifications, vault := newWatcherFixture()
	ctx := context.Background()

	watcher.poll(ctx)
	vault.statuses[1] = domain.DepositReleased
	watcher.poll(ctx)

	for _, party := range []string{"0xtenant", "0xlandlord"} {
		list, _, _ := notifications.ListForUser(party)
		if len(list) != 1 || list[0].Type != domain.NotificationContractCompleted {
			t.Fatalf("expected completed notification for %s, got %d", party, len(list))
		}
	}
}

func TestAlreadyDepositedAtStartupStillNotifies(t *testing.T) {
	watcher, notifications, vault := newWatcherFixture()
	vault.statuses[1] = domain.DepositDeposited

	watcher.poll(context.Background())

	list, _, _ := notifications.ListForUser("0xlandlord")
	if len(list) != 1 {
		t.Fatalf("expected deposit notification on first observation, got %d", len(list))
	}
}
