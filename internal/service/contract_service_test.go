package service

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
)

type fakeContractRegistry struct {
	contracts map[uint64]*domain.ContractRecord
	failIDs   map[uint64]bool
	byTenant  map[string][]uint64
}

func newFakeContractRegistry(ids ...uint64) *fakeContractRegistry {
	f := &fakeContractRegistry{
		contracts: map[uint64]*domain.ContractRecord{},
		failIDs:   map[uint64]bool{},
		byTenant:  map[string][]uint64{},
	}
	for _, id := range ids {
		f.contracts[id] = &domain.ContractRecord{ContractID: id, Tenant: "0xtenant", Landlord: "0xlandlord"}
	}
	return f
}

func (f *fakeContractRegistry) CreateContract(ctx context.Context, in domain.ContractInput) (*domain.Receipt, error) {
	id := uint64(len(f.contracts) + 1)
	f.contracts[id] = &domain.ContractRecord{
		ContractID: id,
		Tenant:     in.Tenant,
		Landlord:   in.Landlord,
	}
	f.byTenant[in.Tenant] = append(f.byTenant[in.Tenant], id)
	return &domain.Receipt{TxHash: "0xcreate", BlockNumber: 1}, nil
}

func (f *fakeContractRegistry) GetContractDetails(ctx context.Context, contractID uint64) (*domain.ContractRecord, error) {
	if f.failIDs[contractID] {
		return nil, domain.NewRegistryError("contract", "getContractDetails", errors.New("rpc down"))
	}
	record, ok := f.contracts[contractID]
	if !ok {
		return nil, domain.NewRegistryError("contract", "getContractDetails", errors.New("unknown id"))
	}
	return record, nil
}

func (f *fakeContractRegistry) GetAllContractIDs(ctx context.Context) ([]uint64, error) {
	ids := make([]uint64, 0, len(f.contracts))
	for id := uint64(1); id <= uint64(len(f.contracts)); id++ {
		if _, ok := f.contracts[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeContractRegistry) GetContractIDsByTenant(ctx context.Context, tenant string) ([]uint64, error) {
	return f.byTenant[tenant], nil
}

func (f *fakeContractRegistry) GetContractIDsByLandlord(ctx context.Context, landlord string) ([]uint64, error) {
	return nil, nil
}

func newTestContractService(registry *fakeContractRegistry) (*ContractService, *NotificationService) {
	notifications := newTestNotificationService(nil)
	return NewContractService(registry, notifications, 4, slog.Default()), notifications
}

func validInput() domain.ContractInput {
	return domain.ContractInput{
		Tenant:          "0xAA00000000000000000000000000000000000002",
		Landlord:        "0xAA00000000000000000000000000000000000001",
		DepositAmount:   big.NewInt(1_000_000),
		PropertyAddress: "1 Main St",
		StartDate:       time.Now(),
		EndDate:         time.Now().Add(365 * 24 * time.Hour),
	}
}

func TestCreateContractNotifiesLandlord(t *testing.T) {
	registry := newFakeContractRegistry()
	s, notifications := newTestContractService(registry)

	receipt, contractID, err := s.CreateContract(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if receipt == nil || contractID == 0 {
		t.Fatalf("expected receipt and id, got %v, %d", receipt, contractID)
	}

	list, _, err := notifications.ListForUser("0xaa00000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].Type != domain.NotificationContractCreated {
		t.Fatalf("expected one contract-created notification for landlord, got %d", len(list))
	}
}

func TestCreateContractValidation(t *testing.T) {
	s, _ := newTestContractService(newFakeContractRegistry())

	cases := []func(*domain.ContractInput){
		func(in *domain.ContractInput) { in.Tenant = "" },
		func(in *domain.ContractInput) { in.PropertyAddress = "" },
		func(in *domain.ContractInput) { in.DepositAmount = nil },
		func(in *domain.ContractInput) { in.DepositAmount = big.NewInt(0) },
		func(in *domain.ContractInput) { in.EndDate = in.StartDate },
	}
	for i, mutate := range cases {
		in := validInput()
		mutate(&in)
		if _, _, err := s.CreateContract(context.Background(), in); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestListAllStableOrder(t *testing.T) {
	s, _ := newTestContractService(newFakeContractRegistry(1, 2, 3, 4, 5))

	records, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	for i, record := range records {
		if record.ContractID != uint64(i+1) {
			t.Fatalf("expected id order preserved, got %d at %d", record.ContractID, i)
		}
	}
}

func TestListAllFailsWhole(t *testing.T) {
	registry := newFakeContractRegistry(1, 2, 3)
	registry.failIDs[2] = true
	s, _ := newTestContractService(registry)

	if _, err := s.ListAll(context.Background()); err == nil {
		t.Fatal("one failed detail read must fail the whole listing")
	}
}

func TestListAllEmpty(t *testing.T) {
	s, _ := newTestContractService(newFakeContractRegistry())

	records, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", records)
	}
}

func TestParseWei(t *testing.T) {
	wei, err := ParseWei("1000000000000000000")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if wei.String() != "1000000000000000000" {
		t.Fatalf("unexpected value %s", wei)
	}
	if _, err := ParseWei("1.5eth"); err == nil {
		t.Fatal("expected error for malformed amount")
	}
}
