package domain

import (
	"context"
	"math/big"
	"time"
)

// Receipt is the confirmation of a state-changing registry submission.
type Receipt struct {
	TxHash      string `json:"transactionHash"`
	BlockNumber uint64 `json:"blockNumber"`
}

// ContractRecord is the on-chain rental contract, read-only to this
// service and never cached.
type ContractRecord struct {
	ContractID      uint64    `json:"contractId"`
	Tenant          string    `json:"tenant"`
	Landlord        string    `json:"landlord"`
	DepositAmount   *big.Int  `json:"depositAmount"` // wei
	PropertyAddress string    `json:"propertyAddress"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	Status          uint8     `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ContractInput carries the fields for a new rental contract.
type ContractInput struct {
	Tenant          string
	Landlord        string
	DepositAmount   *big.Int // wei
	PropertyAddress string
	StartDate       time.Time
	EndDate         time.Time
}

// VerificationDetails mirrors the landlord verifier registry record.
type VerificationDetails struct {
	Landlord        string    `json:"landlord"`
	IsVerified      bool      `json:"isVerified"`
	PropertyAddress string    `json:"propertyAddress"`
	DocumentHash    string    `json:"documentHash"`
	VerifiedAt      time.Time `json:"verifiedAt"`
}

// NFTToken is a minted tenancy token with its resolved metadata.
type NFTToken struct {
	TokenID    uint64 `json:"tokenId"`
	Owner      string `json:"owner"`
	TokenURI   string `json:"tokenURI"`
	ContractID uint64 `json:"contractId"`
}

// DepositStatus enumerates the vault registry's deposit states.
type DepositStatus uint8

const (
	DepositPending   DepositStatus = 0
	DepositDeposited DepositStatus = 1
	DepositReleased  DepositStatus = 2
	DepositRefunded  DepositStatus = 3
)

// Text returns the human label for a deposit status.
func (s DepositStatus) Text() string {
	switch s {
	case DepositPending:
		return "PENDING"
	case DepositDeposited:
		return "DEPOSITED"
	case DepositReleased:
		return "RELEASED"
	case DepositRefunded:
		return "REFUNDED"
	default:
		return "UNKNOWN"
	}
}

// ContractRegistry exposes the rental contract registry.
type ContractRegistry interface {
	CreateContract(ctx context.Context, in ContractInput) (*Receipt, error)
	GetContractDetails(ctx context.Context, contractID uint64) (*ContractRecord, error)
	GetAllContractIDs(ctx context.Context) ([]uint64, error)
	GetContractIDsByTenant(ctx context.Context, tenant string) ([]uint64, error)
	GetContractIDsByLandlord(ctx context.Context, landlord string) ([]uint64, error)
}

// VerificationRegistry exposes the landlord verifier registry.
type VerificationRegistry interface {
	VerifyLandlord(ctx context.Context, landlord, propertyAddress, documentHash string) (*Receipt, error)
	IsVerified(ctx context.Context, landlord string) (bool, error)
	GetVerificationDetails(ctx context.Context, landlord string) (*VerificationDetails, error)
}

// NFTRegistry exposes the tenancy NFT registry.
type NFTRegistry interface {
	MintNFT(ctx context.Context, tenant string, contractID uint64, tokenURI string) (*Receipt, error)
	GetTokensByOwner(ctx context.Context, owner string) ([]uint64, error)
	GetTokenURI(ctx context.Context, tokenID uint64) (string, error)
	GetOwnerOf(ctx context.Context, tokenID uint64) (string, error)
	GetContractIDForToken(ctx context.Context, tokenID uint64) (uint64, error)
}

// VaultRegistry exposes the deposit escrow vault.
type VaultRegistry interface {
	DepositFunds(ctx context.Context, contractID uint64, amount *big.Int) (*Receipt, error)
	ReleaseFunds(ctx context.Context, contractID uint64) (*Receipt, error)
	RefundDeposit(ctx context.Context, contractID uint64) (*Receipt, error)
	GetDepositAmount(ctx context.Context, contractID uint64) (*big.Int, error)
	GetDepositStatus(ctx context.Context, contractID uint64) (DepositStatus, error)
}
