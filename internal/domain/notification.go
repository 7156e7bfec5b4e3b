package domain

import "time"

// NotificationType enumerates the domain events surfaced to users.
type NotificationType string

const (
	NotificationContractCreated   NotificationType = "CONTRACT_CREATED"
	NotificationContractVerified  NotificationType = "CONTRACT_VERIFIED"
	NotificationNFTMinted         NotificationType = "NFT_MINTED"
	NotificationDepositReceived   NotificationType = "DEPOSIT_RECEIVED"
	NotificationContractCompleted NotificationType = "CONTRACT_COMPLETED"
)

// Notification is an immutable per-user message; only the Read flag ever
// changes after creation.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"` // lowercase wallet address
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NotificationStore defines data access for notifications. ListForUser
// returns newest-first. Read-modify-write sequences (MarkAllRead vs a
// concurrent Create) must not interleave.
type NotificationStore interface {
	Create(n *Notification) error
	Get(id string) (*Notification, error) // NotFoundError if unknown
	ListForUser(userID string) ([]*Notification, error)
	MarkRead(id string) (*Notification, error) // NotFoundError if unknown
	MarkAllRead(userID string) (int, error)    // number of flipped entries
	Delete(id string) (bool, error)
	DeleteAllForUser(userID string) (int, error)
}
