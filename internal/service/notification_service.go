package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/observability/metrics"
)

// NotificationPublisher pushes a freshly created notification to any
// live subscriber streams. Delivery is best effort.
type NotificationPublisher interface {
	Publish(userID string, n *domain.Notification)
}

// NotificationService owns the per-user notification feeds and the
// domain event producers that feed them.
type NotificationService struct {
	store     domain.NotificationStore
	publisher NotificationPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewNotificationService creates the notification service. publisher
// may be nil when no streaming transport is wired.
func NewNotificationService(store domain.NotificationStore, publisher NotificationPublisher, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a notification for a user and pushes it to any live
// stream.
func (s *NotificationService) Create(userID string, typ domain.NotificationType, title, message string, data map[string]any) (*domain.Notification, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId is required")
	}
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    domain.NormalizeAddress(userID),
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		Read:      false,
		CreatedAt: s.now(),
	}
	if err := s.store.Create(n); err != nil {
		return nil, err
	}

	metrics.ObserveNotification(string(typ))
	if s.publisher != nil {
		s.publisher.Publish(n.UserID, n)
	}
	s.logger.Debug("notification created",
		slog.String("user", n.UserID),
		slog.String("type", string(typ)),
	)
	return n, nil
}

// ListForUser returns a user's notifications, newest first, plus the
// unread count.
func (s *NotificationService) ListForUser(userID string) ([]*domain.Notification, int, error) {
	list, err := s.store.ListForUser(userID)
	if err != nil {
		return nil, 0, err
	}
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	return list, unread, nil
}

// UnreadCount returns how many unread notifications a user holds.
func (s *NotificationService) UnreadCount(userID string) (int, error) {
	_, unread, err := s.ListForUser(userID)
	return unread, err
}

// MarkRead flips a single notification's read flag.
func (s *NotificationService) MarkRead(id string) (*domain.Notification, error) {
	return s.store.MarkRead(id)
}

// MarkAllRead flips every unread notification for a user.
func (s *NotificationService) MarkAllRead(userID string) (int, error) {
	return s.store.MarkAllRead(userID)
}

// Delete removes one notification.
func (s *NotificationService) Delete(id string) (bool, error) {
	return s.store.Delete(id)
}

// DeleteAllForUser clears a user's feed.
func (s *NotificationService) DeleteAllForUser(userID string) (int, error) {
	return s.store.DeleteAllForUser(userID)
}

// Domain event producers. Each builds the canonical title, message and
// data payload for one event and targets the party the event concerns.

// NotifyContractCreated tells a landlord a tenant opened a contract.
func (s *NotificationService) NotifyContractCreated(landlord, tenant string, contractID uint64) {
	s.produce(landlord, domain.NotificationContractCreated,
		"New Rental Contract",
		fmt.Sprintf("A new rental contract was created by %s", domain.NormalizeAddress(tenant)),
		map[string]any{"contractId": contractID, "tenant": domain.NormalizeAddress(tenant)})
}

// NotifyContractVerified tells a tenant their landlord verified the
// contract.
func (s *NotificationService) NotifyContractVerified(tenant string, contractID uint64) {
	s.produce(tenant, domain.NotificationContractVerified,
		"Contract Verified",
		fmt.Sprintf("Your rental contract #%d was verified by the landlord", contractID),
		map[string]any{"contractId": contractID})
}

// NotifyNFTMinted tells a tenant their tenancy NFT exists.
func (s *NotificationService) NotifyNFTMinted(tenant string, contractID, tokenID uint64) {
	s.produce(tenant, domain.NotificationNFTMinted,
		"Rental NFT Minted",
		fmt.Sprintf("An NFT was minted for your rental contract #%d", contractID),
		map[string]any{"contractId": contractID, "tokenId": tokenID})
}

// NotifyDepositReceived tells a landlord the tenant's deposit arrived
// in escrow.
func (s *NotificationService) NotifyDepositReceived(landlord string, contractID uint64, amountWei string) {
	s.produce(landlord, domain.NotificationDepositReceived,
		"Deposit Received",
		fmt.Sprintf("The deposit for contract #%d was received in escrow", contractID),
		map[string]any{"contractId": contractID, "amountWei": amountWei})
}

// NotifyContractCompleted tells every involved party the contract
// closed and how the escrow resolved.
func (s *NotificationService) NotifyContractCompleted(parties []string, contractID uint64, resolution string) {
	for _, party := range parties {
		s.produce(party, domain.NotificationContractCompleted,
			"Contract Completed",
			fmt.Sprintf("Rental contract #%d completed, deposit %s", contractID, resolution),
			map[string]any{"contractId": contractID, "resolution": resolution})
	}
}

// produce creates a notification and swallows failures; event fan-out
// never breaks the operation that triggered it.
func (s *NotificationService) produce(userID string, typ domain.NotificationType, title, message string, data map[string]any) {
	if _, err := s.Create(userID, typ, title, message, data); err != nil {
		s.logger.Error("failed to produce notification",
			slog.String("user", domain.NormalizeAddress(userID)),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
	}
}
