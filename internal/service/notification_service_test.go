package service

import (
	"log/slog"
	"testing"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/repository"
)

type recordingPublisher struct {
	published []*domain.Notification
}

func (p *recordingPublisher) Publish(userID string, n *domain.Notification) {
	p.published = append(p.published, n)
}

func newTestNotificationService(pub NotificationPublisher) *NotificationService {
	return NewNotificationService(repository.NewMemoryNotificationStore(), pub, slog.Default())
}

func TestCreateAndListNewestFirst(t *testing.T) {
	s := newTestNotificationService(nil)
	user := "0xAA00000000000000000000000000000000000001"

	for i := 0; i < 3; i++ {
		if _, err := s.Create(user, domain.NotificationContractCreated, "t", "m", nil); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	list, unread, err := s.ListForUser(user)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 3 || unread != 3 {
		t.Fatalf("expected 3 notifications all unread, got %d/%d", len(list), unread)
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Fatal("expected newest-first ordering")
		}
	}
	if list[0].UserID != "0xaa00000000000000000000000000000000000001" {
		t.Fatalf("expected lowercase userId, got %s", list[0].UserID)
	}
}

func TestCreatePushesToPublisher(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestNotificationService(pub)

	if _, err := s.Create("0xabc", domain.NotificationNFTMinted, "t", "m", nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published notification, got %d", len(pub.published))
	}
}

func TestMarkReadFlow(t *testing.T) {
	s := newTestNotificationService(nil)
	user := "0xabc"

	n, err := s.Create(user, domain.NotificationContractVerified, "t", "m", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.Create(user, domain.NotificationDepositReceived, "t", "m", nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := s.MarkRead(n.ID)
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if !updated.Read {
		t.Fatal("expected notification to be read")
	}

	unread, err := s.UnreadCount(user)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if unread != 1 {
		t.Fatalf("expected 1 unread, got %d", unread)
	}

	flipped, err := s.MarkAllRead(user)
	if err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	if flipped != 1 {
		t.Fatalf("expected 1 flipped, got %d", flipped)
	}
	if flipped, _ = s.MarkAllRead(user); flipped != 0 {
		t.Fatalf("expected second mark-all to flip nothing, got %d", flipped)
	}
}

func TestMarkReadUnknownID(t *testing.T) {
	s := newTestNotificationService(nil)
	if _, err := s.MarkRead("missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestDeleteFlow(t *testing.T) {
	s := newTestNotificationService(nil)
	user := "0xabc"

	n, err := s.Create(user, domain.NotificationContractCompleted, "t", "m", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.Create(user, domain.NotificationContractCompleted, "t", "m", nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if removed, _ := s.Delete(n.ID); !removed {
		t.Fatal("expected delete to remove the notification")
	}
	if removed, _ := s.Delete(n.ID); removed {
		t.Fatal("expected second delete to be a no-op")
	}

	count, err := s.DeleteAllForUser(user)
	if err != nil {
		t.Fatalf("delete all failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining notification deleted, got %d", count)
	}
	list, _, err := s.ListForUser(user)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty feed, got %d", len(list))
	}
}
