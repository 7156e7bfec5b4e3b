package repository

import (
	"sort"
	"sync"

	"github.com/ProofINer/proofin-backend/internal/domain"
)

// In-memory stores, the default backing when no redis/postgres is
// configured. All maps are mutex-guarded; read-modify-write sequences
// (MarkAllRead against a concurrent Create) run under the store lock.

// MemorySessionStore holds sessions keyed by token.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewMemorySessionStore creates an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]domain.Session{}}
}

// Save stores a session under its token.
func (s *MemorySessionStore) Save(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

// Get returns the session for a token, expired or not; expiry policy
// belongs to the caller.
func (s *MemorySessionStore) Get(token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.NewNotFoundError("session", token)
	}
	out := session
	return &out, nil
}

// Delete removes a session and reports whether it existed.
func (s *MemorySessionStore) Delete(token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[token]
	delete(s.sessions, token)
	return ok, nil
}

// MemoryIdentityStore holds identities keyed by address+role.
type MemoryIdentityStore struct {
	mu         sync.RWMutex
	identities map[string]domain.Identity
}

// NewMemoryIdentityStore creates an empty identity store.
func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{identities: map[string]domain.Identity{}}
}

// Save upserts an identity.
func (s *MemoryIdentityStore) Save(identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[domain.IdentityKey(identity.Address, identity.Role)] = *identity
	return nil
}

// Get returns the identity for an address+role pair.
func (s *MemoryIdentityStore) Get(address string, role domain.Role) (*domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[domain.IdentityKey(address, role)]
	if !ok {
		return nil, domain.NewNotFoundError("identity", domain.IdentityKey(address, role))
	}
	out := identity
	return &out, nil
}

// ListByRole returns every identity holding the given role.
func (s *MemoryIdentityStore) ListByRole(role domain.Role) ([]*domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*domain.Identity{}
	for _, identity := range s.identities {
		if identity.Role == role {
			copied := identity
			out = append(out, &copied)
		}
	}
	return out, nil
}

// MemoryProfileStore holds profiles keyed by address+role.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

// NewMemoryProfileStore creates an empty profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: map[string]domain.Profile{}}
}

// Save upserts a profile.
func (s *MemoryProfileStore) Save(profile *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[domain.IdentityKey(profile.Address, profile.Role)] = *profile
	return nil
}

// Get returns the profile for an address+role pair.
func (s *MemoryProfileStore) Get(address string, role domain.Role) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[domain.IdentityKey(address, role)]
	if !ok {
		return nil, domain.NewNotFoundError("profile", domain.IdentityKey(address, role))
	}
	out := profile
	return &out, nil
}

// ListByRole returns every profile holding the given role.
func (s *MemoryProfileStore) ListByRole(role domain.Role) ([]*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*domain.Profile{}
	for _, profile := range s.profiles {
		if profile.Role == role {
			copied := profile
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Delete removes a profile and reports whether it existed.
func (s *MemoryProfileStore) Delete(address string, role domain.Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.IdentityKey(address, role)
	_, ok := s.profiles[key]
	delete(s.profiles, key)
	return ok, nil
}

// MemoryNotificationStore holds notifications with a per-user id index.
// A monotonic sequence breaks CreatedAt ties so newest-first ordering is
// strict even for same-instant creates.
type MemoryNotificationStore struct {
	mu            sync.RWMutex
	notifications map[string]domain.Notification
	seq           map[string]uint64
	byUser        map[string][]string
	nextSeq       uint64
}

// NewMemoryNotificationStore creates an empty notification store.
func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{
		notifications: map[string]domain.Notification{},
		seq:           map[string]uint64{},
		byUser:        map[string][]string{},
	}
}

// Create appends a notification to its user's sequence.
func (s *MemoryNotificationStore) Create(n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	s.notifications[n.ID] = *n
	s.seq[n.ID] = s.nextSeq
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n.ID)
	return nil
}

// Get returns a single notification by id.
func (s *MemoryNotificationStore) Get(id string) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, domain.NewNotFoundError("notification", id)
	}
	out := n
	return &out, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *MemoryNotificationStore) ListForUser(userID string) ([]*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID = domain.NormalizeAddress(userID)

	out := []*domain.Notification{}
	for _, id := range s.byUser[userID] {
		if n, ok := s.notifications[id]; ok {
			copied := n
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out, nil
}

// MarkRead flips the read flag for one notification.
func (s *MemoryNotificationStore) MarkRead(id string) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, domain.NewNotFoundError("notification", id)
	}
	n.Read = true
	s.notifications[id] = n
	out := n
	return &out, nil
}

// MarkAllRead flips every unread notification for a user and returns how
// many actually changed.
func (s *MemoryNotificationStore) MarkAllRead(userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID = domain.NormalizeAddress(userID)

	count := 0
	for _, id := range s.byUser[userID] {
		if n, ok := s.notifications[id]; ok && !n.Read {
			n.Read = true
			s.notifications[id] = n
			count++
		}
	}
	return count, nil
}

// Delete removes one notification and scrubs the user index.
func (s *MemoryNotificationStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return false, nil
	}
	delete(s.notifications, id)
	delete(s.seq, id)

	ids := s.byUser[n.UserID]
	filtered := ids[:0]
	for _, existing := range ids {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}
	s.byUser[n.UserID] = filtered
	return true, nil
}

// DeleteAllForUser removes every notification for a user.
func (s *MemoryNotificationStore) DeleteAllForUser(userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID = domain.NormalizeAddress(userID)

	count := 0
	for _, id := range s.byUser[userID] {
		if _, ok := s.notifications[id]; ok {
			delete(s.notifications, id)
			delete(s.seq, id)
			count++
		}
	}
	delete(s.byUser, userID)
	return count, nil
}
