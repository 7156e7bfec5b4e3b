package domain

import (
	"strings"
	"time"
)

// Role distinguishes the two sides of a rental contract. The same wallet
// address may hold a tenant identity and a landlord identity at the same
// time; they never merge.
type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
)

// Valid reports whether the role is one of the two supported roles.
func (r Role) Valid() bool {
	return r == RoleTenant || r == RoleLandlord
}

// Identity is a wallet address + role pair, the unit of authentication.
type Identity struct {
	Address   string    `json:"address"` // always lowercase
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

// Session is a time-bounded proof that a wallet+role pair authenticated.
// One identity may hold any number of concurrent sessions.
type Session struct {
	Address   string    `json:"address"` // always lowercase
	Role      Role      `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its validity window.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Profile holds the off-chain user record for an identity. Verified is
// writable only through the landlord verification path.
type Profile struct {
	Address      string          `json:"address"` // always lowercase
	Role         Role            `json:"role"`
	Name         string          `json:"name,omitempty"`
	Email        string          `json:"email,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Verified     bool            `json:"verified"`
	ProfileImage string          `json:"profileImage,omitempty"`
	Settings     map[string]any  `json:"settings,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ProfileUpdate carries the caller-writable profile fields. Nil pointers
// leave the existing value untouched.
type ProfileUpdate struct {
	Name         *string        `json:"name,omitempty"`
	Email        *string        `json:"email,omitempty"`
	Phone        *string        `json:"phone,omitempty"`
	ProfileImage *string        `json:"profileImage,omitempty"`
	Settings     map[string]any `json:"settings,omitempty"`
}

// IdentityKey builds the composite store key for an address+role pair.
func IdentityKey(address string, role Role) string {
	return NormalizeAddress(address) + "-" + string(role)
}

// NormalizeAddress lowercases a wallet address. Every store key and every
// session address in the system goes through this.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// SessionStore defines data access for login sessions, keyed by token.
type SessionStore interface {
	Save(session *Session) error
	Get(token string) (*Session, error) // NotFoundError if unknown
	Delete(token string) (bool, error)  // true iff a session was removed
}

// IdentityStore defines data access for identities, keyed by address+role.
type IdentityStore interface {
	Save(identity *Identity) error
	Get(address string, role Role) (*Identity, error) // NotFoundError if unknown
	ListByRole(role Role) ([]*Identity, error)
}

// ProfileStore defines data access for profiles, keyed by address+role.
type ProfileStore interface {
	Save(profile *Profile) error
	Get(address string, role Role) (*Profile, error) // NotFoundError if unknown
	ListByRole(role Role) ([]*Profile, error)
	Delete(address string, role Role) (bool, error)
}
