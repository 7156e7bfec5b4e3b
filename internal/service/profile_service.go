package service

import (
	"log/slog"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
)

// ProfileService owns the off-chain user profiles. The verified flag is
// writable only through the verification workflow, never through
// profile updates.
type ProfileService struct {
	store  domain.ProfileStore
	logger *slog.Logger
	now    func() time.Time
}

// NewProfileService creates the profile service.
func NewProfileService(store domain.ProfileStore, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, logger: logger, now: time.Now}
}

// Get returns the profile for an address+role pair.
func (s *ProfileService) Get(address string, role domain.Role) (*domain.Profile, error) {
	if address == "" {
		return nil, domain.NewValidationError("address is required")
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("role must be tenant or landlord")
	}
	return s.store.Get(address, role)
}

// Create makes a fresh profile. Creating over an existing profile is an
// input error.
func (s *ProfileService) Create(address string, role domain.Role, update domain.ProfileUpdate) (*domain.Profile, error) {
	if address == "" {
		return nil, domain.NewValidationError("address is required")
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("role must be tenant or landlord")
	}

	address = domain.NormalizeAddress(address)
	if _, err := s.store.Get(address, role); err == nil {
		return nil, domain.NewValidationError("profile already exists for %s (%s)", address, role)
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	now := s.now()
	profile := &domain.Profile{
		Address:   address,
		Role:      role,
		Verified:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyUpdate(profile, update)

	if err := s.store.Save(profile); err != nil {
		return nil, err
	}
	s.logger.Info("profile created",
		slog.String("address", address),
		slog.String("role", string(role)),
	)
	return profile, nil
}

// Update patches caller-writable fields on an existing profile.
func (s *ProfileService) Update(address string, role domain.Role, update domain.ProfileUpdate) (*domain.Profile, error) {
	profile, err := s.Get(address, role)
	if err != nil {
		return nil, err
	}

	applyUpdate(profile, update)
	profile.UpdatedAt = s.now()

	if err := s.store.Save(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ByRole lists every profile holding a role.
func (s *ProfileService) ByRole(role domain.Role) ([]*domain.Profile, error) {
	if !role.Valid() {
		return nil, domain.NewValidationError("role must be tenant or landlord")
	}
	return s.store.ListByRole(role)
}

// Delete removes a profile.
func (s *ProfileService) Delete(address string, role domain.Role) (bool, error) {
	if !role.Valid() {
		return false, domain.NewValidationError("role must be tenant or landlord")
	}
	return s.store.Delete(address, role)
}

func applyUpdate(profile *domain.Profile, update domain.ProfileUpdate) {
	if update.Name != nil {
		profile.Name = *update.Name
	}
	if update.Email != nil {
		profile.Email = *update.Email
	}
	if update.Phone != nil {
		profile.Phone = *update.Phone
	}
	if update.ProfileImage != nil {
		profile.ProfileImage = *update.ProfileImage
	}
	if update.Settings != nil {
		profile.Settings = update.Settings
	}
}
