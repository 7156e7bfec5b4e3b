package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/pkg/database"
)

// Postgres-backed stores for the durable records: identities, profiles
// and notifications. Sessions stay in redis or memory.

const schema = `
CREATE TABLE IF NOT EXISTS identities (
	address     TEXT        NOT NULL,
	role        TEXT        NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	last_login  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (address, role)
);

CREATE TABLE IF NOT EXISTS profiles (
	address       TEXT        NOT NULL,
	role          TEXT        NOT NULL,
	name          TEXT        NOT NULL DEFAULT '',
	email         TEXT        NOT NULL DEFAULT '',
	phone         TEXT        NOT NULL DEFAULT '',
	verified      BOOLEAN     NOT NULL DEFAULT FALSE,
	profile_image TEXT        NOT NULL DEFAULT '',
	settings      JSONB       NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (address, role)
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT        PRIMARY KEY,
	user_id    TEXT        NOT NULL,
	type       TEXT        NOT NULL,
	title      TEXT        NOT NULL,
	message    TEXT        NOT NULL,
	data       JSONB       NOT NULL DEFAULT '{}',
	read       BOOLEAN     NOT NULL DEFAULT FALSE,
	seq        BIGSERIAL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at DESC, seq DESC);
`

// EnsureSchema creates the tables the postgres stores need.
func EnsureSchema(ctx context.Context, pool *database.Pool) error {
	if _, err := pool.DB().ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// PostgresIdentityStore implements domain.IdentityStore on postgres.
type PostgresIdentityStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresIdentityStore creates a postgres-backed identity store.
func NewPostgresIdentityStore(pool *database.Pool, logger *slog.Logger) *PostgresIdentityStore {
	return &PostgresIdentityStore{db: pool.DB(), logger: logger}
}

// Save upserts an identity.
func (s *PostgresIdentityStore) Save(identity *domain.Identity) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO identities (address, role, created_at, last_login)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address, role) DO UPDATE SET last_login = EXCLUDED.last_login`,
		domain.NormalizeAddress(identity.Address), identity.Role, identity.CreatedAt, identity.LastLogin)
	if err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	return nil
}

// Get returns the identity for an address+role pair.
func (s *PostgresIdentityStore) Get(address string, role domain.Role) (*domain.Identity, error) {
	var identity domain.Identity
	err := s.db.QueryRowContext(context.Background(), `
		SELECT address, role, created_at, last_login
		FROM identities WHERE address = $1 AND role = $2`,
		domain.NormalizeAddress(address), role).
		Scan(&identity.Address, &identity.Role, &identity.CreatedAt, &identity.LastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("identity", domain.IdentityKey(address, role))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return &identity, nil
}

// ListByRole returns every identity holding the given role.
func (s *PostgresIdentityStore) ListByRole(role domain.Role) ([]*domain.Identity, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT address, role, created_at, last_login
		FROM identities WHERE role = $1 ORDER BY created_at`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	out := []*domain.Identity{}
	for rows.Next() {
		var identity domain.Identity
		if err := rows.Scan(&identity.Address, &identity.Role, &identity.CreatedAt, &identity.LastLogin); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		out = append(out, &identity)
	}
	return out, rows.Err()
}

// PostgresProfileStore implements domain.ProfileStore on postgres.
type PostgresProfileStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProfileStore creates a postgres-backed profile store.
func NewPostgresProfileStore(pool *database.Pool, logger *slog.Logger) *PostgresProfileStore {
	return &PostgresProfileStore{db: pool.DB(), logger: logger}
}

// Save upserts a profile.
func (s *PostgresProfileStore) Save(profile *domain.Profile) error {
	settings, err := json.Marshal(profile.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if profile.Settings == nil {
		settings = []byte("{}")
	}

	_, err = s.db.ExecContext(context.Background(), `
		INSERT INTO profiles (address, role, name, email, phone, verified, profile_image, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (address, role) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			verified = EXCLUDED.verified,
			profile_image = EXCLUDED.profile_image,
			settings = EXCLUDED.settings,
			updated_at = EXCLUDED.updated_at`,
		domain.NormalizeAddress(profile.Address), profile.Role, profile.Name, profile.Email,
		profile.Phone, profile.Verified, profile.ProfileImage, settings,
		profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Get returns the profile for an address+role pair.
func (s *PostgresProfileStore) Get(address string, role domain.Role) (*domain.Profile, error) {
	profile, err := s.scanProfile(s.db.QueryRowContext(context.Background(), `
		SELECT address, role, name, email, phone, verified, profile_image, settings, created_at, updated_at
		FROM profiles WHERE address = $1 AND role = $2`,
		domain.NormalizeAddress(address), role))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("profile", domain.IdentityKey(address, role))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// ListByRole returns every profile holding the given role.
func (s *PostgresProfileStore) ListByRole(role domain.Role) ([]*domain.Profile, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT address, role, name, email, phone, verified, profile_image, settings, created_at, updated_at
		FROM profiles WHERE role = $1 ORDER BY created_at`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	out := []*domain.Profile{}
	for rows.Next() {
		profile, err := s.scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, profile)
	}
	return out, rows.Err()
}

// Delete removes a profile and reports whether it existed.
func (s *PostgresProfileStore) Delete(address string, role domain.Role) (bool, error) {
	res, err := s.db.ExecContext(context.Background(), `
		DELETE FROM profiles WHERE address = $1 AND role = $2`,
		domain.NormalizeAddress(address), role)
	if err != nil {
		return false, fmt.Errorf("failed to delete profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresProfileStore) scanProfile(row rowScanner) (*domain.Profile, error) {
	var profile domain.Profile
	var settings []byte
	err := row.Scan(&profile.Address, &profile.Role, &profile.Name, &profile.Email,
		&profile.Phone, &profile.Verified, &profile.ProfileImage, &settings,
		&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &profile.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}
	return &profile, nil
}

// PostgresNotificationStore implements domain.NotificationStore on
// postgres. The seq column breaks created_at ties for newest-first
// ordering.
type PostgresNotificationStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a postgres-backed notification store.
func NewPostgresNotificationStore(pool *database.Pool, logger *slog.Logger) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: pool.DB(), logger: logger}
}

// Create inserts a notification.
func (s *PostgresNotificationStore) Create(n *domain.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification data: %w", err)
	}
	if n.Data == nil {
		data = []byte("{}")
	}

	_, err = s.db.ExecContext(context.Background(), `
		INSERT INTO notifications (id, user_id, type, title, message, data, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, domain.NormalizeAddress(n.UserID), n.Type, n.Title, n.Message, data, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// Get returns a single notification by id.
func (s *PostgresNotificationStore) Get(id string) (*domain.Notification, error) {
	n, err := s.scanNotification(s.db.QueryRowContext(context.Background(), `
		SELECT id, user_id, type, title, message, data, read, created_at
		FROM notifications WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("notification", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *PostgresNotificationStore) ListForUser(userID string) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT id, user_id, type, title, message, data, read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC`,
		domain.NormalizeAddress(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := []*domain.Notification{}
	for rows.Next() {
		n, err := s.scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flips the read flag for one notification.
func (s *PostgresNotificationStore) MarkRead(id string) (*domain.Notification, error) {
	n, err := s.scanNotification(s.db.QueryRowContext(context.Background(), `
		UPDATE notifications SET read = TRUE WHERE id = $1
		RETURNING id, user_id, type, title, message, data, read, created_at`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("notification", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return n, nil
}

// MarkAllRead flips every unread notification for a user.
func (s *PostgresNotificationStore) MarkAllRead(userID string) (int, error) {
	res, err := s.db.ExecContext(context.Background(), `
		UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`,
		domain.NormalizeAddress(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Delete removes one notification.
func (s *PostgresNotificationStore) Delete(id string) (bool, error) {
	res, err := s.db.ExecContext(context.Background(), `
		DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAllForUser removes every notification for a user.
func (s *PostgresNotificationStore) DeleteAllForUser(userID string) (int, error) {
	res, err := s.db.ExecContext(context.Background(), `
		DELETE FROM notifications WHERE user_id = $1`,
		domain.NormalizeAddress(userID))
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *PostgresNotificationStore) scanNotification(row rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var data []byte
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &data, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}
	return &n, nil
}
