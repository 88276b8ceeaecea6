package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobseek-id/auto-emailer/internal/model"
)

// Typed not-found sentinels. A missing row is a data-integrity problem for
// one identity, not a store failure; callers distinguish with errors.Is.
var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrProfileMissing   = errors.New("identity profile missing")
	ErrConfigMissing    = errors.New("identity filter config missing")
)

// IdentityStore reads sender identities and their configuration from
// Postgres. All methods are read-only.
type IdentityStore struct {
	pool *pgxpool.Pool
}

// NewIdentityStore returns an IdentityStore backed by pool.
func NewIdentityStore(pool *pgxpool.Pool) *IdentityStore {
	return &IdentityStore{pool: pool}
}

// ActiveIdentities returns all active sender accounts ordered by id ascending.
func (s *IdentityStore) ActiveIdentities(ctx context.Context) ([]model.SenderIdentity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, app_password, is_active
		FROM email.accounts
		WHERE is_active = true
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying active accounts: %w", err)
	}
	defer rows.Close()

	identities := make([]model.SenderIdentity, 0)
	for rows.Next() {
		var id model.SenderIdentity
		if err := rows.Scan(&id.ID, &id.Email, &id.AppPassword, &id.IsActive); err != nil {
			return nil, fmt.Errorf("scanning account row: %w", err)
		}
		identities = append(identities, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}
	return identities, nil
}

// Identity returns one active sender account by id.
func (s *IdentityStore) Identity(ctx context.Context, accountID int64) (*model.SenderIdentity, error) {
	var id model.SenderIdentity
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, app_password, is_active
		FROM email.accounts
		WHERE id = $1 AND is_active = true`, accountID).
		Scan(&id.ID, &id.Email, &id.AppPassword, &id.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", accountID, ErrIdentityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying account %d: %w", accountID, err)
	}
	return &id, nil
}

// Profile returns the profile for one account.
func (s *IdentityStore) Profile(ctx context.Context, accountID int64) (*model.IdentityProfile, error) {
	var p model.IdentityProfile
	err := s.pool.QueryRow(ctx, `
		SELECT account_id, name, username, gender, phone
		FROM email.account_profiles
		WHERE account_id = $1`, accountID).
		Scan(&p.AccountID, &p.Name, &p.Username, &p.Gender, &p.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", accountID, ErrProfileMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile %d: %w", accountID, err)
	}
	return &p, nil
}

// FilterConfig returns the block-list configuration for one account.
// The blocked_job_position column is JSONB; it is decoded strictly into the
// typed struct and a malformed document is a store error, never silently
// coerced.
func (s *IdentityStore) FilterConfig(ctx context.Context, accountID int64) (*model.IdentityFilterConfig, error) {
	var (
		cfg model.IdentityFilterConfig
		raw []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT account_id, blocked_job_position
		FROM email.account_data
		WHERE account_id = $1`, accountID).
		Scan(&cfg.AccountID, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", accountID, ErrConfigMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("querying account data %d: %w", accountID, err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg.BlockedPositions); err != nil {
			return nil, fmt.Errorf("decoding blocked_job_position for account %d: %w", accountID, err)
		}
	}
	return &cfg, nil
}

// Complete loads account, profile and filter config for one identity.
// The snapshot is rebuilt on every call; identity data can change between
// events.
func (s *IdentityStore) Complete(ctx context.Context, accountID int64) (*model.CompleteIdentity, error) {
	account, err := s.Identity(ctx, accountID)
	if err != nil {
		return nil, err
	}
	profile, err := s.Profile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	filter, err := s.FilterConfig(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &model.CompleteIdentity{
		Account: *account,
		Profile: *profile,
		Filter:  *filter,
	}, nil
}
