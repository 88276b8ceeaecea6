package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobseek-id/auto-emailer/internal/model"
)

// SentLog persists the fact that a sender already emailed a target.
// Rows are append-only; the (target_email, sender_email) pair is unique.
type SentLog struct {
	pool *pgxpool.Pool
}

// NewSentLog returns a SentLog backed by pool.
func NewSentLog(pool *pgxpool.Pool) *SentLog {
	return &SentLog{pool: pool}
}

// AlreadySent reports whether a (target, sender) record exists.
func (s *SentLog) AlreadySent(ctx context.Context, target, sender string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM email.sent_logs
			WHERE target_email = $1 AND sender_email = $2
		)`, target, sender).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking sent log (%s <- %s): %w", target, sender, err)
	}
	return exists, nil
}

// RecordBatch inserts one sent record per pair inside a single transaction
// and returns the count of newly inserted rows. Each insert is idempotent on
// the (target, sender) pair: a repeat is a no-op, not an error, so the check
// and the insert need not be atomic with each other.
func (s *SentLog) RecordBatch(ctx context.Context, pairs []model.SentPair) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning sent log transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	inserted := 0
	for _, p := range pairs {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO email.sent_logs (target_email, sender_email, sent_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (target_email, sender_email) DO NOTHING
			RETURNING id`, p.Target, p.Sender, now).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict: the pair was already recorded.
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("recording sent log (%s <- %s): %w", p.Target, p.Sender, err)
		}
		inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing sent log transaction: %w", err)
	}
	return inserted, nil
}
