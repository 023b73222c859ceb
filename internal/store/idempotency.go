package store

import (
	"context"
	"fmt"
	"time"
)

// ReserveIdempotencyKey records key until expiresAt. It reports false when the
// key is already held by an unexpired reservation. Expired reservations of any
// key are pruned first.
func ReserveIdempotencyKey(ctx context.Context, db DBTX, key string, expiresAt time.Time) (bool, error) {
	if _, err := db.ExecContext(ctx,
		`DELETE FROM idempotency_keys WHERE expires_at < ?`, time.Now(),
	); err != nil {
		return false, fmt.Errorf("pruning idempotency keys: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO idempotency_keys (key, expires_at) VALUES (?, ?)`,
		key, expiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("reserving idempotency key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking idempotency key reservation: %w", err)
	}
	return n == 1, nil
}

// ReleaseIdempotencyKey drops a reservation so the key can be retried.
func ReleaseIdempotencyKey(ctx context.Context, db DBTX, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM idempotency_keys WHERE key = ?`, key); err != nil {
		return fmt.Errorf("releasing idempotency key: %w", err)
	}
	return nil
}
