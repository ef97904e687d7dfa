package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BlacklistRepo persists banned customer ids so bans survive restarts.
type BlacklistRepo struct {
	db *sqlx.DB
}

// NewBlacklistRepo wraps the shared connection pool.
func NewBlacklistRepo(db *sqlx.DB) *BlacklistRepo {
	return &BlacklistRepo{db: db}
}

// Load returns every banned customer id.
func (r *BlacklistRepo) Load(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT customer_id FROM blacklist ORDER BY customer_id`); err != nil {
		return nil, fmt.Errorf("load blacklist: %w", err)
	}
	return ids, nil
}

// Add records a ban. Adding an already-banned id is a no-op.
func (r *BlacklistRepo) Add(ctx context.Context, customerID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blacklist (customer_id) VALUES ($1) ON CONFLICT DO NOTHING`, customerID)
	if err != nil {
		return fmt.Errorf("blacklist add %d: %w", customerID, err)
	}
	return nil
}

// Remove lifts a ban. It reports whether the id was present.
func (r *BlacklistRepo) Remove(ctx context.Context, customerID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blacklist WHERE customer_id = $1`, customerID)
	if err != nil {
		return false, fmt.Errorf("blacklist remove %d: %w", customerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("blacklist remove %d: %w", customerID, err)
	}
	return n > 0, nil
}
