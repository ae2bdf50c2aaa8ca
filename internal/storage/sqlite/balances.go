package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/storage"
)

func getBalance(ctx context.Context, q queryer, userID string) (models.Money, error) {
	var balance decimal.Decimal
	err := q.QueryRowContext(ctx, "SELECT balance FROM users WHERE id = ?", userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// GetBalance returns the authoritative balance of a user.
func (s *SQLiteStore) GetBalance(ctx context.Context, userID string) (models.Money, error) {
	return getBalance(ctx, s.db, userID)
}

// ApplyChange applies a balance change once per (user, key).
func (s *SQLiteStore) ApplyChange(ctx context.Context, c storage.Change) (models.Money, bool, error) {
	var (
		balance models.Money
		applied bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		balance, applied, err = applyChange(ctx, tx, c)
		return err
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	return balance, applied, nil
}

func applyChange(ctx context.Context, tx *sql.Tx, c storage.Change) (models.Money, bool, error) {
	balance, err := getBalance(ctx, tx, c.UserID)
	if err != nil {
		return decimal.Zero, false, err
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM balance_entries WHERE user_id = ? AND key = ?", c.UserID, c.Key,
	).Scan(&exists)
	if err == nil {
		return balance, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, fmt.Errorf("failed to check balance entry: %w", err)
	}

	after, delta := storage.Clamp(balance, c.Delta)
	now := time.Now().Unix()

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET balance = ?, updated_at = ? WHERE id = ?",
		after, now, c.UserID,
	); err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to update balance: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO balance_entries (user_id, kind, delta, applied, balance_after, round_number, key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, string(c.Kind), c.Delta, delta, after, c.RoundNumber, c.Key, now,
	); err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to insert balance entry: %w", err)
	}

	return after, true, nil
}

// ListBalanceEntries retrieves the balance journal of a user, newest first.
func (s *SQLiteStore) ListBalanceEntries(ctx context.Context, userID string) ([]*models.BalanceEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, kind, delta, applied, balance_after, round_number, key, created_at
		 FROM balance_entries WHERE user_id = ? ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list balance entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.BalanceEntry
	for rows.Next() {
		e := &models.BalanceEntry{}
		var kind string
		if err := rows.Scan(&e.ID, &e.UserID, &kind, &e.Delta, &e.Applied,
			&e.BalanceAfter, &e.RoundNumber, &e.Key, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance entry: %w", err)
		}
		e.Kind = models.EntryKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance entries: %w", err)
	}
	return entries, nil
}
