package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/storage"
)

const wagerColumns = "id, round_number, user_id, kind, target, amount, created_at"

func scanWager(row rowScanner) (*models.Wager, error) {
	w := &models.Wager{}
	var kind string
	if err := row.Scan(&w.ID, &w.RoundNumber, &w.UserID, &kind, &w.Target, &w.Amount, &w.CreatedAt); err != nil {
		return nil, err
	}
	w.Kind = models.WagerKind(kind)
	return w, nil
}

func listWagers(ctx context.Context, q queryer, query string, args ...any) ([]*models.Wager, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers: %w", err)
	}
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wagers: %w", err)
	}
	return wagers, nil
}

// CreateWagers persists a batch of wagers for one user and round.
func (s *SQLiteStore) CreateWagers(ctx context.Context, wagers []*models.Wager) error {
	if len(wagers) == 0 {
		return nil
	}
	number, userID := wagers[0].RoundNumber, wagers[0].UserID
	total := decimal.Zero
	for _, w := range wagers {
		if w.RoundNumber != number || w.UserID != userID {
			return fmt.Errorf("wager batch mixes rounds or users")
		}
		total = total.Add(w.Amount)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		round, err := getRound(ctx, tx, number)
		if err != nil {
			return err
		}
		if round.Status != models.RoundOpen {
			return fmt.Errorf("round %d is %s: %w", number, round.Status, storage.ErrStaleState)
		}

		balance, err := getBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		held, err := heldAmount(ctx, tx, userID)
		if err != nil {
			return err
		}
		if available := balance.Sub(held); available.LessThan(total) {
			return fmt.Errorf("available %s, requested %s: %w", available, total, storage.ErrInsufficientFunds)
		}

		now := time.Now().Unix()
		for _, w := range wagers {
			if w.ID == "" {
				w.ID = uuid.New().String()
			}
			if w.CreatedAt == 0 {
				w.CreatedAt = now
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO wagers ("+wagerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
				w.ID, w.RoundNumber, w.UserID, string(w.Kind), w.Target, w.Amount, w.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert wager: %w", err)
			}
		}
		return nil
	})
}

// GetWager retrieves a wager by ID.
func (s *SQLiteStore) GetWager(ctx context.Context, id string) (*models.Wager, error) {
	w, err := scanWager(s.db.QueryRowContext(ctx,
		"SELECT "+wagerColumns+" FROM wagers WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("wager %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}
	return w, nil
}

// ListWagersByRound retrieves the wagers of a round in acceptance order.
func (s *SQLiteStore) ListWagersByRound(ctx context.Context, number int64) ([]*models.Wager, error) {
	return listWagers(ctx, s.db,
		"SELECT "+wagerColumns+" FROM wagers WHERE round_number = ? ORDER BY created_at, rowid", number)
}

// ListWagersByUser retrieves a user's wagers, newest first.
func (s *SQLiteStore) ListWagersByUser(ctx context.Context, userID string) ([]*models.Wager, error) {
	return listWagers(ctx, s.db,
		"SELECT "+wagerColumns+" FROM wagers WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID)
}

// HeldAmount sums the user's stakes in rounds that are not finished.
func (s *SQLiteStore) HeldAmount(ctx context.Context, userID string) (models.Money, error) {
	return heldAmount(ctx, s.db, userID)
}

func heldAmount(ctx context.Context, q queryer, userID string) (models.Money, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT w.amount FROM wagers w
		JOIN rounds r ON r.number = w.round_number
		WHERE w.user_id = ? AND r.status IN ('open', 'closed')`,
		userID,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query held stakes: %w", err)
	}
	defer rows.Close()

	held := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan stake: %w", err)
		}
		held = held.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to iterate stakes: %w", err)
	}
	return held, nil
}
