package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/storage"
)

const roundColumns = "number, table_id, status, winning_slot, created_at, closed_at, finished_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRound(row rowScanner) (*models.Round, error) {
	round := &models.Round{}
	var slot sql.NullInt64
	var status string
	if err := row.Scan(&round.Number, &round.TableID, &status, &slot,
		&round.CreatedAt, &round.ClosedAt, &round.FinishedAt); err != nil {
		return nil, err
	}
	round.Status = models.RoundStatus(status)
	if slot.Valid {
		n := int(slot.Int64)
		round.WinningSlot = &n
	}
	return round, nil
}

func getRound(ctx context.Context, q queryer, number int64) (*models.Round, error) {
	round, err := scanRound(q.QueryRowContext(ctx,
		"SELECT "+roundColumns+" FROM rounds WHERE number = ?", number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("round %d: %w", number, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return round, nil
}

// CreateRound opens a new round on the table.
func (s *SQLiteStore) CreateRound(ctx context.Context, tableID string) (*models.Round, error) {
	var round *models.Round
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var active int64
		err := tx.QueryRowContext(ctx,
			"SELECT number FROM rounds WHERE table_id = ? AND status IN ('open', 'closed')",
			tableID,
		).Scan(&active)
		if err == nil {
			return fmt.Errorf("table %q round %d: %w", tableID, active, storage.ErrActiveRound)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check active round: %w", err)
		}

		now := time.Now().Unix()
		res, err := tx.ExecContext(ctx,
			"INSERT INTO rounds (table_id, status, created_at) VALUES (?, ?, ?)",
			tableID, string(models.RoundOpen), now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert round: %w", err)
		}
		number, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read round number: %w", err)
		}

		round = &models.Round{
			Number:    number,
			TableID:   tableID,
			Status:    models.RoundOpen,
			CreatedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// GetRound retrieves a round by number.
func (s *SQLiteStore) GetRound(ctx context.Context, number int64) (*models.Round, error) {
	return getRound(ctx, s.db, number)
}

// ActiveRound retrieves the open or closed round of a table.
func (s *SQLiteStore) ActiveRound(ctx context.Context, tableID string) (*models.Round, error) {
	round, err := scanRound(s.db.QueryRowContext(ctx,
		"SELECT "+roundColumns+" FROM rounds WHERE table_id = ? AND status IN ('open', 'closed')",
		tableID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active round on table %q: %w", tableID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active round: %w", err)
	}
	return round, nil
}

// ListRounds retrieves all rounds, newest first.
func (s *SQLiteStore) ListRounds(ctx context.Context) ([]*models.Round, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+roundColumns+" FROM rounds ORDER BY number DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*models.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rounds: %w", err)
	}
	return rounds, nil
}

// CloseRound moves an open round to closed.
func (s *SQLiteStore) CloseRound(ctx context.Context, number int64) (*models.Round, error) {
	var round *models.Round
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE rounds SET status = ?, closed_at = ? WHERE number = ? AND status = ?",
			string(models.RoundClosed), time.Now().Unix(), number, string(models.RoundOpen),
		)
		if err != nil {
			return fmt.Errorf("failed to close round: %w", err)
		}
		if err := expectOneRow(ctx, tx, res, number); err != nil {
			return err
		}
		round, err = getRound(ctx, tx, number)
		return err
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// FinishRound moves a closed round to finished and applies its settlement.
func (s *SQLiteStore) FinishRound(ctx context.Context, number int64, slot int, changes []storage.Change) (*models.Round, error) {
	var round *models.Round
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE rounds SET status = ?, winning_slot = ?, finished_at = ? WHERE number = ? AND status = ?",
			string(models.RoundFinished), slot, time.Now().Unix(), number, string(models.RoundClosed),
		)
		if err != nil {
			return fmt.Errorf("failed to finish round: %w", err)
		}
		if err := expectOneRow(ctx, tx, res, number); err != nil {
			return err
		}

		for _, c := range changes {
			if _, _, err := applyChange(ctx, tx, c); err != nil {
				return err
			}
		}

		round, err = getRound(ctx, tx, number)
		return err
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// expectOneRow turns a conditional update that matched nothing into
// ErrNotFound or ErrStaleState.
func expectOneRow(ctx context.Context, q queryer, res sql.Result, number int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}
	round, err := getRound(ctx, q, number)
	if err != nil {
		return err
	}
	return fmt.Errorf("round %d is %s: %w", number, round.Status, storage.ErrStaleState)
}
