package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/storage"
)

var activeStatuses = []string{string(models.RoundOpen), string(models.RoundClosed)}

// CreateRound opens a new round on the table.
func (s *PostgresStore) CreateRound(ctx context.Context, tableID string) (*models.Round, error) {
	var row roundRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active roundRow
		err := tx.Where("table_id = ? AND status IN ?", tableID, activeStatuses).First(&active).Error
		if err == nil {
			return fmt.Errorf("table %q round %d: %w", tableID, active.Number, storage.ErrActiveRound)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check active round: %w", err)
		}

		row = roundRow{
			TableID:   tableID,
			Status:    string(models.RoundOpen),
			CreatedAt: time.Now().Unix(),
		}
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("table %q: %w", tableID, storage.ErrActiveRound)
			}
			return fmt.Errorf("failed to insert round: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

func getRound(tx *gorm.DB, number int64) (*roundRow, error) {
	var row roundRow
	if err := tx.First(&row, "number = ?", number).Error; err != nil {
		return nil, notFound(err, "round %d", number)
	}
	return &row, nil
}

// GetRound retrieves a round by number.
func (s *PostgresStore) GetRound(ctx context.Context, number int64) (*models.Round, error) {
	row, err := getRound(s.db.WithContext(ctx), number)
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

// ActiveRound retrieves the open or closed round of a table.
func (s *PostgresStore) ActiveRound(ctx context.Context, tableID string) (*models.Round, error) {
	var row roundRow
	err := s.db.WithContext(ctx).
		Where("table_id = ? AND status IN ?", tableID, activeStatuses).
		First(&row).Error
	if err != nil {
		return nil, notFound(err, "active round on table %q", tableID)
	}
	return row.model(), nil
}

// ListRounds retrieves all rounds, newest first.
func (s *PostgresStore) ListRounds(ctx context.Context) ([]*models.Round, error) {
	var rows []roundRow
	if err := s.db.WithContext(ctx).Order("number DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	rounds := make([]*models.Round, len(rows))
	for i := range rows {
		rounds[i] = rows[i].model()
	}
	return rounds, nil
}

// transition locks the round row and moves it from one status to the next.
func (s *PostgresStore) transition(ctx context.Context, number int64, from models.RoundStatus, fn func(tx *gorm.DB, row *roundRow) error) (*models.Round, error) {
	var row *roundRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = getRound(forUpdate(tx), number)
		if err != nil {
			return err
		}
		if row.Status != string(from) {
			return fmt.Errorf("round %d is %s: %w", number, row.Status, storage.ErrStaleState)
		}
		if err := fn(tx, row); err != nil {
			return err
		}
		return tx.Save(row).Error
	})
	if err != nil {
		return nil, err
	}
	return row.model(), nil
}

// CloseRound moves an open round to closed.
func (s *PostgresStore) CloseRound(ctx context.Context, number int64) (*models.Round, error) {
	return s.transition(ctx, number, models.RoundOpen, func(_ *gorm.DB, row *roundRow) error {
		row.Status = string(models.RoundClosed)
		row.ClosedAt = time.Now().Unix()
		return nil
	})
}

// FinishRound moves a closed round to finished and applies its settlement.
func (s *PostgresStore) FinishRound(ctx context.Context, number int64, slot int, changes []storage.Change) (*models.Round, error) {
	return s.transition(ctx, number, models.RoundClosed, func(tx *gorm.DB, row *roundRow) error {
		row.Status = string(models.RoundFinished)
		row.WinningSlot = &slot
		row.FinishedAt = time.Now().Unix()
		for _, c := range changes {
			if _, _, err := applyChange(tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}
