package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/storage"
)

// CreateWagers persists a batch of wagers for one user and round.
// The user row is locked so concurrent batches see each other's stakes.
func (s *PostgresStore) CreateWagers(ctx context.Context, wagers []*models.Wager) error {
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

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		round, err := getRound(tx.Clauses(sharedLock), number)
		if err != nil {
			return err
		}
		if round.Status != string(models.RoundOpen) {
			return fmt.Errorf("round %d is %s: %w", number, round.Status, storage.ErrStaleState)
		}

		var user userRow
		if err := forUpdate(tx).First(&user, "id = ?", userID).Error; err != nil {
			return notFound(err, "user %s", userID)
		}
		held, err := heldAmount(tx, userID)
		if err != nil {
			return err
		}
		if available := user.Balance.Sub(held); available.LessThan(total) {
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
			row := wagerRow{
				ID:          w.ID,
				RoundNumber: w.RoundNumber,
				UserID:      w.UserID,
				Kind:        string(w.Kind),
				Target:      w.Target,
				Amount:      w.Amount,
				CreatedAt:   w.CreatedAt,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to insert wager: %w", err)
			}
		}
		return nil
	})
}

// GetWager retrieves a wager by ID.
func (s *PostgresStore) GetWager(ctx context.Context, id string) (*models.Wager, error) {
	var row wagerRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "wager %s", id)
	}
	return row.model(), nil
}

func findWagers(tx *gorm.DB) ([]*models.Wager, error) {
	var rows []wagerRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list wagers: %w", err)
	}
	wagers := make([]*models.Wager, len(rows))
	for i := range rows {
		wagers[i] = rows[i].model()
	}
	return wagers, nil
}

// ListWagersByRound retrieves the wagers of a round in acceptance order.
func (s *PostgresStore) ListWagersByRound(ctx context.Context, number int64) ([]*models.Wager, error) {
	return findWagers(s.db.WithContext(ctx).Where("round_number = ?", number).Order("seq"))
}

// ListWagersByUser retrieves a user's wagers, newest first.
func (s *PostgresStore) ListWagersByUser(ctx context.Context, userID string) ([]*models.Wager, error) {
	return findWagers(s.db.WithContext(ctx).Where("user_id = ?", userID).Order("seq DESC"))
}

// HeldAmount sums the user's stakes in rounds that are not finished.
func (s *PostgresStore) HeldAmount(ctx context.Context, userID string) (models.Money, error) {
	return heldAmount(s.db.WithContext(ctx), userID)
}

func heldAmount(tx *gorm.DB, userID string) (models.Money, error) {
	var amounts []decimal.Decimal
	err := tx.Model(&wagerRow{}).
		Joins("JOIN rounds ON rounds.number = wagers.round_number").
		Where("wagers.user_id = ? AND rounds.status IN ?", userID, activeStatuses).
		Pluck("wagers.amount", &amounts).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query held stakes: %w", err)
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}
