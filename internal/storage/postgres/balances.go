package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/storage"
)

// GetBalance returns the authoritative balance of a user.
func (s *PostgresStore) GetBalance(ctx context.Context, userID string) (models.Money, error) {
	var user userRow
	if err := s.db.WithContext(ctx).Select("balance").First(&user, "id = ?", userID).Error; err != nil {
		return decimal.Zero, notFound(err, "user %s", userID)
	}
	return user.Balance, nil
}

// ApplyChange applies a balance change once per (user, key).
func (s *PostgresStore) ApplyChange(ctx context.Context, c storage.Change) (models.Money, bool, error) {
	var (
		balance models.Money
		applied bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		balance, applied, err = applyChange(tx, c)
		return err
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	return balance, applied, nil
}

func applyChange(tx *gorm.DB, c storage.Change) (models.Money, bool, error) {
	var user userRow
	if err := forUpdate(tx).First(&user, "id = ?", c.UserID).Error; err != nil {
		return decimal.Zero, false, notFound(err, "user %s", c.UserID)
	}

	var existing balanceEntryRow
	err := tx.Where("user_id = ? AND key = ?", c.UserID, c.Key).Take(&existing).Error
	if err == nil {
		return user.Balance, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, fmt.Errorf("failed to check balance entry: %w", err)
	}

	after, delta := storage.Clamp(user.Balance, c.Delta)
	now := time.Now().Unix()

	if err := tx.Model(&userRow{}).Where("id = ?", c.UserID).
		Updates(map[string]any{"balance": after, "updated_at": now}).Error; err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to update balance: %w", err)
	}

	entry := balanceEntryRow{
		UserID:       c.UserID,
		Key:          c.Key,
		Kind:         string(c.Kind),
		Delta:        c.Delta,
		Applied:      delta,
		BalanceAfter: after,
		RoundNumber:  c.RoundNumber,
		CreatedAt:    now,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to insert balance entry: %w", err)
	}
	return after, true, nil
}

// ListBalanceEntries retrieves the balance journal of a user, newest first.
func (s *PostgresStore) ListBalanceEntries(ctx context.Context, userID string) ([]*models.BalanceEntry, error) {
	var rows []balanceEntryRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list balance entries: %w", err)
	}
	entries := make([]*models.BalanceEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].model()
	}
	return entries, nil
}
