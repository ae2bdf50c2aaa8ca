package postgres

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
)

type userRow struct {
	ID           string          `gorm:"primaryKey;type:text"`
	Email        string          `gorm:"uniqueIndex;not null"`
	Username     string          `gorm:"not null"`
	PasswordHash string          `gorm:"not null"`
	Balance      decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	CreatedAt    int64           `gorm:"autoCreateTime:false"`
	UpdatedAt    int64           `gorm:"autoUpdateTime:false"`
}

func (userRow) TableName() string { return "users" }

func (r *userRow) model() *models.User {
	return &models.User{
		ID:           r.ID,
		Email:        r.Email,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Balance:      r.Balance,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type roundRow struct {
	Number      int64  `gorm:"primaryKey;autoIncrement"`
	TableID     string `gorm:"index;not null"`
	Status      string `gorm:"not null"`
	WinningSlot *int
	CreatedAt   int64 `gorm:"autoCreateTime:false"`
	ClosedAt    int64
	FinishedAt  int64
}

func (roundRow) TableName() string { return "rounds" }

func (r *roundRow) model() *models.Round {
	return &models.Round{
		Number:      r.Number,
		TableID:     r.TableID,
		Status:      models.RoundStatus(r.Status),
		WinningSlot: r.WinningSlot,
		CreatedAt:   r.CreatedAt,
		ClosedAt:    r.ClosedAt,
		FinishedAt:  r.FinishedAt,
	}
}

type wagerRow struct {
	ID          string          `gorm:"primaryKey;type:text"`
	Seq         int64           `gorm:"autoIncrement;uniqueIndex"`
	RoundNumber int64           `gorm:"index;not null"`
	UserID      string          `gorm:"index;not null"`
	Kind        string          `gorm:"not null"`
	Target      string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	CreatedAt   int64           `gorm:"autoCreateTime:false"`
}

func (wagerRow) TableName() string { return "wagers" }

func (r *wagerRow) model() *models.Wager {
	return &models.Wager{
		ID:          r.ID,
		RoundNumber: r.RoundNumber,
		UserID:      r.UserID,
		Kind:        models.WagerKind(r.Kind),
		Target:      r.Target,
		Amount:      r.Amount,
		CreatedAt:   r.CreatedAt,
	}
}

type balanceEntryRow struct {
	ID           int64           `gorm:"primaryKey;autoIncrement"`
	UserID       string          `gorm:"not null;uniqueIndex:idx_balance_entries_user_key"`
	Key          string          `gorm:"not null;uniqueIndex:idx_balance_entries_user_key"`
	Kind         string          `gorm:"not null"`
	Delta        decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Applied      decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	RoundNumber  int64
	CreatedAt    int64 `gorm:"autoCreateTime:false"`
}

func (balanceEntryRow) TableName() string { return "balance_entries" }

func (r *balanceEntryRow) model() *models.BalanceEntry {
	return &models.BalanceEntry{
		ID:           r.ID,
		UserID:       r.UserID,
		Kind:         models.EntryKind(r.Kind),
		Delta:        r.Delta,
		Applied:      r.Applied,
		BalanceAfter: r.BalanceAfter,
		RoundNumber:  r.RoundNumber,
		Key:          r.Key,
		CreatedAt:    r.CreatedAt,
	}
}
