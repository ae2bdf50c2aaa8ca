package models

// SettlementResult is the derived outcome of one wager after its round finished.
// It is recomputed from the round outcome and the wager, never stored on its own.
type SettlementResult struct {
	WagerID string
	UserID  string

	Won bool

	// Payout is the total return: amount x 2 for a color hit, amount x 36
	// for a number hit, zero otherwise.
	Payout Money

	// Delta is the balance change this result produces: +Payout when won,
	// -Amount when lost.
	Delta Money
}

// SettlementKeyPrefix starts every settlement idempotency key.
const SettlementKeyPrefix = "settle:"

// DepositKeyPrefix starts every deposit idempotency key.
const DepositKeyPrefix = "deposit:"

// SettlementKey is the idempotency key under which a wager's outcome is
// credited. The engine and the reconciling client use the same key.
func SettlementKey(wagerID string) string {
	return SettlementKeyPrefix + wagerID
}
