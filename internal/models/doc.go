// Package models defines the core domain models for the roulette service.
//
// # Models
//
//   - Round: one spin of the wheel, moving open -> closed -> finished
//   - Wager: a stake on a color or an exact number within a round
//   - SettlementResult: the derived outcome of one wager once its round finished
//   - User: a player account holding the authoritative balance
//   - BalanceEntry: an append-only journal row for every applied balance change
//   - RoundStats: aggregate wager counts and amounts for reporting
//
// # Design Principles
//
// 1. **Money is decimal**: amounts use shopspring/decimal, never float64
// 2. **Append-only history**: rounds are never deleted, wagers are never updated
// 3. **Avoid circular references**: relationships use round numbers and ID strings
// 4. **Derived values stay derived**: the winning color is computed from the slot
package models
