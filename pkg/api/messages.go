package api

import (
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Round is the wire form of a round.
type Round struct {
	Number       int64                  `json:"number"`
	TableID      string                 `json:"tableId"`
	Status       string                 `json:"status"`
	WinningSlot  *int                   `json:"winningSlot,omitempty"`
	WinningColor string                 `json:"winningColor,omitempty"`
	CreatedAt    *timestamppb.Timestamp `json:"createdAt,omitempty"`
	ClosedAt     *timestamppb.Timestamp `json:"closedAt,omitempty"`
	FinishedAt   *timestamppb.Timestamp `json:"finishedAt,omitempty"`
	Stats        *RoundStats            `json:"stats,omitempty"`
}

// RoundStats aggregates the wagers of a round.
type RoundStats struct {
	TotalWagers  int                    `json:"totalWagers"`
	TotalAmount  decimal.Decimal        `json:"totalAmount"`
	ColorWagers  int                    `json:"colorWagers"`
	NumberWagers int                    `json:"numberWagers"`
	Players      int                    `json:"players"`
	LastWagerAt  *timestamppb.Timestamp `json:"lastWagerAt,omitempty"`
	TotalPayout  decimal.Decimal        `json:"totalPayout"`
}

// Wager is the wire form of an accepted wager. Result is set once its
// round finished.
type Wager struct {
	ID          string                 `json:"id"`
	RoundNumber int64                  `json:"roundNumber"`
	UserID      string                 `json:"userId"`
	Kind        string                 `json:"kind"`
	Target      string                 `json:"target"`
	Amount      decimal.Decimal        `json:"amount"`
	CreatedAt   *timestamppb.Timestamp `json:"createdAt,omitempty"`
	Result      *SettlementResult      `json:"result,omitempty"`
}

// WagerItem is one wager of a batch request.
type WagerItem struct {
	Kind   string          `json:"kind"`
	Target string          `json:"target"`
	Amount decimal.Decimal `json:"amount"`
}

// SettlementResult is the outcome of one wager.
type SettlementResult struct {
	WagerID string          `json:"wagerId"`
	UserID  string          `json:"userId"`
	Won     bool            `json:"won"`
	Payout  decimal.Decimal `json:"payout"`
	Delta   decimal.Decimal `json:"delta"`
}

// User is the public view of an account.
type User struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	Username  string                 `json:"username"`
	Balance   decimal.Decimal        `json:"balance"`
	CreatedAt *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

// BalanceEntry is one row of a user's balance history.
type BalanceEntry struct {
	ID           int64                  `json:"id"`
	Kind         string                 `json:"kind"`
	Delta        decimal.Decimal        `json:"delta"`
	Applied      decimal.Decimal        `json:"applied"`
	BalanceAfter decimal.Decimal        `json:"balanceAfter"`
	RoundNumber  int64                  `json:"roundNumber,omitempty"`
	Key          string                 `json:"key"`
	CreatedAt    *timestamppb.Timestamp `json:"createdAt,omitempty"`
}

// Slot is one pocket of the wheel.
type Slot struct {
	Number int    `json:"number"`
	Color  string `json:"color"`
}

// GameService

type OpenRoundRequest struct {
	// TableID defaults to the server's configured table.
	TableID string `json:"tableId,omitempty"`
}

type OpenRoundResponse struct {
	RoundNumber int64  `json:"roundNumber"`
	Round       *Round `json:"round"`
}

type CloseRoundRequest struct {
	RoundNumber int64 `json:"roundNumber"`
}

type CloseRoundResponse struct {
	Round *Round `json:"round"`
}

type SpinRoundRequest struct {
	RoundNumber int64 `json:"roundNumber"`
}

type SpinRoundResponse struct {
	Round   *Round              `json:"round"`
	Results []*SettlementResult `json:"results"`
}

type ListRoundsRequest struct {
	IncludeStats bool `json:"includeStats,omitempty"`
}

type ListRoundsResponse struct {
	Rounds []*Round `json:"rounds"`
}

// GetRoundRequest looks a round up by number, or the active round of
// TableID when RoundNumber is zero.
type GetRoundRequest struct {
	RoundNumber int64  `json:"roundNumber,omitempty"`
	TableID     string `json:"tableId,omitempty"`
}

type GetRoundResponse struct {
	Round *Round `json:"round"`
}

type ListRoundWagersRequest struct {
	RoundNumber int64 `json:"roundNumber"`
}

type ListRoundWagersResponse struct {
	Wagers []*Wager `json:"wagers"`
}

type ResettleRoundRequest struct {
	RoundNumber int64 `json:"roundNumber"`
}

type ResettleRoundResponse struct {
	Round   *Round              `json:"round"`
	Results []*SettlementResult `json:"results"`
	Applied int                 `json:"applied"`
}

type GetWheelRequest struct{}

type GetWheelResponse struct {
	// Order is the display order of the pockets, starting at zero.
	Order []int  `json:"order"`
	Slots []Slot `json:"slots"`
}

// WagerService

type PlaceWagerRequest struct {
	RoundNumber int64           `json:"roundNumber"`
	Kind        string          `json:"kind"`
	Target      string          `json:"target"`
	Amount      decimal.Decimal `json:"amount"`
}

type PlaceWagerResponse struct {
	Wager *Wager `json:"wager"`
}

type PlaceWagersRequest struct {
	RoundNumber int64        `json:"roundNumber"`
	Items       []*WagerItem `json:"items"`
}

type PlaceWagersResponse struct {
	Wagers []*Wager `json:"wagers"`
}

type ListMyWagersRequest struct{}

type ListMyWagersResponse struct {
	Wagers []*Wager `json:"wagers"`
}

type GetWagerRequest struct {
	WagerID string `json:"wagerId"`
}

type GetWagerResponse struct {
	Wager *Wager `json:"wager"`
}

// BalanceService

type GetBalanceRequest struct{}

type GetBalanceResponse struct {
	Balance   decimal.Decimal `json:"balance"`
	Held      decimal.Decimal `json:"held"`
	Available decimal.Decimal `json:"available"`
}

type AdjustBalanceRequest struct {
	Delta decimal.Decimal `json:"delta"`
	// Key makes the adjustment idempotent per user.
	Key string `json:"key"`
}

type AdjustBalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type DepositResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type ListHistoryRequest struct {
	// UserID selects another player's journal. Empty means the caller.
	UserID string `json:"userId,omitempty"`
}

type ListHistoryResponse struct {
	Entries []*BalanceEntry `json:"entries"`
}

// AuthService

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type MeRequest struct{}

type MeResponse struct {
	User *User `json:"user"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}
