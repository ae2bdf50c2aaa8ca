package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/internal/game"
	"github.com/mmynk/roulette/pkg/api"
	"github.com/mmynk/roulette/pkg/api/apiconnect"
)

var _ apiconnect.BalanceServiceHandler = (*BalanceService)(nil)

// BalanceService implements the connect BalanceService for the caller.
type BalanceService struct {
	engine *game.Engine
}

// NewBalanceService creates a BalanceService.
func NewBalanceService(engine *game.Engine) *BalanceService {
	return &BalanceService{engine: engine}
}

// GetBalance returns the caller's authoritative balance.
func (s *BalanceService) GetBalance(ctx context.Context, _ *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	b, err := s.engine.GetBalance(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetBalanceResponse{
		Balance:   b.Balance,
		Held:      b.Held,
		Available: b.Available,
	}), nil
}

// AdjustBalance applies a keyed delta and returns the clamped balance.
func (s *BalanceService) AdjustBalance(ctx context.Context, req *connect.Request[api.AdjustBalanceRequest]) (*connect.Response[api.AdjustBalanceResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := s.engine.AdjustBalance(ctx, userID, req.Msg.Delta, req.Msg.Key)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.AdjustBalanceResponse{Balance: balance}), nil
}

// Deposit credits the caller.
func (s *BalanceService) Deposit(ctx context.Context, req *connect.Request[api.DepositRequest]) (*connect.Response[api.DepositResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := s.engine.Deposit(ctx, userID, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DepositResponse{Balance: balance}), nil
}

// ListHistory returns a balance journal, newest first: the caller's, or
// the named player's when UserID is set.
func (s *BalanceService) ListHistory(ctx context.Context, req *connect.Request[api.ListHistoryRequest]) (*connect.Response[api.ListHistoryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.UserID != "" {
		userID = req.Msg.UserID
	}
	entries, err := s.engine.History(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := make([]*api.BalanceEntry, len(entries))
	for i, e := range entries {
		out[i] = entryToAPI(e)
	}
	return connect.NewResponse(&api.ListHistoryResponse{Entries: out}), nil
}
