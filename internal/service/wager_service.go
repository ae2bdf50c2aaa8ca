package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/internal/game"
	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/pkg/api"
	"github.com/mmynk/roulette/pkg/api/apiconnect"
)

var _ apiconnect.WagerServiceHandler = (*WagerService)(nil)

// WagerService implements the connect WagerService. Wagers are always
// placed for the authenticated user.
type WagerService struct {
	engine *game.Engine
}

// NewWagerService creates a WagerService.
func NewWagerService(engine *game.Engine) *WagerService {
	return &WagerService{engine: engine}
}

// PlaceWager places a single wager.
func (s *WagerService) PlaceWager(ctx context.Context, req *connect.Request[api.PlaceWagerRequest]) (*connect.Response[api.PlaceWagerResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	w, err := s.engine.PlaceWager(ctx, req.Msg.RoundNumber, userID, models.WagerItem{
		Kind:   models.WagerKind(req.Msg.Kind),
		Target: req.Msg.Target,
		Amount: req.Msg.Amount,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.PlaceWagerResponse{Wager: wagerToAPI(w)}), nil
}

// PlaceWagers places a batch of wagers, all or nothing.
func (s *WagerService) PlaceWagers(ctx context.Context, req *connect.Request[api.PlaceWagersRequest]) (*connect.Response[api.PlaceWagersResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]models.WagerItem, 0, len(req.Msg.Items))
	for _, it := range req.Msg.Items {
		if it == nil {
			continue
		}
		items = append(items, models.WagerItem{
			Kind:   models.WagerKind(it.Kind),
			Target: it.Target,
			Amount: it.Amount,
		})
	}
	wagers, err := s.engine.PlaceWagers(ctx, req.Msg.RoundNumber, userID, items)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.PlaceWagersResponse{Wagers: wagersToAPI(wagers, nil)}), nil
}

// ListMyWagers lists the caller's wagers, newest first.
func (s *WagerService) ListMyWagers(ctx context.Context, _ *connect.Request[api.ListMyWagersRequest]) (*connect.Response[api.ListMyWagersResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	wagers, err := s.engine.UserWagers(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListMyWagersResponse{Wagers: wagersToAPI(wagers, nil)}), nil
}

// GetWager returns one of the caller's wagers with its result once settled.
func (s *WagerService) GetWager(ctx context.Context, req *connect.Request[api.GetWagerRequest]) (*connect.Response[api.GetWagerResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	w, err := s.engine.GetWager(ctx, req.Msg.WagerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	// Other players' wagers are reported as missing.
	if w.UserID != userID {
		return nil, toConnectError(game.ErrNotFound)
	}
	result, err := s.engine.WagerResult(ctx, w)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := wagerToAPI(w)
	if result != nil {
		out.Result = resultToAPI(*result)
	}
	return connect.NewResponse(&api.GetWagerResponse{Wager: out}), nil
}
