package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/internal/game"
	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/wheel"
	"github.com/mmynk/roulette/pkg/api"
	"github.com/mmynk/roulette/pkg/api/apiconnect"
)

var _ apiconnect.GameServiceHandler = (*GameService)(nil)

// GameService implements the connect GameService on top of the engine.
type GameService struct {
	engine       *game.Engine
	defaultTable string
}

// NewGameService creates a GameService. Requests without a table use
// defaultTable.
func NewGameService(engine *game.Engine, defaultTable string) *GameService {
	return &GameService{engine: engine, defaultTable: defaultTable}
}

func (s *GameService) table(id string) string {
	if id == "" {
		return s.defaultTable
	}
	return id
}

// OpenRound opens a new round on the requested table.
func (s *GameService) OpenRound(ctx context.Context, req *connect.Request[api.OpenRoundRequest]) (*connect.Response[api.OpenRoundResponse], error) {
	round, err := s.engine.OpenRound(ctx, s.table(req.Msg.TableID))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.OpenRoundResponse{
		RoundNumber: round.Number,
		Round:       roundToAPI(round, nil),
	}), nil
}

// CloseRound stops accepting wagers for a round.
func (s *GameService) CloseRound(ctx context.Context, req *connect.Request[api.CloseRoundRequest]) (*connect.Response[api.CloseRoundResponse], error) {
	round, err := s.engine.CloseRound(ctx, req.Msg.RoundNumber)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CloseRoundResponse{Round: roundToAPI(round, nil)}), nil
}

// SpinRound resolves a closed round and settles it.
func (s *GameService) SpinRound(ctx context.Context, req *connect.Request[api.SpinRoundRequest]) (*connect.Response[api.SpinRoundResponse], error) {
	spin, err := s.engine.SpinRound(ctx, req.Msg.RoundNumber)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SpinRoundResponse{
		Round:   roundToAPI(spin.Round, nil),
		Results: resultsToAPI(spin.Results),
	}), nil
}

// ListRounds lists all rounds, newest first.
func (s *GameService) ListRounds(ctx context.Context, req *connect.Request[api.ListRoundsRequest]) (*connect.Response[api.ListRoundsResponse], error) {
	summaries, err := s.engine.ListRounds(ctx, req.Msg.IncludeStats)
	if err != nil {
		return nil, toConnectError(err)
	}
	rounds := make([]*api.Round, len(summaries))
	for i, sum := range summaries {
		rounds[i] = roundToAPI(sum.Round, sum.Stats)
	}
	slog.Debug("Listed rounds", "count", len(rounds), "stats", req.Msg.IncludeStats)
	return connect.NewResponse(&api.ListRoundsResponse{Rounds: rounds}), nil
}

// GetRound returns a round by number, or the table's active round.
func (s *GameService) GetRound(ctx context.Context, req *connect.Request[api.GetRoundRequest]) (*connect.Response[api.GetRoundResponse], error) {
	var (
		round *models.Round
		err   error
	)
	if req.Msg.RoundNumber != 0 {
		round, err = s.engine.GetRound(ctx, req.Msg.RoundNumber)
	} else {
		round, err = s.engine.ActiveRound(ctx, s.table(req.Msg.TableID))
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetRoundResponse{Round: roundToAPI(round, nil)}), nil
}

// ListRoundWagers lists a round's wagers with their results once finished.
func (s *GameService) ListRoundWagers(ctx context.Context, req *connect.Request[api.ListRoundWagersRequest]) (*connect.Response[api.ListRoundWagersResponse], error) {
	wagers, results, err := s.engine.RoundWagers(ctx, req.Msg.RoundNumber)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListRoundWagersResponse{Wagers: wagersToAPI(wagers, results)}), nil
}

// ResettleRound re-applies missing settlement credits of a finished round.
func (s *GameService) ResettleRound(ctx context.Context, req *connect.Request[api.ResettleRoundRequest]) (*connect.Response[api.ResettleRoundResponse], error) {
	spin, applied, err := s.engine.ResettleRound(ctx, req.Msg.RoundNumber)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ResettleRoundResponse{
		Round:   roundToAPI(spin.Round, nil),
		Results: resultsToAPI(spin.Results),
		Applied: applied,
	}), nil
}

// GetWheel describes the wheel layout.
func (s *GameService) GetWheel(context.Context, *connect.Request[api.GetWheelRequest]) (*connect.Response[api.GetWheelResponse], error) {
	resp := &api.GetWheelResponse{
		Order: wheel.Order[:],
		Slots: make([]api.Slot, wheel.Slots),
	}
	for slot := range wheel.Slots {
		resp.Slots[slot] = api.Slot{Number: slot, Color: string(models.ColorOf(slot))}
	}
	return connect.NewResponse(resp), nil
}
