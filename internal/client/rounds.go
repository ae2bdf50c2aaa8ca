package client

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/pkg/api"
)

// OpenRound opens a round on table, or the server's default table.
func (c *Client) OpenRound(ctx context.Context, table string) (*api.Round, error) {
	resp, err := c.Game.OpenRound(ctx, connect.NewRequest(&api.OpenRoundRequest{TableID: table}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg.Round, nil
}

// ActiveRound returns the open or closed round of table.
func (c *Client) ActiveRound(ctx context.Context, table string) (*api.Round, error) {
	resp, err := c.Game.GetRound(ctx, connect.NewRequest(&api.GetRoundRequest{TableID: table}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg.Round, nil
}

// CloseRound closes betting on a round.
func (c *Client) CloseRound(ctx context.Context, number int64) (*api.Round, error) {
	resp, err := c.Game.CloseRound(ctx, connect.NewRequest(&api.CloseRoundRequest{RoundNumber: number}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg.Round, nil
}

// SpinRound resolves a closed round.
func (c *Client) SpinRound(ctx context.Context, number int64) (*api.SpinRoundResponse, error) {
	resp, err := c.Game.SpinRound(ctx, connect.NewRequest(&api.SpinRoundRequest{RoundNumber: number}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg, nil
}

// ListRounds lists rounds, newest first.
func (c *Client) ListRounds(ctx context.Context, includeStats bool) ([]*api.Round, error) {
	resp, err := c.Game.ListRounds(ctx, connect.NewRequest(&api.ListRoundsRequest{IncludeStats: includeStats}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg.Rounds, nil
}

// PlaceWagers places a batch of wagers for the session's player.
func (c *Client) PlaceWagers(ctx context.Context, number int64, items []*api.WagerItem) ([]*api.Wager, error) {
	resp, err := c.Wager.PlaceWagers(ctx, connect.NewRequest(&api.PlaceWagersRequest{RoundNumber: number, Items: items}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg.Wagers, nil
}

// MyWagers lists the player's wagers, newest first.
func (c *Client) MyWagers(ctx context.Context) ([]*api.Wager, error) {
	resp, err := c.Wager.ListMyWagers(ctx, connect.NewRequest(&api.ListMyWagersRequest{}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg.Wagers, nil
}

// GetWager returns one of the player's wagers with its result once settled.
func (c *Client) GetWager(ctx context.Context, id string) (*api.Wager, error) {
	resp, err := c.Wager.GetWager(ctx, connect.NewRequest(&api.GetWagerRequest{WagerID: id}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg.Wager, nil
}
