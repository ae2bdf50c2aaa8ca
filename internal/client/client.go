// Package client is the player-side API client. It implements
// reconcile.Authority on top of the connect services.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/internal/game"
	"github.com/mmynk/roulette/internal/middleware"
	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/reconcile"
	"github.com/mmynk/roulette/pkg/api"
	"github.com/mmynk/roulette/pkg/api/apiconnect"
)

var _ reconcile.Authority = (*Client)(nil)

// Client talks to a roulette server as one player.
type Client struct {
	BaseURL string

	Game    apiconnect.GameServiceClient
	Wager   apiconnect.WagerServiceClient
	Balance apiconnect.BalanceServiceClient
	Auth    apiconnect.AuthServiceClient

	mu    sync.RWMutex
	token string
}

// New creates a client for the server at baseURL. httpClient may be nil.
func New(baseURL string, httpClient connect.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{BaseURL: baseURL}
	opt := connect.WithInterceptors(middleware.BearerToken(c.Token))
	c.Game = apiconnect.NewGameServiceClient(httpClient, baseURL, opt)
	c.Wager = apiconnect.NewWagerServiceClient(httpClient, baseURL, opt)
	c.Balance = apiconnect.NewBalanceServiceClient(httpClient, baseURL, opt)
	c.Auth = apiconnect.NewAuthServiceClient(httpClient, baseURL, opt)
	return c
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the session token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Register creates an account and keeps its session.
func (c *Client) Register(ctx context.Context, email, username, password string) (*api.User, error) {
	resp, err := c.Auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	}))
	if err != nil {
		return nil, Err(err)
	}
	c.SetToken(resp.Msg.Token)
	return resp.Msg.User, nil
}

// Login authenticates and keeps the session.
func (c *Client) Login(ctx context.Context, email, password string) (*api.User, error) {
	resp, err := c.Auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: email, Password: password}))
	if err != nil {
		return nil, Err(err)
	}
	c.SetToken(resp.Msg.Token)
	return resp.Msg.User, nil
}

// GetBalance implements reconcile.Authority.
func (c *Client) GetBalance(ctx context.Context) (models.Money, error) {
	resp, err := c.Balance.GetBalance(ctx, connect.NewRequest(&api.GetBalanceRequest{}))
	if err != nil {
		return models.Money{}, Err(err)
	}
	return resp.Msg.Balance, nil
}

// AdjustBalance implements reconcile.Authority.
func (c *Client) AdjustBalance(ctx context.Context, delta models.Money, key string) (models.Money, error) {
	resp, err := c.Balance.AdjustBalance(ctx, connect.NewRequest(&api.AdjustBalanceRequest{Delta: delta, Key: key}))
	if err != nil {
		return models.Money{}, Err(err)
	}
	return resp.Msg.Balance, nil
}

// Err restores the engine sentinel from a connect error's reason, so
// callers can use errors.Is with the game errors. Other errors pass through.
func Err(err error) error {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return err
	}
	if sentinel := game.FromReason(connectErr.Meta().Get(api.ReasonHeader)); sentinel != nil {
		return fmt.Errorf("%s: %w", connectErr.Message(), errors.Join(sentinel, connectErr))
	}
	return err
}

// Funds returns the balance with the stakes held by unsettled wagers.
func (c *Client) Funds(ctx context.Context) (*api.GetBalanceResponse, error) {
	resp, err := c.Balance.GetBalance(ctx, connect.NewRequest(&api.GetBalanceRequest{}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg, nil
}

// Deposit adds funds to the player's balance.
func (c *Client) Deposit(ctx context.Context, amount models.Money) (models.Money, error) {
	resp, err := c.Balance.Deposit(ctx, connect.NewRequest(&api.DepositRequest{Amount: amount}))
	if err != nil {
		return models.Money{}, Err(err)
	}
	return resp.Msg.Balance, nil
}

// History lists a balance journal, newest first. An empty userID means
// the session's player.
func (c *Client) History(ctx context.Context, userID string) ([]*api.BalanceEntry, error) {
	resp, err := c.Balance.ListHistory(ctx, connect.NewRequest(&api.ListHistoryRequest{UserID: userID}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg.Entries, nil
}

// Users lists the registered players.
func (c *Client) Users(ctx context.Context) ([]*api.User, error) {
	resp, err := c.Auth.ListUsers(ctx, connect.NewRequest(&api.ListUsersRequest{}))
	if err != nil {
		return nil, Err(err)
	}
	return resp.Msg.Users, nil
}
