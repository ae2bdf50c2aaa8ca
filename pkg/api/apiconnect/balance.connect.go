package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/pkg/api"
)

// BalanceServiceName is the fully-qualified name of the BalanceService service.
const BalanceServiceName = "roulette.v1.BalanceService"

const (
	BalanceServiceGetBalanceProcedure    = "/roulette.v1.BalanceService/GetBalance"
	BalanceServiceAdjustBalanceProcedure = "/roulette.v1.BalanceService/AdjustBalance"
	BalanceServiceDepositProcedure       = "/roulette.v1.BalanceService/Deposit"
	BalanceServiceListHistoryProcedure   = "/roulette.v1.BalanceService/ListHistory"
)

// BalanceServiceHandler serves authoritative balances.
type BalanceServiceHandler interface {
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	AdjustBalance(context.Context, *connect.Request[api.AdjustBalanceRequest]) (*connect.Response[api.AdjustBalanceResponse], error)
	Deposit(context.Context, *connect.Request[api.DepositRequest]) (*connect.Response[api.DepositResponse], error)
	ListHistory(context.Context, *connect.Request[api.ListHistoryRequest]) (*connect.Response[api.ListHistoryResponse], error)
}

// NewBalanceServiceHandler builds an HTTP handler for the service. It returns the
// path to mount it on and the handler.
func NewBalanceServiceHandler(svc BalanceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec())}, opts...)
	mux := http.NewServeMux()
	mux.Handle(BalanceServiceGetBalanceProcedure, connect.NewUnaryHandler(BalanceServiceGetBalanceProcedure, svc.GetBalance, opts...))
	mux.Handle(BalanceServiceAdjustBalanceProcedure, connect.NewUnaryHandler(BalanceServiceAdjustBalanceProcedure, svc.AdjustBalance, opts...))
	mux.Handle(BalanceServiceDepositProcedure, connect.NewUnaryHandler(BalanceServiceDepositProcedure, svc.Deposit, opts...))
	mux.Handle(BalanceServiceListHistoryProcedure, connect.NewUnaryHandler(BalanceServiceListHistoryProcedure, svc.ListHistory, opts...))
	return "/" + BalanceServiceName + "/", mux
}

// BalanceServiceClient is a client for the BalanceService service.
type BalanceServiceClient interface {
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	AdjustBalance(context.Context, *connect.Request[api.AdjustBalanceRequest]) (*connect.Response[api.AdjustBalanceResponse], error)
	Deposit(context.Context, *connect.Request[api.DepositRequest]) (*connect.Response[api.DepositResponse], error)
	ListHistory(context.Context, *connect.Request[api.ListHistoryRequest]) (*connect.Response[api.ListHistoryResponse], error)
}

// NewBalanceServiceClient creates a client for the service at baseURL.
func NewBalanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BalanceServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec())}, opts...)
	return &balanceServiceClient{
		getBalance:    connect.NewClient[api.GetBalanceRequest, api.GetBalanceResponse](httpClient, baseURL+BalanceServiceGetBalanceProcedure, opts...),
		adjustBalance: connect.NewClient[api.AdjustBalanceRequest, api.AdjustBalanceResponse](httpClient, baseURL+BalanceServiceAdjustBalanceProcedure, opts...),
		deposit:       connect.NewClient[api.DepositRequest, api.DepositResponse](httpClient, baseURL+BalanceServiceDepositProcedure, opts...),
		listHistory:   connect.NewClient[api.ListHistoryRequest, api.ListHistoryResponse](httpClient, baseURL+BalanceServiceListHistoryProcedure, opts...),
	}
}

type balanceServiceClient struct {
	getBalance    *connect.Client[api.GetBalanceRequest, api.GetBalanceResponse]
	adjustBalance *connect.Client[api.AdjustBalanceRequest, api.AdjustBalanceResponse]
	deposit       *connect.Client[api.DepositRequest, api.DepositResponse]
	listHistory   *connect.Client[api.ListHistoryRequest, api.ListHistoryResponse]
}

func (c *balanceServiceClient) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *balanceServiceClient) AdjustBalance(ctx context.Context, req *connect.Request[api.AdjustBalanceRequest]) (*connect.Response[api.AdjustBalanceResponse], error) {
	return c.adjustBalance.CallUnary(ctx, req)
}

func (c *balanceServiceClient) Deposit(ctx context.Context, req *connect.Request[api.DepositRequest]) (*connect.Response[api.DepositResponse], error) {
	return c.deposit.CallUnary(ctx, req)
}

func (c *balanceServiceClient) ListHistory(ctx context.Context, req *connect.Request[api.ListHistoryRequest]) (*connect.Response[api.ListHistoryResponse], error) {
	return c.listHistory.CallUnary(ctx, req)
}
