package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/pkg/api"
)

// GameServiceName is the fully-qualified name of the GameService service.
const GameServiceName = "roulette.v1.GameService"

const (
	GameServiceOpenRoundProcedure       = "/roulette.v1.GameService/OpenRound"
	GameServiceCloseRoundProcedure      = "/roulette.v1.GameService/CloseRound"
	GameServiceSpinRoundProcedure       = "/roulette.v1.GameService/SpinRound"
	GameServiceListRoundsProcedure      = "/roulette.v1.GameService/ListRounds"
	GameServiceGetRoundProcedure        = "/roulette.v1.GameService/GetRound"
	GameServiceListRoundWagersProcedure = "/roulette.v1.GameService/ListRoundWagers"
	GameServiceResettleRoundProcedure   = "/roulette.v1.GameService/ResettleRound"
	GameServiceGetWheelProcedure        = "/roulette.v1.GameService/GetWheel"
)

// GameServiceHandler serves rounds, settlement and the wheel.
type GameServiceHandler interface {
	OpenRound(context.Context, *connect.Request[api.OpenRoundRequest]) (*connect.Response[api.OpenRoundResponse], error)
	CloseRound(context.Context, *connect.Request[api.CloseRoundRequest]) (*connect.Response[api.CloseRoundResponse], error)
	SpinRound(context.Context, *connect.Request[api.SpinRoundRequest]) (*connect.Response[api.SpinRoundResponse], error)
	ListRounds(context.Context, *connect.Request[api.ListRoundsRequest]) (*connect.Response[api.ListRoundsResponse], error)
	GetRound(context.Context, *connect.Request[api.GetRoundRequest]) (*connect.Response[api.GetRoundResponse], error)
	ListRoundWagers(context.Context, *connect.Request[api.ListRoundWagersRequest]) (*connect.Response[api.ListRoundWagersResponse], error)
	ResettleRound(context.Context, *connect.Request[api.ResettleRoundRequest]) (*connect.Response[api.ResettleRoundResponse], error)
	GetWheel(context.Context, *connect.Request[api.GetWheelRequest]) (*connect.Response[api.GetWheelResponse], error)
}

// NewGameServiceHandler builds an HTTP handler for the service. It returns the
// path to mount it on and the handler.
func NewGameServiceHandler(svc GameServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec())}, opts...)
	mux := http.NewServeMux()
	mux.Handle(GameServiceOpenRoundProcedure, connect.NewUnaryHandler(GameServiceOpenRoundProcedure, svc.OpenRound, opts...))
	mux.Handle(GameServiceCloseRoundProcedure, connect.NewUnaryHandler(GameServiceCloseRoundProcedure, svc.CloseRound, opts...))
	mux.Handle(GameServiceSpinRoundProcedure, connect.NewUnaryHandler(GameServiceSpinRoundProcedure, svc.SpinRound, opts...))
	mux.Handle(GameServiceListRoundsProcedure, connect.NewUnaryHandler(GameServiceListRoundsProcedure, svc.ListRounds, opts...))
	mux.Handle(GameServiceGetRoundProcedure, connect.NewUnaryHandler(GameServiceGetRoundProcedure, svc.GetRound, opts...))
	mux.Handle(GameServiceListRoundWagersProcedure, connect.NewUnaryHandler(GameServiceListRoundWagersProcedure, svc.ListRoundWagers, opts...))
	mux.Handle(GameServiceResettleRoundProcedure, connect.NewUnaryHandler(GameServiceResettleRoundProcedure, svc.ResettleRound, opts...))
	mux.Handle(GameServiceGetWheelProcedure, connect.NewUnaryHandler(GameServiceGetWheelProcedure, svc.GetWheel, opts...))
	return "/" + GameServiceName + "/", mux
}

// GameServiceClient is a client for the GameService service.
type GameServiceClient interface {
	OpenRound(context.Context, *connect.Request[api.OpenRoundRequest]) (*connect.Response[api.OpenRoundResponse], error)
	CloseRound(context.Context, *connect.Request[api.CloseRoundRequest]) (*connect.Response[api.CloseRoundResponse], error)
	SpinRound(context.Context, *connect.Request[api.SpinRoundRequest]) (*connect.Response[api.SpinRoundResponse], error)
	ListRounds(context.Context, *connect.Request[api.ListRoundsRequest]) (*connect.Response[api.ListRoundsResponse], error)
	GetRound(context.Context, *connect.Request[api.GetRoundRequest]) (*connect.Response[api.GetRoundResponse], error)
	ListRoundWagers(context.Context, *connect.Request[api.ListRoundWagersRequest]) (*connect.Response[api.ListRoundWagersResponse], error)
	ResettleRound(context.Context, *connect.Request[api.ResettleRoundRequest]) (*connect.Response[api.ResettleRoundResponse], error)
	GetWheel(context.Context, *connect.Request[api.GetWheelRequest]) (*connect.Response[api.GetWheelResponse], error)
}

// NewGameServiceClient creates a client for the service at baseURL.
func NewGameServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GameServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec())}, opts...)
	return &gameServiceClient{
		openRound:       connect.NewClient[api.OpenRoundRequest, api.OpenRoundResponse](httpClient, baseURL+GameServiceOpenRoundProcedure, opts...),
		closeRound:      connect.NewClient[api.CloseRoundRequest, api.CloseRoundResponse](httpClient, baseURL+GameServiceCloseRoundProcedure, opts...),
		spinRound:       connect.NewClient[api.SpinRoundRequest, api.SpinRoundResponse](httpClient, baseURL+GameServiceSpinRoundProcedure, opts...),
		listRounds:      connect.NewClient[api.ListRoundsRequest, api.ListRoundsResponse](httpClient, baseURL+GameServiceListRoundsProcedure, opts...),
		getRound:        connect.NewClient[api.GetRoundRequest, api.GetRoundResponse](httpClient, baseURL+GameServiceGetRoundProcedure, opts...),
		listRoundWagers: connect.NewClient[api.ListRoundWagersRequest, api.ListRoundWagersResponse](httpClient, baseURL+GameServiceListRoundWagersProcedure, opts...),
		resettleRound:   connect.NewClient[api.ResettleRoundRequest, api.ResettleRoundResponse](httpClient, baseURL+GameServiceResettleRoundProcedure, opts...),
		getWheel:        connect.NewClient[api.GetWheelRequest, api.GetWheelResponse](httpClient, baseURL+GameServiceGetWheelProcedure, opts...),
	}
}

type gameServiceClient struct {
	openRound       *connect.Client[api.OpenRoundRequest, api.OpenRoundResponse]
	closeRound      *connect.Client[api.CloseRoundRequest, api.CloseRoundResponse]
	spinRound       *connect.Client[api.SpinRoundRequest, api.SpinRoundResponse]
	listRounds      *connect.Client[api.ListRoundsRequest, api.ListRoundsResponse]
	getRound        *connect.Client[api.GetRoundRequest, api.GetRoundResponse]
	listRoundWagers *connect.Client[api.ListRoundWagersRequest, api.ListRoundWagersResponse]
	resettleRound   *connect.Client[api.ResettleRoundRequest, api.ResettleRoundResponse]
	getWheel        *connect.Client[api.GetWheelRequest, api.GetWheelResponse]
}

func (c *gameServiceClient) OpenRound(ctx context.Context, req *connect.Request[api.OpenRoundRequest]) (*connect.Response[api.OpenRoundResponse], error) {
	return c.openRound.CallUnary(ctx, req)
}

func (c *gameServiceClient) CloseRound(ctx context.Context, req *connect.Request[api.CloseRoundRequest]) (*connect.Response[api.CloseRoundResponse], error) {
	return c.closeRound.CallUnary(ctx, req)
}

func (c *gameServiceClient) SpinRound(ctx context.Context, req *connect.Request[api.SpinRoundRequest]) (*connect.Response[api.SpinRoundResponse], error) {
	return c.spinRound.CallUnary(ctx, req)
}

func (c *gameServiceClient) ListRounds(ctx context.Context, req *connect.Request[api.ListRoundsRequest]) (*connect.Response[api.ListRoundsResponse], error) {
	return c.listRounds.CallUnary(ctx, req)
}

func (c *gameServiceClient) GetRound(ctx context.Context, req *connect.Request[api.GetRoundRequest]) (*connect.Response[api.GetRoundResponse], error) {
	return c.getRound.CallUnary(ctx, req)
}

func (c *gameServiceClient) ListRoundWagers(ctx context.Context, req *connect.Request[api.ListRoundWagersRequest]) (*connect.Response[api.ListRoundWagersResponse], error) {
	return c.listRoundWagers.CallUnary(ctx, req)
}

func (c *gameServiceClient) ResettleRound(ctx context.Context, req *connect.Request[api.ResettleRoundRequest]) (*connect.Response[api.ResettleRoundResponse], error) {
	return c.resettleRound.CallUnary(ctx, req)
}

func (c *gameServiceClient) GetWheel(ctx context.Context, req *connect.Request[api.GetWheelRequest]) (*connect.Response[api.GetWheelResponse], error) {
	return c.getWheel.CallUnary(ctx, req)
}
