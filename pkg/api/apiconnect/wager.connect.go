package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/pkg/api"
)

// WagerServiceName is the fully-qualified name of the WagerService service.
const WagerServiceName = "roulette.v1.WagerService"

const (
	WagerServicePlaceWagerProcedure   = "/roulette.v1.WagerService/PlaceWager"
	WagerServicePlaceWagersProcedure  = "/roulette.v1.WagerService/PlaceWagers"
	WagerServiceListMyWagersProcedure = "/roulette.v1.WagerService/ListMyWagers"
	WagerServiceGetWagerProcedure     = "/roulette.v1.WagerService/GetWager"
)

// WagerServiceHandler serves wager placement and lookup.
type WagerServiceHandler interface {
	PlaceWager(context.Context, *connect.Request[api.PlaceWagerRequest]) (*connect.Response[api.PlaceWagerResponse], error)
	PlaceWagers(context.Context, *connect.Request[api.PlaceWagersRequest]) (*connect.Response[api.PlaceWagersResponse], error)
	ListMyWagers(context.Context, *connect.Request[api.ListMyWagersRequest]) (*connect.Response[api.ListMyWagersResponse], error)
	GetWager(context.Context, *connect.Request[api.GetWagerRequest]) (*connect.Response[api.GetWagerResponse], error)
}

// NewWagerServiceHandler builds an HTTP handler for the service. It returns the
// path to mount it on and the handler.
func NewWagerServiceHandler(svc WagerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec())}, opts...)
	mux := http.NewServeMux()
	mux.Handle(WagerServicePlaceWagerProcedure, connect.NewUnaryHandler(WagerServicePlaceWagerProcedure, svc.PlaceWager, opts...))
	mux.Handle(WagerServicePlaceWagersProcedure, connect.NewUnaryHandler(WagerServicePlaceWagersProcedure, svc.PlaceWagers, opts...))
	mux.Handle(WagerServiceListMyWagersProcedure, connect.NewUnaryHandler(WagerServiceListMyWagersProcedure, svc.ListMyWagers, opts...))
	mux.Handle(WagerServiceGetWagerProcedure, connect.NewUnaryHandler(WagerServiceGetWagerProcedure, svc.GetWager, opts...))
	return "/" + WagerServiceName + "/", mux
}

// WagerServiceClient is a client for the WagerService service.
type WagerServiceClient interface {
	PlaceWager(context.Context, *connect.Request[api.PlaceWagerRequest]) (*connect.Response[api.PlaceWagerResponse], error)
	PlaceWagers(context.Context, *connect.Request[api.PlaceWagersRequest]) (*connect.Response[api.PlaceWagersResponse], error)
	ListMyWagers(context.Context, *connect.Request[api.ListMyWagersRequest]) (*connect.Response[api.ListMyWagersResponse], error)
	GetWager(context.Context, *connect.Request[api.GetWagerRequest]) (*connect.Response[api.GetWagerResponse], error)
}

// NewWagerServiceClient creates a client for the service at baseURL.
func NewWagerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) WagerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec())}, opts...)
	return &wagerServiceClient{
		placeWager:   connect.NewClient[api.PlaceWagerRequest, api.PlaceWagerResponse](httpClient, baseURL+WagerServicePlaceWagerProcedure, opts...),
		placeWagers:  connect.NewClient[api.PlaceWagersRequest, api.PlaceWagersResponse](httpClient, baseURL+WagerServicePlaceWagersProcedure, opts...),
		listMyWagers: connect.NewClient[api.ListMyWagersRequest, api.ListMyWagersResponse](httpClient, baseURL+WagerServiceListMyWagersProcedure, opts...),
		getWager:     connect.NewClient[api.GetWagerRequest, api.GetWagerResponse](httpClient, baseURL+WagerServiceGetWagerProcedure, opts...),
	}
}

type wagerServiceClient struct {
	placeWager   *connect.Client[api.PlaceWagerRequest, api.PlaceWagerResponse]
	placeWagers  *connect.Client[api.PlaceWagersRequest, api.PlaceWagersResponse]
	listMyWagers *connect.Client[api.ListMyWagersRequest, api.ListMyWagersResponse]
	getWager     *connect.Client[api.GetWagerRequest, api.GetWagerResponse]
}

func (c *wagerServiceClient) PlaceWager(ctx context.Context, req *connect.Request[api.PlaceWagerRequest]) (*connect.Response[api.PlaceWagerResponse], error) {
	return c.placeWager.CallUnary(ctx, req)
}

func (c *wagerServiceClient) PlaceWagers(ctx context.Context, req *connect.Request[api.PlaceWagersRequest]) (*connect.Response[api.PlaceWagersResponse], error) {
	return c.placeWagers.CallUnary(ctx, req)
}

func (c *wagerServiceClient) ListMyWagers(ctx context.Context, req *connect.Request[api.ListMyWagersRequest]) (*connect.Response[api.ListMyWagersResponse], error) {
	return c.listMyWagers.CallUnary(ctx, req)
}

func (c *wagerServiceClient) GetWager(ctx context.Context, req *connect.Request[api.GetWagerRequest]) (*connect.Response[api.GetWagerResponse], error) {
	return c.getWager.CallUnary(ctx, req)
}
