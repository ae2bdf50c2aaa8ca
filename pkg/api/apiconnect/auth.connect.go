package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService service.
const AuthServiceName = "roulette.v1.AuthService"

const (
	AuthServiceRegisterProcedure  = "/roulette.v1.AuthService/Register"
	AuthServiceLoginProcedure     = "/roulette.v1.AuthService/Login"
	AuthServiceMeProcedure        = "/roulette.v1.AuthService/Me"
	AuthServiceListUsersProcedure = "/roulette.v1.AuthService/ListUsers"
)

// AuthServiceHandler serves registration, login and the player directory.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	Me(context.Context, *connect.Request[api.MeRequest]) (*connect.Response[api.MeResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for the service. It returns the
// path to mount it on and the handler.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.Codec())}, opts...)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceMeProcedure, connect.NewUnaryHandler(AuthServiceMeProcedure, svc.Me, opts...))
	mux.Handle(AuthServiceListUsersProcedure, connect.NewUnaryHandler(AuthServiceListUsersProcedure, svc.ListUsers, opts...))
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient is a client for the AuthService service.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	Me(context.Context, *connect.Request[api.MeRequest]) (*connect.Response[api.MeResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
}

// NewAuthServiceClient creates a client for the service at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.Codec())}, opts...)
	return &authServiceClient{
		register:  connect.NewClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:     connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		me:        connect.NewClient[api.MeRequest, api.MeResponse](httpClient, baseURL+AuthServiceMeProcedure, opts...),
		listUsers: connect.NewClient[api.ListUsersRequest, api.ListUsersResponse](httpClient, baseURL+AuthServiceListUsersProcedure, opts...),
	}
}

type authServiceClient struct {
	register  *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login     *connect.Client[api.LoginRequest, api.LoginResponse]
	me        *connect.Client[api.MeRequest, api.MeResponse]
	listUsers *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) Me(ctx context.Context, req *connect.Request[api.MeRequest]) (*connect.Response[api.MeResponse], error) {
	return c.me.CallUnary(ctx, req)
}

func (c *authServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}
