package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/internal/auth"
	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/pkg/api"
	"github.com/mmynk/roulette/pkg/api/apiconnect"
)

// meOnly answers Me with the user found in the context.
type meOnly struct{}

func (meOnly) Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return connect.NewResponse(&api.RegisterResponse{Token: "public"}), nil
}

func (meOnly) Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return connect.NewResponse(&api.LoginResponse{}), nil
}

func (meOnly) Me(ctx context.Context, _ *connect.Request[api.MeRequest]) (*connect.Response[api.MeResponse], error) {
	return connect.NewResponse(&api.MeResponse{User: &api.User{ID: GetUserID(ctx), Email: GetEmail(ctx)}}), nil
}

func (meOnly) ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return connect.NewResponse(&api.ListUsersResponse{}), nil
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	path, handler := apiconnect.NewAuthServiceHandler(meOnly{},
		connect.WithInterceptors(
			RequireAuth(jwtManager, apiconnect.AuthServiceRegisterProcedure),
			LoggingInterceptor(),
		),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(RequestLogger(mux))
	defer server.Close()

	ctx := context.Background()
	anon := apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL)

	if _, err := anon.Register(ctx, connect.NewRequest(&api.RegisterRequest{})); err != nil {
		t.Errorf("public procedure rejected: %v", err)
	}

	_, err := anon.Me(ctx, connect.NewRequest(&api.MeRequest{}))
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) || connectErr.Code() != connect.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}

	token, err := jwtManager.Generate(&models.User{ID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	authed := apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL,
		connect.WithInterceptors(BearerToken(func() string { return token })))

	resp, err := authed.Me(ctx, connect.NewRequest(&api.MeRequest{}))
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if resp.Msg.User.ID != "u1" || resp.Msg.User.Email != "u1@example.com" {
		t.Errorf("unexpected user: %+v", resp.Msg.User)
	}

	bad := apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL,
		connect.WithInterceptors(BearerToken(func() string { return "garbage" })))
	if _, err := bad.Me(ctx, connect.NewRequest(&api.MeRequest{})); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("expected unauthenticated for a bad token, got %v", err)
	}
}
