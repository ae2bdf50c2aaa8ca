package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/auth"
	"github.com/mmynk/roulette/internal/game"
	"github.com/mmynk/roulette/internal/middleware"
	"github.com/mmynk/roulette/internal/storage/sqlite"
	"github.com/mmynk/roulette/internal/wheel"
	"github.com/mmynk/roulette/pkg/api"
	"github.com/mmynk/roulette/pkg/api/apiconnect"
)

// clients bundles the service clients of one player.
type clients struct {
	game    apiconnect.GameServiceClient
	wager   apiconnect.WagerServiceClient
	balance apiconnect.BalanceServiceClient
	auth    apiconnect.AuthServiceClient
	userID  string
}

// setupTestServer starts all services on a temp SQLite database with the
// wheel forced to slot. It returns a factory for registered players.
func setupTestServer(t *testing.T, slot int) func(name string) *clients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	engine := game.New(store, wheel.Fixed(slot))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store, decimal.NewFromInt(100))

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
		),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewGameServiceHandler(NewGameService(engine, "main"), interceptors))
	mux.Handle(apiconnect.NewWagerServiceHandler(NewWagerService(engine), interceptors))
	mux.Handle(apiconnect.NewBalanceServiceHandler(NewBalanceService(engine), interceptors))
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, slog.Default()), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return func(name string) *clients {
		t.Helper()
		anon := apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL)
		resp, err := anon.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
			Email:    name + "@example.com",
			Username: name,
			Password: "password123",
		}))
		if err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
		token := resp.Msg.Token
		opt := connect.WithInterceptors(middleware.BearerToken(func() string { return token }))
		return &clients{
			game:    apiconnect.NewGameServiceClient(http.DefaultClient, server.URL, opt),
			wager:   apiconnect.NewWagerServiceClient(http.DefaultClient, server.URL, opt),
			balance: apiconnect.NewBalanceServiceClient(http.DefaultClient, server.URL, opt),
			auth:    apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL, opt),
			userID:  resp.Msg.User.ID,
		}
	}
}

func expectCode(t *testing.T, err error, code connect.Code, reason string) {
	t.Helper()
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error %v, got %v", code, err)
	}
	if connectErr.Code() != code {
		t.Errorf("code = %v, want %v (%v)", connectErr.Code(), code, err)
	}
	if reason != "" && connectErr.Meta().Get(api.ReasonHeader) != reason {
		t.Errorf("reason = %q, want %q", connectErr.Meta().Get(api.ReasonHeader), reason)
	}
}

func TestRoundFlowOverRPC(t *testing.T) {
	newPlayer := setupTestServer(t, 1)
	alice := newPlayer("alice")
	ctx := context.Background()

	opened, err := alice.game.OpenRound(ctx, connect.NewRequest(&api.OpenRoundRequest{}))
	if err != nil {
		t.Fatalf("OpenRound failed: %v", err)
	}
	number := opened.Msg.RoundNumber
	if opened.Msg.Round.TableID != "main" || opened.Msg.Round.Status != "open" {
		t.Errorf("unexpected round: %+v", opened.Msg.Round)
	}

	_, err = alice.game.OpenRound(ctx, connect.NewRequest(&api.OpenRoundRequest{}))
	expectCode(t, err, connect.CodeAlreadyExists, "conflict")

	active, err := alice.game.GetRound(ctx, connect.NewRequest(&api.GetRoundRequest{}))
	if err != nil {
		t.Fatalf("GetRound failed: %v", err)
	}
	if active.Msg.Round.Number != number {
		t.Errorf("active round = %d, want %d", active.Msg.Round.Number, number)
	}

	placed, err := alice.wager.PlaceWager(ctx, connect.NewRequest(&api.PlaceWagerRequest{
		RoundNumber: number,
		Kind:        "color",
		Target:      "red",
		Amount:      decimal.NewFromInt(10),
	}))
	if err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}
	wagerID := placed.Msg.Wager.ID

	balance, err := alice.balance.GetBalance(ctx, connect.NewRequest(&api.GetBalanceRequest{}))
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Msg.Balance.Equal(decimal.NewFromInt(100)) || !balance.Msg.Available.Equal(decimal.NewFromInt(90)) {
		t.Errorf("unexpected balance: %+v", balance.Msg)
	}

	if _, err := alice.game.CloseRound(ctx, connect.NewRequest(&api.CloseRoundRequest{RoundNumber: number})); err != nil {
		t.Fatalf("CloseRound failed: %v", err)
	}

	_, err = alice.wager.PlaceWager(ctx, connect.NewRequest(&api.PlaceWagerRequest{
		RoundNumber: number, Kind: "color", Target: "black", Amount: decimal.NewFromInt(5),
	}))
	expectCode(t, err, connect.CodeFailedPrecondition, "round_not_open")

	spin, err := alice.game.SpinRound(ctx, connect.NewRequest(&api.SpinRoundRequest{RoundNumber: number}))
	if err != nil {
		t.Fatalf("SpinRound failed: %v", err)
	}
	if spin.Msg.Round.WinningColor != "red" || *spin.Msg.Round.WinningSlot != 1 {
		t.Errorf("unexpected outcome: %+v", spin.Msg.Round)
	}
	if len(spin.Msg.Results) != 1 || !spin.Msg.Results[0].Payout.Equal(decimal.NewFromInt(20)) {
		t.Errorf("unexpected results: %+v", spin.Msg.Results)
	}

	_, err = alice.game.SpinRound(ctx, connect.NewRequest(&api.SpinRoundRequest{RoundNumber: number}))
	expectCode(t, err, connect.CodeFailedPrecondition, "invalid_state")

	balance, err = alice.balance.GetBalance(ctx, connect.NewRequest(&api.GetBalanceRequest{}))
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Msg.Balance.Equal(decimal.NewFromInt(120)) {
		t.Errorf("balance = %s, want 120", balance.Msg.Balance)
	}

	got, err := alice.wager.GetWager(ctx, connect.NewRequest(&api.GetWagerRequest{WagerID: wagerID}))
	if err != nil {
		t.Fatalf("GetWager failed: %v", err)
	}
	if got.Msg.Wager.Result == nil || !got.Msg.Wager.Result.Won {
		t.Errorf("expected a winning result, got %+v", got.Msg.Wager.Result)
	}

	rounds, err := alice.game.ListRounds(ctx, connect.NewRequest(&api.ListRoundsRequest{IncludeStats: true}))
	if err != nil {
		t.Fatalf("ListRounds failed: %v", err)
	}
	if len(rounds.Msg.Rounds) != 1 || rounds.Msg.Rounds[0].Stats == nil || rounds.Msg.Rounds[0].Stats.TotalWagers != 1 {
		t.Errorf("unexpected rounds: %+v", rounds.Msg.Rounds)
	}

	wagers, err := alice.game.ListRoundWagers(ctx, connect.NewRequest(&api.ListRoundWagersRequest{RoundNumber: number}))
	if err != nil {
		t.Fatalf("ListRoundWagers failed: %v", err)
	}
	if len(wagers.Msg.Wagers) != 1 || wagers.Msg.Wagers[0].Result == nil {
		t.Errorf("unexpected wagers: %+v", wagers.Msg.Wagers)
	}

	resettled, err := alice.game.ResettleRound(ctx, connect.NewRequest(&api.ResettleRoundRequest{RoundNumber: number}))
	if err != nil {
		t.Fatalf("ResettleRound failed: %v", err)
	}
	if resettled.Msg.Applied != 0 {
		t.Errorf("resettle applied %d credits", resettled.Msg.Applied)
	}
}

func TestWagerErrorsOverRPC(t *testing.T) {
	newPlayer := setupTestServer(t, 0)
	alice := newPlayer("alice")
	bob := newPlayer("bob")
	ctx := context.Background()

	_, err := alice.wager.PlaceWager(ctx, connect.NewRequest(&api.PlaceWagerRequest{
		RoundNumber: 42, Kind: "color", Target: "red", Amount: decimal.NewFromInt(1),
	}))
	expectCode(t, err, connect.CodeNotFound, "round_not_found")

	opened, err := alice.game.OpenRound(ctx, connect.NewRequest(&api.OpenRoundRequest{}))
	if err != nil {
		t.Fatalf("OpenRound failed: %v", err)
	}
	number := opened.Msg.RoundNumber

	tests := []struct {
		name   string
		req    *api.PlaceWagerRequest
		code   connect.Code
		reason string
	}{
		{"green color", &api.PlaceWagerRequest{RoundNumber: number, Kind: "color", Target: "green", Amount: decimal.NewFromInt(1)}, connect.CodeInvalidArgument, "invalid_wager"},
		{"zero amount", &api.PlaceWagerRequest{RoundNumber: number, Kind: "number", Target: "3", Amount: decimal.Zero}, connect.CodeInvalidArgument, "invalid_wager"},
		{"too large", &api.PlaceWagerRequest{RoundNumber: number, Kind: "number", Target: "3", Amount: decimal.NewFromInt(101)}, connect.CodeFailedPrecondition, "insufficient_funds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := alice.wager.PlaceWager(ctx, connect.NewRequest(tt.req))
			expectCode(t, err, tt.code, tt.reason)
		})
	}

	placed, err := alice.wager.PlaceWagers(ctx, connect.NewRequest(&api.PlaceWagersRequest{
		RoundNumber: number,
		Items: []*api.WagerItem{
			{Kind: "number", Target: "0", Amount: decimal.NewFromInt(2)},
			{Kind: "color", Target: "black", Amount: decimal.NewFromInt(3)},
		},
	}))
	if err != nil {
		t.Fatalf("PlaceWagers failed: %v", err)
	}
	if len(placed.Msg.Wagers) != 2 {
		t.Fatalf("expected 2 wagers, got %d", len(placed.Msg.Wagers))
	}

	_, err = bob.wager.GetWager(ctx, connect.NewRequest(&api.GetWagerRequest{WagerID: placed.Msg.Wagers[0].ID}))
	expectCode(t, err, connect.CodeNotFound, "not_found")

	mine, err := alice.wager.ListMyWagers(ctx, connect.NewRequest(&api.ListMyWagersRequest{}))
	if err != nil {
		t.Fatalf("ListMyWagers failed: %v", err)
	}
	if len(mine.Msg.Wagers) != 2 {
		t.Errorf("expected 2 wagers, got %d", len(mine.Msg.Wagers))
	}
}

func TestBalanceOverRPC(t *testing.T) {
	newPlayer := setupTestServer(t, 0)
	alice := newPlayer("alice")
	ctx := context.Background()

	adjust := func(delta int64, key string) decimal.Decimal {
		t.Helper()
		resp, err := alice.balance.AdjustBalance(ctx, connect.NewRequest(&api.AdjustBalanceRequest{
			Delta: decimal.NewFromInt(delta),
			Key:   key,
		}))
		if err != nil {
			t.Fatalf("AdjustBalance failed: %v", err)
		}
		return resp.Msg.Balance
	}

	if got := adjust(-30, "k1"); !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("balance = %s, want 70", got)
	}
	if got := adjust(-30, "k1"); !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("replayed key changed balance to %s", got)
	}
	if got := adjust(-500, "k2"); !got.IsZero() {
		t.Errorf("balance = %s, want clamp at 0", got)
	}

	_, err := alice.balance.AdjustBalance(ctx, connect.NewRequest(&api.AdjustBalanceRequest{Delta: decimal.NewFromInt(1)}))
	expectCode(t, err, connect.CodeInvalidArgument, "invalid_argument")

	dep, err := alice.balance.Deposit(ctx, connect.NewRequest(&api.DepositRequest{Amount: decimal.NewFromInt(25)}))
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if !dep.Msg.Balance.Equal(decimal.NewFromInt(25)) {
		t.Errorf("balance = %s, want 25", dep.Msg.Balance)
	}

	history, err := alice.balance.ListHistory(ctx, connect.NewRequest(&api.ListHistoryRequest{}))
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(history.Msg.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history.Msg.Entries))
	}
	if history.Msg.Entries[0].Kind != "deposit" || !history.Msg.Entries[1].Applied.Equal(decimal.NewFromInt(-70)) {
		t.Errorf("unexpected history: %+v", history.Msg.Entries)
	}
}

func TestAuthAndWheelOverRPC(t *testing.T) {
	newPlayer := setupTestServer(t, 0)
	alice := newPlayer("alice")
	ctx := context.Background()

	me, err := alice.auth.Me(ctx, connect.NewRequest(&api.MeRequest{}))
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if me.Msg.User.ID != alice.userID || !me.Msg.User.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected user: %+v", me.Msg.User)
	}

	_, err = alice.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "wrong-password"}))
	expectCode(t, err, connect.CodeUnauthenticated, "")

	login, err := alice.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "password123"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.Token == "" {
		t.Error("expected a token")
	}

	wheelResp, err := alice.game.GetWheel(ctx, connect.NewRequest(&api.GetWheelRequest{}))
	if err != nil {
		t.Fatalf("GetWheel failed: %v", err)
	}
	if len(wheelResp.Msg.Slots) != 37 || len(wheelResp.Msg.Order) != 37 {
		t.Fatalf("unexpected wheel: %d slots, %d order", len(wheelResp.Msg.Slots), len(wheelResp.Msg.Order))
	}
	if wheelResp.Msg.Slots[0].Color != "green" || wheelResp.Msg.Slots[32].Color != "red" || wheelResp.Msg.Slots[2].Color != "black" {
		t.Errorf("unexpected colors: %+v", wheelResp.Msg.Slots[:3])
	}
}

func TestPlayerDirectoryOverRPC(t *testing.T) {
	newPlayer := setupTestServer(t, 0)
	alice := newPlayer("alice")
	bob := newPlayer("bob")
	ctx := context.Background()

	users, err := alice.auth.ListUsers(ctx, connect.NewRequest(&api.ListUsersRequest{}))
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users.Msg.Users) != 2 || users.Msg.Users[0].Username != "alice" || users.Msg.Users[1].ID != bob.userID {
		t.Fatalf("unexpected users: %+v", users.Msg.Users)
	}

	if _, err := bob.balance.Deposit(ctx, connect.NewRequest(&api.DepositRequest{Amount: decimal.NewFromInt(5)})); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	history, err := alice.balance.ListHistory(ctx, connect.NewRequest(&api.ListHistoryRequest{UserID: bob.userID}))
	if err != nil {
		t.Fatalf("ListHistory(bob) failed: %v", err)
	}
	if len(history.Msg.Entries) != 1 || !history.Msg.Entries[0].BalanceAfter.Equal(decimal.NewFromInt(105)) {
		t.Errorf("unexpected history for bob: %+v", history.Msg.Entries)
	}

	_, err = alice.balance.ListHistory(ctx, connect.NewRequest(&api.ListHistoryRequest{UserID: "nobody"}))
	expectCode(t, err, connect.CodeNotFound, "not_found")
}
