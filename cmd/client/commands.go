package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/client"
	"github.com/mmynk/roulette/internal/events"
	"github.com/mmynk/roulette/internal/game"
	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/reconcile"
	"github.com/mmynk/roulette/pkg/api"
)

const syncInterval = 30 * time.Second

type app struct {
	client  *client.Client
	session *session
	table   string
	round   int64
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		if len(args) != 3 {
			return fmt.Errorf("register needs <email> <username> <password>")
		}
		user, err := a.client.Register(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return a.loggedIn(user)
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("login needs <email> <password>")
		}
		user, err := a.client.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return a.loggedIn(user)
	case "me":
		resp, err := a.client.Auth.Me(ctx, connect.NewRequest(&api.MeRequest{}))
		if err != nil {
			return client.Err(err)
		}
		pterm.Info.Printfln("%s <%s>, balance %s", resp.Msg.User.Username, resp.Msg.User.Email, resp.Msg.User.Balance.StringFixed(2))
		return nil
	case "wheel":
		resp, err := a.client.Game.GetWheel(ctx, connect.NewRequest(&api.GetWheelRequest{}))
		if err != nil {
			return client.Err(err)
		}
		pterm.Println(renderWheel(resp.Msg.Order))
		return nil
	case "open":
		round, err := a.client.OpenRound(ctx, a.table)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Round %d is open on table %s", round.Number, round.TableID)
		return nil
	case "close":
		number, err := a.roundNumber(ctx, args)
		if err != nil {
			return err
		}
		round, err := a.client.CloseRound(ctx, number)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Betting closed for round %d", round.Number)
		return nil
	case "spin":
		number, err := a.roundNumber(ctx, args)
		if err != nil {
			return err
		}
		spin, err := a.client.SpinRound(ctx, number)
		if err != nil {
			return err
		}
		printSpin(spin)
		return nil
	case "bet":
		return a.bet(ctx, args)
	case "balance":
		funds, err := a.client.Funds(ctx)
		if err != nil {
			return err
		}
		printFunds(funds)
		return nil
	case "deposit":
		if len(args) != 1 {
			return fmt.Errorf("deposit needs <amount>")
		}
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		balance, err := a.client.Deposit(ctx, amount)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Balance is now %s", balance.StringFixed(2))
		return nil
	case "history":
		var userID string
		if len(args) > 0 {
			userID = args[0]
		}
		entries, err := a.client.History(ctx, userID)
		if err != nil {
			return err
		}
		return printHistory(entries)
	case "users":
		users, err := a.client.Users(ctx)
		if err != nil {
			return err
		}
		return printUsers(users)
	case "rounds":
		rounds, err := a.client.ListRounds(ctx, true)
		if err != nil {
			return err
		}
		return printRounds(rounds)
	case "wagers":
		wagers, err := a.client.MyWagers(ctx)
		if err != nil {
			return err
		}
		return printWagers(wagers)
	case "watch":
		return a.watch(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) loggedIn(user *api.User) error {
	if err := a.session.save(a.client.Token()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	pterm.Success.Printfln("Signed in as %s, balance %s", user.Username, user.Balance.StringFixed(2))
	return nil
}

// roundNumber takes the round from args, then -round, then the table's
// active round.
func (a *app) roundNumber(ctx context.Context, args []string) (int64, error) {
	if len(args) > 0 {
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid round %q", args[0])
		}
		return n, nil
	}
	if a.round != 0 {
		return a.round, nil
	}
	round, err := a.client.ActiveRound(ctx, a.table)
	if err != nil {
		return 0, err
	}
	return round.Number, nil
}

func (a *app) bet(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("bet needs at least one <target:amount>")
	}
	items := make([]*api.WagerItem, 0, len(args))
	for _, arg := range args {
		item, err := parseItem(arg)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	number, err := a.roundNumber(ctx, nil)
	if err != nil {
		return err
	}
	wagers, err := a.client.PlaceWagers(ctx, number, items)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("%d wager(s) placed on round %d", len(wagers), number)
	return printWagers(wagers)
}

// parseItem reads "red:10" or "17:2.50". Color names make color wagers,
// anything else is sent as a number target.
func parseItem(arg string) (*api.WagerItem, error) {
	target, amountStr, ok := strings.Cut(arg, ":")
	if !ok {
		return nil, fmt.Errorf("wager %q is not target:amount", arg)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in %q: %w", arg, err)
	}
	target = strings.ToLower(strings.TrimSpace(target))
	kind := models.KindNumber
	switch models.Color(target) {
	case models.Red, models.Black, models.Green:
		kind = models.KindColor
	}
	if err := game.ValidateItem(models.WagerItem{Kind: kind, Target: target, Amount: amount}); err != nil {
		return nil, fmt.Errorf("wager %q: %w", arg, err)
	}
	return &api.WagerItem{Kind: string(kind), Target: target, Amount: amount}, nil
}

// watch follows the round feed. When a round finishes, the player's
// results are applied to the local balance and reported back, then the
// balance is synced with the server.
func (a *app) watch(ctx context.Context) error {
	r := reconcile.New(a.client)
	if err := r.Sync(ctx); err != nil {
		slog.Warn("Initial balance sync failed", "error", err)
	}
	go r.Run(ctx, syncInterval)

	feed, err := events.Subscribe(ctx, a.client.BaseURL)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Watching %s, balance %s", a.client.BaseURL, r.Balance().StringFixed(2))

	for ev := range feed {
		if a.table != "" && ev.TableID != a.table {
			continue
		}
		switch ev.Type {
		case events.RoundOpened:
			pterm.Info.Printfln("Round %d is open", ev.RoundNumber)
		case events.RoundClosed:
			pterm.Info.Printfln("Round %d closed", ev.RoundNumber)
		case events.WagersPlaced:
			slog.Debug("Wagers placed", "round", ev.RoundNumber, "count", ev.Wagers, "amount", ev.TotalAmount)
		case events.RoundFinished:
			a.settle(ctx, r, ev)
		}
	}
	r.Wait()
	return ctx.Err()
}

func (a *app) settle(ctx context.Context, r *reconcile.Reconciler, ev events.Event) {
	wagers, err := a.client.MyWagers(ctx)
	if err != nil {
		slog.Warn("Failed to load wagers", "round", ev.RoundNumber, "error", err)
	}
	var mine []*api.Wager
	for _, w := range wagers {
		if w.RoundNumber != ev.RoundNumber || w.Result == nil {
			continue
		}
		mine = append(mine, w)
		r.ApplyOutcome(ctx, models.SettlementKey(w.ID), w.Result.Delta)
	}
	r.Wait()
	if err := r.Sync(ctx); err != nil {
		slog.Warn("Balance sync after round failed", "round", ev.RoundNumber, "error", err)
	}
	printFinished(ev, mine, r.Snapshot())
}
