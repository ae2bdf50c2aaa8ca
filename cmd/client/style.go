package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/mmynk/roulette/internal/events"
	"github.com/mmynk/roulette/internal/models"
	"github.com/mmynk/roulette/internal/reconcile"
	"github.com/mmynk/roulette/pkg/api"
)

// pocket renders a slot on its wheel color.
func pocket(slot int) string {
	label := fmt.Sprintf(" %2d ", slot)
	switch models.ColorOf(slot) {
	case models.Red:
		return pterm.BgRed.Sprint(label)
	case models.Black:
		return pterm.BgBlack.Sprint(label)
	default:
		return pterm.BgGreen.Sprint(label)
	}
}

func renderWheel(order []int) string {
	var b strings.Builder
	for i, slot := range order {
		if i > 0 && i%19 == 0 {
			b.WriteString("\n")
		}
		b.WriteString(pocket(slot))
	}
	return b.String()
}

func when(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return "-"
	}
	return ts.AsTime().Local().Format("15:04:05")
}

func outcome(r *api.Round) string {
	if r.WinningSlot == nil {
		return "-"
	}
	return pocket(*r.WinningSlot)
}

func printSpin(spin *api.SpinRoundResponse) {
	won := 0
	for _, res := range spin.Results {
		if res.Won {
			won++
		}
	}
	body := pterm.Sprintfln("Winning pocket %s (%s)", outcome(spin.Round), spin.Round.WinningColor) +
		pterm.Sprintfln("%d wager(s) settled, %d won", len(spin.Results), won)
	pterm.DefaultBox.
		WithTitle(pterm.LightYellow(fmt.Sprintf("|ROUND %d|", spin.Round.Number))).
		WithTitleTopCenter().
		WithHorizontalPadding(4).
		Println(body)
}

func printFunds(funds *api.GetBalanceResponse) {
	pterm.DefaultBox.
		WithTitle(pterm.LightCyan("|BALANCE|")).
		WithTitleTopCenter().
		WithHorizontalPadding(4).
		Println(pterm.Sprintfln("Balance   %s", funds.Balance.StringFixed(2)) +
			pterm.Sprintfln("Held      %s", funds.Held.StringFixed(2)) +
			pterm.Sprintf("Available %s", pterm.LightGreen(funds.Available.StringFixed(2))))
}

func printHistory(entries []*api.BalanceEntry) error {
	data := pterm.TableData{{"Time", "Kind", "Round", "Delta", "Applied", "Balance"}}
	for _, e := range entries {
		round := "-"
		if e.RoundNumber != 0 {
			round = strconv.FormatInt(e.RoundNumber, 10)
		}
		data = append(data, []string{
			when(e.CreatedAt), e.Kind, round,
			e.Delta.StringFixed(2), e.Applied.StringFixed(2), e.BalanceAfter.StringFixed(2),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printUsers(users []*api.User) error {
	data := pterm.TableData{{"ID", "Username", "Email", "Balance", "Joined"}}
	for _, u := range users {
		data = append(data, []string{u.ID, u.Username, u.Email, u.Balance.StringFixed(2), when(u.CreatedAt)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printRounds(rounds []*api.Round) error {
	data := pterm.TableData{{"Round", "Table", "Status", "Outcome", "Wagers", "Staked", "Paid"}}
	for _, r := range rounds {
		wagers, staked, paid := "0", "0.00", "0.00"
		if r.Stats != nil {
			wagers = strconv.Itoa(r.Stats.TotalWagers)
			staked = r.Stats.TotalAmount.StringFixed(2)
			paid = r.Stats.TotalPayout.StringFixed(2)
		}
		data = append(data, []string{
			strconv.FormatInt(r.Number, 10), r.TableID, r.Status, outcome(r), wagers, staked, paid,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printWagers(wagers []*api.Wager) error {
	data := pterm.TableData{{"Round", "Bet", "Amount", "Result", "Delta"}}
	for _, w := range wagers {
		result, delta := pterm.Gray("pending"), "-"
		if w.Result != nil {
			result = pterm.LightRed("lost")
			if w.Result.Won {
				result = pterm.LightGreen("won " + w.Result.Payout.StringFixed(2))
			}
			delta = w.Result.Delta.StringFixed(2)
		}
		data = append(data, []string{
			strconv.FormatInt(w.RoundNumber, 10), w.Kind + " " + w.Target, w.Amount.StringFixed(2), result, delta,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printFinished(ev events.Event, mine []*api.Wager, snap reconcile.Snapshot) {
	slot := "-"
	if ev.WinningSlot != nil {
		slot = pocket(*ev.WinningSlot)
	}
	body := pterm.Sprintfln("Winning pocket %s (%s)", slot, ev.WinningColor)
	for _, w := range mine {
		if w.Result.Won {
			body += pterm.Sprintfln("%s %s: %s", w.Kind, w.Target, pterm.LightGreen("+"+w.Result.Payout.StringFixed(2)))
		} else {
			body += pterm.Sprintfln("%s %s: %s", w.Kind, w.Target, pterm.LightRed(w.Result.Delta.StringFixed(2)))
		}
	}
	status := snap.State.String()
	if snap.NeedsSync {
		status = pterm.LightYellow(status + ", sync pending")
	}
	body += pterm.Sprintf("Balance %s (%s)", snap.Local.StringFixed(2), status)

	pterm.DefaultBox.
		WithTitle(pterm.LightYellow(fmt.Sprintf("|ROUND %d|", ev.RoundNumber))).
		WithTitleTopCenter().
		WithHorizontalPadding(4).
		Println(body)
}
