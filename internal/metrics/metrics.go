// Package metrics exports prometheus metrics for rounds, wagers and payouts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/roulette/internal/game"
	"github.com/mmynk/roulette/internal/models"
)

var _ game.Observer = (*Metrics)(nil)

// Metrics records engine activity. It implements game.Observer.
type Metrics struct {
	rounds         *prometheus.CounterVec
	wagers         *prometheus.CounterVec
	wagered        prometheus.Counter
	paidOut        prometheus.Counter
	winningColors  *prometheus.CounterVec
	wagersPerRound prometheus.Histogram
	rejected       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roulette",
			Name:      "round_transitions_total",
			Help:      "Round transitions by resulting status.",
		}, []string{"status"}),
		wagers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roulette",
			Name:      "wagers_total",
			Help:      "Accepted wagers by kind.",
		}, []string{"kind"}),
		wagered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roulette",
			Name:      "wagered_amount_total",
			Help:      "Sum of accepted wager amounts.",
		}),
		paidOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roulette",
			Name:      "payout_amount_total",
			Help:      "Sum of payouts of settled wagers.",
		}),
		winningColors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roulette",
			Name:      "winning_color_total",
			Help:      "Finished rounds by winning color.",
		}, []string{"color"}),
		wagersPerRound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roulette",
			Name:      "round_wagers",
			Help:      "Number of wagers settled per round.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roulette",
			Name:      "rejected_operations_total",
			Help:      "Rejected engine operations by operation and reason.",
		}, []string{"op", "reason"}),
	}
	reg.MustRegister(m.rounds, m.wagers, m.wagered, m.paidOut, m.winningColors, m.wagersPerRound, m.rejected)
	return m
}

func (m *Metrics) RoundOpened(*models.Round) {
	m.rounds.WithLabelValues(string(models.RoundOpen)).Inc()
}

func (m *Metrics) RoundClosed(*models.Round) {
	m.rounds.WithLabelValues(string(models.RoundClosed)).Inc()
}

func (m *Metrics) RoundFinished(round *models.Round, results []models.SettlementResult) {
	m.rounds.WithLabelValues(string(models.RoundFinished)).Inc()
	m.winningColors.WithLabelValues(string(round.WinningColor())).Inc()
	m.wagersPerRound.Observe(float64(len(results)))
	for _, r := range results {
		m.paidOut.Add(r.Payout.InexactFloat64())
	}
}

func (m *Metrics) WagersPlaced(wagers []*models.Wager) {
	for _, w := range wagers {
		m.wagers.WithLabelValues(string(w.Kind)).Inc()
		m.wagered.Add(w.Amount.InexactFloat64())
	}
}

func (m *Metrics) Rejected(op string, err error) {
	m.rejected.WithLabelValues(op, game.Reason(err)).Inc()
}
