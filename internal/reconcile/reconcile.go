// Package reconcile keeps a player's optimistic local balance in step with
// the authoritative balance held by the server.
//
// Outcomes are applied locally at once and submitted to the server in the
// background, once per key. A failed submission is never retried; the
// local value is kept and the next sync overwrites it with the server's
// value. Remote failures never reach the caller as hard errors.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
)

// Authority is the remote owner of the balance.
type Authority interface {
	GetBalance(ctx context.Context) (models.Money, error)

	// AdjustBalance applies delta once per key and returns the clamped balance.
	AdjustBalance(ctx context.Context, delta models.Money, key string) (models.Money, error)
}

// State is the reconciliation state.
type State int

const (
	// Synced means the local value equals the last authoritative value.
	Synced State = iota
	// PendingDelta means a local change has not been confirmed yet.
	PendingDelta
	// Syncing means a read-through sync is in flight.
	Syncing
)

func (s State) String() string {
	switch s {
	case Synced:
		return "synced"
	case PendingDelta:
		return "pending_delta"
	case Syncing:
		return "syncing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// SyncError wraps a failed remote balance call.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("balance %s failed: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Snapshot is a consistent view of the reconciler.
type Snapshot struct {
	State         State
	Local         models.Money
	Authoritative models.Money
	NeedsSync     bool
}

// Reconciler runs the protocol for one player.
type Reconciler struct {
	authority Authority
	timeout   time.Duration

	mu            sync.Mutex
	state         State
	local         models.Money
	authoritative models.Money
	needsSync     bool
	inflight      int
	submitted     map[string]bool

	wg sync.WaitGroup
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithTimeout bounds each remote call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.timeout = d }
}

// New creates a reconciler. The first Sync establishes the balance; until
// then the local value is zero and a sync is pending.
func New(authority Authority, opts ...Option) *Reconciler {
	r := &Reconciler{
		authority:     authority,
		timeout:       10 * time.Second,
		state:         PendingDelta,
		local:         decimal.Zero,
		authoritative: decimal.Zero,
		needsSync:     true,
		submitted:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Balance returns the local balance.
func (r *Reconciler) Balance() models.Money {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.local
}

// Snapshot returns the current state.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		State:         r.state,
		Local:         r.local,
		Authoritative: r.authoritative,
		NeedsSync:     r.needsSync,
	}
}

func (r *Reconciler) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// ApplyOutcome applies delta to the local balance, floored at zero, and
// submits it to the authority in the background. A key is submitted at
// most once; ApplyOutcome reports false for a repeated key.
func (r *Reconciler) ApplyOutcome(ctx context.Context, key string, delta models.Money) bool {
	r.mu.Lock()
	if r.submitted[key] {
		r.mu.Unlock()
		slog.Debug("Outcome already applied", "key", key)
		return false
	}
	r.submitted[key] = true
	r.local = r.local.Add(delta)
	if r.local.IsNegative() {
		r.local = decimal.Zero
	}
	r.state = PendingDelta
	r.inflight++
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.submit(ctx, key, delta)
	}()
	return true
}

func (r *Reconciler) submit(ctx context.Context, key string, delta models.Money) {
	callCtx, cancel := r.callContext(ctx)
	balance, err := r.authority.AdjustBalance(callCtx, delta, key)
	cancel()

	r.mu.Lock()
	r.inflight--
	catchUp := false
	if err != nil {
		r.needsSync = true
		r.state = PendingDelta
		slog.Warn("Balance submission failed, keeping local value",
			"key", key,
			"local", r.local.String(),
			"error", &SyncError{Op: "adjust", Err: err},
		)
	} else {
		r.authoritative = balance
		// A failure before this submission left the local value unconfirmed.
		catchUp = r.needsSync
		if r.inflight == 0 && !r.needsSync {
			r.local = balance
			r.state = Synced
		}
	}
	r.mu.Unlock()

	if catchUp {
		r.Sync(ctx)
	}
}

// Sync reads the authoritative balance and overwrites the local value with
// it. On failure the local value is kept, a sync stays pending, and the
// returned error is a *SyncError.
func (r *Reconciler) Sync(ctx context.Context) error {
	r.mu.Lock()
	r.state = Syncing
	r.mu.Unlock()

	callCtx, cancel := r.callContext(ctx)
	balance, err := r.authority.GetBalance(callCtx)
	cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.needsSync = true
		r.state = PendingDelta
		syncErr := &SyncError{Op: "sync", Err: err}
		slog.Warn("Balance sync failed, keeping local value", "local", r.local.String(), "error", syncErr)
		return syncErr
	}

	r.authoritative = balance
	r.local = balance
	r.needsSync = false
	if r.inflight == 0 {
		r.state = Synced
	} else {
		r.state = PendingDelta
	}
	return nil
}

// Run syncs every interval until ctx is done. Failures are absorbed.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = r.Sync(ctx)
		}
	}
}

// Wait blocks until all background submissions returned.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}
