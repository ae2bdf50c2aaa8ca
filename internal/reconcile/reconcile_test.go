package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roulette/internal/models"
)

// fakeAuthority is an in-memory authority with a switchable outage.
type fakeAuthority struct {
	mu       sync.Mutex
	balance  models.Money
	applied  map[string]bool
	adjusts  int
	failing  bool
	released chan struct{}
}

func newFakeAuthority(balance int64) *fakeAuthority {
	return &fakeAuthority{balance: decimal.NewFromInt(balance), applied: make(map[string]bool)}
}

var errOutage = errors.New("connection refused")

func (f *fakeAuthority) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *fakeAuthority) GetBalance(context.Context) (models.Money, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return decimal.Zero, errOutage
	}
	return f.balance, nil
}

func (f *fakeAuthority) AdjustBalance(_ context.Context, delta models.Money, key string) (models.Money, error) {
	if f.released != nil {
		<-f.released
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adjusts++
	if f.failing {
		return decimal.Zero, errOutage
	}
	if !f.applied[key] {
		f.applied[key] = true
		f.balance = f.balance.Add(delta)
		if f.balance.IsNegative() {
			f.balance = decimal.Zero
		}
	}
	return f.balance, nil
}

func (f *fakeAuthority) set(v int64) {
	f.mu.Lock()
	f.balance = decimal.NewFromInt(v)
	f.mu.Unlock()
}

func amount(v int64) models.Money { return decimal.NewFromInt(v) }

func TestSyncEstablishesBalance(t *testing.T) {
	auth := newFakeAuthority(100)
	r := New(auth)

	if s := r.Snapshot(); !s.NeedsSync {
		t.Error("a new reconciler must need a sync")
	}
	if err := r.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	s := r.Snapshot()
	if s.State != Synced || !s.Local.Equal(amount(100)) || !s.Authoritative.Equal(amount(100)) || s.NeedsSync {
		t.Errorf("unexpected snapshot: %+v", s)
	}
}

func TestApplyOutcomeConfirmed(t *testing.T) {
	auth := newFakeAuthority(100)
	auth.released = make(chan struct{})
	r := New(auth)
	ctx := context.Background()
	if err := r.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if !r.ApplyOutcome(ctx, "w1", amount(20)) {
		t.Fatal("first outcome rejected")
	}
	// Visible locally before the server answered.
	if s := r.Snapshot(); s.State != PendingDelta || !s.Local.Equal(amount(120)) {
		t.Errorf("unexpected pending snapshot: %+v", s)
	}
	close(auth.released)
	r.Wait()

	s := r.Snapshot()
	if s.State != Synced || !s.Local.Equal(amount(120)) || !s.Authoritative.Equal(amount(120)) {
		t.Errorf("unexpected snapshot: %+v", s)
	}
}

func TestApplyOutcomeOncePerKey(t *testing.T) {
	auth := newFakeAuthority(100)
	r := New(auth)
	ctx := context.Background()
	if err := r.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	r.ApplyOutcome(ctx, "w1", amount(-10))
	if r.ApplyOutcome(ctx, "w1", amount(-10)) {
		t.Error("repeated key accepted")
	}
	r.Wait()

	if auth.adjusts != 1 {
		t.Errorf("submitted %d times, want 1", auth.adjusts)
	}
	if got := r.Balance(); !got.Equal(amount(90)) {
		t.Errorf("balance = %s, want 90", got)
	}
}

func TestLocalFloorAtZero(t *testing.T) {
	auth := newFakeAuthority(15)
	r := New(auth)
	ctx := context.Background()
	if err := r.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	r.ApplyOutcome(ctx, "w1", amount(-40))
	if got := r.Balance(); !got.IsZero() {
		t.Errorf("local balance = %s, want 0", got)
	}
	r.Wait()
	if s := r.Snapshot(); !s.Authoritative.IsZero() || !s.Local.IsZero() {
		t.Errorf("unexpected snapshot: %+v", s)
	}
}

func TestFailureKeepsLocalValueUntilSync(t *testing.T) {
	auth := newFakeAuthority(100)
	r := New(auth)
	ctx := context.Background()
	if err := r.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	auth.setFailing(true)
	r.ApplyOutcome(ctx, "w1", amount(20))
	r.Wait()

	s := r.Snapshot()
	if !s.Local.Equal(amount(120)) || !s.NeedsSync || s.State != PendingDelta {
		t.Errorf("expected the optimistic value to be kept: %+v", s)
	}
	if auth.adjusts != 1 {
		t.Errorf("failed delta re-submitted: %d calls", auth.adjusts)
	}

	err := r.Sync(ctx)
	var syncErr *SyncError
	if !errors.As(err, &syncErr) || !errors.Is(err, errOutage) {
		t.Fatalf("expected SyncError wrapping the outage, got %v", err)
	}
	if got := r.Balance(); !got.Equal(amount(120)) {
		t.Errorf("failed sync changed balance to %s", got)
	}

	// The server settled on its own; the sync takes its value unconditionally.
	auth.setFailing(false)
	auth.set(95)
	if err := r.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	s = r.Snapshot()
	if !s.Local.Equal(amount(95)) || s.NeedsSync || s.State != Synced {
		t.Errorf("unexpected snapshot after recovery: %+v", s)
	}
	if auth.adjusts != 1 {
		t.Errorf("recovery re-submitted the delta: %d calls", auth.adjusts)
	}
}

func TestNextOutcomeTriggersCatchUpSync(t *testing.T) {
	auth := newFakeAuthority(100)
	r := New(auth)
	ctx := context.Background()
	if err := r.Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	auth.setFailing(true)
	r.ApplyOutcome(ctx, "w1", amount(20))
	r.Wait()
	auth.setFailing(false)

	r.ApplyOutcome(ctx, "w2", amount(-10))
	r.Wait()

	// w1 never reached the server, so the authoritative value is 90.
	s := r.Snapshot()
	if !s.Local.Equal(amount(90)) || s.NeedsSync || s.State != Synced {
		t.Errorf("unexpected snapshot: %+v", s)
	}
}

func TestRunSyncsPeriodically(t *testing.T) {
	auth := newFakeAuthority(100)
	r := New(auth)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !r.Balance().Equal(amount(100)) {
		if time.Now().After(deadline) {
			t.Fatal("periodic sync never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
}

func TestStateString(t *testing.T) {
	tests := map[State]string{Synced: "synced", PendingDelta: "pending_delta", Syncing: "syncing", State(9): "State(9)"}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
