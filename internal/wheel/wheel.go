// Package wheel draws roulette outcomes from the fixed 37-slot European wheel.
package wheel

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"

	"github.com/mmynk/roulette/internal/models"
)

// Slots is the number of pockets on the wheel (0 through 36).
const Slots = models.MaxSlot + 1

// Order is the clockwise pocket order starting at zero. It is for display
// only; draws are made over slot numbers, never over positions in Order.
var Order = [Slots]int{
	0, 32, 15, 19, 4, 21, 2, 25, 17, 34, 6, 27, 13, 36, 11, 30, 8, 23, 10, 5,
	24, 16, 33, 1, 20, 14, 31, 9, 22, 18, 29, 7, 28, 12, 35, 3, 26,
}

// Outcome is the result of one draw.
type Outcome struct {
	Slot  int
	Color models.Color
}

// OutcomeFor builds the outcome for a slot.
func OutcomeFor(slot int) (Outcome, error) {
	if slot < 0 || slot > models.MaxSlot {
		return Outcome{}, fmt.Errorf("slot %d out of range [0,%d]", slot, models.MaxSlot)
	}
	return Outcome{Slot: slot, Color: models.ColorOf(slot)}, nil
}

// Generator produces winning outcomes. Implementations must be uniform over
// the 37 slots.
type Generator interface {
	Resolve() (Outcome, error)
}

// Random draws from crypto/rand.
type Random struct{}

// NewRandom returns the production generator.
func NewRandom() Random { return Random{} }

// Resolve implements Generator.
func (Random) Resolve() (Outcome, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(Slots))
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to draw slot: %w", err)
	}
	return OutcomeFor(int(n.Int64()))
}

// Seeded draws from a PCG stream so simulations can be replayed.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded returns a reproducible generator for the given seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Resolve implements Generator.
func (s *Seeded) Resolve() (Outcome, error) {
	s.mu.Lock()
	slot := s.rng.IntN(Slots)
	s.mu.Unlock()
	return OutcomeFor(slot)
}

// Fixed always returns the same slot. Used for forced outcomes.
type Fixed int

// Resolve implements Generator.
func (f Fixed) Resolve() (Outcome, error) {
	return OutcomeFor(int(f))
}
