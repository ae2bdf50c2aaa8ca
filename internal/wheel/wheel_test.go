package wheel

import (
	"testing"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mmynk/roulette/internal/models"
)

func TestColorTable(t *testing.T) {
	counts := map[models.Color]int{}
	for slot := 0; slot < Slots; slot++ {
		counts[models.ColorOf(slot)]++
	}
	if counts[models.Green] != 1 || counts[models.Red] != 18 || counts[models.Black] != 18 {
		t.Fatalf("unexpected color split: %v", counts)
	}

	tests := []struct {
		slot int
		want models.Color
	}{
		{0, models.Green},
		{1, models.Red},
		{2, models.Black},
		{10, models.Black},
		{11, models.Black},
		{12, models.Red},
		{19, models.Red},
		{28, models.Black},
		{36, models.Red},
		{37, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := models.ColorOf(tt.slot); got != tt.want {
			t.Errorf("ColorOf(%d) = %q, want %q", tt.slot, got, tt.want)
		}
	}
}

func TestOrderIsPermutation(t *testing.T) {
	seen := make(map[int]bool, Slots)
	for _, slot := range Order {
		if slot < 0 || slot > models.MaxSlot {
			t.Fatalf("slot %d out of range", slot)
		}
		if seen[slot] {
			t.Fatalf("slot %d appears twice", slot)
		}
		seen[slot] = true
	}
	if len(seen) != Slots {
		t.Fatalf("expected %d slots, got %d", Slots, len(seen))
	}
}

func TestFixed(t *testing.T) {
	out, err := Fixed(17).Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if out.Slot != 17 || out.Color != models.Black {
		t.Errorf("got %+v, want slot 17 black", out)
	}

	if _, err := Fixed(40).Resolve(); err == nil {
		t.Error("expected error for out-of-range slot")
	}
}

func TestRandomInRange(t *testing.T) {
	g := NewRandom()
	for i := 0; i < 1000; i++ {
		out, err := g.Resolve()
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if out.Slot < 0 || out.Slot > models.MaxSlot {
			t.Fatalf("slot %d out of range", out.Slot)
		}
		if out.Color != models.ColorOf(out.Slot) {
			t.Fatalf("color %q does not match slot %d", out.Color, out.Slot)
		}
	}
}

func TestSeededUniform(t *testing.T) {
	const perSlot = 1000
	g := NewSeeded(42)

	observed := make([]float64, Slots)
	for i := 0; i < perSlot*Slots; i++ {
		out, err := g.Resolve()
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		observed[out.Slot]++
	}
	expected := make([]float64, Slots)
	for i := range expected {
		expected[i] = perSlot
	}

	chi2 := stat.ChiSquare(observed, expected)
	p := distuv.ChiSquared{K: Slots - 1}.Survival(chi2)
	if p < 0.001 {
		t.Errorf("draws not uniform: chi2=%.2f p=%.5f", chi2, p)
	}
}

func TestSeededReproducible(t *testing.T) {
	a, b := NewSeeded(7), NewSeeded(7)
	for i := 0; i < 100; i++ {
		x, _ := a.Resolve()
		y, _ := b.Resolve()
		if x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}
}
