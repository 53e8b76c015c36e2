package ntt

import (
	"testing"

	"github.com/apfloat-go/apfloat/config"
	"github.com/apfloat-go/apfloat/modarith"
)

func TestRoundTransformLength(t *testing.T) {
	cases := []struct {
		n       int64
		length  int64
		factor3 bool
	}{
		{1, 1, false},
		{2, 2, false},
		{3, 3, true},
		{4, 4, false},
		{5, 6, true},
		{9, 12, true},
		{17, 24, true},
		{24, 24, true},
	}
	for _, c := range cases {
		length, factor3 := roundTransformLength(c.n)
		if length != c.length || factor3 != c.factor3 {
			t.Errorf("roundTransformLength(%d) = (%d,%v), want (%d,%v)", c.n, length, factor3, c.length, c.factor3)
		}
	}
}

func TestSelectorPicksTableForSmallLength(t *testing.T) {
	m := NewModuli(modarith.ProductionTriple)
	ctx := &config.Context{CacheL1Size: 32 * 1024, MaxMemoryBlock: 1 << 30}
	sel := NewSelector(m, ctx)

	inst, err := sel.Select(64, 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if inst.Kind != KindTable {
		t.Errorf("Kind = %v, want Table", inst.Kind)
	}
	if inst.Factor3 {
		t.Errorf("Factor3 = true, want false for length 64")
	}
}

func TestSelectorPicksSixStepForMidSizedLength(t *testing.T) {
	m := NewModuli(modarith.ProductionTriple)
	ctx := &config.Context{CacheL1Size: 256, MaxMemoryBlock: 1 << 30}
	sel := NewSelector(m, ctx)

	inst, err := sel.Select(1 << 16, 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if inst.Kind != KindSixStep {
		t.Errorf("Kind = %v, want SixStep", inst.Kind)
	}
}

func TestSelectorPicksTwoPassForLargeLength(t *testing.T) {
	m := NewModuli(modarith.ProductionTriple)
	ctx := &config.Context{CacheL1Size: 256, MaxMemoryBlock: 1024}
	sel := NewSelector(m, ctx)

	inst, err := sel.Select(1<<20, 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if inst.Kind != KindTwoPass {
		t.Errorf("Kind = %v, want TwoPass", inst.Kind)
	}
	if inst.TwoPassOnly == nil {
		t.Error("TwoPassOnly is nil for a TwoPass selection")
	}
	if inst.Strategy == nil {
		t.Error("Strategy is nil for a TwoPass selection")
	}
}

func TestSelectorWrapsFactor3ForThreeTimesLength(t *testing.T) {
	m := NewModuli(modarith.ProductionTriple)
	ctx := &config.Context{CacheL1Size: 32 * 1024, MaxMemoryBlock: 1 << 30}
	sel := NewSelector(m, ctx)

	inst, err := sel.Select(3*16, 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !inst.Factor3 {
		t.Error("Factor3 = false, want true for length 48")
	}
	if inst.Length != 48 {
		t.Errorf("Length = %d, want 48", inst.Length)
	}
}
