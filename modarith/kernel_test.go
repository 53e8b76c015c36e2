package modarith

import "testing"

func TestKernelArithmeticUint64(t *testing.T) {
	k := New[uint64](ProductionTriple.P0)

	tests := []struct {
		name string
		fn   func() uint64
		want uint64
	}{
		{"add wraps", func() uint64 { return k.Add(ProductionTriple.P0-1, 2) }, 1},
		{"subtract wraps", func() uint64 { return k.Subtract(1, 2) }, ProductionTriple.P0 - 1},
		{"negate zero", func() uint64 { return k.Negate(0) }, 0},
		{"multiply small", func() uint64 { return k.Multiply(3, 4) }, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(); got != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestKernelInverse(t *testing.T) {
	k := New[uint64](ProductionTriple.P0)

	for _, a := range []uint64{1, 2, 3, 12345, ProductionTriple.P0 - 1} {
		inv, ok := k.Inverse(a)
		if !ok {
			t.Fatalf("Inverse(%d) reported not invertible", a)
		}
		if got := k.Multiply(a, inv); got != 1 {
			t.Errorf("Inverse(%d)=%d, a*inv mod p = %d, want 1", a, inv, got)
		}
	}

	if _, ok := k.Inverse(0); ok {
		t.Error("Inverse(0) should report not invertible")
	}
}

func TestKernelNthRoot(t *testing.T) {
	tri := ProductionTriple
	k := New[uint64](tri.P0)

	n := uint64(1) << 10
	w := k.NthRoot(tri.G0, n, false)

	// w^n should be 1, w^(n/2) should not be 1.
	if got := k.Pow(w, n); got != 1 {
		t.Errorf("w^n = %d, want 1", got)
	}
	if got := k.Pow(w, n/2); got == 1 {
		t.Error("w^(n/2) = 1, expected a primitive root")
	}

	wInv := k.NthRoot(tri.G0, n, true)
	if got := k.Multiply(w, wInv); got != 1 {
		t.Errorf("w * wInv mod p = %d, want 1", got)
	}
}

func TestKernelGenericAcrossElementTypes(t *testing.T) {
	testGenericKernel8(t)
	testGenericKernel16(t)
	testGenericKernel32(t)
}

func testGenericKernel8(t *testing.T) {
	tri := TripleFor[uint8]()
	k := New[uint8](uint8(tri.P0))
	if got := k.Add(uint8(tri.P0-1), 2); got != 1 {
		t.Errorf("uint8 kernel Add wraparound = %d, want 1", got)
	}
}

func testGenericKernel16(t *testing.T) {
	tri := TripleFor[uint16]()
	k := New[uint16](uint16(tri.P0))
	w := k.NthRoot(uint16(tri.G0), 1<<tri.M0, false)
	if got := k.Pow(w, 1<<tri.M0); got != 1 {
		t.Errorf("uint16 kernel NthRoot^n = %d, want 1", got)
	}
}

func testGenericKernel32(t *testing.T) {
	tri := TripleFor[uint32]()
	k := New[uint32](uint32(tri.P0))
	inv, ok := k.Inverse(uint32(12345))
	if !ok {
		t.Fatal("uint32 kernel Inverse reported not invertible")
	}
	if got := k.Multiply(12345, inv); got != 1 {
		t.Errorf("uint32 kernel inverse check = %d, want 1", got)
	}
}
