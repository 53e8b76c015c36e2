package ntt

import (
	"testing"

	"github.com/apfloat-go/apfloat/modarith"
)

func TestFactor3RoundTrip(t *testing.T) {
	m := NewModuli(modarith.ProductionTriple)

	for idx := 0; idx < 3; idx++ {
		table := NewTable(m)
		f3 := NewFactor3(m, table)
		for _, n := range []int64{3 * 4, 3 * 16, 3 * 64} {
			data := make([]uint64, n)
			for i := range data {
				data[i] = uint64(i*31 + idx*11)
			}
			original := append([]uint64(nil), data...)

			if err := f3.Transform(data, idx); err != nil {
				t.Fatalf("modulus %d length %d: Transform: %v", idx, n, err)
			}
			if err := f3.InverseTransform(data, idx, n); err != nil {
				t.Fatalf("modulus %d length %d: InverseTransform: %v", idx, n, err)
			}

			kernel := m.Kernel(idx)
			for i := range data {
				want := original[i] % kernel.Modulus()
				if data[i] != want {
					t.Fatalf("modulus %d length %d: index %d: got %d want %d", idx, n, i, data[i], want)
				}
			}
		}
	}
}

func TestFactor3RejectsLengthWithoutFactorOfThree(t *testing.T) {
	m := NewModuli(modarith.ProductionTriple)
	f3 := NewFactor3(m, NewTable(m))

	data := make([]uint64, 16)
	if err := f3.Transform(data, 0); err == nil {
		t.Fatal("expected error for length without a factor of three")
	}
}
