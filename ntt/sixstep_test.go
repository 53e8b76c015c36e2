package ntt

import (
	"testing"

	"github.com/apfloat-go/apfloat/modarith"
)

func TestSixStepRoundTrip(t *testing.T) {
	m := NewModuli(modarith.ProductionTriple)
	six := NewSixStep(m)

	for idx := 0; idx < 3; idx++ {
		for _, n := range []int64{16, 64, 256} {
			data := make([]uint64, n)
			for i := range data {
				data[i] = uint64(i*97 + idx*5)
			}
			original := append([]uint64(nil), data...)

			if err := six.Transform(data, idx); err != nil {
				t.Fatalf("modulus %d length %d: Transform: %v", idx, n, err)
			}
			if err := six.InverseTransform(data, idx, n); err != nil {
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

func TestFactorNearSqrt(t *testing.T) {
	cases := []int64{16, 64, 256, 1024}
	for _, n := range cases {
		n1, n2 := factorNearSqrt(n)
		if n1*n2 != n {
			t.Fatalf("factorNearSqrt(%d) = (%d,%d), product != n", n, n1, n2)
		}
		if n1 > n2 {
			t.Fatalf("factorNearSqrt(%d) = (%d,%d), expected n1 <= n2", n, n1, n2)
		}
	}
}
