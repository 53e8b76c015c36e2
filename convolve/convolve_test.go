package convolve

import (
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/apfloat-go/apfloat/config"
	"github.com/apfloat-go/apfloat/modarith"
	"github.com/apfloat-go/apfloat/storage"
)

// randomDigits fills count digits uniformly in [0, bound), grounded on
// _examples/luxfi-ringtail/gpu/gpu_sampling.go's SampleUniform (crypto/rand,
// one sample per coefficient) but serial rather than goroutine-per-item
// since these fixtures are small.
func randomDigits(t *testing.T, count int, bound uint64) []uint64 {
	t.Helper()
	out := make([]uint64, count)
	var buf [8]byte
	for i := range out {
		if _, err := rand.Read(buf[:]); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}
		out[i] = binary.BigEndian.Uint64(buf[:]) % bound
	}
	return out
}

// schoolbookConvolveMod computes the negacyclic-free linear convolution of a
// and b modulo p, the reference result each of Convolver's three residue
// streams must match.
func schoolbookConvolveMod(a, b []uint64, p uint64) []uint64 {
	out := make([]uint64, len(a)+len(b))
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			out[i+j] = (out[i+j] + (av%p)*(bv%p)) % p
		}
	}
	return out
}

func TestMultiplyMatchesSchoolbookPerModulus(t *testing.T) {
	ctx := &config.Context{CacheL1Size: 32 * 1024, MaxMemoryBlock: 1 << 30}
	c := New(modarith.ProductionTriple, ctx)

	a := randomDigits(t, 20, 1_000_000_000)
	b := randomDigits(t, 17, 1_000_000_000)

	res, err := c.Multiply(a, b, int64(len(a)+len(b)))
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}

	primes := []uint64{modarith.ProductionTriple.P0, modarith.ProductionTriple.P1, modarith.ProductionTriple.P2}
	streams := [][]uint64{res.Mod0, res.Mod1, res.Mod2}

	for idx, p := range primes {
		want := schoolbookConvolveMod(a, b, p)
		got := streams[idx]
		for i, wv := range want {
			if got[i] != wv {
				t.Fatalf("modulus %d (p=%d): coefficient %d: got %d want %d", idx, p, i, got[i], wv)
			}
		}
	}
}

func TestMultiplyRejectsEmptyInputs(t *testing.T) {
	ctx := &config.Context{CacheL1Size: 32 * 1024, MaxMemoryBlock: 1 << 30}
	c := New(modarith.ProductionTriple, ctx)

	if _, err := c.Multiply(nil, nil, 0); err == nil {
		t.Fatal("expected error for empty inputs")
	}
}

func TestMultiplySelectsTwoPassUnderTightMemory(t *testing.T) {
	ctx := &config.Context{CacheL1Size: 256, MaxMemoryBlock: 1024}
	c := New(modarith.ProductionTriple, ctx)

	// 220 digits round to a transform length of 256, whose footprint
	// overflows both budgets above, forcing the two-pass strategy.
	a := randomDigits(t, 120, 1_000_000_000)
	b := randomDigits(t, 100, 1_000_000_000)

	res, err := c.Multiply(a, b, int64(len(a)+len(b)))
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}

	want := schoolbookConvolveMod(a, b, modarith.ProductionTriple.P1)
	got := res.Mod1
	for i, wv := range want {
		if got[i] != wv {
			t.Fatalf("coefficient %d: got %d want %d", i, got[i], wv)
		}
	}
}

// TestMultiplyTwoPassThroughDiskStorage runs the same two-pass regime with
// its working sets routed through temp-file-backed storage, exercising the
// disk variant of component B inside a real convolution.
func TestMultiplyTwoPassThroughDiskStorage(t *testing.T) {
	ctx := &config.Context{CacheL1Size: 256, MaxMemoryBlock: 1024}
	ctx.FilenameGenerator = storage.NewFilenameGenerator(t.TempDir(), []byte("convolve-two-pass"))
	c := New(modarith.ProductionTriple, ctx).WithBuilder(storage.DiskBuilder{Ctx: ctx})

	a := randomDigits(t, 120, 1_000_000_000)
	b := randomDigits(t, 100, 1_000_000_000)

	res, err := c.Multiply(a, b, int64(len(a)+len(b)))
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}

	want := schoolbookConvolveMod(a, b, modarith.ProductionTriple.P0)
	got := res.Mod0
	for i, wv := range want {
		if got[i] != wv {
			t.Fatalf("coefficient %d: got %d want %d", i, got[i], wv)
		}
	}
}

func TestMultiplyTwoPassWithFactorOfThree(t *testing.T) {
	ctx := &config.Context{CacheL1Size: 256, MaxMemoryBlock: 1024}
	c := New(modarith.ProductionTriple, ctx)

	// 300 digits round to 384 = 3*128: the factor-3 wrapper around a
	// two-pass power-of-two kernel.
	a := randomDigits(t, 160, 1_000_000_000)
	b := randomDigits(t, 140, 1_000_000_000)

	res, err := c.Multiply(a, b, int64(len(a)+len(b)))
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}

	want := schoolbookConvolveMod(a, b, modarith.ProductionTriple.P2)
	got := res.Mod2
	for i, wv := range want {
		if got[i] != wv {
			t.Fatalf("coefficient %d: got %d want %d", i, got[i], wv)
		}
	}
}

func TestMultiplySelectsSixStepUnderTightL1(t *testing.T) {
	ctx := &config.Context{CacheL1Size: 256, MaxMemoryBlock: 1 << 30}
	c := New(modarith.ProductionTriple, ctx)

	a := randomDigits(t, 200, 1_000_000_000)
	b := randomDigits(t, 180, 1_000_000_000)

	res, err := c.Multiply(a, b, int64(len(a)+len(b)))
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}

	want := schoolbookConvolveMod(a, b, modarith.ProductionTriple.P0)
	got := res.Mod0
	for i, wv := range want {
		if got[i] != wv {
			t.Fatalf("coefficient %d: got %d want %d", i, got[i], wv)
		}
	}
}
