package crt

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/apfloat-go/apfloat/config"
	"github.com/apfloat-go/apfloat/convolve"
	"github.com/apfloat-go/apfloat/modarith"
	"github.com/apfloat-go/apfloat/parallelrunner"
)

const testBase = uint64(1) << 32

func randomDigits(t *testing.T, count int) []uint64 {
	t.Helper()
	out := make([]uint64, count)
	var buf [8]byte
	for i := range out {
		if _, err := rand.Read(buf[:]); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}
		out[i] = binary.BigEndian.Uint64(buf[:]) % testBase
	}
	return out
}

// digitsToBig interprets digits as little-endian base-testBase digits.
func digitsToBig(digits []uint64) *big.Int {
	v := new(big.Int)
	base := new(big.Int).SetUint64(testBase)
	for i := len(digits) - 1; i >= 0; i-- {
		v.Mul(v, base)
		v.Add(v, new(big.Int).SetUint64(digits[i]))
	}
	return v
}

// bigToDigits renders v as exactly n little-endian base-testBase digits.
func bigToDigits(v *big.Int, n int) []uint64 {
	out := make([]uint64, n)
	base := new(big.Int).SetUint64(testBase)
	rem := new(big.Int)
	cur := new(big.Int).Set(v)
	for i := 0; i < n; i++ {
		cur.DivMod(cur, base, rem)
		out[i] = rem.Uint64()
	}
	return out
}

func multiplyAndReconstruct(t *testing.T, a, b []uint64) []uint64 {
	t.Helper()
	ctx := &config.Context{CacheL1Size: 32 * 1024, MaxMemoryBlock: 1 << 30}
	c := convolve.New(modarith.ProductionTriple, ctx)

	streamLength := int64(len(a) + len(b))
	res, err := c.Multiply(a, b, streamLength)
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}

	consts := NewConstants(modarith.ProductionTriple, testBase)
	got, err := CarryCRT(res.Mod0, res.Mod1, res.Mod2, streamLength, consts)
	if err != nil {
		t.Fatalf("CarryCRT: %v", err)
	}
	return got
}

func TestCarryCRTReconstructsTrueProduct(t *testing.T) {
	a := randomDigits(t, 12)
	b := randomDigits(t, 9)

	got := multiplyAndReconstruct(t, a, b)

	want := bigToDigits(new(big.Int).Mul(digitsToBig(a), digitsToBig(b)), len(a)+len(b))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reconstructed digit stream mismatch (-want +got):\n%s", diff)
	}
}

func TestParallelCarryCRTMatchesSerial(t *testing.T) {
	ctx := &config.Context{CacheL1Size: 32 * 1024, MaxMemoryBlock: 1 << 30}
	c := convolve.New(modarith.ProductionTriple, ctx)

	a := randomDigits(t, 40)
	b := randomDigits(t, 33)
	streamLength := int64(len(a) + len(b))

	res, err := c.Multiply(a, b, streamLength)
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}

	consts := NewConstants(modarith.ProductionTriple, testBase)

	serial, err := CarryCRT(res.Mod0, res.Mod1, res.Mod2, streamLength, consts)
	if err != nil {
		t.Fatalf("CarryCRT: %v", err)
	}

	runner := parallelrunner.New(4)
	parallel, err := ParallelCarryCRT(res.Mod0, res.Mod1, res.Mod2, streamLength, consts, runner)
	if err != nil {
		t.Fatalf("ParallelCarryCRT: %v", err)
	}

	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Fatalf("serial vs. parallel carry-CRT mismatch (-serial +parallel):\n%s", diff)
	}
}

// TestParallelCarryCRTMoreWorkersThanDigits pins down the degenerate block
// geometry where the runner has more workers than the stream has positions.
func TestParallelCarryCRTMoreWorkersThanDigits(t *testing.T) {
	ctx := &config.Context{CacheL1Size: 32 * 1024, MaxMemoryBlock: 1 << 30}
	c := convolve.New(modarith.ProductionTriple, ctx)

	a := randomDigits(t, 2)
	b := randomDigits(t, 1)
	streamLength := int64(len(a) + len(b))

	res, err := c.Multiply(a, b, streamLength)
	if err != nil {
		t.Fatalf("Multiply: %v", err)
	}

	consts := NewConstants(modarith.ProductionTriple, testBase)
	runner := parallelrunner.New(8)
	got, err := ParallelCarryCRT(res.Mod0, res.Mod1, res.Mod2, streamLength, consts, runner)
	if err != nil {
		t.Fatalf("ParallelCarryCRT: %v", err)
	}

	want := bigToDigits(new(big.Int).Mul(digitsToBig(a), digitsToBig(b)), int(streamLength))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("digit stream mismatch (-want +got):\n%s", diff)
	}
}

func TestCarryCRTRejectsMismatchedLengths(t *testing.T) {
	consts := NewConstants(modarith.ProductionTriple, testBase)
	if _, err := CarryCRT([]uint64{1, 2}, []uint64{1}, []uint64{1, 2}, 2, consts); err == nil {
		t.Fatal("expected error for mismatched residue stream lengths")
	}
}

func TestCarryCRTRejectsOversizedDiscardWindow(t *testing.T) {
	consts := NewConstants(modarith.ProductionTriple, testBase)
	n := 10
	mod := make([]uint64, n)
	if _, err := CarryCRT(mod, mod, mod, 2, consts); err == nil {
		t.Fatal("expected error when size-resultSize exceeds the discard window")
	}
}
