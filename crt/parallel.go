package crt

import (
	"fmt"
	"math/big"

	"github.com/apfloat-go/apfloat/apferr"
	"github.com/apfloat-go/apfloat/parallelrunner"
)

// ParallelCarryCRT is the partitioned variant of CarryCRT (spec §4.I's
// "parallel mode"): a preliminary phase computes each block's digits with
// no knowledge of neighboring blocks (using parallelrunner.Runner.Split, the
// goroutine-per-slice fan-out grounded on
// _examples/luxfi-ringtail/gpu/gpu_ntt.go's BatchNTT.Forward/Inverse), then
// a finish phase walks the blocks in order, receiving the previous block's
// trailing carry through a parallelrunner.MessagePasser and rippling it
// through the block's digits (and, if the ripple outlives the block, into
// the carry handed to the next block).
func ParallelCarryCRT(mod0, mod1, mod2 []uint64, resultSize int64, consts *Constants, runner *parallelrunner.Runner) ([]uint64, error) {
	size := int64(len(mod0))
	if int64(len(mod1)) != size || int64(len(mod2)) != size {
		return nil, fmt.Errorf("%w: residue streams have lengths %d/%d/%d, want equal", apferr.ErrInvariant, len(mod0), len(mod1), len(mod2))
	}
	if resultSize <= 0 || resultSize > size {
		return nil, fmt.Errorf("%w: resultSize %d out of range for stream length %d", apferr.ErrInvariant, resultSize, size)
	}
	discard := size - resultSize
	if discard > 2 {
		return nil, fmt.Errorf("%w: size-resultSize=%d exceeds the carry-CRT discard window of 2", apferr.ErrInvariant, discard)
	}

	numBlocks := runner.NumWorkers()
	if int64(numBlocks) > size {
		numBlocks = int(size)
	}
	blockLen := (size + int64(numBlocks) - 1) / int64(numBlocks)
	numBlocks = int((size + blockLen - 1) / blockLen)

	digits := make([]uint64, size)
	tailCarries := make([]*big.Int, numBlocks)

	// Fan out over block indices rather than stream positions, so the block
	// geometry here stays authoritative regardless of how the runner chunks
	// its slices.
	runner.Split(int64(numBlocks), func(bOff, bLen int64) {
		for b := bOff; b < bOff+bLen; b++ {
			offset := b * blockLen
			length := blockLen
			if offset+length > size {
				length = size - offset
			}
			d, carry := blockLocalPass(mod0[offset:offset+length], mod1[offset:offset+length], mod2[offset:offset+length], consts)
			copy(digits[offset:offset+length], d)
			tailCarries[b] = carry
		}
	})

	passer := parallelrunner.NewMessagePasser()
	var finalCarry *big.Int
	for b := 0; b < numBlocks; b++ {
		offset := int64(b) * blockLen
		length := blockLen
		if offset+length > size {
			length = size - offset
		}

		var incoming *big.Int
		if b == 0 {
			incoming = new(big.Int)
		} else {
			incoming = decodeCarry(passer.ReceiveMessage(int64(b-1)), consts.base)
		}

		overflow := rippleAdd(digits[offset:offset+length], incoming, consts.base)
		outgoing := new(big.Int).Add(overflow, tailCarries[b])

		if b == numBlocks-1 {
			finalCarry = outgoing
		} else {
			passer.SendMessage(int64(b), encodeCarry(outgoing, consts.base))
		}
	}

	if finalCarry.Sign() != 0 {
		return nil, fmt.Errorf("%w: non-zero residual carry %s after parallel carry-CRT pass", apferr.ErrInvariant, finalCarry.String())
	}
	for i := resultSize; i < size; i++ {
		if digits[i] != 0 {
			return nil, fmt.Errorf("%w: non-zero digit %d in the high-order discard window at position %d", apferr.ErrInvariant, digits[i], i)
		}
	}

	return digits[:resultSize:resultSize], nil
}

// blockLocalPass runs the same per-position CRT reconstruction and carry
// ripple as CarryCRT, but starting from a zero incoming carry and without
// asserting the trailing carry is zero — it returns it instead, for the
// finish phase to fold into the next block's incoming carry.
func blockLocalPass(mod0, mod1, mod2 []uint64, consts *Constants) ([]uint64, *big.Int) {
	n := int64(len(mod0))
	out := make([]uint64, n)
	carry := new(big.Int)
	sum := new(big.Int)
	term := new(big.Int)
	digit := new(big.Int)

	for i := int64(0); i < n; i++ {
		y0 := mulmod(consts.t0, mod0[i], consts.p0)
		y1 := mulmod(consts.t1, mod1[i], consts.p1)
		y2 := mulmod(consts.t2, mod2[i], consts.p2)

		sum.SetInt64(0)
		term.SetUint64(y0)
		term.Mul(term, consts.m12)
		sum.Add(sum, term)
		sum.Mod(sum, consts.m012)

		term.SetUint64(y1)
		term.Mul(term, consts.m02)
		sum.Add(sum, term)
		sum.Mod(sum, consts.m012)

		term.SetUint64(y2)
		term.Mul(term, consts.m01)
		sum.Add(sum, term)
		sum.Mod(sum, consts.m012)

		carry.Add(carry, sum)
		carry.DivMod(carry, consts.baseBig, digit)
		out[i] = digit.Uint64()
	}
	return out, new(big.Int).Set(carry)
}

// rippleAdd adds incoming into digits starting at position 0, propagating
// overflow through successive positions, and returns whatever carry is left
// once it either dies out or runs past the end of digits.
func rippleAdd(digits []uint64, incoming *big.Int, base uint64) *big.Int {
	baseBig := new(big.Int).SetUint64(base)
	carry := incoming
	for i := 0; i < len(digits) && carry.Sign() != 0; i++ {
		combined := new(big.Int).Add(new(big.Int).SetUint64(digits[i]), carry)
		quotient := new(big.Int)
		remainder := new(big.Int)
		quotient.DivMod(combined, baseBig, remainder)
		digits[i] = remainder.Uint64()
		carry = quotient
	}
	return carry
}

// encodeCarry/decodeCarry cross the parallelrunner.MessagePasser's []uint64
// wire type: a little-endian sequence of base-B digits, least significant
// first, matching the digit streams the CRT operates on everywhere else.
func encodeCarry(v *big.Int, base uint64) []uint64 {
	if v.Sign() == 0 {
		return []uint64{0}
	}
	baseBig := new(big.Int).SetUint64(base)
	rem := new(big.Int)
	quot := new(big.Int).Set(v)
	var digits []uint64
	for quot.Sign() != 0 {
		quot.DivMod(quot, baseBig, rem)
		digits = append(digits, rem.Uint64())
	}
	return digits
}

func decodeCarry(digits []uint64, base uint64) *big.Int {
	v := new(big.Int)
	baseBig := new(big.Int).SetUint64(base)
	for i := len(digits) - 1; i >= 0; i-- {
		v.Mul(v, baseBig)
		v.Add(v, new(big.Int).SetUint64(digits[i]))
	}
	return v
}
