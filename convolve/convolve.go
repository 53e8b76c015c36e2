// Package convolve is the three-modulus convolver (component H): it runs
// three independent NTTs under distinct primes, pointwise-multiplies, and
// inverse-transforms, handing the three residue streams to package crt for
// carry-CRT finalization.
//
// Grounded on _examples/luxfi-ringtail/gpu/gpu_ntt.go's BatchNTT.Forward/
// Inverse (the "transform, operate, inverse-transform" shape) generalized
// from one modulus to three independent instances run per spec §4.H.
package convolve

import (
	"fmt"

	"github.com/apfloat-go/apfloat/apferr"
	"github.com/apfloat-go/apfloat/config"
	"github.com/apfloat-go/apfloat/modarith"
	"github.com/apfloat-go/apfloat/ntt"
	"github.com/apfloat-go/apfloat/storage"
)

// Residues holds the three modular results of a convolution, one per prime
// in the active Triple, each trimmed to StreamLength.
type Residues struct {
	Mod0, Mod1, Mod2 []uint64
	StreamLength     int64
}

// Convolver runs the three-modulus NTT convolution for a fixed modulus
// triple (component H).
type Convolver struct {
	moduli  *ntt.Moduli
	ctx     *config.Context
	builder storage.Builder
}

// New builds a Convolver over the given modulus triple and context. Two-pass
// working sets are allocated in RAM unless WithBuilder overrides that.
func New(triple modarith.Triple, ctx *config.Context) *Convolver {
	return &Convolver{moduli: ntt.NewModuli(triple), ctx: ctx.Resolve(), builder: storage.MemoryBuilder{}}
}

// WithBuilder routes the two-pass strategy's working storages through b
// (e.g. storage.DiskBuilder for transforms whose working set must spill to
// disk), per spec §6's storage builder factory. Returns c for chaining.
func (c *Convolver) WithBuilder(b storage.Builder) *Convolver {
	c.builder = b
	return c
}

// Multiply convolves two digit streams a and b (Multiply itself reduces them
// modulo each prime and zero-pads them to the transform length) and returns
// the three residue streams,
// trimmed to streamLength (the number of low-order digits the caller wants
// out of carry-CRT, typically len(a)+len(b) or len(a)+len(b)-1).
//
// The strategy selector rounds the requested length up to a power-of-two or
// 3*2^k transform length, which can pad considerably past streamLength; the
// high-order padded positions beyond streamLength are mathematically
// guaranteed zero in a true (non-wraparound) linear convolution, so
// trimming them here — rather than handing the full padded length to
// package crt — is what keeps crt's own "size - resultSize" discard window
// small (spec §4.I's open question about that window assumes a small gap,
// not an arbitrary rounding-driven one).
func (c *Convolver) Multiply(a, b []uint64, streamLength int64) (*Residues, error) {
	minLength := int64(len(a) + len(b))
	if minLength <= 0 {
		return nil, fmt.Errorf("%w: combined input length must be positive", apferr.ErrInvariant)
	}
	if streamLength <= 0 {
		streamLength = minLength
	}

	out := &Residues{StreamLength: streamLength}
	for idx := 0; idx < 3; idx++ {
		residue, err := c.convolveOneModulus(a, b, minLength, idx)
		if err != nil {
			return nil, fmt.Errorf("modulus %d: %w", idx, err)
		}
		if streamLength > int64(len(residue)) {
			return nil, fmt.Errorf("%w: streamLength %d exceeds transform length %d", apferr.ErrInvariant, streamLength, len(residue))
		}
		residue = residue[:streamLength:streamLength]
		switch idx {
		case 0:
			out.Mod0 = residue
		case 1:
			out.Mod1 = residue
		case 2:
			out.Mod2 = residue
		}
	}
	return out, nil
}

// convolveOneModulus implements spec §4.H's five steps for a single prime:
// allocate residue arrays of the selected transform length, copy the
// operands in zero-padded, forward-transform both, pointwise-multiply,
// inverse-transform. (Spec §4.H packs the second operand into the upper
// half of one shared storage, a layout trick from classic in-place complex
// FFT convolution; exact modular transforms have no such packing, so each
// operand gets its own transform-sized work slice.)
func (c *Convolver) convolveOneModulus(a, b []uint64, minLength int64, modulusIndex int) ([]uint64, error) {
	selector := ntt.NewSelector(c.moduli, c.ctx)
	inst, err := selector.Select(minLength, modulusIndex)
	if err != nil {
		return nil, err
	}
	if inst.TwoPassOnly != nil && !inst.Factor3 {
		return c.convolveTwoPass(a, b, inst, modulusIndex)
	}

	n := inst.Length
	kernel := c.moduli.Kernel(modulusIndex)

	workA := make([]uint64, n)
	workB := make([]uint64, n)
	reduceInto(kernel, a, workA)
	reduceInto(kernel, b, workB)

	if err := inst.Strategy.Transform(workA, modulusIndex); err != nil {
		return nil, err
	}
	if err := inst.Strategy.Transform(workB, modulusIndex); err != nil {
		return nil, err
	}

	product := make([]uint64, n)
	for i := range product {
		product[i] = kernel.Multiply(workA[i], workB[i])
	}

	if err := inst.Strategy.InverseTransform(product, modulusIndex, n); err != nil {
		return nil, err
	}
	return product, nil
}

// convolveTwoPass handles the selector's out-of-RAM choice for pure
// power-of-two lengths (a factor-3-wrapped two-pass goes through the
// generic Strategy path above instead): the operands are small enough to
// build in memory (the selector only chooses two-pass based on the
// *transform length*, which is the point at which in-cache and in-RAM
// strategies stop applying — the raw digit inputs are unaffected), but the
// transform itself streams through a storage.Storage.
func (c *Convolver) convolveTwoPass(a, b []uint64, inst *ntt.Instance, modulusIndex int) ([]uint64, error) {
	n := inst.Length
	kernel := c.moduli.Kernel(modulusIndex)

	sa, err := c.newWorkStorage(a, n, modulusIndex)
	if err != nil {
		return nil, err
	}
	defer sa.Close()
	sb, err := c.newWorkStorage(b, n, modulusIndex)
	if err != nil {
		return nil, err
	}
	defer sb.Close()

	if err := inst.TwoPassOnly.TransformStorage(sa, modulusIndex); err != nil {
		return nil, err
	}
	if err := inst.TwoPassOnly.TransformStorage(sb, modulusIndex); err != nil {
		return nil, err
	}

	// Pointwise multiply one I/O block at a time, accumulating the product
	// in sa, so a disk-backed working set never needs a full-length array
	// view (disk storage caps GetArray at the block budget, spec §4.B).
	chunk := c.ctx.BlockIOSize / 8
	if chunk <= 0 {
		chunk = n
	}
	for off := int64(0); off < n; off += chunk {
		length := min(chunk, n-off)
		va, err := sa.GetArray(storage.ReadWrite, off, length)
		if err != nil {
			return nil, err
		}
		vb, err := sb.GetArray(storage.Read, off, length)
		if err != nil {
			return nil, err
		}
		for i := range va {
			va[i] = kernel.Multiply(va[i], vb[i])
		}
		if err := sa.SetArray(off, va); err != nil {
			return nil, err
		}
	}

	if err := inst.TwoPassOnly.InverseTransformStorage(sa, modulusIndex, n); err != nil {
		return nil, err
	}

	product := make([]uint64, n)
	for off := int64(0); off < n; off += chunk {
		length := min(chunk, n-off)
		v, err := sa.GetArray(storage.Read, off, length)
		if err != nil {
			return nil, err
		}
		copy(product[off:off+length], v)
	}
	return product, nil
}

// newWorkStorage allocates a transform-length working storage through the
// configured builder and loads src into its low positions, reduced modulo
// the active prime; the tail stays zero (both storage variants create
// zeroed).
func (c *Convolver) newWorkStorage(src []uint64, n int64, modulusIndex int) (storage.Storage[uint64], error) {
	s, err := c.builder.Create(n)
	if err != nil {
		return nil, err
	}
	reduced := make([]uint64, len(src))
	reduceInto(c.moduli.Kernel(modulusIndex), src, reduced)
	if err := s.SetArray(0, reduced); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// reduceInto copies src into dst reduced modulo the active prime; entries of
// dst past len(src) are left untouched. dst must be at least len(src) long.
func reduceInto(kernel *modarith.Kernel[uint64], src, dst []uint64) {
	mod := kernel.Modulus()
	for i, v := range src {
		dst[i] = v % mod
	}
}
