package ntt

// Table is the in-cache NTT strategy (component C): the whole transform
// array fits in memory and the butterflies run directly over a []uint64,
// adapted from _examples/luxfi-ringtail/gpu/gpu_ntt.go's
// BatchNTT.ForwardSingle/InverseSingle — same bit-reversal-permutation plus
// Cooley-Tukey/Gentleman-Sande butterfly structure, generalized from one
// hardcoded ring-LWE modulus to any of Moduli's three moduli, and from a
// primitive 2N-th root (negacyclic, ring-LWE) to a primitive N-th root
// (cyclic, zero-padded big-integer convolution).
type Table struct {
	moduli *Moduli
}

// NewTable builds a Table strategy over the given moduli.
func NewTable(moduli *Moduli) *Table {
	return &Table{moduli: moduli}
}

func (t *Table) Transform(data []uint64, modulusIndex int) error {
	n := int64(len(data))
	if err := t.moduli.validateLength(n, modulusIndex); err != nil {
		return err
	}
	kernel := t.moduli.Kernel(modulusIndex)
	table := t.moduli.getWTable(n, modulusIndex, false)

	bitReversePermute(data)

	for m := int64(2); m <= n; m <<= 1 {
		halfM := m >> 1
		step := n / m
		for k := int64(0); k < n; k += m {
			for j := int64(0); j < halfM; j++ {
				u := data[k+j]
				v := data[k+j+halfM]
				if j == 0 {
					// w = table.values[0] = 1: skip the modular multiply.
					data[k+j] = kernel.Add(u, v)
					data[k+j+halfM] = kernel.Subtract(u, v)
					continue
				}
				w := table.values[j*step]
				tw := kernel.Multiply(w, v)
				data[k+j] = kernel.Add(u, tw)
				data[k+j+halfM] = kernel.Subtract(u, tw)
			}
		}
	}
	return nil
}

func (t *Table) InverseTransform(data []uint64, modulusIndex int, totalTransformLength int64) error {
	n := int64(len(data))
	if err := t.moduli.validateLength(n, modulusIndex); err != nil {
		return err
	}
	kernel := t.moduli.Kernel(modulusIndex)
	table := t.moduli.getWTable(n, modulusIndex, true)

	for m := n; m >= 2; m >>= 1 {
		halfM := m >> 1
		step := n / m
		for k := int64(0); k < n; k += m {
			for j := int64(0); j < halfM; j++ {
				u := data[k+j]
				v := data[k+j+halfM]
				sum := kernel.Add(u, v)
				diff := kernel.Subtract(u, v)
				if j == 0 {
					data[k+j] = sum
					data[k+j+halfM] = diff
					continue
				}
				w := table.values[j*step]
				data[k+j] = sum
				data[k+j+halfM] = kernel.Multiply(w, diff)
			}
		}
	}

	bitReversePermute(data)

	inv, _ := kernel.Inverse(uint64(totalTransformLength))
	for i := range data {
		data[i] = kernel.Multiply(data[i], inv)
	}
	return nil
}
