package ntt

// Strategy is the NTTStrategy protocol components C, D, E, and F all
// implement (spec §6): a forward transform and an inverse transform over a
// modulus selected by index, operating in place on an array view.
type Strategy interface {
	// Transform performs the forward NTT of data in place under modulus
	// modulusIndex (0, 1, or 2). len(data) must be a power of two (or,
	// for the factor-3 wrapper, 3*power-of-two).
	Transform(data []uint64, modulusIndex int) error

	// InverseTransform performs the inverse NTT of data in place under
	// modulus modulusIndex, including the final division by the transform
	// length. totalTransformLength is the full logical length of the
	// transform this call is part of (equal to len(data) except when a
	// factor-3 wrapper invokes a power-of-two sub-strategy on one third of
	// the data).
	InverseTransform(data []uint64, modulusIndex int, totalTransformLength int64) error
}
