// Package apferr collects the flat, sentinel-style error taxonomy shared by
// every component of the arbitrary-precision engine: arithmetic, precision,
// overflow, transform-length, backing-storage, and invariant errors.
//
// Callers compare with errors.Is; none of these carry dynamic payloads of
// their own; a wrapping error (via fmt.Errorf("...: %w", ...)) attaches the
// detail (a filename, an offending length, ...).
package apferr

import "errors"

var (
	// ErrZeroDivisor marks a division by zero. modarith.Kernel.Divide does
	// not return it; it reports a zero divisor with ok == false.
	ErrZeroDivisor = errors.New("apfloat: division by zero")
	// ErrZerothRoot marks a request for an nth root with n == 0.
	// modarith.Kernel.NthRoot does not check n and does not return it.
	ErrZerothRoot = errors.New("apfloat: zeroth root is undefined")
	// ErrNegativeEvenRoot is returned for an even root of a negative number.
	ErrNegativeEvenRoot = errors.New("apfloat: even root of a negative number")
	// ErrInverseOfZero marks a request for the modular inverse of zero.
	// modarith.Kernel.Inverse does not return it; it reports that case with
	// ok == false.
	ErrInverseOfZero = errors.New("apfloat: inverse of zero is undefined")

	// ErrNonPositivePrecision is returned when a target precision is <= 0.
	ErrNonPositivePrecision = errors.New("apfloat: precision must be positive")
	// ErrUnboundedPrecision marks a request for infinite precision from an
	// operation that needs a bound. No function in this module returns it.
	ErrUnboundedPrecision = errors.New("apfloat: infinite precision requested for a transcendental")

	// ErrExponentOverflow marks an exponent beyond the representable range.
	// No function in this module returns it.
	ErrExponentOverflow = errors.New("apfloat: exponent overflow")

	// ErrTransformLengthExceeded is returned when a requested transform length exceeds a prime's ceiling.
	ErrTransformLengthExceeded = errors.New("apfloat: transform length exceeds modulus capacity")

	// ErrBackingStorage is returned when a disk-backed storage I/O operation fails.
	ErrBackingStorage = errors.New("apfloat: backing storage error")

	// ErrInvariant marks an internal assertion failure: an implementation bug, not caller error.
	ErrInvariant = errors.New("apfloat: internal invariant violated")
)
