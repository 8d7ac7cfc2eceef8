// Package kernel selects the inner-loop implementations used by the sinc
// engine for float32 and float64 samples.
//
// The accelerated implementations come from github.com/tphakala/simd. They
// are only ever selected after the corresponding capability tag's detection
// predicate has returned true for the current process; everything else runs
// on the scalar fallbacks defined here.
package kernel

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"

	"github.com/tphakala/go-stream-resampler/cpufeat"
)

// Float is the type constraint for supported sample types.
type Float interface {
	float32 | float64
}

// Ops provides the inner-loop operations for type F.
// Function pointers allow type-safe generic code while delegating
// to optimized type-specific implementations.
type Ops[F Float] struct {
	// DotProduct computes the dot product of two equal-length slices.
	DotProduct func(a, b []F) F

	// CubicInterpDot computes the fused cubic interpolation dot product:
	//   Σ hist[i] * (a[i] + x*(b[i] + x*(c[i] + x*d[i])))
	// where a..d hold per-tap polynomial coefficients. Used for phase
	// interpolation of the oversampled sinc table.
	CubicInterpDot func(hist, a, b, c, d []F, x F) F
}

// Pre-instantiated accelerated operations for each sample type.
var (
	simd32 = Ops[float32]{
		DotProduct:     f32.DotProductUnsafe,
		CubicInterpDot: f32.CubicInterpDot,
	}
	simd64 = Ops[float64]{
		DotProduct:     f64.DotProductUnsafe,
		CubicInterpDot: f64.CubicInterpDot,
	}
)

// simdOps returns the accelerated Ops instance for type F.
// The type switch happens at selection time, not in hot paths.
func simdOps[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&simd32).(*Ops[F])
		if !ok {
			panic("kernel: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&simd64).(*Ops[F])
		if !ok {
			panic("kernel: type assertion failed for float64")
		}
		return ops
	default:
		panic("kernel: unsupported float type")
	}
}

// Scalar returns the portable Ops instance for type F.
func Scalar[F Float]() *Ops[F] {
	return &Ops[F]{
		DotProduct:     scalarDot[F],
		CubicInterpDot: scalarCubicInterpDot[F],
	}
}

// Select picks the inner-loop implementation for the given configuration.
//
// When force names a tag, that tag's availability is checked against the
// provider and a *cpufeat.MissingFeatureError is returned if the predicate
// reports it absent; no accelerated code path is entered in that case.
// With force == cpufeat.FeatureNone, the preferred available tag on the
// provider is chosen, falling back to the scalar implementation when SIMD
// is disabled or no tag is available. The returned tag is the one the
// selection is accounted against (FeatureNone for scalar).
func Select[F Float](enableSIMD bool, force cpufeat.Feature, p cpufeat.Provider) (*Ops[F], cpufeat.Feature, error) {
	if force != cpufeat.FeatureNone {
		if !p.Detected(force) {
			return nil, cpufeat.FeatureNone, &cpufeat.MissingFeatureError{Feature: force}
		}
		return simdOps[F](), force, nil
	}

	if !enableSIMD {
		return Scalar[F](), cpufeat.FeatureNone, nil
	}

	for _, f := range cpufeat.Features() {
		if p.Detected(f) {
			return simdOps[F](), f, nil
		}
	}
	return Scalar[F](), cpufeat.FeatureNone, nil
}

func scalarDot[F Float](a, b []F) F {
	var sum F
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func scalarCubicInterpDot[F Float](hist, a, b, c, d []F, x F) F {
	var sum F
	for i := range hist {
		sum += hist[i] * (a[i] + x*(b[i]+x*(c[i]+x*d[i])))
	}
	return sum
}
