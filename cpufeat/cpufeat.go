// Package cpufeat identifies the SIMD instruction-set extensions available
// on the running processor.
//
// Each supported extension is represented by a [Feature] tag. The set of
// tags is closed per target architecture: the architecture-specific files
// in this package register each tag's detection predicate in a dispatch
// table at init time, so porting to a new architecture means adding a
// table entry rather than new branches.
//
// Detection reads capability bits exposed by golang.org/x/sys/cpu, which
// probes the processor once at process start. Results are immutable for
// the lifetime of the process, so callers may cache them freely, and all
// functions in this package are safe for concurrent use.
package cpufeat

import "fmt"

// Feature identifies a CPU feature used for resampler kernel dispatch.
type Feature int

const (
	// FeatureNone is the zero value. It names no extension and is never
	// reported available; kernel selection treats it as "automatic".
	FeatureNone Feature = iota

	// FeatureSSE3 is the x86-64 SSE3 extension.
	FeatureSSE3

	// FeatureAVX is the x86-64 AVX extension.
	FeatureAVX

	// FeatureFMA is the x86-64 fused multiply-add extension.
	FeatureFMA

	// FeatureNEON is the aarch64 Advanced SIMD (NEON) extension.
	FeatureNEON
)

// featureNames gives the stable textual name of every tag, independent of
// the architecture the binary was built for. Diagnostics must be able to
// name a tag that does not exist on the local platform.
var featureNames = map[Feature]string{
	FeatureNone: "none",
	FeatureSSE3: "sse3",
	FeatureAVX:  "avx",
	FeatureFMA:  "fma",
	FeatureNEON: "neon",
}

// detector reports whether one feature is present on the host.
type detector func() bool

// detectors maps each tag in this architecture's closed set to its
// detection predicate. Populated by the build-tagged files; tags absent
// from the table are never reported available here.
var detectors = map[Feature]detector{}

// featureOrder lists this architecture's tags from most to least preferred
// for kernel dispatch.
var featureOrder []Feature

// String returns the stable lowercase name of the feature.
func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return "unknown"
}

// Features returns the closed set of tags for this architecture, ordered
// from most to least preferred. The returned slice is a copy.
func Features() []Feature {
	out := make([]Feature, len(featureOrder))
	copy(out, featureOrder)
	return out
}

// Provider reports per-tag capability of a host. The package's real
// provider reads immutable process state; tests substitute a fake that
// reports arbitrary availability.
type Provider interface {
	Detected(Feature) bool
}

type hostProvider struct{}

func (hostProvider) Detected(f Feature) bool {
	detect, ok := detectors[f]
	return ok && detect()
}

// Host returns the Provider backed by the running processor.
func Host() Provider {
	return hostProvider{}
}

// Available reports whether the feature is detected on the running
// processor. Tags outside this architecture's set are always unavailable.
func Available(f Feature) bool {
	return hostProvider{}.Detected(f)
}

// StaticProvider is a Provider with fixed answers. It is intended for
// tests that need a host reporting arbitrary tag availability.
type StaticProvider map[Feature]bool

func (p StaticProvider) Detected(f Feature) bool {
	return p[f]
}

// Missing returns a MissingFeatureError if f is not available on the
// running processor, and nil otherwise. Intended for diagnostics and
// telemetry; kernel selection constructs the error itself.
func Missing(f Feature) *MissingFeatureError {
	if Available(f) {
		return nil
	}
	return &MissingFeatureError{Feature: f}
}

// MissingFeatureError is returned when a code path requires a CPU feature
// that the running processor does not support.
type MissingFeatureError struct {
	// Feature is the tag whose detection predicate returned false.
	Feature Feature
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing CPU feature `%s`", e.Feature)
}
