//go:build !amd64 && !arm64

package cpufeat

// Architectures without accelerated kernels have an empty tag set; the
// resampler falls back to the scalar path.
func init() {
	featureOrder = nil
	detectors = map[Feature]detector{}
}
