//go:build arm64

package cpufeat

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// The aarch64 tag set. NEON (Advanced SIMD) is mandatory in AArch64 but is
// still routed through the detection table so that dispatch never assumes
// a feature without its predicate having been consulted.
func init() {
	featureOrder = []Feature{FeatureNEON}
	detectors = map[Feature]detector{
		FeatureNEON: detectNEON,
	}
}

func detectNEON() bool {
	// x/sys/cpu cannot read HWCAP on darwin; every Apple arm64 core has
	// Advanced SIMD, so report it directly there.
	if runtime.GOOS == "darwin" {
		return true
	}
	return cpu.ARM64.HasASIMD
}
