//go:build amd64

package cpufeat

import "golang.org/x/sys/cpu"

// The x86-64 tag set. x/sys/cpu probes CPUID once at package init, so the
// predicates here only read cached booleans.
func init() {
	featureOrder = []Feature{FeatureFMA, FeatureAVX, FeatureSSE3}
	detectors = map[Feature]detector{
		FeatureSSE3: func() bool { return cpu.X86.HasSSE3 },
		FeatureAVX:  func() bool { return cpu.X86.HasAVX },
		FeatureFMA:  func() bool { return cpu.X86.HasFMA },
	}
}
