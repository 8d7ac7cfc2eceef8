package resampler

// Quality selects a preset trade-off between fidelity and CPU cost.
type Quality int

const (
	// QualityQuick favors speed: short kernel, linear phase
	// interpolation. Suitable for preview and monitoring paths.
	QualityQuick Quality = iota

	// QualityLow is a small step up from Quick with a longer kernel.
	QualityLow

	// QualityMedium is the general-purpose preset.
	QualityMedium

	// QualityHigh targets production audio: long kernel, cubic phase
	// interpolation, stopband beyond 16-bit dynamic range.
	QualityHigh

	// QualityVeryHigh targets mastering-grade conversion at roughly
	// double the CPU cost of High.
	QualityVeryHigh
)

// Window selects the kernel window function.
type Window int

const (
	// WindowKaiser is the default; its shape follows the preset's
	// attenuation target.
	WindowKaiser Window = iota

	// WindowBlackmanHarris is a fixed-shape alternative with very low
	// sidelobes.
	WindowBlackmanHarris
)

// Interpolation selects how kernel values between the precomputed phases
// are obtained.
type Interpolation int

const (
	// InterpCubic fits a Catmull-Rom polynomial across four phases.
	InterpCubic Interpolation = iota

	// InterpLinear blends two adjacent phases.
	InterpLinear

	// InterpNearest snaps to the closest phase.
	InterpNearest
)

const (
	// defaultChunkFrames is the per-call input chunk when the
	// configuration leaves ChunkFrames zero.
	defaultChunkFrames = 1024

	// defaultMaxRatioRelative pins the ratio window to the original
	// ratio when the configuration leaves MaxRatioRelative zero.
	defaultMaxRatioRelative = 1.0

	// maxChannels bounds construction against absurd channel counts.
	maxChannels = 1024
)

// sincParams is the concrete kernel design behind a quality preset.
type sincParams struct {
	sincLen      int
	oversampling int
	window       Window
	attenuation  float64
	cutoffScale  float64
	interp       Interpolation
}

// qualityPresets maps each preset to its kernel design. Attenuation only
// applies to the Kaiser window.
var qualityPresets = map[Quality]sincParams{
	QualityQuick:    {sincLen: 32, oversampling: 128, window: WindowKaiser, attenuation: 70, cutoffScale: 0.85, interp: InterpLinear},
	QualityLow:      {sincLen: 64, oversampling: 128, window: WindowKaiser, attenuation: 80, cutoffScale: 0.88, interp: InterpLinear},
	QualityMedium:   {sincLen: 128, oversampling: 256, window: WindowKaiser, attenuation: 100, cutoffScale: 0.91, interp: InterpCubic},
	QualityHigh:     {sincLen: 256, oversampling: 256, window: WindowKaiser, attenuation: 120, cutoffScale: 0.93, interp: InterpCubic},
	QualityVeryHigh: {sincLen: 384, oversampling: 512, window: WindowBlackmanHarris, attenuation: 140, cutoffScale: 0.95, interp: InterpCubic},
}

// String returns the preset name.
func (q Quality) String() string {
	switch q {
	case QualityQuick:
		return "quick"
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	case QualityVeryHigh:
		return "very-high"
	default:
		return "unknown"
	}
}
