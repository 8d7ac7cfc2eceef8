package resampler

import (
	"fmt"
	"math"

	"github.com/tphakala/go-stream-resampler/cpufeat"
	"github.com/tphakala/go-stream-resampler/internal/engine"
	"github.com/tphakala/go-stream-resampler/internal/filter"
	"github.com/tphakala/go-stream-resampler/internal/mathutil"
)

// Float constrains the sample types the resampler can process.
type Float interface {
	float32 | float64
}

// Config describes a streaming resampler. Zero values select defaults
// where a default exists; InputRate, OutputRate and Channels are always
// required.
type Config struct {
	// InputRate and OutputRate are the nominal sample rates in Hz.
	InputRate  int
	OutputRate int

	// Ratio overrides the OutputRate/InputRate ratio when non-zero.
	// Useful when the true ratio is not a rational of the nominal rates,
	// as in clock drift compensation.
	Ratio float64

	// MaxRatioRelative bounds later ratio adjustments to
	// [ratio/MaxRatioRelative, ratio*MaxRatioRelative]. The zero value
	// is treated as 1, which leaves no adjustment head-room: only the
	// original ratio is reachable. Any explicit value below 1 fails
	// construction with InvalidRelativeRatioError.
	MaxRatioRelative float64

	// Channels is the number of independent channels.
	Channels int

	// Adjustable permits SetResampleRatio after construction. A
	// fixed-ratio resampler rejects every adjustment attempt.
	Adjustable bool

	// ChunkFrames is the fixed number of input frames consumed per
	// Process call. Zero selects a 1024-frame chunk.
	ChunkFrames int

	// Quality selects the kernel design preset.
	Quality Quality

	// SincLen, Oversampling, Window, Attenuation and Interpolation
	// override individual preset parameters when non-zero. Setting
	// Attenuation without SincLen also refits the kernel length to the
	// requested stopband. Most callers should rely on Quality alone.
	SincLen       int
	Oversampling  int
	Window        Window
	Attenuation   float64
	Interpolation Interpolation

	// WindowSet and InterpolationSet mark the corresponding override as
	// intentional, since their zero values are valid selections.
	WindowSet        bool
	InterpolationSet bool

	// EnableSIMD permits vectorized kernels when the host supports them.
	EnableSIMD bool

	// ForceFeature pins kernel selection to one capability tag.
	// Construction fails with a missing-feature fault when the host
	// does not detect the tag. FeatureNone means automatic selection.
	ForceFeature cpufeat.Feature

	// EnableParallel processes channels on separate goroutines.
	EnableParallel bool

	// provider overrides host capability detection in tests.
	provider cpufeat.Provider
}

// Validate checks the configuration without building anything.
func (c *Config) Validate() error {
	ratio := c.Ratio
	if ratio == 0 && c.InputRate > 0 {
		ratio = float64(c.OutputRate) / float64(c.InputRate)
	}
	maxRel := c.MaxRatioRelative
	if maxRel == 0 {
		maxRel = defaultMaxRatioRelative
	}
	if err := validateConstruction(c.InputRate, c.OutputRate, ratio, maxRel, c.Channels); err != nil {
		return err
	}
	if c.Channels > maxChannels {
		return &InvalidChannelCountError{Channels: c.Channels}
	}
	return nil
}

// Resampler converts a stream of F samples between two rates, consuming
// fixed-size input chunks. Methods are not safe for concurrent use on
// the same instance.
type Resampler[F Float] struct {
	core *engine.SincResampler[F]

	channels      int
	originalRatio float64
	maxRelative   float64
	adjustable    bool
	parallel      bool
}

// New builds a float64 resampler. Most applications want this entry
// point; NewFloat32 halves memory traffic for float32 pipelines.
func New(config *Config) (*Resampler[float64], error) {
	return NewTyped[float64](config)
}

// NewFloat32 builds a float32 resampler.
func NewFloat32(config *Config) (*Resampler[float32], error) {
	return NewTyped[float32](config)
}

// NewTyped builds a resampler for any supported sample type.
func NewTyped[F Float](config *Config) (*Resampler[F], error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	ratio := config.Ratio
	if ratio == 0 {
		ratio = float64(config.OutputRate) / float64(config.InputRate)
	}
	maxRel := config.MaxRatioRelative
	if maxRel == 0 {
		maxRel = defaultMaxRatioRelative
	}
	chunk := config.ChunkFrames
	if chunk == 0 {
		chunk = defaultChunkFrames
	}

	params, ok := qualityPresets[config.Quality]
	if !ok {
		return nil, fmt.Errorf("%w: unknown quality preset %d", ErrInvalidConfig, config.Quality)
	}
	if config.SincLen > 0 {
		params.sincLen = config.SincLen
	}
	if config.Oversampling > 0 {
		params.oversampling = config.Oversampling
	}
	if config.WindowSet {
		params.window = config.Window
	}
	if config.Attenuation > 0 {
		params.attenuation = config.Attenuation
		if config.SincLen == 0 {
			// Fit the kernel length to the requested attenuation within
			// the preset's transition band.
			transitionBW := (1 - params.cutoffScale) / 2
			params.sincLen = mathutil.EstimateSincLength(config.Attenuation, transitionBW)
		}
	}
	if config.InterpolationSet {
		params.interp = config.Interpolation
	}

	// The lowpass must stay below the narrower Nyquist across the whole
	// adjustable ratio window, so the cutoff follows the lowest reachable
	// ratio.
	minRatio := ratio / maxRel
	cutoff := params.cutoffScale * math.Min(1.0, minRatio)

	core, err := engine.New[F](engine.Spec{
		Channels:      config.Channels,
		ChunkFrames:   chunk,
		Ratio:         ratio,
		MaxRatio:      ratio * maxRel,
		SincLen:       params.sincLen,
		Oversampling:  params.oversampling,
		Window:        engineWindow(params.window),
		Attenuation:   params.attenuation,
		Cutoff:        cutoff,
		Interpolation: engineInterp(params.interp),
		EnableSIMD:    config.EnableSIMD,
		Force:         config.ForceFeature,
		Provider:      config.provider,
	})
	if err != nil {
		return nil, err
	}

	return &Resampler[F]{
		core:          core,
		channels:      config.Channels,
		originalRatio: ratio,
		maxRelative:   maxRel,
		adjustable:    config.Adjustable,
		parallel:      config.EnableParallel,
	}, nil
}

// Process consumes exactly InputFramesNext frames from every input
// channel and writes OutputFramesNext frames to every output channel,
// returning the frames written. A nil mask processes all channels;
// masked-off channels produce zeros while staying time-aligned.
//
// All validation happens before any state changes, so a failed call
// leaves the stream intact and can be retried with corrected arguments.
func (r *Resampler[F]) Process(input, output [][]F, mask []bool) (int, error) {
	if err := validateChannels(input, output, mask, r.channels); err != nil {
		return 0, err
	}
	if err := validateBufferSizes(input, output, r.core.InputFrames(), r.core.OutputFramesNext()); err != nil {
		return 0, err
	}
	return r.core.Process(input, output, mask, r.parallel), nil
}

// SetResampleRatio changes the conversion ratio for subsequent calls.
// The resampler must have been constructed with Adjustable, and the new
// ratio must stay within the relative window fixed at construction.
func (r *Resampler[F]) SetResampleRatio(ratio float64) error {
	if err := validateRatioUpdate(ratio, r.originalRatio, r.maxRelative, r.adjustable); err != nil {
		return err
	}
	r.core.SetRatio(ratio)
	return nil
}

// ResampleRatio returns the current conversion ratio.
func (r *Resampler[F]) ResampleRatio() float64 {
	return r.core.Ratio()
}

// OriginalRatio returns the ratio fixed at construction, the center of
// the adjustment window.
func (r *Resampler[F]) OriginalRatio() float64 {
	return r.originalRatio
}

// Channels returns the channel count fixed at construction.
func (r *Resampler[F]) Channels() int {
	return r.channels
}

// InputFramesNext returns the frames the next Process call consumes per
// channel. The value is constant for the life of the resampler.
func (r *Resampler[F]) InputFramesNext() int {
	return r.core.InputFrames()
}

// OutputFramesNext returns the exact frames the next Process call will
// produce per channel.
func (r *Resampler[F]) OutputFramesNext() int {
	return r.core.OutputFramesNext()
}

// OutputFramesMax returns the worst-case frames any Process call can
// produce, suitable for sizing reusable output buffers.
func (r *Resampler[F]) OutputFramesMax() int {
	return r.core.OutputFramesMax()
}

// Latency returns the kernel group delay in input frames.
func (r *Resampler[F]) Latency() int {
	return r.core.Latency()
}

// KernelTag returns the capability tag of the selected compute kernel;
// cpufeat.FeatureNone means the portable scalar path.
func (r *Resampler[F]) KernelTag() cpufeat.Feature {
	return r.core.Tag()
}

// Reset clears all stream state. The ratio keeps its current value.
func (r *Resampler[F]) Reset() {
	r.core.Reset()
}

func engineWindow(w Window) filter.Window {
	if w == WindowBlackmanHarris {
		return filter.WindowBlackmanHarris
	}
	return filter.WindowKaiser
}

func engineInterp(i Interpolation) engine.Interpolation {
	switch i {
	case InterpLinear:
		return engine.InterpLinear
	case InterpNearest:
		return engine.InterpNearest
	default:
		return engine.InterpCubic
	}
}
