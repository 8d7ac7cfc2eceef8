// Package engine implements the streaming windowed-sinc resampling core.
//
// The engine consumes fixed-size input chunks per channel and produces a
// ratio-dependent number of output frames, carrying a fractional read
// position and a sinc-length history across calls. All argument validation
// happens in the public package; the engine assumes well-formed calls.
package engine

import (
	"fmt"
	"math"
	"sync"

	"github.com/tphakala/go-stream-resampler/cpufeat"
	"github.com/tphakala/go-stream-resampler/internal/filter"
	"github.com/tphakala/go-stream-resampler/internal/kernel"
)

// Interpolation selects how values between the oversampled phase rows are
// computed.
type Interpolation int

const (
	// InterpCubic evaluates a Catmull-Rom polynomial across four phase
	// rows per tap. Best quality, one fused dot product per frame.
	InterpCubic Interpolation = iota

	// InterpLinear blends two adjacent phase rows. Two dot products per
	// frame, slightly lower quality than cubic.
	InterpLinear

	// InterpNearest uses the closest phase row directly. Cheapest; the
	// phase quantization error is bounded by the oversampling factor.
	InterpNearest
)

// outputMargin pads the worst-case output estimate against rounding.
const outputMargin = 2

// Spec configures a SincResampler.
type Spec struct {
	// Channels is the number of independent channels.
	Channels int

	// ChunkFrames is the fixed number of input frames consumed per call.
	ChunkFrames int

	// Ratio is the initial output/input sample-rate ratio.
	Ratio float64

	// MaxRatio is the highest ratio the caller may later set; it bounds
	// output buffer sizing. Values below Ratio are raised to Ratio.
	MaxRatio float64

	// SincLen is the interpolation kernel length in taps (even).
	SincLen int

	// Oversampling is the number of sub-sample phases in the kernel table.
	Oversampling int

	// Window selects the kernel window function.
	Window filter.Window

	// Attenuation is the Kaiser design target in dB.
	Attenuation float64

	// Cutoff is the lowpass cutoff relative to the input Nyquist, (0, 1].
	Cutoff float64

	// Interpolation selects the phase interpolation mode.
	Interpolation Interpolation

	// EnableSIMD permits accelerated kernels when a capability tag is
	// detected. Force pins the selection to one tag; forcing an
	// undetected tag fails construction with a capability fault.
	EnableSIMD bool
	Force      cpufeat.Feature

	// Provider overrides the host capability provider in tests.
	Provider cpufeat.Provider
}

// SincResampler is the streaming core for sample type F.
type SincResampler[F kernel.Float] struct {
	channels int
	chunk    int
	sincLen  int
	factor   int
	interp   Interpolation

	ops *kernel.Ops[F]
	tag cpufeat.Feature

	// rows[r] is the kernel for sub-sample offset (r-1)/factor.
	rows [][]F

	// Catmull-Rom coefficient tables per phase, built for InterpCubic.
	coefA, coefB, coefC, coefD [][]F

	ratio    float64
	step     float64 // input frames advanced per output frame
	maxRatio float64

	// pos is the fractional read position within the current chunk.
	// After a completed call it is below one input step (1/ratio), so it
	// can exceed 1 when downsampling.
	pos float64

	// buf holds, per channel, sincLen history frames followed by the
	// current chunk.
	buf [][]F
}

// New builds a SincResampler from the spec. The kernel table is designed
// once here; construction is the only allocating phase.
func New[F kernel.Float](spec Spec) (*SincResampler[F], error) {
	if spec.Channels < 1 {
		return nil, fmt.Errorf("engine: channels %d, need at least 1", spec.Channels)
	}
	if spec.ChunkFrames < 1 {
		return nil, fmt.Errorf("engine: chunk frames %d, need at least 1", spec.ChunkFrames)
	}
	if spec.Ratio <= 0 {
		return nil, fmt.Errorf("engine: ratio %f, need > 0", spec.Ratio)
	}

	provider := spec.Provider
	if provider == nil {
		provider = cpufeat.Host()
	}
	ops, tag, err := kernel.Select[F](spec.EnableSIMD, spec.Force, provider)
	if err != nil {
		return nil, err
	}

	rows64, err := filter.MakeSincs(filter.SincSpec{
		Length:       spec.SincLen,
		Oversampling: spec.Oversampling,
		Cutoff:       spec.Cutoff,
		Window:       spec.Window,
		Attenuation:  spec.Attenuation,
	})
	if err != nil {
		return nil, err
	}

	maxRatio := spec.MaxRatio
	if maxRatio < spec.Ratio {
		maxRatio = spec.Ratio
	}

	r := &SincResampler[F]{
		channels: spec.Channels,
		chunk:    spec.ChunkFrames,
		sincLen:  spec.SincLen,
		factor:   spec.Oversampling,
		interp:   spec.Interpolation,
		ops:      ops,
		tag:      tag,
		rows:     convertRows[F](rows64),
		ratio:    spec.Ratio,
		step:     1.0 / spec.Ratio,
		maxRatio: maxRatio,
		buf:      make([][]F, spec.Channels),
	}

	for ch := range r.buf {
		r.buf[ch] = make([]F, spec.SincLen+spec.ChunkFrames)
	}

	if r.interp == InterpCubic {
		r.buildCubicCoefs()
	}

	return r, nil
}

// InputFrames returns the fixed number of input frames consumed per call.
func (r *SincResampler[F]) InputFrames() int {
	return r.chunk
}

// OutputFramesNext returns the exact number of frames the next call will
// produce at the current ratio and phase. Pure; mutates nothing.
func (r *SincResampler[F]) OutputFramesNext() int {
	return int(math.Ceil((float64(r.chunk) - r.pos) * r.ratio))
}

// OutputFramesMax returns the worst-case frames any call can produce,
// given the highest ratio the resampler was sized for.
func (r *SincResampler[F]) OutputFramesMax() int {
	return int(math.Ceil(float64(r.chunk)*r.maxRatio)) + outputMargin
}

// Ratio returns the current output/input ratio.
func (r *SincResampler[F]) Ratio() float64 {
	return r.ratio
}

// SetRatio changes the ratio for subsequent frames. Bounds are enforced
// by the caller.
func (r *SincResampler[F]) SetRatio(ratio float64) {
	r.ratio = ratio
	r.step = 1.0 / ratio
}

// Latency returns the group delay introduced by the kernel, in input
// frames.
func (r *SincResampler[F]) Latency() int {
	return r.sincLen / 2
}

// Tag returns the capability tag the kernel selection was accounted
// against; cpufeat.FeatureNone means the scalar path.
func (r *SincResampler[F]) Tag() cpufeat.Feature {
	return r.tag
}

// Reset clears phase and history, keeping the kernel table and ratio.
func (r *SincResampler[F]) Reset() {
	r.pos = 0
	for ch := range r.buf {
		clear(r.buf[ch])
	}
}

// Process consumes exactly InputFrames frames from each input channel and
// writes OutputFramesNext frames to each output channel, returning that
// count. A nil active slice processes every channel; inactive channels
// are zero-filled and their history still advances so re-activation stays
// aligned. With parallel set, channels are interpolated on separate
// goroutines; per-channel state is disjoint so no locking is needed.
// Slice lengths are the caller's responsibility.
func (r *SincResampler[F]) Process(input, output [][]F, active []bool, parallel bool) int {
	frames := r.OutputFramesNext()

	for ch := 0; ch < r.channels; ch++ {
		copy(r.buf[ch][r.sincLen:], input[ch][:r.chunk])
	}

	if parallel && r.channels > 1 {
		var wg sync.WaitGroup
		for ch := 0; ch < r.channels; ch++ {
			wg.Add(1)
			go func(channel int) {
				defer wg.Done()
				r.runChannel(channel, output, active, frames)
			}(ch)
		}
		wg.Wait()
	} else {
		for ch := 0; ch < r.channels; ch++ {
			r.runChannel(ch, output, active, frames)
		}
	}

	// Advance the shared read position and roll history.
	r.pos += float64(frames)*r.step - float64(r.chunk)
	for ch := range r.buf {
		copy(r.buf[ch][:r.sincLen], r.buf[ch][r.chunk:])
	}

	return frames
}

// runChannel dispatches one channel: masked-off channels are zero-filled,
// active ones interpolated.
func (r *SincResampler[F]) runChannel(ch int, output [][]F, active []bool, frames int) {
	if active != nil && !active[ch] {
		clear(output[ch][:frames])
		return
	}
	r.processChannel(ch, output[ch][:frames])
}

// processChannel interpolates one channel's output frames. Frame positions
// are computed by multiplication rather than accumulation so the frame
// count always matches OutputFramesNext.
func (r *SincResampler[F]) processChannel(ch int, out []F) {
	buf := r.buf[ch]
	for n := range out {
		t := r.pos + float64(n)*r.step
		ti := int(t)
		if ti >= r.chunk {
			// Rounding guard; the position of the final frame can graze
			// the chunk boundary.
			ti = r.chunk - 1
		}
		out[n] = r.interpolate(buf[ti:ti+r.sincLen], t-float64(ti))
	}
}

// interpolate evaluates the kernel at sub-sample offset frac against a
// sinc-length history window.
func (r *SincResampler[F]) interpolate(hist []F, frac float64) F {
	pf := frac * float64(r.factor)
	p := int(pf)
	if p >= r.factor {
		p = r.factor - 1
	}
	x := F(pf - float64(p))

	switch r.interp {
	case InterpCubic:
		return r.ops.CubicInterpDot(hist, r.coefA[p], r.coefB[p], r.coefC[p], r.coefD[p], x)
	case InterpLinear:
		d0 := r.ops.DotProduct(hist, r.rows[p+1])
		d1 := r.ops.DotProduct(hist, r.rows[p+2])
		return d0 + x*(d1-d0)
	default:
		idx := p + 1
		if pf-float64(p) >= 0.5 {
			idx++
		}
		return r.ops.DotProduct(hist, r.rows[idx])
	}
}

// buildCubicCoefs precomputes per-phase Catmull-Rom polynomial
// coefficients from the padded phase rows, enabling the fused
// CubicInterpDot kernel:
//
//	p(x) = a + x*(b + x*(c + x*d))
func (r *SincResampler[F]) buildCubicCoefs() {
	n := r.sincLen
	r.coefA = make([][]F, r.factor)
	r.coefB = make([][]F, r.factor)
	r.coefC = make([][]F, r.factor)
	r.coefD = make([][]F, r.factor)

	for p := 0; p < r.factor; p++ {
		y0 := r.rows[p]
		y1 := r.rows[p+1]
		y2 := r.rows[p+2]
		y3 := r.rows[p+3]

		a := make([]F, n)
		b := make([]F, n)
		c := make([]F, n)
		d := make([]F, n)
		for k := 0; k < n; k++ {
			a[k] = y1[k]
			b[k] = (y2[k] - y0[k]) / 2
			c[k] = y0[k] - 2.5*y1[k] + 2*y2[k] - y3[k]/2
			d[k] = (y3[k]-y0[k])/2 + 1.5*(y1[k]-y2[k])
		}
		r.coefA[p] = a
		r.coefB[p] = b
		r.coefC[p] = c
		r.coefD[p] = d
	}
}

// convertRows converts the float64 design output to the engine's sample
// type.
func convertRows[F kernel.Float](rows [][]float64) [][]F {
	out := make([][]F, len(rows))
	for r, row := range rows {
		conv := make([]F, len(row))
		for i, v := range row {
			conv[i] = F(v)
		}
		out[r] = conv
	}
	return out
}
