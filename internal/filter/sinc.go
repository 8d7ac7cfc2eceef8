package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/tphakala/go-stream-resampler/internal/mathutil"
)

// Window selects the window function applied to the oversampled sinc.
type Window int

const (
	// WindowKaiser uses a Kaiser window with β derived from the requested
	// stopband attenuation.
	WindowKaiser Window = iota

	// WindowBlackmanHarris uses the minimum 4-term Blackman-Harris window
	// (~92 dB sidelobes).
	WindowBlackmanHarris
)

// Design bounds for SincSpec.Validate.
const (
	minSincLength       = 8
	maxSincLength       = 2048
	minOversampling     = 16
	maxOversampling     = 4096
	defaultAttenuation  = 100.0
	paddingRows         = 4 // extra phase rows for cubic phase interpolation
	phaseIndexShift     = 1 // rows are offset by one phase (row 1 = phase 0)
	rowNormalizationSum = 1.0
)

// SincSpec describes an oversampled windowed-sinc interpolation filter.
type SincSpec struct {
	// Length is the number of taps per phase. Must be even so the
	// interpolation history is a whole window.
	Length int

	// Oversampling is the number of sub-sample phases in the table.
	Oversampling int

	// Cutoff is the lowpass cutoff relative to the input Nyquist
	// frequency, in (0, 1].
	Cutoff float64

	// Window selects the window function.
	Window Window

	// Attenuation is the Kaiser design target in dB. Ignored for
	// Blackman-Harris. Zero selects a default.
	Attenuation float64
}

// Validate checks if the sinc design parameters are valid.
func (s *SincSpec) Validate() error {
	if s.Length < minSincLength || s.Length > maxSincLength {
		return fmt.Errorf("sinc length %d outside [%d, %d]", s.Length, minSincLength, maxSincLength)
	}
	if s.Length%2 != 0 {
		return fmt.Errorf("sinc length %d must be even", s.Length)
	}
	if s.Oversampling < minOversampling || s.Oversampling > maxOversampling {
		return fmt.Errorf("oversampling %d outside [%d, %d]", s.Oversampling, minOversampling, maxOversampling)
	}
	if s.Cutoff <= 0 || s.Cutoff > 1 {
		return fmt.Errorf("cutoff %f outside (0, 1]", s.Cutoff)
	}
	return nil
}

// MakeSincs generates the phase table for the given design.
//
// The result has Oversampling+4 rows of Length taps. Row r holds the
// interpolation kernel for sub-sample offset (r-1)/Oversampling, so rows
// 0 and Oversampling+1..Oversampling+3 pad the table for cubic phase
// interpolation without boundary branches in the hot loop. Each row is
// normalized to unit DC gain.
//
// Interpolating the input at position i+f (0 ≤ f < 1) is the dot product
// of the kernel for offset f with input[i-c : i-c+Length], c = Length/2-1.
func MakeSincs(spec SincSpec) ([][]float64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	length := spec.Length
	factor := spec.Oversampling
	cutoff := spec.Cutoff / 2 // relative to sample rate, Nyquist = 0.5

	// All kernel sample points fall on the oversampled grid
	// g = k*factor + factor + 1 - r, spanning [0, length*factor].
	// Evaluate the window once on that grid.
	grid := oversampledWindow(spec.Window, length*factor+1, spec.Attenuation)

	center := float64(length)/2 - 1
	rows := make([][]float64, factor+paddingRows)

	for r := range rows {
		row := make([]float64, length)
		phase := float64(r-phaseIndexShift) / float64(factor)

		for k := range length {
			g := k*factor + factor + phaseIndexShift - r
			if g < 0 || g >= len(grid) {
				continue // outside the window span
			}

			// Tap position relative to the interpolation point.
			x := float64(k) - center - phase
			row[k] = grid[g] * sincValue(cutoff, x)
		}

		normalizeRow(row)
		rows[r] = row
	}

	return rows, nil
}

// sincValue evaluates the scaled lowpass impulse response
// 2·fc·sinc(2·fc·x) at tap offset x.
func sincValue(cutoff, x float64) float64 {
	if math.Abs(x) < sincZeroThreshold {
		return windowNormalizationFactor * cutoff
	}
	arg := windowNormalizationFactor * math.Pi * cutoff * x
	return math.Sin(arg) / (math.Pi * x)
}

// oversampledWindow evaluates the selected window on a grid of n points.
func oversampledWindow(win Window, n int, attenuation float64) []float64 {
	switch win {
	case WindowBlackmanHarris:
		w := make([]float64, n)
		for i := range w {
			w[i] = 1.0
		}
		return window.BlackmanHarris(w)
	default:
		if attenuation <= 0 {
			attenuation = defaultAttenuation
		}
		beta := mathutil.KaiserBeta(attenuation)
		return KaiserWindow(n, beta)
	}
}

// normalizeRow scales a kernel row to unit DC gain.
func normalizeRow(row []float64) {
	sum := f64.Sum(row)
	if math.Abs(sum) > sincZeroThreshold {
		f64.Scale(row, row, rowNormalizationSum/sum)
	}
}
