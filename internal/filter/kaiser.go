// Package filter provides windowed-sinc interpolation filter design for
// the resampling engine.
package filter

import (
	"math"

	"github.com/tphakala/go-stream-resampler/internal/mathutil"
)

const (
	// Window normalization
	windowNormalizationFactor = 2.0

	// Sinc function constants
	sincCenterTap     = 1.0
	sincZeroThreshold = 1e-10
)

// KaiserWindow generates a Kaiser window of the specified length and β
// parameter.
//
// The Kaiser window provides excellent control over the trade-off between
// main lobe width and sidelobe level in frequency domain. Higher β values
// give more stopband attenuation at the cost of a wider main lobe.
//
// The window is symmetric: w[i] = w[length-1-i].
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)

	if length == 1 {
		window[0] = sincCenterTap
		return window
	}

	// w[n] = I₀(β * sqrt(1 - ((n - α)/α)²)) / I₀(β)
	// where α = (N-1)/2 and N is the window length
	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		// Position relative to center: [-1, 1]
		x := (float64(n) - alpha) / alpha

		arg := beta * math.Sqrt(1.0-x*x)
		window[n] = mathutil.BesselI0(arg) / i0Beta
	}

	return window
}
