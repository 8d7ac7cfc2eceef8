// Package resampler provides streaming, multi-channel sample rate
// conversion with an adjustable ratio.
//
// A Resampler consumes fixed-size input chunks and produces a
// ratio-dependent number of output frames per call, carrying filter
// state across calls so arbitrarily long streams can be converted
// chunk by chunk. The conversion uses an oversampled windowed-sinc
// kernel with polynomial phase interpolation; quality presets from
// QualityQuick to QualityVeryHigh trade kernel length against CPU cost.
//
// Resamplers constructed with Adjustable accept SetResampleRatio calls
// within a relative window fixed at construction, which is the basis
// for clock drift compensation between independently clocked devices.
//
// Compute kernels are selected per host capability (SSE3, AVX, FMA on
// amd64; NEON on arm64) through the cpufeat package, with a portable
// scalar fallback. All faults are typed: construction faults unwrap to
// ErrInvalidConfig, per-call faults to ErrInvalidCall, and a failed
// Process or SetResampleRatio call never changes stream state.
//
// Basic usage:
//
//	r, err := resampler.New(&resampler.Config{
//		InputRate:  44100,
//		OutputRate: 48000,
//		Channels:   2,
//		Quality:    resampler.QualityHigh,
//		EnableSIMD: true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	in := [][]float64{left, right} // r.InputFramesNext() frames each
//	out := make([][]float64, 2)
//	for ch := range out {
//		out[ch] = make([]float64, r.OutputFramesMax())
//	}
//	n, err := r.Process(in, out, nil)
package resampler
