package resampler

import (
	"fmt"
	"math"
)

// NewCDToDAT builds a fixed 44.1 kHz to 48 kHz converter at high
// quality.
func NewCDToDAT(channels int) (*Resampler[float64], error) {
	return New(&Config{
		InputRate:  44100,
		OutputRate: 48000,
		Channels:   channels,
		Quality:    QualityHigh,
	})
}

// NewDATToCD builds a fixed 48 kHz to 44.1 kHz converter at high
// quality.
func NewDATToCD(channels int) (*Resampler[float64], error) {
	return New(&Config{
		InputRate:  48000,
		OutputRate: 44100,
		Channels:   channels,
		Quality:    QualityHigh,
	})
}

// NewVarispeed builds an adjustable unity-ratio resampler for clock
// drift compensation. The ratio can later be nudged anywhere within
// [1/maxRelative, maxRelative].
func NewVarispeed(sampleRate, channels int, maxRelative float64) (*Resampler[float64], error) {
	return New(&Config{
		InputRate:        sampleRate,
		OutputRate:       sampleRate,
		Channels:         channels,
		MaxRatioRelative: maxRelative,
		Adjustable:       true,
		Quality:          QualityMedium,
	})
}

// Resample converts a whole multi-channel buffer in one call, hiding the
// chunked streaming interface. The input is zero-padded past the kernel
// delay and the output trimmed so that frame m of the result corresponds
// to input time m*inputRate/outputRate.
func Resample(input [][]float64, inputRate, outputRate int, quality Quality) ([][]float64, error) {
	if len(input) == 0 {
		return nil, &InvalidChannelCountError{Channels: 0}
	}
	frames := len(input[0])
	for ch := 1; ch < len(input); ch++ {
		if len(input[ch]) != frames {
			return nil, fmt.Errorf("%w: input channel %d has %d frames, channel 0 has %d",
				ErrInvalidCall, ch, len(input[ch]), frames)
		}
	}

	r, err := New(&Config{
		InputRate:  inputRate,
		OutputRate: outputRate,
		Channels:   len(input),
		Quality:    quality,
		EnableSIMD: true,
	})
	if err != nil {
		return nil, err
	}

	ratio := r.ResampleRatio()
	expected := int(math.Round(float64(frames) * ratio))
	delay := r.Latency() + 1
	skip := int(math.Round(float64(delay) * ratio))

	chunk := r.InputFramesNext()
	chunks := (frames + delay + chunk - 1) / chunk

	padded := make([][]float64, len(input))
	for ch := range padded {
		padded[ch] = make([]float64, chunks*chunk)
		copy(padded[ch], input[ch])
	}

	in := make([][]float64, len(input))
	buf := make([][]float64, len(input))
	collected := make([][]float64, len(input))
	for ch := range buf {
		buf[ch] = make([]float64, r.OutputFramesMax())
	}

	for c := 0; c < chunks; c++ {
		for ch := range in {
			in[ch] = padded[ch][c*chunk : (c+1)*chunk]
		}
		n, err := r.Process(in, buf, nil)
		if err != nil {
			return nil, err
		}
		for ch := range collected {
			collected[ch] = append(collected[ch], buf[ch][:n]...)
		}
	}

	out := make([][]float64, len(input))
	for ch := range out {
		end := skip + expected
		if end > len(collected[ch]) {
			end = len(collected[ch])
		}
		out[ch] = collected[ch][skip:end]
	}
	return out, nil
}
