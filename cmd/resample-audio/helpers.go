package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tphakala/go-stream-resampler"
)

type convertStats struct {
	inputFrames  int64
	outputFrames int64
}

// convert streams the source through a resampler into a WAV file.
func convert[F resampler.Float](src *pcmSource, outPath string, outRate, bits int, quality resampler.Quality, parallel bool) (stats *convertStats, err error) {
	r, err := resampler.NewTyped[F](&resampler.Config{
		InputRate:      src.rate,
		OutputRate:     outRate,
		Channels:       src.channels,
		Quality:        quality,
		EnableSIMD:     true,
		EnableParallel: parallel,
	})
	if err != nil {
		return nil, err
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	w, err := newWAVWriter(outFile, outRate, bits, src.channels)
	if err != nil {
		_ = outFile.Close()
		return nil, err
	}
	// The writer patches sizes into the header on Close, so a close
	// error on the success path must surface.
	defer func() {
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
		if closeErr := outFile.Close(); err == nil {
			err = closeErr
		}
	}()

	out := make([][]F, src.channels)
	for ch := range out {
		out[ch] = make([]F, r.OutputFramesMax())
	}
	intBuf := make([]int, r.OutputFramesMax()*src.channels)
	maxVal := pcmFullScale(bits)

	ratio := r.ResampleRatio()
	trim := newOutputTrimmer(int64(math.Round(float64(r.Latency()+1) * ratio)))
	stats = &convertStats{}

	emit := func(in [][]F) error {
		n, procErr := r.Process(in, out, nil)
		if procErr != nil {
			return procErr
		}
		from, to := trim.bounds(n)
		if to <= from {
			return nil
		}
		m := interleaveRange(out, intBuf, from, to, maxVal)
		stats.outputFrames += int64(to - from)
		return w.WriteSamples(intBuf[:m])
	}

	feeder := newChunkFeeder[F](src.channels, r.InputFramesNext())
	interleaved := make([]float64, decodeFrames*src.channels)
	for {
		n, readErr := src.read(interleaved)
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
		frames := n / src.channels
		stats.inputFrames += int64(frames)
		if err := feeder.push(interleaved[:frames*src.channels], emit); err != nil {
			return nil, err
		}
	}

	// Cap the stream at its exact length, then drain the kernel delay
	// with silence. The trimmer caps frames from this point on, so the
	// frames already written must be subtracted.
	remaining := int64(math.Round(float64(stats.inputFrames)*ratio)) - stats.outputFrames
	if remaining < 0 {
		remaining = 0
	}
	trim.limit(remaining)
	if err := feeder.flush(emit); err != nil {
		return nil, err
	}
	maxDrain := r.Latency()/r.InputFramesNext() + 2
	for i := 0; i < maxDrain && !trim.done(); i++ {
		if err := feeder.pushSilence(emit); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// chunkFeeder regroups arbitrary-length interleaved reads into the
// fixed per-channel chunks the resampler consumes.
type chunkFeeder[F resampler.Float] struct {
	chunk int
	fill  int
	bufs  [][]F
}

func newChunkFeeder[F resampler.Float](channels, chunk int) *chunkFeeder[F] {
	bufs := make([][]F, channels)
	for ch := range bufs {
		bufs[ch] = make([]F, chunk)
	}
	return &chunkFeeder[F]{chunk: chunk, bufs: bufs}
}

// push deinterleaves samples into the staging buffers, invoking emit
// once per completed chunk.
func (cf *chunkFeeder[F]) push(interleaved []float64, emit func([][]F) error) error {
	channels := len(cf.bufs)
	frames := len(interleaved) / channels

	for i := 0; i < frames; i++ {
		base := i * channels
		for ch := range cf.bufs {
			cf.bufs[ch][cf.fill] = F(interleaved[base+ch])
		}
		cf.fill++
		if cf.fill == cf.chunk {
			cf.fill = 0
			if err := emit(cf.bufs); err != nil {
				return err
			}
		}
	}
	return nil
}

// flush zero-pads and emits a partially filled chunk, if any.
func (cf *chunkFeeder[F]) flush(emit func([][]F) error) error {
	if cf.fill == 0 {
		return nil
	}
	for ch := range cf.bufs {
		clear(cf.bufs[ch][cf.fill:])
	}
	cf.fill = 0
	return emit(cf.bufs)
}

// pushSilence emits one all-zero chunk.
func (cf *chunkFeeder[F]) pushSilence(emit func([][]F) error) error {
	for ch := range cf.bufs {
		clear(cf.bufs[ch])
	}
	cf.fill = 0
	return emit(cf.bufs)
}

// outputTrimmer aligns the output stream with the input: it drops the
// initial kernel delay and, once the input length is known, caps the
// total frames passed through.
type outputTrimmer struct {
	skip      int64
	remaining int64
	limited   bool
}

func newOutputTrimmer(skip int64) *outputTrimmer {
	return &outputTrimmer{skip: skip}
}

// limit caps the total frames the trimmer will pass from now on.
func (t *outputTrimmer) limit(frames int64) {
	t.remaining = frames
	t.limited = true
}

// bounds maps a block of n produced frames to the [from, to) range that
// should be kept.
func (t *outputTrimmer) bounds(n int) (from, to int) {
	drop := t.skip
	if drop > int64(n) {
		drop = int64(n)
	}
	t.skip -= drop
	from = int(drop)

	avail := int64(n) - drop
	if t.limited && avail > t.remaining {
		avail = t.remaining
	}
	if t.limited {
		t.remaining -= avail
	}
	to = from + int(avail)
	return from, to
}

// done reports whether the capped stream is complete.
func (t *outputTrimmer) done() bool {
	return t.limited && t.remaining == 0
}

// interleaveRange interleaves frames [from, to) of the per-channel
// buffers into dst as clamped integer PCM, returning the samples
// written.
func interleaveRange[F resampler.Float](channels [][]F, dst []int, from, to int, maxVal float64) int {
	numCh := len(channels)
	idx := 0
	for i := from; i < to; i++ {
		for ch := 0; ch < numCh; ch++ {
			s := float64(channels[ch][i])
			if s > 1.0 {
				s = 1.0
			} else if s < -1.0 {
				s = -1.0
			}
			dst[idx] = int(s * maxVal)
			idx++
		}
	}
	return idx
}
