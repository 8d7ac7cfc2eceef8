package resampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-stream-resampler/cpufeat"
	"github.com/tphakala/go-stream-resampler/internal/testutil"
)

const (
	testChunk    = 256
	testSineFreq = 0.01
)

// testConfig returns a small, fast configuration for contract tests.
func testConfig() *Config {
	return &Config{
		InputRate:    44100,
		OutputRate:   48000,
		Channels:     2,
		ChunkFrames:  testChunk,
		Quality:      QualityQuick,
		SincLen:      32,
		Oversampling: 64,
	}
}

// feedChunk runs one valid Process call with a shared sine across all
// channels and returns channel 0's output.
func feedChunk(t *testing.T, r *Resampler[float64], chunkIndex int) []float64 {
	t.Helper()

	sine := testutil.Sine((chunkIndex+1)*testChunk, testSineFreq, 1.0)
	chunk := sine[chunkIndex*testChunk:]

	in := [][]float64{chunk, chunk}
	out := [][]float64{
		make([]float64, r.OutputFramesMax()),
		make([]float64, r.OutputFramesMax()),
	}

	want := r.OutputFramesNext()
	n, err := r.Process(in, out, nil)
	require.NoError(t, err)
	require.Equal(t, want, n, "chunk %d: predictor disagrees with Process", chunkIndex)
	return out[0][:n]
}

// TestNew_ConstructionFaults verifies the typed construction errors.
func TestNew_ConstructionFaults(t *testing.T) {
	t.Run("nil_config", func(t *testing.T) {
		r, err := New(nil)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("zero_input_rate", func(t *testing.T) {
		cfg := testConfig()
		cfg.InputRate = 0
		_, err := New(cfg)

		var rate *InvalidSampleRateError
		require.ErrorAs(t, err, &rate)
		assert.Equal(t, 0, rate.Input)
		assert.Equal(t, 48000, rate.Output)
	})

	t.Run("negative_ratio_override", func(t *testing.T) {
		cfg := testConfig()
		cfg.Ratio = -1.5
		_, err := New(cfg)

		var ratio *InvalidRatioError
		require.ErrorAs(t, err, &ratio)
		assert.Equal(t, -1.5, ratio.Ratio)
	})

	t.Run("relative_ratio_below_one", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxRatioRelative = 0.5
		_, err := New(cfg)

		var rel *InvalidRelativeRatioError
		require.ErrorAs(t, err, &rel)
		assert.Equal(t, 0.5, rel.Ratio)
	})

	t.Run("zero_channels", func(t *testing.T) {
		cfg := testConfig()
		cfg.Channels = 0
		_, err := New(cfg)

		var ch *InvalidChannelCountError
		require.ErrorAs(t, err, &ch)
		assert.Equal(t, 0, ch.Channels)
	})

	t.Run("absurd_channels", func(t *testing.T) {
		cfg := testConfig()
		cfg.Channels = maxChannels + 1
		_, err := New(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

// TestNew_Defaults verifies ratio derivation and the default chunk size.
func TestNew_Defaults(t *testing.T) {
	r, err := New(&Config{
		InputRate:  44100,
		OutputRate: 48000,
		Channels:   2,
		Quality:    QualityQuick,
	})
	require.NoError(t, err)

	assert.Equal(t, defaultChunkFrames, r.InputFramesNext())
	assert.InDelta(t, 48000.0/44100.0, r.ResampleRatio(), 1e-12)
	assert.Equal(t, r.ResampleRatio(), r.OriginalRatio())
	assert.Equal(t, 2, r.Channels())

	// ceil(1024 * 48000/44100) frames on the first call.
	want := int(math.Ceil(float64(defaultChunkFrames) * 48000.0 / 44100.0))
	assert.Equal(t, want, r.OutputFramesNext())
}

// TestNew_AttenuationRefitsKernel verifies that an attenuation override
// without an explicit kernel length resizes the kernel to match.
func TestNew_AttenuationRefitsKernel(t *testing.T) {
	mk := func(att float64) *Resampler[float64] {
		cfg := testConfig()
		cfg.SincLen = 0
		cfg.Oversampling = 0
		cfg.Attenuation = att
		r, err := New(cfg)
		require.NoError(t, err)
		return r
	}

	low := mk(60)
	high := mk(140)
	assert.Greater(t, high.Latency(), low.Latency(),
		"more stopband attenuation needs a longer kernel")

	// An explicit length wins over the refit.
	cfg := testConfig()
	cfg.Attenuation = 140
	r, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.SincLen/2, r.Latency())
}

// TestResampler_StreamCounts verifies frame accounting over a stream.
func TestResampler_StreamCounts(t *testing.T) {
	r, err := New(testConfig())
	require.NoError(t, err)

	total := 0
	const chunks = 30
	for c := 0; c < chunks; c++ {
		out := feedChunk(t, r, c)
		testutil.AssertNoNaNOrInf(t, out, "chunk %d", c)
		total += len(out)
	}

	expected := float64(chunks*testChunk) * 48000.0 / 44100.0
	assert.InDelta(t, expected, float64(total), 1.5)
}

// TestResampler_SetResampleRatio covers the adjustment contract end to
// end.
func TestResampler_SetResampleRatio(t *testing.T) {
	t.Run("adjustable_within_window", func(t *testing.T) {
		cfg := testConfig()
		cfg.Adjustable = true
		cfg.MaxRatioRelative = 1.1
		r, err := New(cfg)
		require.NoError(t, err)

		target := r.OriginalRatio() * 1.05
		require.NoError(t, r.SetResampleRatio(target))
		assert.Equal(t, target, r.ResampleRatio())

		// The new ratio drives the very next call.
		out := feedChunk(t, r, 0)
		assert.Equal(t, int(math.Ceil(float64(testChunk)*target)), len(out))
	})

	t.Run("adjustable_out_of_window", func(t *testing.T) {
		cfg := testConfig()
		cfg.Adjustable = true
		cfg.MaxRatioRelative = 1.1
		r, err := New(cfg)
		require.NoError(t, err)

		before := r.ResampleRatio()
		err = r.SetResampleRatio(before * 1.2)

		var oob *RatioOutOfBoundsError
		require.ErrorAs(t, err, &oob)
		assert.Equal(t, before*1.2, oob.Provided)
		assert.Equal(t, r.OriginalRatio(), oob.Original)
		assert.Equal(t, 1.1, oob.MaxRelativeRatio)
		assert.Equal(t, before, r.ResampleRatio(), "failed adjustment must not change the ratio")
	})

	t.Run("default_window_admits_only_original", func(t *testing.T) {
		cfg := testConfig()
		cfg.Adjustable = true // MaxRatioRelative left zero
		r, err := New(cfg)
		require.NoError(t, err)

		require.NoError(t, r.SetResampleRatio(r.OriginalRatio()))

		var oob *RatioOutOfBoundsError
		err = r.SetResampleRatio(r.OriginalRatio() * 1.001)
		require.ErrorAs(t, err, &oob)
		assert.Equal(t, 1.0, oob.MaxRelativeRatio)
	})

	t.Run("fixed_ratio_rejects", func(t *testing.T) {
		r, err := New(testConfig())
		require.NoError(t, err)

		before := r.ResampleRatio()
		assert.ErrorIs(t, r.SetResampleRatio(before), ErrSyncNotAdjustable,
			"even the current ratio is rejected on a fixed resampler")
		assert.Equal(t, before, r.ResampleRatio())
	})
}

// TestResampler_WrongChannelsLeavesStateUntouched verifies that a
// rejected call neither consumes input nor advances the stream: after
// the fault, the instance behaves exactly like a fresh one.
func TestResampler_WrongChannelsLeavesStateUntouched(t *testing.T) {
	r, err := New(testConfig())
	require.NoError(t, err)
	fresh, err := New(testConfig())
	require.NoError(t, err)

	threeCh := [][]float64{
		make([]float64, testChunk),
		make([]float64, testChunk),
		make([]float64, testChunk),
	}
	out := [][]float64{
		make([]float64, r.OutputFramesMax()),
		make([]float64, r.OutputFramesMax()),
	}

	n, err := r.Process(threeCh, out, nil)
	assert.Zero(t, n)

	var wrong *WrongInputChannelsError
	require.ErrorAs(t, err, &wrong)
	assert.Equal(t, 2, wrong.Expected)
	assert.Equal(t, 3, wrong.Actual)

	// Same stream from here on must match a never-faulted instance.
	for c := 0; c < 4; c++ {
		got := feedChunk(t, r, c)
		want := feedChunk(t, fresh, c)
		require.Equal(t, want, got, "chunk %d diverged after rejected call", c)
	}
}

// TestResampler_ShortOutputBufferCitesChannel verifies the per-channel
// buffer check and that the fault reports the offending channel.
func TestResampler_ShortOutputBufferCitesChannel(t *testing.T) {
	r, err := New(testConfig())
	require.NoError(t, err)

	need := r.OutputFramesNext()
	in := [][]float64{
		make([]float64, testChunk),
		make([]float64, testChunk),
	}
	out := [][]float64{
		make([]float64, need),
		make([]float64, need-1), // one frame short
	}

	n, err := r.Process(in, out, nil)
	assert.Zero(t, n)

	var short *InsufficientOutputBufferError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 1, short.Channel)
	assert.Equal(t, need, short.Expected)
	assert.Equal(t, need-1, short.Actual)

	// The rejected call must not have advanced the stream.
	assert.Equal(t, need, r.OutputFramesNext())
}

// TestResampler_MaskZeroesChannel verifies masked processing at the
// public surface.
func TestResampler_MaskZeroesChannel(t *testing.T) {
	r, err := New(testConfig())
	require.NoError(t, err)

	sine := testutil.Sine(testChunk, testSineFreq, 1.0)
	in := [][]float64{sine, sine}
	out := [][]float64{
		make([]float64, r.OutputFramesMax()),
		make([]float64, r.OutputFramesMax()),
	}

	n, err := r.Process(in, out, []bool{true, false})
	require.NoError(t, err)

	nonzero := false
	for i := 0; i < n; i++ {
		assert.Zero(t, out[1][i], "masked channel frame %d", i)
		if out[0][i] != 0 {
			nonzero = true
		}
	}
	assert.True(t, nonzero, "active channel should carry signal")

	t.Run("wrong_mask_length", func(t *testing.T) {
		_, err := r.Process(in, out, []bool{true})
		var wrong *WrongMaskChannelsError
		require.ErrorAs(t, err, &wrong)
		assert.Equal(t, 2, wrong.Expected)
		assert.Equal(t, 1, wrong.Actual)
	})
}

// TestResampler_ForcedFeature covers construction against a fake
// capability provider.
func TestResampler_ForcedFeature(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableSIMD = true
		cfg.ForceFeature = cpufeat.FeatureAVX
		cfg.provider = cpufeat.StaticProvider{}

		missing := cfg.RequiredCapabilityMissing()
		require.NotNil(t, missing)
		assert.Equal(t, cpufeat.FeatureAVX, missing.Feature)
		assert.Equal(t, "missing CPU feature `avx`", missing.Error())

		r, err := New(cfg)
		assert.Nil(t, r)

		var fault *cpufeat.MissingFeatureError
		require.ErrorAs(t, err, &fault)
		assert.Equal(t, cpufeat.FeatureAVX, fault.Feature)
	})

	t.Run("available", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableSIMD = true
		cfg.ForceFeature = cpufeat.FeatureAVX
		cfg.provider = cpufeat.StaticProvider{cpufeat.FeatureAVX: true}

		assert.Nil(t, cfg.RequiredCapabilityMissing())

		r, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, cpufeat.FeatureAVX, r.KernelTag())
	})

	t.Run("no_force_never_missing", func(t *testing.T) {
		cfg := testConfig()
		assert.Nil(t, cfg.RequiredCapabilityMissing())
	})
}

// TestCapabilityAvailable verifies agreement with the cpufeat host view.
func TestCapabilityAvailable(t *testing.T) {
	for _, f := range cpufeat.Features() {
		assert.Equal(t, cpufeat.Host().Detected(f), CapabilityAvailable(f), "%v", f)
	}
	assert.False(t, CapabilityAvailable(cpufeat.Feature(99)))
}

// TestResampler_ResetMatchesFresh verifies Reset at the public surface.
func TestResampler_ResetMatchesFresh(t *testing.T) {
	r, err := New(testConfig())
	require.NoError(t, err)
	fresh, err := New(testConfig())
	require.NoError(t, err)

	for c := 0; c < 3; c++ {
		feedChunk(t, r, c)
	}
	r.Reset()

	for c := 0; c < 3; c++ {
		got := feedChunk(t, r, c)
		want := feedChunk(t, fresh, c)
		require.Equal(t, want, got, "chunk %d", c)
	}
}

// TestNewFloat32 verifies the float32 surface end to end.
func TestNewFloat32(t *testing.T) {
	r, err := NewFloat32(testConfig())
	require.NoError(t, err)

	in := [][]float32{
		make([]float32, testChunk),
		make([]float32, testChunk),
	}
	out := [][]float32{
		make([]float32, r.OutputFramesMax()),
		make([]float32, r.OutputFramesMax()),
	}

	n, err := r.Process(in, out, nil)
	require.NoError(t, err)
	assert.Equal(t, int(math.Ceil(float64(testChunk)*48000.0/44100.0)), n)
}

// TestResampler_ParallelMatchesSequential verifies that EnableParallel
// changes nothing but scheduling.
func TestResampler_ParallelMatchesSequential(t *testing.T) {
	seqCfg := testConfig()
	parCfg := testConfig()
	parCfg.EnableParallel = true

	seq, err := New(seqCfg)
	require.NoError(t, err)
	par, err := New(parCfg)
	require.NoError(t, err)

	for c := 0; c < 4; c++ {
		got := feedChunk(t, par, c)
		want := feedChunk(t, seq, c)
		require.Equal(t, want, got, "chunk %d", c)
	}
}

// TestConfig_Validate verifies the standalone validator agrees with New.
func TestConfig_Validate(t *testing.T) {
	good := testConfig()
	assert.NoError(t, good.Validate())

	bad := testConfig()
	bad.InputRate = -8000
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}
