package resampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-stream-resampler/internal/testutil"
)

// TestNewCDToDAT verifies the fixed 44.1k to 48k constructor.
func TestNewCDToDAT(t *testing.T) {
	r, err := NewCDToDAT(2)
	require.NoError(t, err)

	assert.InDelta(t, 48000.0/44100.0, r.ResampleRatio(), 1e-12)
	assert.Equal(t, 2, r.Channels())
	assert.ErrorIs(t, r.SetResampleRatio(1.0), ErrSyncNotAdjustable)
}

// TestNewDATToCD verifies the fixed 48k to 44.1k constructor.
func TestNewDATToCD(t *testing.T) {
	r, err := NewDATToCD(1)
	require.NoError(t, err)

	assert.InDelta(t, 44100.0/48000.0, r.ResampleRatio(), 1e-12)
	assert.Less(t, r.OutputFramesNext(), r.InputFramesNext())
}

// TestNewVarispeed verifies the drift compensation constructor.
func TestNewVarispeed(t *testing.T) {
	r, err := NewVarispeed(48000, 2, 1.1)
	require.NoError(t, err)

	assert.Equal(t, 1.0, r.OriginalRatio())

	// A typical drift correction is a fraction of a percent.
	require.NoError(t, r.SetResampleRatio(1.0005))
	assert.Equal(t, 1.0005, r.ResampleRatio())

	var oob *RatioOutOfBoundsError
	assert.ErrorAs(t, r.SetResampleRatio(1.2), &oob)
}

// TestResample_OneShot verifies the whole-buffer helper: length, delay
// compensation and signal fidelity.
func TestResample_OneShot(t *testing.T) {
	const (
		frames = 3000
		freq   = 0.01
	)
	input := testutil.Sine(frames, freq, 1.0)

	out, err := Resample([][]float64{input}, 8000, 16000, QualityQuick)
	require.NoError(t, err)
	require.Len(t, out, 1)

	expected := int(math.Round(float64(frames) * 2.0))
	assert.Equal(t, expected, len(out[0]))
	testutil.AssertNoNaNOrInf(t, out[0])

	// Delay is compensated, so output frame m sits at input time m/2.
	for m := 200; m < expected-200; m++ {
		want := math.Sin(2 * math.Pi * freq * float64(m) / 2.0)
		assert.InDelta(t, want, out[0][m], 2e-2, "frame %d", m)
	}
}

// TestResample_Faults covers the helper's argument checks.
func TestResample_Faults(t *testing.T) {
	t.Run("no_channels", func(t *testing.T) {
		_, err := Resample(nil, 8000, 16000, QualityQuick)
		var ch *InvalidChannelCountError
		assert.ErrorAs(t, err, &ch)
	})

	t.Run("unequal_channel_lengths", func(t *testing.T) {
		_, err := Resample([][]float64{
			make([]float64, 100),
			make([]float64, 99),
		}, 8000, 16000, QualityQuick)
		assert.ErrorIs(t, err, ErrInvalidCall)
	})

	t.Run("bad_rates", func(t *testing.T) {
		_, err := Resample([][]float64{make([]float64, 100)}, 0, 16000, QualityQuick)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

// TestQualityString covers the preset names.
func TestQualityString(t *testing.T) {
	assert.Equal(t, "quick", QualityQuick.String())
	assert.Equal(t, "medium", QualityMedium.String())
	assert.Equal(t, "very-high", QualityVeryHigh.String())
	assert.Equal(t, "unknown", Quality(42).String())
}
