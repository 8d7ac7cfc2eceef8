package resampler

import (
	"errors"
	"fmt"
)

// Fault grouping sentinels. Every typed error below unwraps to one of
// these, so callers can classify with errors.Is and still recover the
// concrete fields with errors.As.
var (
	// ErrInvalidConfig groups all construction faults.
	ErrInvalidConfig = errors.New("invalid resampler configuration")

	// ErrInvalidCall groups all per-call faults.
	ErrInvalidCall = errors.New("invalid resampler call")
)

// ErrSyncNotAdjustable is returned by SetResampleRatio on a resampler
// constructed without Adjustable.
var ErrSyncNotAdjustable = fmt.Errorf("%w: not possible to adjust a fixed-ratio resampler", ErrInvalidCall)

// InvalidSampleRateError reports a non-positive input or output sample
// rate at construction.
type InvalidSampleRateError struct {
	Input  int
	Output int
}

func (e *InvalidSampleRateError) Error() string {
	return fmt.Sprintf("input and output sample rates must both be > 0, got input %d and output %d",
		e.Input, e.Output)
}

func (e *InvalidSampleRateError) Unwrap() error { return ErrInvalidConfig }

// InvalidRatioError reports a non-positive resample ratio at
// construction.
type InvalidRatioError struct {
	Ratio float64
}

func (e *InvalidRatioError) Error() string {
	return fmt.Sprintf("invalid resample ratio %v, must be > 0", e.Ratio)
}

func (e *InvalidRatioError) Unwrap() error { return ErrInvalidConfig }

// InvalidRelativeRatioError reports a max relative ratio below 1 at
// construction.
type InvalidRelativeRatioError struct {
	Ratio float64
}

func (e *InvalidRelativeRatioError) Error() string {
	return fmt.Sprintf("invalid max relative ratio %v, must be >= 1", e.Ratio)
}

func (e *InvalidRelativeRatioError) Unwrap() error { return ErrInvalidConfig }

// InvalidChannelCountError reports a non-positive channel count at
// construction.
type InvalidChannelCountError struct {
	Channels int
}

func (e *InvalidChannelCountError) Error() string {
	return fmt.Sprintf("invalid channel count %d, must be > 0", e.Channels)
}

func (e *InvalidChannelCountError) Unwrap() error { return ErrInvalidConfig }

// RatioOutOfBoundsError reports a SetResampleRatio target outside the
// window fixed at construction. The window is
// [Original/MaxRelativeRatio, Original*MaxRelativeRatio].
type RatioOutOfBoundsError struct {
	Provided         float64
	Original         float64
	MaxRelativeRatio float64
}

func (e *RatioOutOfBoundsError) Error() string {
	return fmt.Sprintf("new resample ratio %v out of bounds, must be within a factor %v of the original ratio %v",
		e.Provided, e.MaxRelativeRatio, e.Original)
}

func (e *RatioOutOfBoundsError) Unwrap() error { return ErrInvalidCall }

// WrongInputChannelsError reports an input slice whose channel count
// does not match the resampler.
type WrongInputChannelsError struct {
	Expected int
	Actual   int
}

func (e *WrongInputChannelsError) Error() string {
	return fmt.Sprintf("wrong number of channels %d in input, expected %d", e.Actual, e.Expected)
}

func (e *WrongInputChannelsError) Unwrap() error { return ErrInvalidCall }

// WrongOutputChannelsError reports an output slice whose channel count
// does not match the resampler.
type WrongOutputChannelsError struct {
	Expected int
	Actual   int
}

func (e *WrongOutputChannelsError) Error() string {
	return fmt.Sprintf("wrong number of channels %d in output, expected %d", e.Actual, e.Expected)
}

func (e *WrongOutputChannelsError) Unwrap() error { return ErrInvalidCall }

// WrongMaskChannelsError reports a channel mask whose length does not
// match the resampler.
type WrongMaskChannelsError struct {
	Expected int
	Actual   int
}

func (e *WrongMaskChannelsError) Error() string {
	return fmt.Sprintf("wrong number of channels %d in mask, expected %d", e.Actual, e.Expected)
}

func (e *WrongMaskChannelsError) Unwrap() error { return ErrInvalidCall }

// InsufficientInputBufferError reports an input channel slice shorter
// than the frames the call must consume.
type InsufficientInputBufferError struct {
	Channel  int
	Expected int
	Actual   int
}

func (e *InsufficientInputBufferError) Error() string {
	return fmt.Sprintf("insufficient buffer size %d for input channel %d, expected %d",
		e.Actual, e.Channel, e.Expected)
}

func (e *InsufficientInputBufferError) Unwrap() error { return ErrInvalidCall }

// InsufficientOutputBufferError reports an output channel slice shorter
// than the frames the call will produce.
type InsufficientOutputBufferError struct {
	Channel  int
	Expected int
	Actual   int
}

func (e *InsufficientOutputBufferError) Error() string {
	return fmt.Sprintf("insufficient buffer size %d for output channel %d, expected %d",
		e.Actual, e.Channel, e.Expected)
}

func (e *InsufficientOutputBufferError) Unwrap() error { return ErrInvalidCall }
