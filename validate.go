package resampler

// validateConstruction checks the construction parameters after defaults
// have been resolved. Check order: sample rates, ratio, relative ratio
// bound, channel count.
func validateConstruction(inputRate, outputRate int, ratio, maxRelative float64, channels int) error {
	if inputRate <= 0 || outputRate <= 0 {
		return &InvalidSampleRateError{Input: inputRate, Output: outputRate}
	}
	if ratio <= 0 {
		return &InvalidRatioError{Ratio: ratio}
	}
	if maxRelative < 1 {
		return &InvalidRelativeRatioError{Ratio: maxRelative}
	}
	if channels <= 0 {
		return &InvalidChannelCountError{Channels: channels}
	}
	return nil
}

// validateRatioUpdate checks a ratio change request. Adjustability is
// checked before the bounds so a fixed-ratio resampler reports the same
// fault for every target value.
func validateRatioUpdate(provided, original, maxRelative float64, adjustable bool) error {
	if !adjustable {
		return ErrSyncNotAdjustable
	}
	if provided < original/maxRelative || provided > original*maxRelative {
		return &RatioOutOfBoundsError{
			Provided:         provided,
			Original:         original,
			MaxRelativeRatio: maxRelative,
		}
	}
	return nil
}

// validateChannels checks the channel dimensions of a Process call. A nil
// mask is valid and means all channels active.
func validateChannels[F Float](input, output [][]F, mask []bool, channels int) error {
	if len(input) != channels {
		return &WrongInputChannelsError{Expected: channels, Actual: len(input)}
	}
	if len(output) != channels {
		return &WrongOutputChannelsError{Expected: channels, Actual: len(output)}
	}
	if mask != nil && len(mask) != channels {
		return &WrongMaskChannelsError{Expected: channels, Actual: len(mask)}
	}
	return nil
}

// validateBufferSizes checks every channel's slice length against the
// frames the call will consume and produce. The first offending channel
// is reported; input buffers are checked before output buffers.
func validateBufferSizes[F Float](input, output [][]F, needIn, needOut int) error {
	for ch, in := range input {
		if len(in) < needIn {
			return &InsufficientInputBufferError{Channel: ch, Expected: needIn, Actual: len(in)}
		}
	}
	for ch, out := range output {
		if len(out) < needOut {
			return &InsufficientOutputBufferError{Channel: ch, Expected: needOut, Actual: len(out)}
		}
	}
	return nil
}
