package resampler

import "github.com/tphakala/go-stream-resampler/cpufeat"

// CapabilityAvailable reports whether the host detects the given
// capability tag. Unknown tags report false.
func CapabilityAvailable(tag cpufeat.Feature) bool {
	return cpufeat.Available(tag)
}

// RequiredCapabilityMissing returns the capability fault this
// configuration would raise at construction, or nil when all required
// tags are detected. It lets callers probe hardware support without
// paying for kernel table design.
func (c *Config) RequiredCapabilityMissing() *cpufeat.MissingFeatureError {
	if c.ForceFeature == cpufeat.FeatureNone {
		return nil
	}
	p := c.provider
	if p == nil {
		p = cpufeat.Host()
	}
	if p.Detected(c.ForceFeature) {
		return nil
	}
	return &cpufeat.MissingFeatureError{Feature: c.ForceFeature}
}
