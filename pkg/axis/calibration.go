package axis

import (
	"github.com/chewxy/math32"

	"github.com/moondog-sim/quadrant/pkg/config"
)

// Calibration maps a smoothed raw value into the output range [outMin, outMax].
// Observe is fed every raw sample so learning calibrations can widen their
// bounds; fixed calibrations ignore it.
type Calibration interface {
	Observe(raw int)
	Map(value, outMin, outMax int) int
	Bounds() (min, max int)
}

// FixedCalibration maps against constant raw bounds assumed to match the
// physical travel extremes.
type FixedCalibration struct {
	Min int
	Max int
}

// NewFixed creates a fixed calibration with the given raw bounds.
func NewFixed(min, max int) *FixedCalibration {
	if max < min {
		min, max = max, min
	}
	return &FixedCalibration{Min: min, Max: max}
}

// Observe is a no-op: fixed bounds never move.
func (c *FixedCalibration) Observe(int) {}

// Map linearly interpolates value into [outMin, outMax] and clamps.
func (c *FixedCalibration) Map(value, outMin, outMax int) int {
	return clamp(scale(value, c.Min, c.Max, outMin, outMax), outMin, outMax)
}

// Bounds returns the configured raw bounds.
func (c *FixedCalibration) Bounds() (int, int) {
	return c.Min, c.Max
}

// DynamicCalibration learns the raw bounds from the samples it sees. Bounds
// initialize to the first observed value and only ever expand; mapping applies
// a small margin outside the learned bounds so the output doesn't pin at the
// extremes the moment a new extreme is learned.
type DynamicCalibration struct {
	Min    int
	Max    int
	Margin int
	seen   bool
}

// NewDynamic creates a learning calibration with the given mapping margin.
func NewDynamic(margin int) *DynamicCalibration {
	if margin < 0 {
		margin = 0
	}
	return &DynamicCalibration{Margin: margin}
}

// Observe widens the learned bounds to include raw. The first sample sets
// both bounds.
func (c *DynamicCalibration) Observe(raw int) {
	if !c.seen {
		c.Min = raw
		c.Max = raw
		c.seen = true
		return
	}
	if raw < c.Min {
		c.Min = raw
	}
	if raw > c.Max {
		c.Max = raw
	}
}

// Map interpolates value against the learned bounds widened by Margin on each
// side, rounded to nearest, then clamps to [outMin, outMax]. Until a spread
// has been observed (min == max) the value passes through unscaled, clamped to
// the output range, so there is never a zero-width division.
func (c *DynamicCalibration) Map(value, outMin, outMax int) int {
	if c.Min == c.Max {
		return clamp(value, outMin, outMax)
	}
	lo := float32(c.Min - c.Margin)
	hi := float32(c.Max + c.Margin)
	mapped := (float32(value)-lo)*float32(outMax-outMin)/(hi-lo) + float32(outMin)
	return clamp(int(math32.Round(mapped)), outMin, outMax)
}

// Bounds returns the learned raw bounds.
func (c *DynamicCalibration) Bounds() (int, int) {
	return c.Min, c.Max
}

// NewCalibration builds the calibration for one axis from its configuration.
func NewCalibration(ac config.AxisConfig) Calibration {
	if ac.Calibration == config.CalibrationDynamic {
		return NewDynamic(ac.Margin)
	}
	return NewFixed(ac.RawMin, ac.RawMax)
}

// scale linearly interpolates value from [inMin, inMax] into [outMin, outMax]
// with integer arithmetic, truncating toward zero.
func scale(value, inMin, inMax, outMin, outMax int) int {
	return (value-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
