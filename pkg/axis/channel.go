package axis

import "github.com/moondog-sim/quadrant/pkg/config"

// Result is the per-cycle breakdown of one channel's conditioning stages.
// Raw through Output mirror the pipeline order; Delta is the distance of the
// mapped value from the last accepted output, which is what the deadband
// compared against (and what the debug table shows).
type Result struct {
	Name     string
	Raw      int
	Smoothed int
	Mapped   int
	Delta    int
	Output   int
}

// Channel owns the full conditioning state of one physical axis: smoothing
// filter, calibration, and either a deadband (ordinary axes) or a trim
// accumulator (trim role). A Channel has exactly one mutator; the pipeline
// goroutine is the sole owner.
type Channel struct {
	name        string
	role        config.AxisRole
	ring        *Ring
	calibration Calibration
	deadband    *Deadband
	trim        *Trim

	outMin int
	outMax int
	primed bool
}

// NewChannel builds a channel from its axis configuration and the shared
// filter/trim tuning. The trim accumulator is only attached to trim-role axes.
func NewChannel(ac config.AxisConfig, window int, tc config.TrimConfig) *Channel {
	c := &Channel{
		name:        ac.Name,
		role:        ac.Role,
		ring:        NewRing(window),
		calibration: NewCalibration(ac),
		deadband:    NewDeadband(ac.Deadband),
		outMin:      config.OutputMin,
		outMax:      config.OutputMax,
	}
	if ac.Role == config.RoleTrim {
		c.trim = NewTrim(tc.Gain, tc.Low, tc.High)
	}
	return c
}

// Name returns the axis label.
func (c *Channel) Name() string {
	return c.name
}

// Role returns the axis role.
func (c *Channel) Role() config.AxisRole {
	return c.role
}

// Primed reports whether the channel has been primed with an initial reading.
func (c *Channel) Primed() bool {
	return c.primed
}

// Prime seeds the whole channel from the first raw reading: the filter window
// is filled so the first average is the true reading, the deadband's last
// accepted value starts at the mapped initial position, and the trim
// integrator's origin starts at the primed average. Guarantees the first real
// cycle has no warm-up transient.
func (c *Channel) Prime(raw int) {
	c.ring.Prime(raw)
	c.calibration.Observe(raw)
	c.deadband.Seed(c.calibration.Map(c.ring.Average(), c.outMin, c.outMax))
	if c.trim != nil {
		c.trim.Seed(c.ring.Average())
	}
	c.primed = true
}

// Process runs one conditioning cycle on a raw reading. Channels that were
// never primed prime themselves on the first sample.
func (c *Channel) Process(raw int) Result {
	if !c.primed {
		c.Prime(raw)
	}

	c.calibration.Observe(raw)
	smoothed := c.ring.Push(raw)
	mapped := c.calibration.Map(smoothed, c.outMin, c.outMax)

	res := Result{
		Name:     c.name,
		Raw:      raw,
		Smoothed: smoothed,
		Mapped:   mapped,
	}

	if c.trim != nil {
		res.Output = c.trim.Update(smoothed)
		return res
	}

	res.Delta = abs(mapped - c.deadband.Last())
	res.Output = c.deadband.Apply(mapped)
	return res
}
