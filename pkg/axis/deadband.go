package axis

// Deadband suppresses output changes smaller than a per-axis threshold so
// jitter on a stationary lever doesn't reach the host. This is a single-sided
// threshold, not a hysteresis band: a change of at least Threshold is accepted
// verbatim, anything smaller repeats the last accepted value. Threshold 0
// passes every change through.
type Deadband struct {
	Threshold int
	last      int
}

// NewDeadband creates a deadband with the given threshold.
func NewDeadband(threshold int) *Deadband {
	return &Deadband{Threshold: threshold}
}

// Seed sets the last accepted value without applying the threshold. Used at
// startup so the first cycle compares against the true initial position.
func (d *Deadband) Seed(v int) {
	d.last = v
}

// Apply accepts mapped if it moved at least Threshold from the last accepted
// value, and returns the last accepted value either way.
func (d *Deadband) Apply(mapped int) int {
	if abs(mapped-d.last) >= d.Threshold {
		d.last = mapped
	}
	return d.last
}

// Last returns the last accepted value.
func (d *Deadband) Last() int {
	return d.last
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
