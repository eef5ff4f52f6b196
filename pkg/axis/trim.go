package axis

import "github.com/chewxy/math32"

// Trim integrates relative motion of a bounded single-turn sensor into a
// persistent clamped position, emulating a multi-turn trim wheel: the physical
// wheel can be spun past its stop and the virtual position keeps accumulating.
//
// At a clamp boundary, deltas pushing further into the boundary are dropped
// entirely rather than banked, so a reversal resumes movement immediately from
// the clamped edge.
type Trim struct {
	Gain float32
	Low  float32
	High float32

	position     float32
	lastSmoothed float32
}

// NewTrim creates a trim accumulator with its position seeded to the midpoint
// of the clamp range [low, high].
func NewTrim(gain float32, low, high int) *Trim {
	t := &Trim{
		Gain: gain,
		Low:  float32(low),
		High: float32(high),
	}
	t.position = (t.Low + t.High) / 2
	return t
}

// Seed records the current smoothed sensor value as the integration origin.
// Must be called once, after the smoothing filter has been primed, or the
// first cycle would integrate a spurious jump from zero.
func (t *Trim) Seed(smoothed int) {
	t.lastSmoothed = float32(smoothed)
}

// Update integrates the change in the smoothed sensor value into the virtual
// position and returns the position rounded to the output domain.
func (t *Trim) Update(smoothed int) int {
	s := float32(smoothed)
	delta := s - t.lastSmoothed
	t.lastSmoothed = s
	t.position = math32.Min(math32.Max(t.position+delta*t.Gain, t.Low), t.High)
	return int(math32.Round(t.position))
}

// Position returns the current unrounded virtual position.
func (t *Trim) Position() float32 {
	return t.position
}
