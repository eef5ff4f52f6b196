package axis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_PrimedSteadyState(t *testing.T) {
	// Scenario: window 10, constant raw input 500 for 10 cycles.
	// The primed filter must report 500 from the very first cycle.
	r := NewRing(10)
	r.Prime(500)

	assert.Equal(t, 500, r.Average(), "primed average should equal the priming value")

	for i := 0; i < 10; i++ {
		assert.Equal(t, 500, r.Push(500), "cycle %d should stay at 500 with no transient", i)
	}
}

func TestRing_SumMatchesContents(t *testing.T) {
	r := NewRing(4)
	r.Prime(100)

	inputs := []int{100, 250, 0, 1023, 512, 512, 7}
	for _, v := range inputs {
		r.Push(v)

		sum := 0
		for _, s := range r.buf {
			sum += s
		}
		assert.Equal(t, sum, r.sum, "running sum must equal buffer contents")
	}
}

func TestRing_OutputWithinWindowBounds(t *testing.T) {
	r := NewRing(5)
	r.Prime(300)

	inputs := []int{300, 900, 100, 1023, 0, 512, 512, 768}
	for _, v := range inputs {
		avg := r.Push(v)

		lo, hi := r.buf[0], r.buf[0]
		for _, s := range r.buf {
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}
		assert.GreaterOrEqual(t, avg, lo, "average below window minimum")
		assert.LessOrEqual(t, avg, hi, "average above window maximum")
	}
}

func TestRing_StepResponseBoundedByWindow(t *testing.T) {
	// A raw step of D can move the average by at most D/W per cycle.
	r := NewRing(10)
	r.Prime(0)

	prev := r.Average()
	for i := 0; i < 10; i++ {
		avg := r.Push(1000)
		assert.LessOrEqual(t, avg-prev, 100, "single cycle moved more than 1/W of the step")
		prev = avg
	}
	assert.Equal(t, 1000, prev, "average should converge after W cycles")
}

func TestRing_TruncatesAverage(t *testing.T) {
	r := NewRing(2)
	r.Prime(0)
	r.Push(0)
	// Sum 3 over window 2 truncates to 1.
	assert.Equal(t, 1, r.Push(3))
}

func TestNewRing_InvalidWindow(t *testing.T) {
	r := NewRing(0)
	assert.Equal(t, 1, r.Window())
	r.Prime(42)
	assert.Equal(t, 7, r.Push(7), "window of 1 passes values through")
}
