package axis

// Ring is a fixed-window rolling-average filter over raw ADC readings.
// It keeps a circular sample buffer plus a running sum so each update is O(1);
// the sum always equals the sum of the buffer contents.
type Ring struct {
	buf    []int
	sum    int
	cursor int
}

// NewRing creates a filter with the given window size. Window sizes below 1
// are treated as 1 (no smoothing).
func NewRing(window int) *Ring {
	if window < 1 {
		window = 1
	}
	return &Ring{
		buf: make([]int, window),
	}
}

// Prime fills the whole window with v so the first Average equals v exactly,
// eliminating the warm-up transient a zeroed buffer would cause.
func (r *Ring) Prime(v int) {
	r.sum = 0
	for i := range r.buf {
		r.buf[i] = v
		r.sum += v
	}
	r.cursor = 0
}

// Push overwrites the oldest sample with raw and returns the new rolling
// average, truncated toward zero.
func (r *Ring) Push(raw int) int {
	r.sum -= r.buf[r.cursor]
	r.buf[r.cursor] = raw
	r.sum += raw
	r.cursor = (r.cursor + 1) % len(r.buf)
	return r.sum / len(r.buf)
}

// Average returns the current rolling average without consuming a sample.
func (r *Ring) Average() int {
	return r.sum / len(r.buf)
}

// Window returns the filter window size.
func (r *Ring) Window() int {
	return len(r.buf)
}
