package sysdash

// RollingSeries is a fixed-capacity FIFO of samples. Pushing past the
// capacity evicts the oldest element, and iteration is oldest-first.
type RollingSeries[T any] struct {
	buf   []T
	start int
	size  int
}

// NewRollingSeries creates a series holding at most capacity elements.
// A non-positive capacity falls back to MAX_DATA_POINTS.
func NewRollingSeries[T any](capacity int) *RollingSeries[T] {
	if capacity <= 0 {
		capacity = MAX_DATA_POINTS
	}
	return &RollingSeries[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when full
func (s *RollingSeries[T]) Push(v T) {
	if s.size < len(s.buf) {
		s.buf[(s.start+s.size)%len(s.buf)] = v
		s.size++
		return
	}
	s.buf[s.start] = v
	s.start = (s.start + 1) % len(s.buf)
}

// Len returns the number of stored elements
func (s *RollingSeries[T]) Len() int {
	return s.size
}

// Cap returns the maximum number of stored elements
func (s *RollingSeries[T]) Cap() int {
	return len(s.buf)
}

// At returns the i-th oldest element
func (s *RollingSeries[T]) At(i int) T {
	if i < 0 || i >= s.size {
		panic("sysdash: RollingSeries index out of range")
	}
	return s.buf[(s.start+i)%len(s.buf)]
}

// Values returns a copy of the elements, oldest first
func (s *RollingSeries[T]) Values() []T {
	out := make([]T, s.size)
	for i := range out {
		out[i] = s.buf[(s.start+i)%len(s.buf)]
	}
	return out
}

// CPUHistory keeps time labels and CPU percentages in lockstep
type CPUHistory struct {
	labels   *RollingSeries[string]
	percents *RollingSeries[float64]
}

func NewCPUHistory(capacity int) *CPUHistory {
	return &CPUHistory{
		labels:   NewRollingSeries[string](capacity),
		percents: NewRollingSeries[float64](capacity),
	}
}

// Push records one sample; both series grow or rotate together
func (h *CPUHistory) Push(label string, percent float64) {
	h.labels.Push(label)
	h.percents.Push(percent)
}

func (h *CPUHistory) Len() int {
	return h.labels.Len()
}

func (h *CPUHistory) Labels() []string {
	return h.labels.Values()
}

func (h *CPUHistory) Percents() []float64 {
	return h.percents.Values()
}
