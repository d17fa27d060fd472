package sysdash

import (
	"strconv"
	"testing"
)

func TestRollingSeriesBound(t *testing.T) {
	tests := []struct {
		name   string
		pushes int
	}{
		{"empty", 0},
		{"partial", 7},
		{"exactly full", 20},
		{"one over", 21},
		{"many over", 137},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRollingSeries[int](20)
			for i := 0; i < tt.pushes; i++ {
				s.Push(i)
			}

			want := min(tt.pushes, 20)
			if s.Len() != want {
				t.Fatalf("Len() = %d, want %d", s.Len(), want)
			}

			// once full, element 0 is the value pushed at index pushes-20
			vals := s.Values()
			for i, v := range vals {
				if exp := tt.pushes - want + i; v != exp {
					t.Errorf("Values()[%d] = %d, want %d", i, v, exp)
				}
				if s.At(i) != v {
					t.Errorf("At(%d) = %d, Values()[%d] = %d", i, s.At(i), i, v)
				}
			}
		})
	}
}

func TestRollingSeriesDefaultCapacity(t *testing.T) {
	for _, c := range []int{0, -5} {
		if got := NewRollingSeries[float64](c).Cap(); got != MAX_DATA_POINTS {
			t.Errorf("NewRollingSeries(%d).Cap() = %d, want %d", c, got, MAX_DATA_POINTS)
		}
	}
}

func TestRollingSeriesValuesIsCopy(t *testing.T) {
	s := NewRollingSeries[int](3)
	s.Push(1)
	s.Push(2)
	vals := s.Values()
	vals[0] = 99
	if s.At(0) != 1 {
		t.Fatalf("mutating Values() changed the series: At(0) = %d", s.At(0))
	}
}

func TestRollingSeriesAtOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("At past Len did not panic")
		}
	}()
	s := NewRollingSeries[int](3)
	s.Push(1)
	s.At(1)
}

func TestCPUHistoryLockstep(t *testing.T) {
	h := NewCPUHistory(20)
	for i := 0; i < 45; i++ {
		h.Push(strconv.Itoa(i), float64(i))

		labels, percents := h.Labels(), h.Percents()
		if len(labels) != len(percents) {
			t.Fatalf("after %d pushes: %d labels, %d percents", i+1, len(labels), len(percents))
		}
		if len(labels) > 20 {
			t.Fatalf("after %d pushes: length %d exceeds 20", i+1, len(labels))
		}
		for j := range labels {
			if labels[j] != strconv.Itoa(int(percents[j])) {
				t.Fatalf("after %d pushes: label %q paired with %v", i+1, labels[j], percents[j])
			}
		}
	}
	if h.Labels()[0] != "25" {
		t.Errorf("oldest label = %q, want %q", h.Labels()[0], "25")
	}
}
