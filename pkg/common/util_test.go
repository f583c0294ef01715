package common

import (
	"testing"
	"time"
)

func TestMapper(t *testing.T) {
	names := Mapper([]int{250, 500, 1000}, func(ms int) time.Duration {
		return time.Duration(ms) * time.Millisecond
	})

	if len(names) != 3 {
		t.Fatalf("expected 3 mapped items, got %d", len(names))
	}
	if names[0] != 250*time.Millisecond || names[2] != time.Second {
		t.Errorf("unexpected mapped values: %v", names)
	}

	empty := Mapper([]int{}, func(v int) int { return v })
	if len(empty) != 0 {
		t.Errorf("expected empty result, got %v", empty)
	}
}

func TestReducer(t *testing.T) {
	fastest := Reducer([]time.Duration{time.Second, 100 * time.Millisecond, 500 * time.Millisecond},
		func(acc, d time.Duration) time.Duration {
			if d < acc {
				return d
			}
			return acc
		}, time.Minute)

	if fastest != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %v", fastest)
	}

	unchanged := Reducer([]time.Duration{}, func(acc, d time.Duration) time.Duration {
		return d
	}, time.Minute)
	if unchanged != time.Minute {
		t.Errorf("expected initial accumulator back, got %v", unchanged)
	}
}
