package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	err := For(n, func(_ int) error {
		atomic.AddInt64(&counter, 1)
		return nil
	}, cfg)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_EachIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinItems: 1}

	seen := make([]int32, 257)
	err := For(len(seen), func(i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d ran %d times", i, c)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var order []int
	err := For(5, func(i int) error {
		order = append(order, i)
		return nil
	}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range order {
		if v != i {
			t.Errorf("Expected sequential order, got %v", order)
			break
		}
	}
}

func TestFor_Error(t *testing.T) {
	boom := errors.New("boom")

	for _, cfg := range []Config{{Enabled: false}, {Enabled: true, NumWorkers: 3, MinItems: 1}} {
		err := For(100, func(i int) error {
			if i == 42 {
				return boom
			}
			return nil
		}, cfg)
		if !errors.Is(err, boom) {
			t.Errorf("Expected boom, got %v", err)
		}
	}
}

func TestFor_SequentialStopsAtError(t *testing.T) {
	var ran int
	_ = For(10, func(i int) error {
		ran++
		if i == 2 {
			return errors.New("stop")
		}
		return nil
	}, Config{Enabled: false})

	if ran != 3 {
		t.Errorf("Expected 3 calls, got %d", ran)
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			_ = For(n, func(j int) error {
				atomic.AddInt64(&sum, int64(j))
				return nil
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		seq := Config{Enabled: false}
		for i := 0; i < b.N; i++ {
			var sum int64
			_ = For(n, func(j int) error {
				sum += int64(j)
				return nil
			}, seq)
		}
	})
}
