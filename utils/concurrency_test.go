package utils

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStringSetNoDuplicates(t *testing.T) {
	s := NewStringSet()

	added := s.Add("7711")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("7711")
	if added {
		t.Error("second Add of same value should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestStringSetKeepsInsertionOrder(t *testing.T) {
	s := NewStringSet()
	for _, v := range []string{"3", "1", "3", "2", "1"} {
		s.Add(v)
	}

	got := s.Values()
	want := []string{"3", "1", "2"}
	if len(got) != len(want) {
		t.Fatalf("values: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("values[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStringSetConcurrency(t *testing.T) {
	s := NewStringSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(func() error {
			if s.Add("same") {
				atomic.AddInt64(&added, 1)
			}
			return nil
		})
	}
	if errs := pool.Wait(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolCollectsErrors(t *testing.T) {
	pool := NewWorkerPool(3, 0)
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		i := i
		pool.Submit(func() error {
			if i%2 == 0 {
				return boom
			}
			return nil
		})
	}

	errs := pool.Wait()
	if len(errs) != 3 {
		t.Fatalf("errors: got %d, want 3", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, boom) {
			t.Errorf("unexpected error %v", err)
		}
	}

	if errs := pool.Wait(); len(errs) != 0 {
		t.Errorf("second Wait should start empty, got %v", errs)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 100
	pool := NewWorkerPool(1, rateLimitMs)

	var timestamps []time.Time
	mu := make(chan struct{}, 1)
	mu <- struct{}{}

	for i := 0; i < 3; i++ {
		pool.Submit(func() error {
			<-mu
			timestamps = append(timestamps, time.Now())
			mu <- struct{}{}
			return nil
		})
	}
	pool.Wait()

	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		min := time.Duration(rateLimitMs) * time.Millisecond
		if gap < min {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, min)
		}
	}
}
