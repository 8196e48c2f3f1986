package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/mediagrab/internal/model"
	"github.com/ytget/mediagrab/internal/progress"
)

type fakeAcquirer struct {
	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	failURL  string
	panicURL string
	delay    time.Duration
}

func (f *fakeAcquirer) Acquire(ctx context.Context, item model.MediaItem, onProgress progress.Func) (string, error) {
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)

	f.mu.Lock()
	if current > f.maxSeen {
		f.maxSeen = current
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if item.URL == f.panicURL {
		panic("pipeline exploded")
	}
	if item.URL == f.failURL {
		return "", errors.New("always fails")
	}
	return "/out/" + item.Title + ".mp4", nil
}

func items(urls ...string) []model.MediaItem {
	out := make([]model.MediaItem, len(urls))
	for i, u := range urls {
		out[i] = model.MediaItem{URL: u, Title: u, Quality: "720p", Format: "mp4"}
	}
	return out
}

func TestRunIsolatesFailures(t *testing.T) {
	acq := &fakeAcquirer{failURL: "item3", delay: time.Millisecond}
	runner := New(acq, 2, zerolog.Nop())

	results := runner.Run(context.Background(), items("item0", "item1", "item2", "item3", "item4"), nil)

	if len(results) != 5 {
		t.Fatalf("Expected 5 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("Result %d keyed by index %d", i, res.Index)
		}
		if i == 3 {
			if res.Err == nil {
				t.Error("Expected item 3 to fail")
			}
			continue
		}
		if res.Err != nil {
			t.Errorf("Item %d: unexpected error: %v", i, res.Err)
		}
		if res.OutputPath == "" {
			t.Errorf("Item %d: expected an output path", i)
		}
	}
}

func TestRunHonorsConcurrencyCap(t *testing.T) {
	acq := &fakeAcquirer{delay: 20 * time.Millisecond}
	runner := New(acq, 2, zerolog.Nop())

	runner.Run(context.Background(), items("a", "b", "c", "d", "e", "f"), nil)

	if acq.maxSeen > 2 {
		t.Errorf("Expected at most 2 in flight, saw %d", acq.maxSeen)
	}
}

func TestRunBatchProgress(t *testing.T) {
	acq := &fakeAcquirer{}
	runner := New(acq, 2, zerolog.Nop())

	var mu sync.Mutex
	var events []progress.Event
	runner.Run(context.Background(), items("a", "b", "c", "d"), func(e progress.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	terminals := 0
	for _, e := range events {
		if e.Terminal {
			terminals++
		}
	}
	if terminals != 1 {
		t.Errorf("Expected exactly 1 terminal event, got %d", terminals)
	}
	if !events[len(events)-1].Terminal {
		t.Error("Expected the terminal event last")
	}

	// Four completions plus the terminal event.
	if len(events) != 5 {
		t.Errorf("Expected 5 events, got %d", len(events))
	}
	seen := map[float64]bool{}
	for _, e := range events {
		if !e.Terminal {
			seen[e.Fraction] = true
		}
	}
	for _, want := range []float64{0.25, 0.5, 0.75, 1.0} {
		if !seen[want] {
			t.Errorf("Expected a completion event at %v, got %v", want, events)
		}
	}
}

func TestRunCapturesPanics(t *testing.T) {
	acq := &fakeAcquirer{panicURL: "boom"}
	runner := New(acq, 2, zerolog.Nop())

	results := runner.Run(context.Background(), items("ok", "boom"), nil)

	if results[0].Err != nil {
		t.Errorf("Item 0: unexpected error: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("Expected the panicking item recorded as failed")
	}
}

func TestRunEmptyBatch(t *testing.T) {
	runner := New(&fakeAcquirer{}, 0, zerolog.Nop())

	var events []progress.Event
	results := runner.Run(context.Background(), nil, func(e progress.Event) { events = append(events, e) })

	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
	if len(events) != 1 || !events[0].Terminal {
		t.Errorf("Expected a single terminal event, got %v", events)
	}
}
