// Package progress maps stage-local progress onto an overall fraction
// for a whole pipeline run, and defines the event shape delivered to
// callers.
package progress

import (
	"fmt"
	"math"
	"sync"
)

// Event is one progress notification. Terminal marks true completion
// and is emitted exactly once per operation; it is deliberately distinct
// from Fraction reaching 1.0, which may happen transiently mid-pipeline.
type Event struct {
	Fraction float64
	Terminal bool
}

// Func consumes progress events. Implementations must be safe to call
// from the worker goroutine that runs the pipeline.
type Func func(Event)

// Discard is a no-op progress sink.
func Discard(Event) {}

// Stage names used by the acquisition and transcode pipelines.
const (
	StageFetch      = "fetch"
	StageFetchVideo = "fetch-video"
	StageFetchAudio = "fetch-audio"
	StageMux        = "mux"
	StageEncode     = "encode"
)

// Stage is one pipeline phase and its share of overall progress.
type Stage struct {
	Name   string
	Weight float64
}

// StageWeights is an ordered weight split. Weights are chosen once per
// pipeline shape and never renormalized mid-run.
type StageWeights []Stage

// Validate checks that the weights sum to 1.0.
func (w StageWeights) Validate() error {
	sum := 0.0
	for _, s := range w {
		if s.Weight < 0 {
			return fmt.Errorf("stage %q has negative weight %v", s.Name, s.Weight)
		}
		sum += s.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("stage weights sum to %v, want 1.0", sum)
	}
	return nil
}

// TwoStreamWeights is the split for a separate video+audio fetch
// followed by a mux.
func TwoStreamWeights() StageWeights {
	return StageWeights{
		{Name: StageFetchVideo, Weight: 0.3},
		{Name: StageFetchAudio, Weight: 0.3},
		{Name: StageMux, Weight: 0.4},
	}
}

// FetchEncodeWeights is the split for a single fetch followed by a
// transcode.
func FetchEncodeWeights() StageWeights {
	return StageWeights{
		{Name: StageFetch, Weight: 0.6},
		{Name: StageEncode, Weight: 0.4},
	}
}

// SingleFetchWeights covers a one-stage pipeline (muxed stream, no
// post-processing).
func SingleFetchWeights() StageWeights {
	return StageWeights{{Name: StageFetch, Weight: 1.0}}
}

// Aggregator converts stage-local fractions into overall progress.
// Overall output is monotonically non-decreasing; the terminal event is
// emitted once via Finish and all later updates are dropped.
type Aggregator struct {
	weights StageWeights
	sink    Func

	mu       sync.Mutex
	last     float64
	finished bool
}

// NewAggregator creates an aggregator over a weight split. A nil sink
// discards events.
func NewAggregator(weights StageWeights, sink Func) *Aggregator {
	if sink == nil {
		sink = Discard
	}
	return &Aggregator{weights: weights, sink: sink}
}

// Update reports stage-local fraction f in [0,1] for the named stage.
// Unknown stage names are ignored.
func (a *Aggregator) Update(stage string, f float64) {
	offset, weight, ok := a.locate(stage)
	if !ok {
		return
	}
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}

	a.mu.Lock()
	if a.finished {
		a.mu.Unlock()
		return
	}
	overall := offset + f*weight
	if overall < a.last {
		overall = a.last
	}
	a.last = overall
	a.mu.Unlock()

	a.sink(Event{Fraction: overall})
}

// StageFunc returns a reporter bound to one stage, convenient to hand
// to a fetch or encoder call as its sub-progress callback.
func (a *Aggregator) StageFunc(stage string) func(float64) {
	return func(f float64) { a.Update(stage, f) }
}

// Finish emits the terminal event. Only the first call has any effect.
func (a *Aggregator) Finish() {
	a.mu.Lock()
	if a.finished {
		a.mu.Unlock()
		return
	}
	a.finished = true
	a.last = 1.0
	a.mu.Unlock()

	a.sink(Event{Fraction: 1.0, Terminal: true})
}

func (a *Aggregator) locate(stage string) (offset, weight float64, ok bool) {
	for _, s := range a.weights {
		if s.Name == stage {
			return offset, s.Weight, true
		}
		offset += s.Weight
	}
	return 0, 0, false
}
