package pipeline

import (
	"sync/atomic"

	"slice/internal/model"
)

// State is the lifecycle position of a run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Result is the outcome of a finished run. Err is nil unless State is
// StateFailed.
type Result struct {
	JobID   string
	State   State
	Summary model.OutputSummary
	Err     error
}

// Run is the handle of one in-flight conversion. The controller cancels it;
// the worker observes the flag once per frame.
type Run struct {
	id  string
	req model.ConversionRequest

	cancel atomic.Bool
	done   chan struct{}
	res    Result // written by the worker before done is closed
}

func newRun(id string, req model.ConversionRequest) *Run {
	return &Run{id: id, req: req, done: make(chan struct{})}
}

// ID returns the job ID attached to reporter events.
func (r *Run) ID() string { return r.id }

// Request returns the parameters the run was started with.
func (r *Run) Request() model.ConversionRequest { return r.req }

// Cancel asks the worker to stop before decoding the next frame. Frames
// already written stay on disk. Safe to call more than once and after the
// run has finished.
func (r *Run) Cancel() { r.cancel.Store(true) }

func (r *Run) cancelled() bool { return r.cancel.Load() }

// Done is closed once the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} { return r.done }

// State returns StateRunning until the worker finishes, then the final state.
func (r *Run) State() State {
	select {
	case <-r.done:
		return r.res.State
	default:
		return StateRunning
	}
}

// Wait blocks until the run finishes and returns its result along with
// Result.Err.
func (r *Run) Wait() (Result, error) {
	<-r.done
	return r.res, r.res.Err
}
