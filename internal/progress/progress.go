package progress

import "image"

// Stage identifies a high-level step of a conversion run.
type Stage string

const (
	StageProbing    Stage = "probing"
	StageSlicing    Stage = "slicing"
	StageAssembling Stage = "assembling"
	StageCompleted  Stage = "completed"
	StageCancelled  Stage = "cancelled"
	StageError      Stage = "error"
)

// Update conveys progress of a run. It is produced by the worker only.
type Update struct {
	JobID   string
	Stage   Stage
	Percent int // 0..100

	Frame   int // index of the last decoded frame, 0 before the first
	Total   int // total frames expected, 0 if unknown
	Written int // retained frames written so far

	// Preview is a thumbnail of the frame just written. It is nil on updates
	// for skipped frames and when previews are disabled.
	Preview image.Image

	Message string // short human-friendly status line
}

// Result is emitted once per run when it completes, is cancelled or fails.
type Result struct {
	JobID         string
	Stage         Stage // StageCompleted, StageCancelled or StageError
	Stills        []string
	AnimationPath string
	Bytes         int64
	Err           error // nil unless Stage is StageError
}

// Reporter is implemented by UI or any observer interested in progress events.
// Methods are called from the worker goroutine.
type Reporter interface {
	Update(u Update)
	Result(r Result)
}

// Nop is a Reporter that discards everything.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Result(Result) {}
