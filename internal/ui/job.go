package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"slice/internal/progress"
)

// jobState mirrors the worker's progress for rendering. It is only touched
// on the UI goroutine.
type jobState struct {
	id      string
	stage   progress.Stage
	status  string
	err     error
	done    bool
	percent int // -1 means unknown

	frame, total, written int

	stills        int
	animationPath string
	bytes         int64

	preview string // rendered half-block thumbnail

	spinner spinner.Model
	bar     bubblesprogress.Model
}

func newJobState(id string, styles Styles) jobState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return jobState{
		id:      id,
		stage:   progress.StageProbing,
		status:  "Starting",
		percent: -1,
		spinner: sp,
		bar:     bar,
	}
}

// running reports whether the job has started and not yet delivered its
// result.
func (js *jobState) running() bool {
	return js != nil && !js.done
}
