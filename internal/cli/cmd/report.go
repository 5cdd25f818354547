package cmd

import (
	"fmt"
	"io"
	"sync"

	"slice/internal/progress"
)

// textReporter prints stage changes and every tenth percent to w.
type textReporter struct {
	mu     sync.Mutex
	w      io.Writer
	stage  progress.Stage
	bucket int
}

func newTextReporter(w io.Writer) *textReporter {
	return &textReporter{w: w, bucket: -1}
}

func (r *textReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch u.Stage {
	case progress.StageSlicing:
		b := u.Percent / 10
		if u.Total == 0 {
			b = u.Written / 100
		}
		if u.Stage == r.stage && b == r.bucket {
			return
		}
		r.bucket = b
	case progress.StageCompleted, progress.StageCancelled, progress.StageError:
		// The caller prints the final summary or error.
		r.stage = u.Stage
		return
	}
	r.stage = u.Stage
	if u.Total > 0 && u.Stage == progress.StageSlicing {
		fmt.Fprintf(r.w, "[%3d%%] %s\n", u.Percent, u.Message)
		return
	}
	fmt.Fprintln(r.w, u.Message)
}

func (r *textReporter) Result(progress.Result) {}
