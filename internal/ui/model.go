package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"slice/internal/model"
	"slice/internal/pipeline"
	"slice/internal/preview"
	"slice/internal/progress"
	"slice/internal/state"
	"slice/internal/util/format"
)

// ServiceFactory builds the pipeline service that reports into rep.
type ServiceFactory func(rep progress.Reporter) *pipeline.Service

// Options configures the session.
type Options struct {
	Request    model.ConversionRequest // initial form values
	Record     state.Record            // directories from the previous session
	NewService ServiceFactory
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	svc  *pipeline.Service
	run  *pipeline.Run
	job  *jobState
	form form

	record  state.Record
	formErr error // synchronous validation failure, cleared on next start

	// UI
	width, height int
	styles        Styles

	// Internal event channel used by reporter to feed tea messages
	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, opts Options) Model {
	c, cancel := context.WithCancel(ctx)
	eventCh := make(chan tea.Msg, 256)

	req := opts.Request
	if req.VideoPath == "" && opts.Record.LastInputDir != "" {
		req.VideoPath = opts.Record.LastInputDir + string(filepath.Separator)
	}
	if req.ExportDir == "" {
		req.ExportDir = opts.Record.LastExportDir
	}

	factory := opts.NewService
	if factory == nil {
		factory = func(rep progress.Reporter) *pipeline.Service {
			return pipeline.NewService(pipeline.WithReporter(rep))
		}
	}

	return Model{
		ctx:     c,
		cancel:  cancel,
		svc:     factory(teaReporter{ctx: c, ch: eventCh}),
		form:    newForm(req),
		record:  opts.Record,
		styles:  defaultStyles(),
		eventCh: eventCh,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenEventsCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case jobUpdateMsg:
		u := msg.U
		if js := m.job; js != nil && js.id == u.JobID {
			js.stage = u.Stage
			js.percent = u.Percent
			js.frame, js.total, js.written = u.Frame, u.Total, u.Written
			if u.Message != "" {
				js.status = u.Message
			}
			if u.Preview != nil {
				js.preview = preview.Render(u.Preview)
			}
		}
		return m, m.listenEventsCmd()

	case jobResultMsg:
		r := msg.R
		if js := m.job; js != nil && js.id == r.JobID {
			js.done = true
			js.err = r.Err
			js.stage = r.Stage
			js.stills = len(r.Stills)
			js.animationPath = r.AnimationPath
			js.bytes = r.Bytes
			switch {
			case r.Err != nil:
				js.status = "Error: " + r.Err.Error()
			case r.Stage == progress.StageCancelled:
				js.status = "Cancelled: " + format.Frames(js.written) + " kept"
			case r.AnimationPath != "":
				js.status = fmt.Sprintf("Saved: %s (%s)", filepath.Base(r.AnimationPath), format.HumanizeBytes(r.Bytes))
				js.percent = 100
			default:
				js.status = "Saved: " + format.Frames(js.stills)
				js.percent = 100
			}
			m.run = nil
		}
		return m, m.listenEventsCmd()

	case allDoneMsg:
		return m, nil
	}

	var cmds []tea.Cmd
	if m.job.running() {
		var c tea.Cmd
		m.job.spinner, c = m.job.spinner.Update(msg)
		cmds = append(cmds, c)
	}
	if in := m.form.input(m.form.focus); in != nil {
		var c tea.Cmd
		*in, c = in.Update(msg)
		cmds = append(cmds, c)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.run != nil {
			m.run.Cancel()
		}
		m.cancel()
		return m, tea.Quit
	case "esc", "ctrl+x":
		if m.run != nil {
			m.run.Cancel()
			m.job.status = "Cancelling..."
		}
		return m, nil
	case "enter":
		return m.start()
	case "tab", "down":
		m.form.next()
		return m, nil
	case "shift+tab", "up":
		m.form.prev()
		return m, nil
	case "left", "right":
		if m.form.focus == fieldFormat {
			if msg.String() == "left" {
				m.form.cycleFormat(-1)
			} else {
				m.form.cycleFormat(1)
			}
			return m, nil
		}
	}
	if m.run != nil {
		// Inputs are frozen while a run is in flight.
		return m, nil
	}
	if in := m.form.input(m.form.focus); in != nil {
		var c tea.Cmd
		*in, c = in.Update(msg)
		return m, c
	}
	return m, nil
}

// start validates the form synchronously and launches one run.
func (m Model) start() (tea.Model, tea.Cmd) {
	if m.run != nil {
		return m, nil
	}
	m.formErr = nil
	req, err := m.form.request()
	if err == nil {
		m.run, err = m.svc.Start(m.ctx, req)
	}
	if err != nil {
		if !errors.Is(err, pipeline.ErrValidation) && !errors.Is(err, pipeline.ErrBusy) {
			err = fmt.Errorf("%w: %v", pipeline.ErrValidation, err)
		}
		m.formErr = err
		m.run = nil
		return m, nil
	}

	if abs, aerr := filepath.Abs(req.VideoPath); aerr == nil {
		m.record.LastInputDir = filepath.Dir(abs)
	}
	if abs, aerr := filepath.Abs(req.ExportDir); aerr == nil {
		m.record.LastExportDir = abs
	}

	js := newJobState(m.run.ID(), m.styles)
	m.job = &js
	return m, js.spinner.Tick
}

// Record returns the directories to persist for the next session.
func (m Model) Record() state.Record {
	return m.record
}

// Wait blocks until any run still in flight has stopped.
func (m Model) Wait() {
	if m.run != nil {
		<-m.run.Done()
	}
}

func (m Model) View() string {
	return m.viewHeader() + "\n\n" + m.viewForm() + "\n" + m.viewJob()
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

// teaReporter forwards worker events to the UI goroutine. Slicing updates
// are dropped when the channel is full; terminal events always block until
// delivered or the session ends.
type teaReporter struct {
	ctx context.Context
	ch  chan tea.Msg
}

func (r teaReporter) Update(u progress.Update) {
	// Block on completion messages to ensure they're delivered
	switch u.Stage {
	case progress.StageCompleted, progress.StageCancelled, progress.StageError:
		r.send(jobUpdateMsg{U: u})
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	// Always block on Result messages - they're critical
	r.send(jobResultMsg{R: res})
}

func (r teaReporter) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	case <-r.ctx.Done():
	}
}
