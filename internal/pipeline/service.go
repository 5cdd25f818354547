// Package pipeline validates conversion requests and runs the
// decode → filter → encode → assemble workflow on a background worker.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"slice/internal/animation"
	"slice/internal/encoder"
	"slice/internal/model"
	"slice/internal/preview"
	"slice/internal/progress"
	"slice/internal/source"
	"slice/internal/util"
	"slice/internal/util/format"
	"slice/internal/util/media"
)

var (
	// ErrValidation reports a request rejected before any work started.
	ErrValidation = errors.New("invalid request")
	// ErrBusy reports a Start while another run is in flight.
	ErrBusy = errors.New("a conversion is already running")
)

// Service runs at most one conversion at a time.
type Service struct {
	opener   source.Opener
	reporter progress.Reporter
	logger   *zap.Logger
	jobID    string

	previewW, previewH int

	active atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithOpener sets the frame source used to open videos.
func WithOpener(o source.Opener) Option {
	return func(s *Service) {
		s.opener = o
	}
}

// WithReporter attaches a progress reporter (used by TUI).
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithLogger sets the logger receiving run and error events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithJobID sets the job ID prefix associated with reporter events.
func WithJobID(id string) Option {
	return func(s *Service) {
		s.jobID = id
	}
}

// WithPreviewSize bounds the thumbnails attached to progress updates.
// A zero size disables previews.
func WithPreviewSize(w, h int) Option {
	return func(s *Service) {
		s.previewW, s.previewH = w, h
	}
}

// NewService constructs a new Service with the provided options.
// It applies sensible defaults for missing components.
func NewService(opts ...Option) *Service {
	s := &Service{
		previewW: preview.DefaultWidth,
		previewH: preview.DefaultHeight,
	}
	for _, o := range opts {
		o(s)
	}
	if s.opener == nil {
		s.opener = source.OpenerFunc(func(ctx context.Context, path string) (source.Source, error) {
			op, err := source.NewOpener(source.Options{Logger: s.logger})
			if err != nil {
				return nil, err
			}
			return op.Open(ctx, path)
		})
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.jobID == "" {
		s.jobID = "job"
	}
	return s
}

// Validate checks req without touching the export directory.
func Validate(req model.ConversionRequest) error {
	switch {
	case req.VideoPath == "":
		return fmt.Errorf("%w: video path is required", ErrValidation)
	case !util.IsRegularFile(req.VideoPath):
		return fmt.Errorf("%w: video %q does not exist or is not a file", ErrValidation, req.VideoPath)
	case req.ExportDir == "":
		return fmt.Errorf("%w: export directory is required", ErrValidation)
	case req.FrameSkip < 1:
		return fmt.Errorf("%w: frame skip must be at least 1, got %d", ErrValidation, req.FrameSkip)
	case req.Quality < model.MinQuality || req.Quality > model.MaxQuality:
		return fmt.Errorf("%w: quality must be within %.1f..%.1f, got %g",
			ErrValidation, model.MinQuality, model.MaxQuality, req.Quality)
	}
	f, err := model.ParseFormat(string(req.Format))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	// Aliases like "jpg" belong to the parsers; requests carry the canonical name.
	if f != req.Format {
		return fmt.Errorf("%w: format %q is not canonical, use %q", ErrValidation, req.Format, f)
	}
	return nil
}

// Active reports whether a run is in flight.
func (s *Service) Active() bool { return s.active.Load() }

// Start validates req on the calling goroutine and, if it is acceptable,
// launches the worker. The returned Run is the only way to cancel or await
// it. Every started run ends with exactly one Reporter.Result.
func (s *Service) Start(ctx context.Context, req model.ConversionRequest) (*Run, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if !s.active.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	run := newRun(s.jobID+"-"+uuid.NewString(), req)
	go s.work(ctx, run)
	return run, nil
}

// Convert runs req to completion on the calling goroutine's behalf.
func (s *Service) Convert(ctx context.Context, req model.ConversionRequest) (Result, error) {
	run, err := s.Start(ctx, req)
	if err != nil {
		return Result{State: StateIdle, Err: err}, err
	}
	return run.Wait()
}

// Plan probes the video and returns what a run of req would write.
func (s *Service) Plan(ctx context.Context, req model.ConversionRequest) (Plan, error) {
	if err := Validate(req); err != nil {
		return Plan{}, err
	}
	src, err := s.opener.Open(ctx, req.VideoPath)
	if err != nil {
		return Plan{}, err
	}
	info := src.Info()
	_ = src.Close()
	return BuildPlan(info, req), nil
}

func (s *Service) work(ctx context.Context, run *Run) {
	log := s.logger.With(zap.String("job", run.id))
	req := run.req
	log.Info("conversion started",
		zap.String("video", req.VideoPath),
		zap.String("export_dir", req.ExportDir),
		zap.String("format", string(req.Format)),
		zap.Float64("quality", req.Quality),
		zap.Int("skip", req.FrameSkip),
	)

	res := s.execute(ctx, run)
	res.JobID = run.id

	switch res.State {
	case StateFailed:
		log.Error("Error during conversion", zap.Error(res.Err),
			zap.Int("decoded", res.Summary.Decoded),
			zap.Int("retained", res.Summary.Retained))
	case StateCancelled:
		log.Info("conversion cancelled",
			zap.Int("decoded", res.Summary.Decoded),
			zap.Int("retained", res.Summary.Retained))
	default:
		log.Info("conversion completed",
			zap.Int("decoded", res.Summary.Decoded),
			zap.Int("retained", res.Summary.Retained),
			zap.String("animation", res.Summary.AnimationPath))
	}

	run.res = res
	s.active.Store(false)
	s.emitResult(res)
	close(run.done)
}

// execute is the worker body. Every error returns through here; nothing
// panics out to the caller.
func (s *Service) execute(ctx context.Context, run *Run) Result {
	req := run.req
	var sum model.OutputSummary
	failed := func(err error) Result {
		s.emitUpdate(run, progress.Update{Stage: progress.StageError, Message: "Error: " + err.Error()})
		return Result{State: StateFailed, Summary: sum, Err: err}
	}

	s.emitUpdate(run, progress.Update{
		Stage:   progress.StageProbing,
		Message: "Opening " + filepath.Base(req.VideoPath),
	})
	src, err := s.opener.Open(ctx, req.VideoPath)
	if err != nil {
		return failed(err)
	}
	defer src.Close()

	total := src.Info().TotalFrames()
	dirReady := false

	for {
		if run.cancelled() || ctx.Err() != nil {
			s.emitUpdate(run, progress.Update{
				Stage:   progress.StageCancelled,
				Percent: Percent(sum.Decoded, total),
				Frame:   sum.Decoded,
				Total:   total,
				Written: sum.Retained,
				Message: fmt.Sprintf("Cancelled after %d frames (%d written)", sum.Decoded, sum.Retained),
			})
			return Result{State: StateCancelled, Summary: sum}
		}

		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return failed(err)
		}
		sum.Decoded = frame.Index

		var thumb image.Image
		if Retained(frame.Index, req.FrameSkip) {
			if !dirReady {
				if err := util.EnsureDir(req.ExportDir); err != nil {
					return failed(fmt.Errorf("%w: create export directory: %v", encoder.ErrEncode, err))
				}
				dirReady = true
			}
			path := media.StillPath(req.ExportDir, frame.Index, req.Format)
			if err := encoder.Encode(frame.Image, path, req.Format, req.Quality); err != nil {
				return failed(err)
			}
			sum.Stills = append(sum.Stills, path)
			sum.Retained++
			if s.previewW > 0 && s.previewH > 0 {
				if t := preview.Thumbnail(frame.Image, s.previewW, s.previewH); t != nil {
					thumb = t
				}
			}
		}

		s.emitUpdate(run, progress.Update{
			Stage:   progress.StageSlicing,
			Percent: Percent(frame.Index, total),
			Frame:   frame.Index,
			Total:   total,
			Written: sum.Retained,
			Preview: thumb,
			Message: frameMessage(frame.Index, total, sum.Retained),
		})
	}

	if req.Format.Animated() && len(sum.Stills) > 0 {
		dst := media.AnimationPath(req.ExportDir)
		s.emitUpdate(run, progress.Update{
			Stage:   progress.StageAssembling,
			Percent: 100,
			Frame:   sum.Decoded,
			Total:   total,
			Written: sum.Retained,
			Message: fmt.Sprintf("Assembling %s from %d frames", media.AnimationName, len(sum.Stills)),
		})
		if err := animation.AssembleAndRemove(ctx, sum.Stills, dst, FrameDelay(src.Info())); err != nil {
			return failed(err)
		}
		sum.AnimationPath = dst
		if fi, err := os.Stat(dst); err == nil {
			sum.AnimationSize = fi.Size()
		}
		sum.Stills = nil
	}

	s.emitUpdate(run, progress.Update{
		Stage:   progress.StageCompleted,
		Percent: 100,
		Frame:   sum.Decoded,
		Total:   total,
		Written: sum.Retained,
		Message: savedMessage(req, sum),
	})
	return Result{State: StateCompleted, Summary: sum}
}

func frameMessage(frame, total, written int) string {
	if total > 0 {
		return fmt.Sprintf("Frame %d/%d (%d written)", frame, total, written)
	}
	return fmt.Sprintf("Frame %d (%d written)", frame, written)
}

func savedMessage(req model.ConversionRequest, sum model.OutputSummary) string {
	if sum.AnimationPath != "" {
		return fmt.Sprintf("Saved: %s (%s)", filepath.Base(sum.AnimationPath), format.HumanizeBytes(sum.AnimationSize))
	}
	return fmt.Sprintf("Saved: %s to %s", format.Frames(sum.Retained), req.ExportDir)
}

func (s *Service) emitUpdate(run *Run, u progress.Update) {
	u.JobID = run.id
	s.reporter.Update(u)
}

func (s *Service) emitResult(res Result) {
	s.reporter.Result(progress.Result{
		JobID:         res.JobID,
		Stage:         stageOf(res.State),
		Stills:        res.Summary.Stills,
		AnimationPath: res.Summary.AnimationPath,
		Bytes:         res.Summary.AnimationSize,
		Err:           res.Err,
	})
}

func stageOf(st State) progress.Stage {
	switch st {
	case StateCancelled:
		return progress.StageCancelled
	case StateFailed:
		return progress.StageError
	default:
		return progress.StageCompleted
	}
}
