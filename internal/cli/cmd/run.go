package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"slice/internal/config"
	"slice/internal/logging"
	"slice/internal/model"
	"slice/internal/pipeline"
	"slice/internal/progress"
	"slice/internal/source"
	"slice/internal/state"
	"slice/internal/ui"
	"slice/internal/util/format"
)

type runMode struct {
	ForceTUI  bool
	ForceText bool
	PlanOnly  bool
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "run <video>",
		Short:         "Extract frames without the interactive session",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		PreRunE:       runPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{ForceText: true})
		},
	}
	return cmd
}

type ctxKey string

const runInputsKey ctxKey = "runInputs"

type runInputs struct {
	Video    string
	Settings config.Settings
	NoUI     bool
}

func runPreRun(cmd *cobra.Command, args []string) error {
	in, err := assembleRunInputs(cmd, args)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	cmd.SetContext(context.WithValue(cmd.Context(), runInputsKey, in))
	return nil
}

// assembleRunInputs resolves settings with precedence flag > env/config >
// default.
func assembleRunInputs(cmd *cobra.Command, args []string) (runInputs, error) {
	s, err := config.Load()
	if err != nil {
		return runInputs{}, err
	}
	noUI, _ := cmd.Flags().GetBool("no-ui")
	in := runInputs{Settings: s, NoUI: noUI}
	if len(args) > 0 {
		in.Video = args[0]
	}
	return in, nil
}

func inputsFrom(cmd *cobra.Command, args []string) (runInputs, error) {
	// Grab inputs from context; if not present (root directly called without PreRunE), assemble now.
	if v := cmd.Context().Value(runInputsKey); v != nil {
		return v.(runInputs), nil
	}
	in, err := assembleRunInputs(cmd, args)
	if err != nil {
		return runInputs{}, &ExitError{Code: ExitCLIError, Err: err}
	}
	return in, nil
}

func runExecute(cmd *cobra.Command, args []string, mode runMode) error {
	in, err := inputsFrom(cmd, args)
	if err != nil {
		return err
	}
	s := in.Settings

	logger, closeLog, err := logging.New(s.LogFile, s.Verbose)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	defer func() { _ = closeLog() }()

	opener, err := source.NewOpener(source.Options{
		Backend:     s.Decoder,
		FFmpegPath:  s.FFmpeg,
		FFprobePath: s.FFprobe,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("decoder unavailable", zap.Error(err))
		return &ExitError{Code: ExitMissingDep, Err: err}
	}

	if mode.PlanOnly {
		svc := pipeline.NewService(pipeline.WithOpener(opener), pipeline.WithLogger(logger))
		plan, err := svc.Plan(cmd.Context(), requestFor(s, in.Video))
		if err != nil {
			return &ExitError{Code: exitCodeFor(err), Err: err}
		}
		printPlan(cmd.OutOrStdout(), plan)
		return nil
	}

	rec, err := state.Load(s.StateFile)
	if err != nil {
		logger.Warn("ignoring unreadable state file", zap.String("path", s.StateFile), zap.Error(err))
	}

	// TUI path (forced or auto if TTY and not disabled)
	useTUI := mode.ForceTUI || (!mode.ForceText && !in.NoUI && isTerminal())
	if useTUI {
		rec, err = ui.Run(cmd.Context(), ui.Options{
			Request: s.Request(in.Video),
			Record:  rec,
			NewService: func(rep progress.Reporter) *pipeline.Service {
				return pipeline.NewService(
					pipeline.WithOpener(opener),
					pipeline.WithReporter(rep),
					pipeline.WithLogger(logger),
				)
			},
		})
		saveState(s.StateFile, rec, logger)
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
		return nil
	}

	if in.Video == "" {
		return &ExitError{Code: ExitCLIError, Err: errors.New("a video path is required without the interactive session")}
	}
	req := requestFor(s, in.Video)
	res, err := convert(cmd.Context(), req, opener, logger, cmd.ErrOrStderr())
	if res.State != pipeline.StateIdle {
		rec = recordFor(req)
		saveState(s.StateFile, rec, logger)
	}
	if err != nil {
		return &ExitError{Code: exitCodeFor(err), Err: err}
	}
	printResult(cmd.OutOrStdout(), req, res)
	return nil
}

// convert runs one request to completion, relaying ctx cancellation (for
// example SIGINT) into the run's cancel flag.
func convert(ctx context.Context, req model.ConversionRequest, opener source.Opener, logger *zap.Logger, w io.Writer) (pipeline.Result, error) {
	svc := pipeline.NewService(
		pipeline.WithOpener(opener),
		pipeline.WithReporter(newTextReporter(w)),
		pipeline.WithLogger(logger),
		pipeline.WithPreviewSize(0, 0),
	)
	run, err := svc.Start(context.WithoutCancel(ctx), req)
	if err != nil {
		return pipeline.Result{State: pipeline.StateIdle, Err: err}, err
	}
	go func() {
		select {
		case <-ctx.Done():
			run.Cancel()
		case <-run.Done():
		}
	}()
	return run.Wait()
}

func defaultExportDir(video string) string {
	base := filepath.Base(video)
	return filepath.Join(filepath.Dir(video), base[:len(base)-len(filepath.Ext(base))]+"_frames")
}

// requestFor builds the non-interactive request, defaulting the export
// directory next to the video.
func requestFor(s config.Settings, video string) model.ConversionRequest {
	req := s.Request(video)
	if req.ExportDir == "" && req.VideoPath != "" {
		req.ExportDir = defaultExportDir(req.VideoPath)
	}
	return req
}

func recordFor(req model.ConversionRequest) state.Record {
	var rec state.Record
	if abs, err := filepath.Abs(req.VideoPath); err == nil {
		rec.LastInputDir = filepath.Dir(abs)
	}
	if abs, err := filepath.Abs(req.ExportDir); err == nil {
		rec.LastExportDir = abs
	}
	return rec
}

func saveState(path string, rec state.Record, logger *zap.Logger) {
	if rec == (state.Record{}) {
		return
	}
	if err := state.Save(path, rec); err != nil {
		logger.Warn("failed to save state", zap.String("path", path), zap.Error(err))
	}
}

func printResult(w io.Writer, req model.ConversionRequest, res pipeline.Result) {
	sum := res.Summary
	switch {
	case res.State == pipeline.StateCancelled:
		fmt.Fprintf(w, "Cancelled: %s kept in %s\n", format.Frames(sum.Retained), req.ExportDir)
	case sum.AnimationPath != "":
		fmt.Fprintf(w, "Saved: %s (%s)\n", sum.AnimationPath, format.HumanizeBytes(sum.AnimationSize))
	case req.Format.Animated():
		fmt.Fprintf(w, "No frames retained (%d decoded); nothing to assemble\n", sum.Decoded)
	default:
		fmt.Fprintf(w, "Saved: %s to %s\n", format.Frames(sum.Retained), req.ExportDir)
	}
}

// printPlan outputs a dry-run plan of actions without executing them.
func printPlan(w io.Writer, p pipeline.Plan) {
	fmt.Fprintln(w, "Dry-run plan:")
	fmt.Fprintf(w, "- Video:          %s\n", p.VideoPath)
	fmt.Fprintf(w, "- Export dir:     %s\n", p.ExportDir)
	fmt.Fprintf(w, "- Format:         %s\n", p.Format)
	if p.Format.Lossy() {
		fmt.Fprintf(w, "- Quality:        %.2f\n", p.Quality)
	}
	fmt.Fprintf(w, "- Video:          %dx%d @ %.3f fps, %.2fs\n", p.Info.Width, p.Info.Height, p.Info.FrameRate, p.Info.DurationSec)
	fmt.Fprintf(w, "- Frames:         %d total, every %d kept → %d files\n", p.TotalFrames, p.FrameSkip, len(p.Files))
	if n := len(p.Files); n > 0 {
		fmt.Fprintf(w, "- Files:          %s … %s\n", p.Files[0], p.Files[n-1])
	}
	if p.AnimationPath != "" {
		fmt.Fprintf(w, "- Animation:      %s (%d cs per frame)\n", p.AnimationPath, p.DelayCS)
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
