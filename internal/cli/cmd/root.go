package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"slice/internal/config"
	"slice/internal/encoder"
	"slice/internal/logging"
	"slice/internal/model"
	"slice/internal/pipeline"
	"slice/internal/source"
	"slice/internal/state"
)

const (
	ExitOK          = 0
	ExitCLIError    = 1
	ExitMissingDep  = 2
	ExitUnreadable  = 3
	ExitEncodeError = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitCodeFor maps pipeline and decoder errors to process exit codes.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, pipeline.ErrValidation), errors.Is(err, pipeline.ErrBusy):
		return ExitCLIError
	case errors.Is(err, source.ErrUnreadable), errors.Is(err, source.ErrDecode):
		return ExitUnreadable
	case errors.Is(err, encoder.ErrEncode):
		return ExitEncodeError
	default:
		return ExitCLIError
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slice [video]",
		Short: "Extract video frames as stills or a GIF",
		Long: "Slice decodes a video frame by frame, keeps every Nth frame and writes each one as a PNG, JPEG or GIF still. " +
			"Choosing gif assembles the stills into output.gif. On a terminal it opens an interactive session; " +
			"otherwise it behaves like 'slice run'.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{})
		},
	}

	// Persistent flags available to all subcommands
	pf := root.PersistentFlags()
	pf.StringP("out-dir", "o", "", "Export directory for frames")
	pf.StringP("format", "f", string(model.FormatJPEG), "Output format: png, jpeg, gif")
	pf.Float64P("quality", "q", model.DefaultQuality, "JPEG quality factor (0.1-1.0)")
	pf.IntP("skip", "s", 1, "Keep every Nth frame")
	pf.String("decoder", string(source.BackendAuto), "Decoder: auto, ffmpeg, mpeg")
	pf.String("ffmpeg", "", "Path to ffmpeg")
	pf.String("ffprobe", "", "Path to ffprobe")
	pf.String("log-file", logging.DefaultFile, "Append-only conversion log")
	pf.String("state-file", state.DefaultFile, "File remembering the last used directories")
	pf.BoolP("verbose", "v", false, "Also write debug logs to stderr")

	bindRunFlags(root.Flags())

	// Subcommands
	root.AddCommand(newRunCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindRunFlags(fs *pflag.FlagSet) {
	fs.Bool("no-ui", false, "Disable TUI; use plain textual output")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	if err := config.Init(root); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	return root.ExecuteContext(ctx)
}
