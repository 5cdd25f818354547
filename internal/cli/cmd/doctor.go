package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"slice/internal/config"
	"slice/internal/source"
	"slice/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg, ffprobe)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := config.Load()
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "MPEG-1:   built in")
			ff, ferr := deps.FindFFmpeg(s.FFmpeg)
			fp, perr := deps.FindFFprobe(s.FFprobe)
			if ferr == nil {
				fmt.Fprintf(out, "FFmpeg:   %s\n", ff)
			}
			if perr == nil {
				fmt.Fprintf(out, "FFprobe:  %s\n", fp)
			}
			if ferr != nil || perr != nil {
				if s.Decoder == source.BackendMPEG {
					return nil
				}
				if ferr == nil {
					ferr = perr
				}
				return &ExitError{Code: ExitMissingDep, Err: fmt.Errorf("%w (only .mpg/.mpeg input will work)", ferr)}
			}
			return nil
		},
	}
}
