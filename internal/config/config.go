package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slice/internal/dirs"
	"slice/internal/logging"
	"slice/internal/model"
	"slice/internal/source"
	"slice/internal/state"
)

// Viper keys and the persistent flags bound to them.
var flagKeys = map[string]string{
	"out_dir":    "out-dir",
	"format":     "format",
	"quality":    "quality",
	"skip":       "skip",
	"decoder":    "decoder",
	"ffmpeg":     "ffmpeg",
	"ffprobe":    "ffprobe",
	"log_file":   "log-file",
	"state_file": "state-file",
	"verbose":    "verbose",
}

// Settings is the resolved configuration. Precedence: flag > env > config
// file > default.
type Settings struct {
	OutDir    string
	Format    model.Format
	Quality   float64
	Skip      int
	Decoder   source.Backend
	FFmpeg    string
	FFprobe   string
	LogFile   string
	StateFile string
	Verbose   bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("out_dir", "")
	v.SetDefault("format", string(model.FormatJPEG))
	v.SetDefault("quality", model.DefaultQuality)
	v.SetDefault("skip", 1)
	v.SetDefault("decoder", string(source.BackendAuto))
	v.SetDefault("ffmpeg", "")
	v.SetDefault("ffprobe", "")
	v.SetDefault("log_file", logging.DefaultFile)
	v.SetDefault("state_file", state.DefaultFile)
	v.SetDefault("verbose", false)
}

// Configure sets up environment lookup (SLICE_*) and defaults on v.
func Configure(v *viper.Viper) {
	v.SetEnvPrefix("SLICE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
}

// Init wires Viper with config paths, env, defaults, and flag bindings.
// It is non-fatal: any errors are returned for optional handling by caller.
func Init(root *cobra.Command) error {
	v := viper.GetViper()

	// Setup config search path
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		v.AddConfigPath(cfgDir)
	}
	v.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	Configure(v)

	// Bind root persistent flags to Viper keys
	for key, flag := range flagKeys {
		if f := root.PersistentFlags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind %s: %w", flag, err)
			}
		}
	}

	// Read config file if present (ignore not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Load resolves Settings from the global Viper instance.
func Load() (Settings, error) {
	return FromViper(viper.GetViper())
}

// FromViper resolves and validates Settings from v.
func FromViper(v *viper.Viper) (Settings, error) {
	f, err := model.ParseFormat(v.GetString("format"))
	if err != nil {
		return Settings{}, err
	}
	dec, ok := source.ParseBackend(v.GetString("decoder"))
	if !ok {
		return Settings{}, fmt.Errorf("invalid decoder %q (valid: auto|ffmpeg|mpeg)", v.GetString("decoder"))
	}
	s := Settings{
		OutDir:    v.GetString("out_dir"),
		Format:    f,
		Quality:   v.GetFloat64("quality"),
		Skip:      v.GetInt("skip"),
		Decoder:   dec,
		FFmpeg:    v.GetString("ffmpeg"),
		FFprobe:   v.GetString("ffprobe"),
		LogFile:   v.GetString("log_file"),
		StateFile: v.GetString("state_file"),
		Verbose:   v.GetBool("verbose"),
	}
	if s.LogFile == "" {
		s.LogFile = logging.DefaultFile
	}
	if s.StateFile == "" {
		s.StateFile = state.DefaultFile
	}
	return s, nil
}

// Request builds a conversion request for video from s.
func (s Settings) Request(video string) model.ConversionRequest {
	return model.ConversionRequest{
		VideoPath: video,
		ExportDir: s.OutDir,
		Format:    s.Format,
		Quality:   s.Quality,
		FrameSkip: s.Skip,
	}
}
