// Package cli holds the flag, environment and logger setup shared by the
// binaries.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tomz197/flak/internal/config"
)

// EnvPrefix is prepended to every environment override, e.g. FLAK_LOG_LEVEL.
const EnvPrefix = "FLAK"

// Settings are the resolved command-line options.
type Settings struct {
	Difficulty string
	Profiles   string
	LogLevel   string
	LogFile    string
	Seed       int64
	NoColor    bool
}

// AddFlags registers the common flags on cmd.
func AddFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringP("difficulty", "d", "", "difficulty to start (easy, medium, hard or a custom profile); empty shows the menu")
	f.String("profiles", "", "YAML file with additional difficulty profiles")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.String("log-file", "", "write logs to this file")
	f.Int64("seed", 0, "spawn seed, 0 picks one from the clock")
	f.Bool("no-color", false, "disable colored output")
}

// NewViper returns a viper instance bound to cmd's flags with FLAK_ env
// overrides. Flag names map to variables by upper-casing and replacing
// dashes, so --log-level is FLAK_LOG_LEVEL.
func NewViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, fs := range []*pflag.FlagSet{cmd.PersistentFlags(), cmd.Flags()} {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}
	return v, nil
}

// Load resolves the common settings from flags and environment.
func Load(v *viper.Viper) Settings {
	return Settings{
		Difficulty: v.GetString("difficulty"),
		Profiles:   v.GetString("profiles"),
		LogLevel:   v.GetString("log-level"),
		LogFile:    v.GetString("log-file"),
		Seed:       v.GetInt64("seed"),
		NoColor:    v.GetBool("no-color"),
	}
}

// LoadProfiles returns the presets, merged with the profile file if one is
// configured.
func (s Settings) LoadProfiles() (config.Profiles, error) {
	if s.Profiles == "" {
		return config.DefaultProfiles(), nil
	}
	return config.LoadProfiles(s.Profiles)
}

// NewLogger creates a leveled logger writing to w.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "flak",
	}), nil
}

// OpenLog opens the log destination: the log file if set, otherwise
// fallback. The returned close function is always safe to call.
func (s Settings) OpenLog(fallback io.Writer) (*log.Logger, func() error, error) {
	w := fallback
	closeFn := func() error { return nil }
	if s.LogFile != "" {
		f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("error opening log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}
	logger, err := NewLogger(w, s.LogLevel)
	if err != nil {
		_ = closeFn()
		return nil, func() error { return nil }, err
	}
	return logger, closeFn, nil
}
