// Package config resolves startup settings from flags, TABATA_* environment variables
// and an optional configuration file. Nothing is ever written back.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/tabata-timer/internal/logging"
	"github.com/lowaak/tabata-timer/internal/tabata"
)

// EnvPrefix prefixes every environment variable, e.g. TABATA_WORK or TABATA_LOG_FILE.
const EnvPrefix = "TABATA"

// Keys shared by flags, environment and config file.
const (
	KeyWork        = "work"
	KeyRest        = "rest"
	KeySets        = "sets"
	KeyPrepare     = "prepare"
	KeyPreset      = "preset"
	KeyPresetsFile = "presets-file"
	KeyMusic       = "music"
	KeyMute        = "mute"
	KeyHeadless    = "headless"
	KeyLogFile     = "log-file"
	KeyVerbose     = "verbose"
	KeyConfig      = "config"
)

// Settings is everything the binary needs to start.
type Settings struct {
	Workout tabata.Config
	// Presets is the built-in list merged with the presets file, if any.
	Presets  []tabata.Preset
	Preset   string
	Music    bool
	Mute     bool
	Headless bool
	LogFile  string
	Verbose  bool
	// ConfigFile is the file that was read, or empty.
	ConfigFile string
}

type rawSettings struct {
	Preset      string `mapstructure:"preset"`
	PresetsFile string `mapstructure:"presets-file"`
	Music       bool   `mapstructure:"music"`
	Mute        bool   `mapstructure:"mute"`
	Headless    bool   `mapstructure:"headless"`
	LogFile     string `mapstructure:"log-file"`
	Verbose     bool   `mapstructure:"verbose"`
	Config      string `mapstructure:"config"`
}

// NewFlagSet declares every command line flag. Workout flags show the classic defaults
// but only override a preset when given explicitly.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.IntP(KeyWork, "w", tabata.DefaultWorkDuration, "work phase length in seconds")
	fs.IntP(KeyRest, "r", tabata.DefaultRestDuration, "rest phase length in seconds")
	fs.IntP(KeySets, "s", tabata.DefaultTotalSets, "number of work/rest rounds")
	fs.IntP(KeyPrepare, "p", tabata.DefaultPrepareDuration, "countdown before the first round in seconds")
	fs.String(KeyPreset, "", "start from a named preset (classic, beginner, endurance, emom or one from --presets-file)")
	fs.String(KeyPresetsFile, "", "YAML file with additional presets")
	fs.BoolP(KeyMusic, "m", false, "play background music from the start")
	fs.Bool(KeyMute, false, "disable all sound")
	fs.Bool(KeyHeadless, false, "print progress to the console instead of the full-screen UI")
	fs.String(KeyLogFile, logging.DefaultPath(), "log file path")
	fs.BoolP(KeyVerbose, "v", false, "include timestamps with microseconds and source locations in the log")
	fs.StringP(KeyConfig, "c", "", "read settings from this file (yaml, toml or json)")
	return fs
}

// Load parses args into fs and resolves the settings. Precedence, highest first:
// flags given on the command line, environment, config file, preset, built-in defaults.
// pflag.ErrHelp is returned unwrapped when help was requested.
func Load(fs *pflag.FlagSet, args []string) (Settings, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Settings{}, err
		}
		return Settings{}, fmt.Errorf("parse flags: %w", err)
	}

	v := newViper()
	if err := v.BindPFlags(fs); err != nil {
		return Settings{}, fmt.Errorf("bind flags: %w", err)
	}

	var raw rawSettings
	if err := v.Unmarshal(&raw); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if raw.Config != "" {
		v.SetConfigFile(raw.Config)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config file %s: %w", raw.Config, err)
		}
		if err := v.Unmarshal(&raw); err != nil {
			return Settings{}, fmt.Errorf("decode config file %s: %w", raw.Config, err)
		}
	}

	settings := Settings{
		Presets:    tabata.BuiltinPresets,
		Preset:     raw.Preset,
		Music:      raw.Music,
		Mute:       raw.Mute,
		Headless:   raw.Headless,
		LogFile:    raw.LogFile,
		Verbose:    raw.Verbose,
		ConfigFile: raw.Config,
	}

	if raw.PresetsFile != "" {
		extra, err := tabata.LoadPresets(raw.PresetsFile)
		if err != nil {
			return Settings{}, err
		}
		settings.Presets = tabata.MergePresets(tabata.BuiltinPresets, extra)
	}

	workout := tabata.DefaultConfig()
	if raw.Preset != "" {
		preset, err := tabata.FindPreset(settings.Presets, raw.Preset)
		if err != nil {
			return Settings{}, err
		}
		workout = preset.Config
	}
	workout = overrides(v).Apply(workout)
	if err := workout.Validate(); err != nil {
		return Settings{}, err
	}
	settings.Workout = workout

	return settings, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// overrides collects workout values set explicitly by a flag, the environment or the
// config file. Flag defaults do not count.
func overrides(v *viper.Viper) tabata.ConfigPatch {
	get := func(key string) *int {
		if !v.IsSet(key) {
			return nil
		}
		value := v.GetInt(key)
		return &value
	}
	return tabata.ConfigPatch{
		WorkDuration:    get(KeyWork),
		RestDuration:    get(KeyRest),
		PrepareDuration: get(KeyPrepare),
		TotalSets:       get(KeySets),
	}
}
