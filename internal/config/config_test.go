package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/tabata-timer/internal/logging"
	"github.com/lowaak/tabata-timer/internal/tabata"
)

func load(t *testing.T, args ...string) (Settings, error) {
	t.Helper()
	return Load(NewFlagSet("tabata"), args)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	settings, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, tabata.DefaultConfig(), settings.Workout)
	assert.Equal(t, tabata.BuiltinPresets, settings.Presets)
	assert.False(t, settings.Music)
	assert.False(t, settings.Mute)
	assert.False(t, settings.Headless)
	assert.False(t, settings.Verbose)
	assert.Equal(t, logging.DefaultPath(), settings.LogFile)
	assert.Empty(t, settings.ConfigFile)
}

func TestLoad_Flags(t *testing.T) {
	settings, err := load(t, "--work", "30", "-r", "15", "--sets=4", "-p", "3", "--music", "--headless", "--log-file", "/tmp/t.log")
	require.NoError(t, err)

	assert.Equal(t, tabata.Config{WorkDuration: 30, RestDuration: 15, TotalSets: 4, PrepareDuration: 3}, settings.Workout)
	assert.True(t, settings.Music)
	assert.True(t, settings.Headless)
	assert.Equal(t, "/tmp/t.log", settings.LogFile)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TABATA_WORK", "45")
	t.Setenv("TABATA_MUTE", "true")
	t.Setenv("TABATA_LOG_FILE", "/tmp/env.log")

	settings, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, 45, settings.Workout.WorkDuration)
	assert.Equal(t, tabata.DefaultRestDuration, settings.Workout.RestDuration)
	assert.True(t, settings.Mute)
	assert.Equal(t, "/tmp/env.log", settings.LogFile)

	// An explicit flag beats the environment.
	settings, err = load(t, "--work", "25")
	require.NoError(t, err)
	assert.Equal(t, 25, settings.Workout.WorkDuration)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeFile(t, "tabata.yaml", "work: 35\nsets: 6\nmusic: true\n")

	settings, err := load(t, "--config", path, "--sets", "2")
	require.NoError(t, err)
	assert.Equal(t, path, settings.ConfigFile)
	assert.Equal(t, 35, settings.Workout.WorkDuration)
	assert.Equal(t, 2, settings.Workout.TotalSets)
	assert.True(t, settings.Music)

	_, err = load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_PresetWithOverride(t *testing.T) {
	settings, err := load(t, "--preset", "endurance", "--sets", "3")
	require.NoError(t, err)
	assert.Equal(t, tabata.Config{WorkDuration: 40, RestDuration: 20, PrepareDuration: 10, TotalSets: 3}, settings.Workout)
	assert.Equal(t, "endurance", settings.Preset)

	_, err = load(t, "--preset", "marathon")
	assert.ErrorIs(t, err, tabata.ErrUnknownPreset)
}

func TestLoad_PresetsFile(t *testing.T) {
	path := writeFile(t, "presets.yaml", "presets:\n  - {name: sprint, work: 30, rest: 30, sets: 10, prepare: 10}\n")

	settings, err := load(t, "--presets-file", path, "--preset", "Sprint")
	require.NoError(t, err)
	assert.Equal(t, tabata.Config{WorkDuration: 30, RestDuration: 30, TotalSets: 10, PrepareDuration: 10}, settings.Workout)
	assert.Len(t, settings.Presets, len(tabata.BuiltinPresets)+1)

	bad := writeFile(t, "bad.yaml", "presets:\n  - {name: x, work: 0, rest: 1, sets: 1, prepare: 1}\n")
	_, err = load(t, "--presets-file", bad)
	assert.ErrorIs(t, err, tabata.ErrInvalidConfig)
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := load(t, "--work", "0")
	assert.ErrorIs(t, err, tabata.ErrInvalidConfig)

	_, err = load(t, "--sets", "100")
	assert.ErrorIs(t, err, tabata.ErrInvalidConfig)

	_, err = load(t, "--no-such-flag")
	assert.Error(t, err)
}

func TestLoad_Help(t *testing.T) {
	fs := NewFlagSet("tabata")
	fs.SetOutput(io.Discard)
	_, err := Load(fs, []string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
