package tabata

import (
	"errors"
	"fmt"

	"github.com/lowaak/tabata-timer/internal/audio"
)

// Phase is one stage of the workout cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePrepare
	PhaseWork
	PhaseRest
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhasePrepare:
		return "PREPARE"
	case PhaseWork:
		return "WORK"
	case PhaseRest:
		return "REST"
	case PhaseComplete:
		return "COMPLETE"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Active reports whether the phase counts down: PREPARE, WORK or REST.
func (p Phase) Active() bool {
	return p == PhasePrepare || p == PhaseWork || p == PhaseRest
}

// Label is the headline shown above the clock.
func (p Phase) Label() string {
	switch p {
	case PhasePrepare:
		return "GET READY"
	case PhaseWork:
		return "GO!"
	case PhaseRest:
		return "REST"
	case PhaseComplete:
		return "FINISHED"
	default:
		return "READY"
	}
}

// Tempo returns the music tempo that accompanies the phase.
func (p Phase) Tempo() audio.Tempo {
	if p == PhaseWork {
		return audio.TempoFast
	}
	return audio.TempoSlow
}

// Configuration limits. The duration limit keeps every value printable as MM:SS.
const (
	MinDuration = 1
	MaxDuration = 99*60 + 59
	MinSets     = 1
	MaxSets     = 99
)

// Defaults for a classic Tabata round.
const (
	DefaultWorkDuration    = 20
	DefaultRestDuration    = 10
	DefaultTotalSets       = 8
	DefaultPrepareDuration = 5
)

// Precondition errors returned by Controller commands. None of them changes state.
var (
	ErrConfigLocked   = errors.New("configuration cannot change while a workout is in progress")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNotActive      = errors.New("no workout in progress")
	ErrAlreadyStarted = errors.New("workout already started")
	ErrUnknownPreset  = errors.New("unknown preset")
	ErrShutdown       = errors.New("controller is shut down")
)

// Config is the immutable-per-run workout configuration. Durations are in seconds.
type Config struct {
	WorkDuration    int `yaml:"work" mapstructure:"work"`
	RestDuration    int `yaml:"rest" mapstructure:"rest"`
	PrepareDuration int `yaml:"prepare" mapstructure:"prepare"`
	TotalSets       int `yaml:"sets" mapstructure:"sets"`
}

// DefaultConfig returns 20 s work, 10 s rest, 8 sets and 5 s preparation.
func DefaultConfig() Config {
	return Config{
		WorkDuration:    DefaultWorkDuration,
		RestDuration:    DefaultRestDuration,
		PrepareDuration: DefaultPrepareDuration,
		TotalSets:       DefaultTotalSets,
	}
}

// Validate returns an error wrapping ErrInvalidConfig for the first out-of-range field.
func (c Config) Validate() error {
	durations := []struct {
		name  string
		value int
	}{
		{"work", c.WorkDuration},
		{"rest", c.RestDuration},
		{"prepare", c.PrepareDuration},
	}
	for _, d := range durations {
		if d.value < MinDuration || d.value > MaxDuration {
			return fmt.Errorf("%w: %s duration %d s outside %d..%d", ErrInvalidConfig, d.name, d.value, MinDuration, MaxDuration)
		}
	}
	if c.TotalSets < MinSets || c.TotalSets > MaxSets {
		return fmt.Errorf("%w: sets %d outside %d..%d", ErrInvalidConfig, c.TotalSets, MinSets, MaxSets)
	}
	return nil
}

// TotalDuration is the length of a full run in seconds.
func (c Config) TotalDuration() int {
	return c.PrepareDuration + c.TotalSets*c.WorkDuration + (c.TotalSets-1)*c.RestDuration
}

func (c Config) String() string {
	return fmt.Sprintf("work=%ds rest=%ds sets=%d prepare=%ds", c.WorkDuration, c.RestDuration, c.TotalSets, c.PrepareDuration)
}

// ConfigPatch is a partial configuration edit. Nil fields keep their current value.
type ConfigPatch struct {
	WorkDuration    *int
	RestDuration    *int
	PrepareDuration *int
	TotalSets       *int
}

// PatchFrom returns a patch that replaces every field with c's.
func PatchFrom(c Config) ConfigPatch {
	return ConfigPatch{
		WorkDuration:    &c.WorkDuration,
		RestDuration:    &c.RestDuration,
		PrepareDuration: &c.PrepareDuration,
		TotalSets:       &c.TotalSets,
	}
}

// Apply returns c with the patch's fields overlaid.
func (p ConfigPatch) Apply(c Config) Config {
	if p.WorkDuration != nil {
		c.WorkDuration = *p.WorkDuration
	}
	if p.RestDuration != nil {
		c.RestDuration = *p.RestDuration
	}
	if p.PrepareDuration != nil {
		c.PrepareDuration = *p.PrepareDuration
	}
	if p.TotalSets != nil {
		c.TotalSets = *p.TotalSets
	}
	return c
}

// State is the mutable timer state. Only the Controller mutates it.
type State struct {
	Phase      Phase
	CurrentSet int // 1-based
	TimeLeft   int // seconds remaining in the current phase
	IsRunning  bool
}

// IdleState is the baseline before a run starts and after a reset.
func IdleState(c Config) State {
	return State{Phase: PhaseIdle, CurrentSet: 1, TimeLeft: c.PrepareDuration}
}

// Snapshot is the read-only view handed to renderers on every change.
type Snapshot struct {
	State        State
	Config       Config
	MusicEnabled bool
	// RunID identifies the current run. Empty until the first start.
	RunID string
}

// Clock returns the remaining time as MM:SS.
func (s Snapshot) Clock() string {
	if s.State.Phase == PhaseComplete {
		return FormatClock(0)
	}
	return FormatClock(s.State.TimeLeft)
}

// FormatClock renders seconds as zero-padded MM:SS. Negative input renders as 00:00.
func FormatClock(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModeTimer    UIMode = iota // Clock, progress and run controls
	UIModePresets                // Preset selection
	UIModeSettings               // Duration and round editing
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyBinding  rune // The number key to activate this mode (1-9)
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeTimer, DisplayName: "Timer", KeyBinding: '1'},
	{Mode: UIModePresets, DisplayName: "Presets", KeyBinding: '2'},
	{Mode: UIModeSettings, DisplayName: "Settings", KeyBinding: '3'},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

// SettingField is one editable configuration value on the settings screen.
type SettingField int

const (
	SettingWork SettingField = iota
	SettingRest
	SettingSets
	SettingPrepare
)

// SettingFieldInfo describes how a SettingField is shown and adjusted.
type SettingFieldInfo struct {
	Field       SettingField
	DisplayName string
	Unit        string
	Step        int // change per key press
}

// AllSettingFields lists the settings screen rows in order
var AllSettingFields = []SettingFieldInfo{
	{Field: SettingWork, DisplayName: "Work", Unit: "s", Step: 5},
	{Field: SettingRest, DisplayName: "Rest", Unit: "s", Step: 5},
	{Field: SettingSets, DisplayName: "Rounds", Unit: "", Step: 1},
	{Field: SettingPrepare, DisplayName: "Prepare", Unit: "s", Step: 1},
}

// Value returns the field's value in c.
func (f SettingField) Value(c Config) int {
	switch f {
	case SettingWork:
		return c.WorkDuration
	case SettingRest:
		return c.RestDuration
	case SettingSets:
		return c.TotalSets
	default:
		return c.PrepareDuration
	}
}

// Patch returns a patch setting the field to value.
func (f SettingField) Patch(value int) ConfigPatch {
	switch f {
	case SettingWork:
		return ConfigPatch{WorkDuration: &value}
	case SettingRest:
		return ConfigPatch{RestDuration: &value}
	case SettingSets:
		return ConfigPatch{TotalSets: &value}
	default:
		return ConfigPatch{PrepareDuration: &value}
	}
}

// Limits returns the valid range of the field.
func (f SettingField) Limits() (lo, hi int) {
	if f == SettingSets {
		return MinSets, MaxSets
	}
	return MinDuration, MaxDuration
}
