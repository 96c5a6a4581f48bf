package tabata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a named workout configuration.
type Preset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Config      Config `yaml:",inline"`
}

// BuiltinPresets are always available.
var BuiltinPresets = []Preset{
	{
		Name:        "classic",
		Description: "Classic Tabata: 20 s on, 10 s off, 8 rounds",
		Config:      DefaultConfig(),
	},
	{
		Name:        "beginner",
		Description: "Equal work and rest",
		Config:      Config{WorkDuration: 15, RestDuration: 15, PrepareDuration: 10, TotalSets: 6},
	},
	{
		Name:        "endurance",
		Description: "Longer efforts with short recovery",
		Config:      Config{WorkDuration: 40, RestDuration: 20, PrepareDuration: 10, TotalSets: 8},
	},
	{
		Name:        "emom",
		Description: "Every minute on the minute, 10 minutes",
		Config:      Config{WorkDuration: 50, RestDuration: 10, PrepareDuration: 10, TotalSets: 10},
	},
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadPresets reads user presets from a YAML file of the form
//
//	presets:
//	  - name: sprint
//	    work: 30
//	    rest: 30
//	    sets: 10
//	    prepare: 10
//
// Every preset is validated; the first invalid one fails the whole file.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Presets))
	for i, p := range file.Presets {
		name := normalizePresetName(p.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: preset #%d has no name", ErrInvalidConfig, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: preset %q defined twice", ErrInvalidConfig, p.Name)
		}
		seen[name] = true
		if err := p.Config.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}
	return file.Presets, nil
}

// MergePresets returns base followed by extra. A preset in extra replaces the one in
// base with the same name, keeping base's position.
func MergePresets(base, extra []Preset) []Preset {
	out := make([]Preset, 0, len(base)+len(extra))
	out = append(out, base...)
	for _, p := range extra {
		replaced := false
		for i := range out {
			if normalizePresetName(out[i].Name) == normalizePresetName(p.Name) {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}

// FindPreset looks name up case-insensitively.
func FindPreset(presets []Preset, name string) (Preset, error) {
	key := normalizePresetName(name)
	for _, p := range presets {
		if normalizePresetName(p.Name) == key {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

func normalizePresetName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
