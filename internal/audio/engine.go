// Package audio produces the timer's sounds: short cues for countdowns, phase changes
// and completion, and a tempo-locked background loop. All playback is fire-and-forget;
// when no audio output is available every operation silently does nothing.
package audio

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by EnsureReady when no audio output can be used.
// Callers treat it as informational: the timer keeps working without sound.
var ErrUnavailable = errors.New("audio output unavailable")

// Tempo selects the playback rate of the background loop.
type Tempo int

const (
	TempoSlow Tempo = iota // prepare and rest
	TempoFast              // work
)

// Beats per minute for each tempo. One loop step is a sixteenth note.
const (
	FastBPM = 148
	SlowBPM = 92
)

func (t Tempo) String() string {
	if t == TempoFast {
		return "fast"
	}
	return "slow"
}

// BPM returns the tempo's beats per minute.
func (t Tempo) BPM() int {
	if t == TempoFast {
		return FastBPM
	}
	return SlowBPM
}

// Engine is the capability the workout controller drives. Implementations handle all
// errors internally; none of the play operations report failure.
type Engine interface {
	// EnsureReady activates audio output. It must complete before cues can be heard
	// and is safe to call repeatedly. A non-nil error means playback stays silent.
	EnsureReady(ctx context.Context) error

	// PlayCountdownCue plays the short fixed-pitch countdown tick.
	PlayCountdownCue()

	// PlayPhaseTransitionCue plays the two-tone phase boundary buzzer.
	PlayPhaseTransitionCue()

	// PlayCompletionCue plays the ascending completion fanfare.
	PlayCompletionCue()

	// StartLoop cancels any running loop and starts a new one at tempo from step 0.
	StartLoop(tempo Tempo)

	// StopLoop cancels the running loop. It is a no-op when none is running.
	StopLoop()
}

// CueKind identifies what the engine just played.
type CueKind int

const (
	CueCountdown CueKind = iota
	CueTransition
	CueCompletion
	CueLoopStep
)

func (k CueKind) String() string {
	switch k {
	case CueCountdown:
		return "countdown"
	case CueTransition:
		return "transition"
	case CueCompletion:
		return "completion"
	case CueLoopStep:
		return "loop-step"
	default:
		return "unknown"
	}
}

// CueEvent is published for every cue and loop step that reaches the output.
type CueEvent struct {
	Kind  CueKind
	Tempo Tempo // loop steps only
	Step  int   // loop steps only
}

// NoopEngine is an Engine that does nothing.
// Use it when sound is disabled or as a stand-in during tests.
type NoopEngine struct{}

func (NoopEngine) EnsureReady(context.Context) error { return nil }
func (NoopEngine) PlayCountdownCue()                 {}
func (NoopEngine) PlayPhaseTransitionCue()           {}
func (NoopEngine) PlayCompletionCue()                {}
func (NoopEngine) StartLoop(Tempo)                   {}
func (NoopEngine) StopLoop()                         {}

var _ Engine = NoopEngine{}
