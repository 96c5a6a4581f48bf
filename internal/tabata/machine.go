package tabata

import (
	"fmt"

	"github.com/lowaak/tabata-timer/internal/audio"
)

// Event drives a State through Step.
type Event int

const (
	EventStart Event = iota
	EventTick
	EventToggleRunning
	EventReset
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventTick:
		return "tick"
	case EventToggleRunning:
		return "toggle-running"
	case EventReset:
		return "reset"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// EffectKind is a side effect Step asks its caller to perform.
type EffectKind int

const (
	EffectCountdownCue EffectKind = iota
	EffectTransitionCue
	EffectCompletionCue
	EffectStartLoop // Effect.Tempo holds the tempo
	EffectStopLoop
	EffectStartTicking
	EffectStopTicking
	// EffectPublishFrame asks for Effect.Frame to be shown before the returned state.
	EffectPublishFrame
)

func (k EffectKind) String() string {
	switch k {
	case EffectCountdownCue:
		return "countdown-cue"
	case EffectTransitionCue:
		return "transition-cue"
	case EffectCompletionCue:
		return "completion-cue"
	case EffectStartLoop:
		return "start-loop"
	case EffectStopLoop:
		return "stop-loop"
	case EffectStartTicking:
		return "start-ticking"
	case EffectStopTicking:
		return "stop-ticking"
	case EffectPublishFrame:
		return "publish-frame"
	default:
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
}

// Effect is one side effect returned by Step.
type Effect struct {
	Kind  EffectKind
	Tempo audio.Tempo
	Frame State
}

func (e Effect) String() string {
	switch e.Kind {
	case EffectStartLoop:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Tempo)
	case EffectPublishFrame:
		return fmt.Sprintf("%s(%s %d)", e.Kind, e.Frame.Phase, e.Frame.TimeLeft)
	default:
		return e.Kind.String()
	}
}

// CheckEvent reports whether event is allowed in state. Ticks and resets are always
// allowed; a tick that cannot advance anything is simply ignored by Step.
func CheckEvent(state State, event Event) error {
	switch event {
	case EventStart:
		if state.Phase.Active() {
			return ErrAlreadyStarted
		}
	case EventToggleRunning:
		if !state.Phase.Active() {
			return ErrNotActive
		}
	}
	return nil
}

// Step is the workout state machine. It returns the next state and the side effects the
// caller must perform, in order. Rejected events return state unchanged and no effects.
//
// Music effects are emitted as if music were enabled; the caller drops EffectStartLoop
// when the listener has music turned off.
func Step(state State, event Event, config Config) (State, []Effect) {
	if CheckEvent(state, event) != nil {
		return state, nil
	}

	switch event {
	case EventStart:
		next := State{Phase: PhasePrepare, CurrentSet: 1, TimeLeft: config.PrepareDuration, IsRunning: true}
		return next, []Effect{
			{Kind: EffectStartTicking},
			{Kind: EffectCountdownCue},
			{Kind: EffectStartLoop, Tempo: PhasePrepare.Tempo()},
		}

	case EventTick:
		return tick(state, config)

	case EventToggleRunning:
		state.IsRunning = !state.IsRunning
		if state.IsRunning {
			return state, []Effect{
				{Kind: EffectStartTicking},
				{Kind: EffectStartLoop, Tempo: state.Phase.Tempo()},
			}
		}
		return state, []Effect{{Kind: EffectStopTicking}, {Kind: EffectStopLoop}}

	case EventReset:
		return IdleState(config), []Effect{{Kind: EffectStopTicking}, {Kind: EffectStopLoop}}
	}
	return state, nil
}

// tick counts one second. A tick that reaches zero shows the zero frame and enters the
// next phase in the same step, so every phase lasts exactly its configured seconds.
func tick(state State, config Config) (State, []Effect) {
	if !state.IsRunning || !state.Phase.Active() {
		return state, nil
	}
	if state.TimeLeft <= 0 {
		return advance(state, config, nil)
	}

	var effects []Effect
	if state.TimeLeft >= 2 && state.TimeLeft <= 4 {
		effects = append(effects, Effect{Kind: EffectCountdownCue})
	}
	state.TimeLeft--
	if state.TimeLeft > 0 {
		return state, effects
	}
	effects = append(effects, Effect{Kind: EffectPublishFrame, Frame: state})
	return advance(state, config, effects)
}

// advance performs the phase transition for a phase whose time ran out.
func advance(state State, config Config, effects []Effect) (State, []Effect) {
	switch state.Phase {
	case PhasePrepare:
		state.Phase = PhaseWork
		state.TimeLeft = config.WorkDuration
	case PhaseWork:
		if state.CurrentSet >= config.TotalSets {
			state.Phase = PhaseComplete
			state.TimeLeft = 0
			state.IsRunning = false
			return state, append(effects,
				Effect{Kind: EffectStopTicking},
				Effect{Kind: EffectCompletionCue},
				Effect{Kind: EffectStopLoop},
			)
		}
		state.Phase = PhaseRest
		state.TimeLeft = config.RestDuration
	case PhaseRest:
		state.Phase = PhaseWork
		state.CurrentSet++
		state.TimeLeft = config.WorkDuration
	}
	return state, append(effects,
		Effect{Kind: EffectTransitionCue},
		Effect{Kind: EffectStartLoop, Tempo: state.Phase.Tempo()},
	)
}

// MusicEffects returns what turning music on or off does to the loop in state.
func MusicEffects(state State, enabled bool) []Effect {
	if !enabled {
		return []Effect{{Kind: EffectStopLoop}}
	}
	if state.IsRunning && state.Phase.Active() {
		return []Effect{{Kind: EffectStartLoop, Tempo: state.Phase.Tempo()}}
	}
	return nil
}

// Reconfigure applies patch to config. Edits are accepted only in IDLE, where the
// countdown is resynced to the new preparation time, and in COMPLETE, where the state is
// kept and the new values apply from the next start.
func Reconfigure(state State, config Config, patch ConfigPatch) (State, Config, error) {
	if state.Phase.Active() {
		return state, config, ErrConfigLocked
	}
	next := patch.Apply(config)
	if err := next.Validate(); err != nil {
		return state, config, err
	}
	if state.Phase == PhaseIdle {
		state = IdleState(next)
	}
	return state, next, nil
}
