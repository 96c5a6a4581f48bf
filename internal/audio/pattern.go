package audio

import "time"

const (
	// StepsPerLoop is the drum pattern length; the step counter wraps here.
	StepsPerLoop = 32
	// MelodyLength is the length of the fast-tempo brass motif.
	MelodyLength = 16
)

// Note frequencies in Hz.
const (
	noteC2 = 65.41
	noteE3 = 164.81
	noteA2 = 110.00
	noteC4 = 261.63
	noteE4 = 329.63
	noteF4 = 349.23
	noteG4 = 392.00
	noteA4 = 440.00
	noteC5 = 523.25
)

// fastMelody rises through fourths and fifths; zero entries are rests.
var fastMelody = [MelodyLength]float64{
	noteC4, 0, noteG4, 0,
	noteF4, 0, noteG4, 0,
	noteC5, noteC5, 0, noteA4,
	noteG4, 0, noteE4, 0,
}

// StepInterval returns the duration of one loop step (a sixteenth note) at tempo.
func StepInterval(tempo Tempo) time.Duration {
	return time.Minute / time.Duration(tempo.BPM()) / 4
}

// Pattern returns the voices sounding at the given loop step. step is taken modulo
// StepsPerLoop.
func Pattern(tempo Tempo, step int) []Voice {
	step = ((step % StepsPerLoop) + StepsPerLoop) % StepsPerLoop

	var voices []Voice
	if step%4 == 0 {
		voices = append(voices, Voice{Kind: VoiceKick, Gain: 1.8, Decay: 0.5})
	}
	if step%8 == 4 {
		voices = append(voices, Voice{Kind: VoiceSnare, Gain: 0.3, Decay: 0.25})
	}
	if step%2 == 1 {
		voices = append(voices, Voice{Kind: VoiceHiHat, Gain: 0.04, Decay: 0.08})
	}

	switch tempo {
	case TempoFast:
		if freq := fastMelody[step%MelodyLength]; freq > 0 {
			voices = append(voices,
				Voice{Kind: VoiceBrass, Freq: freq, Decay: 0.5, Gain: 0.4},
				Voice{Kind: VoiceBrass, Freq: freq * 0.5, Decay: 0.5, Gain: 0.2},
			)
		}
	default:
		if step%8 == 0 {
			voices = append(voices, Voice{Kind: VoiceBrass, Freq: noteC2, Decay: 0.8, Gain: 0.3})
		}
	}
	return voices
}

// Cue voice layouts.
var (
	countdownVoices = []Voice{
		{Kind: VoiceBrass, Freq: noteA4, Decay: 0.4, Gain: 0.6},
	}
	transitionVoices = []Voice{
		{Kind: VoiceBrass, Freq: noteA2, Decay: 0.8, Gain: 0.8},
		{Kind: VoiceBrass, Freq: noteE3, Decay: 0.6, Gain: 0.6, Offset: 0.1},
	}
	completionVoices = []Voice{
		{Kind: VoiceBrass, Freq: noteC4, Decay: 1.0, Gain: 0.5},
		{Kind: VoiceBrass, Freq: noteE4, Decay: 1.0, Gain: 0.5, Offset: 0.15},
		{Kind: VoiceBrass, Freq: noteG4, Decay: 1.0, Gain: 0.5, Offset: 0.30},
		{Kind: VoiceBrass, Freq: noteC5, Decay: 1.0, Gain: 0.5, Offset: 0.45},
	}
)
