package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func kinds(voices []Voice) map[VoiceKind]int {
	out := make(map[VoiceKind]int)
	for _, v := range voices {
		out[v.Kind]++
	}
	return out
}

func TestStepInterval(t *testing.T) {
	// 60 / 148 / 4 and 60 / 92 / 4 seconds.
	assert.InDelta(t, 0.10135, StepInterval(TempoFast).Seconds(), 0.0001)
	assert.InDelta(t, 0.16304, StepInterval(TempoSlow).Seconds(), 0.0001)
	assert.Less(t, StepInterval(TempoFast), StepInterval(TempoSlow))
	assert.Greater(t, StepInterval(TempoFast), 100*time.Millisecond)
}

func TestPattern_Drums(t *testing.T) {
	for _, tempo := range []Tempo{TempoSlow, TempoFast} {
		for step := 0; step < StepsPerLoop; step++ {
			k := kinds(Pattern(tempo, step))
			assert.Equal(t, step%4 == 0, k[VoiceKick] == 1, "kick tempo=%s step=%d", tempo, step)
			assert.Equal(t, step%8 == 4, k[VoiceSnare] == 1, "snare tempo=%s step=%d", tempo, step)
			assert.Equal(t, step%2 == 1, k[VoiceHiHat] == 1, "hat tempo=%s step=%d", tempo, step)
		}
	}
}

func TestPattern_FastMelody(t *testing.T) {
	// The motif repeats twice per drum cycle.
	for step := 0; step < StepsPerLoop; step++ {
		var brass []Voice
		for _, v := range Pattern(TempoFast, step) {
			if v.Kind == VoiceBrass {
				brass = append(brass, v)
			}
		}
		note := fastMelody[step%MelodyLength]
		if note == 0 {
			assert.Empty(t, brass, "step %d", step)
			continue
		}
		if assert.Len(t, brass, 2, "step %d", step) {
			assert.Equal(t, note, brass[0].Freq)
			assert.Equal(t, note/2, brass[1].Freq)
		}
	}
	assert.Equal(t, noteC4, Pattern(TempoFast, 0)[1].Freq)
	assert.Equal(t, Pattern(TempoFast, 2), Pattern(TempoFast, 18))
}

func TestPattern_SlowBassPulse(t *testing.T) {
	for step := 0; step < StepsPerLoop; step++ {
		var bass int
		for _, v := range Pattern(TempoSlow, step) {
			if v.Kind == VoiceBrass {
				assert.Equal(t, noteC2, v.Freq)
				bass++
			}
		}
		if step%8 == 0 {
			assert.Equal(t, 1, bass, "step %d", step)
		} else {
			assert.Zero(t, bass, "step %d", step)
		}
	}
}

func TestPattern_WrapsStep(t *testing.T) {
	assert.Equal(t, Pattern(TempoFast, 3), Pattern(TempoFast, 3+StepsPerLoop))
	assert.Equal(t, Pattern(TempoSlow, 31), Pattern(TempoSlow, -1))
}

func TestCueVoices(t *testing.T) {
	if assert.Len(t, transitionVoices, 2) {
		assert.Equal(t, 110.0, transitionVoices[0].Freq)
		assert.Equal(t, 164.81, transitionVoices[1].Freq)
		assert.InDelta(t, 0.1, transitionVoices[1].Offset-transitionVoices[0].Offset, 1e-9)
	}

	if assert.Len(t, completionVoices, 4) {
		want := []float64{noteC4, noteE4, noteG4, noteC5}
		for i, v := range completionVoices {
			assert.Equal(t, want[i], v.Freq)
			assert.InDelta(t, 0.15*float64(i), v.Offset, 1e-9)
		}
	}
}
