package audio

import (
	"math"
	"math/rand/v2"
)

const (
	// SampleRate of every rendered clip, mono.
	SampleRate = 44100

	masterGain   = 0.75
	attackTime   = 0.02
	silenceFloor = 0.001
)

// VoiceKind selects the synthesis recipe for a Voice.
type VoiceKind int

const (
	VoiceBrass VoiceKind = iota
	VoiceKick
	VoiceSnare
	VoiceHiHat
)

// Voice is one sound event inside a clip. Times are in seconds.
type Voice struct {
	Kind   VoiceKind
	Freq   float64 // brass only
	Gain   float64
	Decay  float64
	Offset float64 // start time relative to the clip start
}

func (v Voice) end() float64 {
	return v.Offset + v.Decay
}

// Clip is rendered mono 16-bit PCM at SampleRate.
type Clip struct {
	Samples []int16
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	return float64(len(c.Samples)) / SampleRate
}

// Render mixes voices into a clip. Noise uses a fixed seed so the same voices always
// render to the same samples.
func Render(voices []Voice) Clip {
	if len(voices) == 0 {
		return Clip{}
	}

	var length float64
	for _, v := range voices {
		length = max(length, v.end())
	}
	mix := make([]float64, int(math.Ceil(length*SampleRate)))
	rng := rand.New(rand.NewPCG(0x7ab, 0xa7a))

	for _, v := range voices {
		start := int(v.Offset * SampleRate)
		switch v.Kind {
		case VoiceBrass:
			renderBrass(mix[start:], v)
		case VoiceKick:
			renderKick(mix[start:], v)
		case VoiceSnare:
			renderNoise(mix[start:], v.Gain, v.Decay, rng)
			renderTriangle(mix[start:], 220, 0.5, 0.15)
		case VoiceHiHat:
			renderNoise(mix[start:], v.Gain, v.Decay, rng)
		}
	}

	samples := make([]int16, len(mix))
	for i, s := range mix {
		// tanh stands in for the compressor: loud layered hits saturate instead of wrapping.
		samples[i] = int16(math.Tanh(s*masterGain) * math.MaxInt16)
	}
	return Clip{Samples: samples}
}

// expRamp interpolates exponentially from v0 to v1 over span seconds.
func expRamp(v0, v1, t, span float64) float64 {
	if t >= span {
		return v1
	}
	return v0 * math.Pow(v1/v0, t/span)
}

// envelope is a linear attack to peak followed by an exponential decay to silence.
func envelope(peak, t, decay float64) float64 {
	if t < attackTime {
		return peak * t / attackTime
	}
	return expRamp(peak, silenceFloor, t-attackTime, decay-attackTime)
}

// renderBrass layers two detuned saws and a sub square through a closing low-pass.
func renderBrass(out []float64, v Voice) {
	layers := []struct {
		freq, gain float64
		square     bool
	}{
		{freq: v.Freq, gain: v.Gain},
		{freq: v.Freq * 1.006, gain: v.Gain * 0.7},
		{freq: v.Freq * 0.5, gain: v.Gain * 0.4, square: true},
	}

	n := min(len(out), int(v.Decay*SampleRate))
	for _, layer := range layers {
		var phase, filtered float64
		for i := 0; i < n; i++ {
			t := float64(i) / SampleRate
			phase += layer.freq / SampleRate
			phase -= math.Floor(phase)

			var raw float64
			if layer.square {
				raw = 1
				if phase >= 0.5 {
					raw = -1
				}
			} else {
				raw = 2*phase - 1
			}

			cutoff := expRamp(v.Freq*8, v.Freq*2, t, v.Decay)
			alpha := 1 - math.Exp(-2*math.Pi*cutoff/SampleRate)
			filtered += alpha * (raw - filtered)

			out[i] += filtered * envelope(layer.gain, t, v.Decay)
		}
	}
}

// renderKick is a sine whose pitch falls from 180 Hz towards zero.
func renderKick(out []float64, v Voice) {
	n := min(len(out), int(v.Decay*SampleRate))
	var phase float64
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		phase += expRamp(180, 0.01, t, v.Decay) / SampleRate
		out[i] += math.Sin(2*math.Pi*phase) * expRamp(v.Gain, silenceFloor, t, v.Decay)
	}
}

func renderTriangle(out []float64, freq, gain, decay float64) {
	n := min(len(out), int(decay*SampleRate))
	var phase float64
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		phase += freq / SampleRate
		phase -= math.Floor(phase)
		tri := 4*math.Abs(phase-0.5) - 1
		out[i] += tri * expRamp(gain, silenceFloor, t, decay)
	}
}

// renderNoise is white noise through a 1 kHz one-pole high-pass.
func renderNoise(out []float64, gain, decay float64, rng *rand.Rand) {
	n := min(len(out), int(decay*SampleRate))
	rc := 1 / (2 * math.Pi * 1000)
	dt := 1.0 / SampleRate
	a := rc / (rc + dt)

	var prevIn, prevOut float64
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		in := rng.Float64()*2 - 1
		hp := a * (prevOut + in - prevIn)
		prevIn, prevOut = in, hp
		out[i] += hp * expRamp(gain, silenceFloor, t, decay)
	}
}
