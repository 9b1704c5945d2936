// Package metrics extracts the six perceptual voice metrics from one
// analysis window. Extraction is a pure function of the window; every
// field is clamped to [0, 100] and a malformed window yields the zero
// Sample rather than an error.
package metrics

import (
	"math"

	"orato/analyzer"
)

// Band boundaries and scale factors. These values are tuned against
// real sessions, not derived; change them together with the session
// filter thresholds or the aggregate summaries will shift.
const (
	midBandLow  = 0.1 // fraction of the spectrum where articulation energy starts
	midBandHigh = 0.5 // ...and ends
	lowBandBins = 20  // bins carrying fundamental-frequency energy

	volumeScale = 200.0
	paceScale   = 0.5
)

// Sample is one extraction tick. All fields are in [0, 100].
// Samples are immutable after creation.
type Sample struct {
	Volume         float64
	Clarity        float64
	Pace           float64
	PitchVariation float64
	Frequency      float64
	Energy         float64
}

// Extract computes a Sample from one window. Both buffers must be
// non-empty and the same length; anything else is treated as a
// malformed window and produces the zero Sample.
func Extract(w analyzer.Window) Sample {
	n := len(w.TimeDomain)
	if n == 0 || len(w.FrequencyDomain) != n {
		return Sample{}
	}

	var s Sample
	s.Volume = clamp(rms(w.TimeDomain) * volumeScale)
	s.Frequency = clamp(mean(w.FrequencyDomain) / 255.0 * 100.0)
	s.Clarity = clamp(mean(w.FrequencyDomain[int(float64(n)*midBandLow):int(float64(n)*midBandHigh)]) / 255.0 * 100.0)
	s.PitchVariation = clamp(mean(w.FrequencyDomain[:min(lowBandBins, n)]) / 255.0 * 100.0)
	s.Pace = clamp(deltaSum(w.TimeDomain) / float64(n) * paceScale)
	s.Energy = clamp((s.Volume + s.Frequency + s.Clarity) / 3.0)
	return s
}

// rms centers each byte on 128, normalizes to [-1, 1] and returns the
// root mean square.
func rms(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}
	var sum float64
	for _, b := range buf {
		v := (float64(b) - 128.0) / 128.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(buf)))
}

func mean(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}
	var sum float64
	for _, b := range buf {
		sum += float64(b)
	}
	return sum / float64(len(buf))
}

// deltaSum is the total absolute sample-to-sample movement, a proxy
// for short-term amplitude volatility.
func deltaSum(buf []byte) float64 {
	var sum float64
	for i := 1; i < len(buf); i++ {
		sum += math.Abs(float64(buf[i]) - float64(buf[i-1]))
	}
	return sum
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
