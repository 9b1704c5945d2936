package metrics

import (
	"math"
	"testing"

	"orato/analyzer"
)

func flatWindow(n int, timeVal, freqVal byte) analyzer.Window {
	w := analyzer.Window{
		TimeDomain:      make([]byte, n),
		FrequencyDomain: make([]byte, n),
	}
	for i := 0; i < n; i++ {
		w.TimeDomain[i] = timeVal
		w.FrequencyDomain[i] = freqVal
	}
	return w
}

func TestExtractMalformedWindow(t *testing.T) {
	cases := []struct {
		name string
		w    analyzer.Window
	}{
		{"empty", analyzer.Window{}},
		{"empty buffers", analyzer.Window{TimeDomain: []byte{}, FrequencyDomain: []byte{}}},
		{"length mismatch", analyzer.Window{TimeDomain: make([]byte, 8), FrequencyDomain: make([]byte, 4)}},
		{"missing spectrum", analyzer.Window{TimeDomain: make([]byte, 8)}},
	}
	for _, tc := range cases {
		if got := Extract(tc.w); got != (Sample{}) {
			t.Errorf("%s: got %+v, want zero sample", tc.name, got)
		}
	}
}

func TestExtractSilence(t *testing.T) {
	// Time domain pinned at the zero crossing, no spectral energy.
	got := Extract(flatWindow(1024, 128, 0))
	if got != (Sample{}) {
		t.Errorf("silence produced non-zero sample: %+v", got)
	}
}

func TestExtractVolumeSaturates(t *testing.T) {
	// Every sample at full negative swing: rms is 1, scaled past 100.
	got := Extract(flatWindow(1024, 0, 0))
	if got.Volume != 100 {
		t.Errorf("Volume = %v, want 100", got.Volume)
	}
	if got.Pace != 0 {
		t.Errorf("Pace = %v, want 0 for a flat buffer", got.Pace)
	}
}

func TestExtractPaceSaturates(t *testing.T) {
	w := flatWindow(1024, 128, 0)
	for i := range w.TimeDomain {
		if i%2 == 0 {
			w.TimeDomain[i] = 0
		} else {
			w.TimeDomain[i] = 255
		}
	}
	// Each step moves the full byte range; way past the clamp.
	got := Extract(w)
	if got.Pace != 100 {
		t.Errorf("Pace = %v, want 100", got.Pace)
	}
}

func TestExtractBandSlices(t *testing.T) {
	const n = 1000
	w := flatWindow(n, 128, 0)

	// Energy only in the mid band [0.1n, 0.5n).
	for i := n / 10; i < n/2; i++ {
		w.FrequencyDomain[i] = 255
	}
	got := Extract(w)

	if math.Abs(got.Clarity-100) > 1e-9 {
		t.Errorf("Clarity = %v, want 100 for a saturated mid band", got.Clarity)
	}
	// 400 of 1000 bins at 255.
	wantFreq := 400.0 / float64(n) * 100.0
	if math.Abs(got.Frequency-wantFreq) > 1e-9 {
		t.Errorf("Frequency = %v, want %v", got.Frequency, wantFreq)
	}
	// The low band (first 20 bins) saw none of it.
	if got.PitchVariation != 0 {
		t.Errorf("PitchVariation = %v, want 0", got.PitchVariation)
	}

	// Now energy only in the low band.
	w = flatWindow(n, 128, 0)
	for i := 0; i < 20; i++ {
		w.FrequencyDomain[i] = 255
	}
	got = Extract(w)
	if math.Abs(got.PitchVariation-100) > 1e-9 {
		t.Errorf("PitchVariation = %v, want 100 for a saturated low band", got.PitchVariation)
	}
}

func TestExtractEnergyComposite(t *testing.T) {
	w := flatWindow(1024, 0, 255)
	got := Extract(w)
	want := (got.Volume + got.Frequency + got.Clarity) / 3
	if math.Abs(got.Energy-want) > 1e-9 {
		t.Errorf("Energy = %v, want %v", got.Energy, want)
	}
}

func TestExtractRange(t *testing.T) {
	// Pseudo-random windows; every field must land in [0, 100].
	seed := uint32(12345)
	next := func() byte {
		seed = seed*1664525 + 1013904223
		return byte(seed >> 24)
	}
	for trial := 0; trial < 50; trial++ {
		w := analyzer.Window{
			TimeDomain:      make([]byte, 1024),
			FrequencyDomain: make([]byte, 1024),
		}
		for i := range w.TimeDomain {
			w.TimeDomain[i] = next()
			w.FrequencyDomain[i] = next()
		}
		s := Extract(w)
		for name, v := range map[string]float64{
			"Volume": s.Volume, "Clarity": s.Clarity, "Pace": s.Pace,
			"PitchVariation": s.PitchVariation, "Frequency": s.Frequency,
			"Energy": s.Energy,
		} {
			if math.IsNaN(v) || v < 0 || v > 100 {
				t.Fatalf("trial %d: %s = %v out of range", trial, name, v)
			}
		}
	}
}
