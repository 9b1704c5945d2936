package analyzer

import (
	"encoding/binary"
	"math"
	"testing"
)

const testSampleRate = 16000

// sinePCM builds little-endian s16 mono frames of a sine at freq Hz.
func sinePCM(n int, freq, amp float64) []byte {
	data := make([]byte, n*2)
	for i := 0; i < n; i++ {
		s := int16(amp * 32767 * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate))
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}

func silencePCM(n int) []byte { return make([]byte, n*2) }

func TestWindowNotReadyUntilFilled(t *testing.T) {
	a := New()
	a.Feed(silencePCM(WindowSize-1), uint32(WindowSize-1))
	if _, ok := a.Window(); ok {
		t.Fatal("window reported ready before enough samples arrived")
	}
	a.Feed(silencePCM(1), 1)
	if _, ok := a.Window(); !ok {
		t.Fatal("window not ready after WindowSize samples")
	}
}

func TestWindowBufferLengths(t *testing.T) {
	a := New()
	a.Feed(sinePCM(4*WindowSize, 440, 0.5), uint32(4*WindowSize))
	w, ok := a.Window()
	if !ok {
		t.Fatal("window not ready")
	}
	if len(w.TimeDomain) != WindowSize || len(w.FrequencyDomain) != WindowSize {
		t.Fatalf("buffer lengths = %d/%d, want %d", len(w.TimeDomain), len(w.FrequencyDomain), WindowSize)
	}
}

func TestTimeDomainCentering(t *testing.T) {
	a := New()
	a.Feed(silencePCM(2*WindowSize), uint32(2*WindowSize))
	w, _ := a.Window()
	for i, b := range w.TimeDomain {
		if b != 128 {
			t.Fatalf("silence sample %d = %d, want 128", i, b)
		}
	}
	for i, b := range w.FrequencyDomain {
		if b != 0 {
			t.Fatalf("silence spectrum bin %d = %d, want 0", i, b)
		}
	}
}

func TestSpectrumPeakBin(t *testing.T) {
	a := New()
	// Pick a frequency that lands exactly on a bin:
	// bin k covers k * rate / fftSize Hz.
	const bin = 64
	freq := float64(bin) * testSampleRate / fftSize
	a.Feed(sinePCM(fftSize, freq, 0.8), fftSize)

	w, ok := a.Window()
	if !ok {
		t.Fatal("window not ready")
	}

	peak, peakBin := byte(0), 0
	for i, b := range w.FrequencyDomain {
		if b > peak {
			peak, peakBin = b, i
		}
	}
	// The window function smears the tone across neighboring bins.
	if peakBin < bin-1 || peakBin > bin+1 {
		t.Errorf("peak at bin %d, want %d±1", peakBin, bin)
	}
	if w.FrequencyDomain[bin] < 200 {
		t.Errorf("tone bin magnitude = %d, want a loud bin", w.FrequencyDomain[bin])
	}
	// Far away from the tone the spectrum stays near the floor.
	if far := w.FrequencyDomain[WindowSize-1]; far > 100 {
		t.Errorf("far bin = %d, expected near-floor energy", far)
	}
}

func TestWindowDoesNotAliasState(t *testing.T) {
	a := New()
	a.Feed(silencePCM(2*WindowSize), uint32(2*WindowSize))
	w1, _ := a.Window()
	w1.TimeDomain[0] = 7
	w2, _ := a.Window()
	if w2.TimeDomain[0] != 128 {
		t.Error("mutating a returned window leaked into the analyzer")
	}
}

func TestReset(t *testing.T) {
	a := New()
	a.Feed(sinePCM(2*WindowSize, 440, 0.5), uint32(2*WindowSize))
	if _, ok := a.Window(); !ok {
		t.Fatal("window not ready before reset")
	}
	a.Reset()
	if _, ok := a.Window(); ok {
		t.Error("window still ready after reset")
	}
}

func TestFeedIgnoresTrailingOddByte(t *testing.T) {
	a := New()
	data := append(silencePCM(WindowSize-1), 0x42)
	a.Feed(data, uint32(WindowSize-1))
	if _, ok := a.Window(); ok {
		t.Error("half a sample should not count toward the window")
	}
}
