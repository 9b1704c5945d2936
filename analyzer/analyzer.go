// Package analyzer turns a raw PCM capture stream into fixed-size
// analysis windows: a time-domain byte buffer and a byte frequency
// spectrum, both of length WindowSize.
package analyzer

import (
	"encoding/binary"
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// WindowSize is the length of both window buffers.
	WindowSize = 1024

	// fftSize is the number of time samples behind one spectrum.
	fftSize = 2 * WindowSize

	// Spectrum magnitudes are expressed in dB and mapped onto a byte:
	// minDB -> 0, maxDB -> 255.
	minDB = -100.0
	maxDB = -30.0
)

// Window is one instant of analysis input. TimeDomain holds unsigned
// samples with 128 as the zero crossing; FrequencyDomain holds the
// byte-scaled magnitude spectrum. Both have length WindowSize. A
// Window does not alias the analyzer's internal state.
type Window struct {
	TimeDomain      []byte
	FrequencyDomain []byte
}

// Analyzer keeps the most recent fftSize PCM samples in a ring buffer.
// Feed matches audio.DataCallback so it can be wired straight into a
// capture device.
type Analyzer struct {
	mu     sync.Mutex
	ring   [fftSize]int16
	pos    int
	filled int

	fft     *fourier.FFT
	hann    []float64
	scratch []float64
	coeffs  []complex128
}

func New() *Analyzer {
	a := &Analyzer{
		fft:     fourier.NewFFT(fftSize),
		hann:    make([]float64, fftSize),
		scratch: make([]float64, fftSize),
		coeffs:  make([]complex128, fftSize/2+1),
	}
	for i := range a.hann {
		a.hann[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}
	return a
}

// Feed appends little-endian signed 16-bit mono samples to the ring.
func (a *Analyzer) Feed(data []byte, _ uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := 0; i+1 < len(data); i += 2 {
		s := int16(binary.LittleEndian.Uint16(data[i:]))
		a.ring[a.pos] = s
		a.pos = (a.pos + 1) % fftSize
		if a.filled < fftSize {
			a.filled++
		}
	}
}

// Reset discards all buffered samples, e.g. after a device switch.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	a.pos = 0
	a.filled = 0
	clear(a.ring[:])
	a.mu.Unlock()
}

// Window snapshots the current analysis window. It reports false until
// at least WindowSize samples have arrived, which is also the signal
// for "no device producing audio yet".
func (a *Analyzer) Window() (Window, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.filled < WindowSize {
		return Window{}, false
	}

	// Unroll the ring oldest-first into scratch, padding with zeros
	// when fewer than fftSize samples have ever arrived.
	pad := fftSize - a.filled
	for i := 0; i < pad; i++ {
		a.scratch[i] = 0
	}
	start := (a.pos - a.filled + fftSize) % fftSize
	for i := 0; i < a.filled; i++ {
		s := a.ring[(start+i)%fftSize]
		a.scratch[pad+i] = float64(s) / 32768.0
	}

	w := Window{
		TimeDomain:      make([]byte, WindowSize),
		FrequencyDomain: make([]byte, WindowSize),
	}

	// Time domain: the newest WindowSize samples, recentered on 128.
	for i := 0; i < WindowSize; i++ {
		s := a.ring[(a.pos-WindowSize+i+fftSize)%fftSize]
		w.TimeDomain[i] = byte(int(s>>8) + 128)
	}

	for i, v := range a.scratch {
		a.scratch[i] = v * a.hann[i]
	}
	a.fft.Coefficients(a.coeffs, a.scratch)
	for i := 0; i < WindowSize; i++ {
		w.FrequencyDomain[i] = magByte(a.coeffs[i])
	}
	return w, true
}

// magByte converts one FFT coefficient to the byte spectrum scale.
func magByte(c complex128) byte {
	mag := cmplx.Abs(c) * 2 / fftSize
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	if db <= minDB {
		return 0
	}
	if db >= maxDB {
		return 255
	}
	return byte(255 * (db - minDB) / (maxDB - minDB))
}
