// Package session owns the recording-session state machine, the
// retained-sample list, and the end-of-session aggregation.
package session

import (
	"math"
	"sync"
	"time"

	"orato/metrics"
)

type State int

const (
	Idle State = iota
	Recording
	Finalizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Finalizing:
		return "finalizing"
	}
	return "unknown"
}

// Tuned thresholds. Kept as-is for behavioral parity with sessions
// recorded under the original tuning; none of them is principled.
const (
	// FilterThreshold: a retained sample counts as meaningful speech
	// when any of volume/clarity/pace/pitch variation exceeds it.
	FilterThreshold = 10.0

	// NoiseFloor: the retention tick drops a live sample unless some
	// field exceeds it.
	NoiseFloor = 2.0

	// FinalFloor: the last-chance retention attempt on stop only has
	// to beat zero.
	FinalFloor = 0.0

	// transitionCooldown guards Start/Stop against duplicate UI
	// events; a transition inside the cooldown is a no-op.
	transitionCooldown = 300 * time.Millisecond
)

// Summary is the finalized result of one session: the rounded mean of
// the pooled samples plus how many were used and how many the noise
// filter discarded.
type Summary struct {
	Volume         int
	Clarity        int
	Pace           int
	PitchVariation int
	Frequency      int
	Energy         int
	UsedCount      int
	DiscardedCount int
}

// Recorder is the session state machine. The retained-sample list has
// a single logical writer (the retention tick); the mutex makes the
// Stop snapshot consistent with an in-flight tick.
type Recorder struct {
	mu         sync.Mutex
	state      State
	samples    []metrics.Sample
	last       Summary
	transition time.Time

	now func() time.Time // test hook
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// NewRecorderWithNow injects the clock used for the transition
// cooldown; simulated drivers pass simulated time.
func NewRecorderWithNow(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) RetainedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Start moves Idle to Recording and clears the retained list. It
// reports whether a new session actually started: a Start while
// already recording, or inside the transition cooldown, is a no-op.
func (r *Recorder) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Idle {
		return false
	}
	if now := r.now(); now.Sub(r.transition) < transitionCooldown {
		return false
	} else {
		r.transition = now
	}
	r.state = Recording
	r.samples = nil
	return true
}

// Retain appends the sample to the session if some field exceeds
// floor. Outside Recording it is always a no-op, so a tick racing a
// Stop either lands before the snapshot or not at all.
func (r *Recorder) Retain(s metrics.Sample, floor float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Recording || !exceeds(s, floor) {
		return false
	}
	r.samples = append(r.samples, s)
	return true
}

// Stop finalizes the session and returns its Summary. Calling Stop
// while Idle (or again right after) returns the previous summary and
// changes nothing.
func (r *Recorder) Stop() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Recording {
		return r.last
	}
	if now := r.now(); now.Sub(r.transition) < transitionCooldown {
		return r.last
	} else {
		r.transition = now
	}

	r.state = Finalizing
	snapshot := r.samples
	r.samples = nil
	r.last = Finalize(snapshot)
	r.state = Idle
	return r.last
}

// LastSummary returns the most recently finalized summary.
func (r *Recorder) LastSummary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func exceeds(s metrics.Sample, floor float64) bool {
	return s.Volume > floor || s.Clarity > floor || s.Pace > floor ||
		s.PitchVariation > floor || s.Frequency > floor || s.Energy > floor
}

// Finalize reduces a retained-sample list to a Summary. Samples that
// look like silence are filtered out first; if that empties the pool
// the full set is used instead, so a session with only quiet samples
// still summarizes to something rather than all zeros.
func Finalize(samples []metrics.Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	valid := make([]metrics.Sample, 0, len(samples))
	for _, s := range samples {
		meaningful := s.Volume > FilterThreshold || s.Clarity > FilterThreshold ||
			s.Pace > FilterThreshold || s.PitchVariation > FilterThreshold
		allZero := s.Volume == 0 && s.Clarity == 0 && s.PitchVariation == 0 && s.Frequency == 0
		if meaningful && !allZero {
			valid = append(valid, s)
		}
	}

	pool := valid
	if len(pool) == 0 {
		pool = samples
	}

	var vol, cla, pac, pit, freq, ene float64
	for _, s := range pool {
		vol += s.Volume
		cla += s.Clarity
		pac += s.Pace
		pit += s.PitchVariation
		freq += s.Frequency
		ene += s.Energy
	}
	n := float64(len(pool))

	discarded := len(samples) - len(valid)
	if discarded < 0 {
		discarded = 0
	}

	return Summary{
		Volume:         roundHalfUp(vol / n),
		Clarity:        roundHalfUp(cla / n),
		Pace:           roundHalfUp(pac / n),
		PitchVariation: roundHalfUp(pit / n),
		Frequency:      roundHalfUp(freq / n),
		Energy:         roundHalfUp(ene / n),
		UsedCount:      len(pool),
		DiscardedCount: discarded,
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
