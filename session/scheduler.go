package session

import (
	"context"
	"sync"
	"time"

	"orato/metrics"
)

const (
	// RetentionInterval is how often a live sample is considered for
	// the session.
	RetentionInterval = 300 * time.Millisecond

	// DefaultRefresh approximates a 60 Hz display loop. Any other
	// rate works; the live slot just updates more or less often.
	DefaultRefresh = 16 * time.Millisecond
)

// Scheduler drives the two extraction cadences. The live tick
// overwrites a single current-sample slot; the retention tick hands
// that slot to the Recorder while a session is running. Both ticks
// are plain methods so tests can drive them without timers.
type Scheduler struct {
	source func() (metrics.Sample, bool)
	rec    *Recorder
	onLive func(metrics.Sample)

	mu      sync.Mutex
	current metrics.Sample
	hasCur  bool
}

// NewScheduler wires a sample source (typically analyzer + extractor)
// to a Recorder. onLive, if non-nil, observes every live sample; it
// runs on the tick path and must not block.
func NewScheduler(source func() (metrics.Sample, bool), rec *Recorder, onLive func(metrics.Sample)) *Scheduler {
	return &Scheduler{source: source, rec: rec, onLive: onLive}
}

// LiveTick extracts once and overwrites the current slot. When the
// source has nothing (device gone or not warmed up) the slot keeps
// its last value.
func (s *Scheduler) LiveTick() {
	sample, ok := s.source()
	if !ok {
		return
	}
	s.mu.Lock()
	s.current = sample
	s.hasCur = true
	s.mu.Unlock()
	if s.onLive != nil {
		s.onLive(sample)
	}
}

// RetentionTick offers the current live sample to the session. Fires
// only while recording; a sample at or below the noise floor is
// dropped silently.
func (s *Scheduler) RetentionTick() {
	if s.rec.State() != Recording {
		return
	}
	cur, ok := s.Current()
	if !ok {
		return
	}
	s.rec.Retain(cur, NoiseFloor)
}

// Current returns the latest live sample, if any tick has produced one.
func (s *Scheduler) Current() (metrics.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasCur
}

// StopSession makes one final retention attempt from the live slot
// (zero floor, independent of the retention cadence) and finalizes.
func (s *Scheduler) StopSession() Summary {
	if cur, ok := s.Current(); ok {
		s.rec.Retain(cur, FinalFloor)
	}
	return s.rec.Stop()
}

// Run drives both cadences until ctx is canceled. Single goroutine:
// the ticks never overlap each other.
func (s *Scheduler) Run(ctx context.Context, refresh time.Duration) {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	live := time.NewTicker(refresh)
	defer live.Stop()
	retain := time.NewTicker(RetentionInterval)
	defer retain.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-live.C:
			s.LiveTick()
		case <-retain.C:
			s.RetentionTick()
		}
	}
}
