package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"orato/audio"
	"orato/encoder"
	"orato/feedback"
	"orato/log"
	"orato/session"
)

// runTestMode replays a WAV file through the full pipeline on a
// simulated clock and prints the session summary plus rule-based
// feedback. The retention tick fires at the same cadence it would
// against a live microphone, so the numbers match a real session
// over the same audio.
func runTestMode(a *app, wavPath string) {
	defer log.Close()

	var (
		mu            sync.Mutex
		elapsed       time.Duration
		nextRetention = session.RetentionInterval
	)
	base := time.Now()
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return base.Add(elapsed)
	}

	// Rewire the recorder onto the simulated clock so the transition
	// cooldown tracks audio time, not wall time.
	a.rec = session.NewRecorderWithNow(now)
	a.sched = session.NewScheduler(a.extractLive, a.rec, nil)

	fakeCtx, err := audio.NewFakeContext(wavPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}

	capture, err := fakeCtx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate, Channels: encoder.Channels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capture: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()
	fakeCapture := capture.(*audio.FakeCapture)

	capture.SetCallback(func(data []byte, frameCount uint32) {
		mu.Lock()
		a.an.Feed(data, frameCount)
		a.sched.LiveTick()
		elapsed += time.Duration(frameCount) * time.Second / time.Duration(encoder.SampleRate)
		for elapsed >= nextRetention {
			a.sched.RetentionTick()
			nextRetention += session.RetentionInterval
		}
		mu.Unlock()
	})

	if !a.rec.Start() {
		fmt.Fprintln(os.Stderr, "Error: could not start session")
		os.Exit(1)
	}
	log.SessionStart(capture.DeviceName())

	if err := capture.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting capture: %v\n", err)
		os.Exit(1)
	}
	<-fakeCapture.AudioDone()
	capture.ClearCallback()
	capture.Stop()

	// Files shorter than the cooldown would make the stop a no-op,
	// so pretend a moment of trailing silence.
	mu.Lock()
	elapsed += 2 * session.RetentionInterval
	dur := elapsed
	mu.Unlock()

	summary := a.sched.StopSession()
	log.SessionSummary(log.SummaryData{
		Volume:         summary.Volume,
		Clarity:        summary.Clarity,
		Pace:           summary.Pace,
		PitchVariation: summary.PitchVariation,
		Frequency:      summary.Frequency,
		Energy:         summary.Energy,
		UsedCount:      summary.UsedCount,
		DiscardedCount: summary.DiscardedCount,
		DurationS:      dur.Seconds(),
	})

	fmt.Printf("duration: %.1fs  samples used: %d  discarded: %d\n",
		dur.Seconds(), summary.UsedCount, summary.DiscardedCount)
	fmt.Printf("volume=%d clarity=%d pace=%d pitch_variation=%d frequency=%d energy=%d\n",
		summary.Volume, summary.Clarity, summary.Pace,
		summary.PitchVariation, summary.Frequency, summary.Energy)

	text, _ := feedback.Generate(context.Background(), feedback.Rules{}, summary)
	fmt.Println()
	fmt.Println(text)

	log.SessionEnd(1)
}
