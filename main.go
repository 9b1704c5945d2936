// orato is a terminal speech-coaching recorder: it extracts six voice
// metrics from the microphone in real time, records bounded practice
// sessions, and turns each finished session into coaching feedback.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"orato/analyzer"
	"orato/audio"
	"orato/clipboard"
	"orato/encoder"
	"orato/feedback"
	"orato/log"
	"orato/metrics"
	"orato/session"
	"orato/shutdown"
)

var version = "dev"

// toggleChan carries start/stop requests from the TUI to the main loop.
var toggleChan = make(chan struct{}, 1)

var shutdownOnce sync.Once

type app struct {
	rec     *session.Recorder
	sched   *session.Scheduler
	an      *analyzer.Analyzer
	gen     feedback.Generator
	saveDir string

	mu           sync.Mutex
	enc          *encoder.FlacEncoder
	sessionStart time.Time
	sessionDone  chan struct{}
	sessions     int
	device       string
}

func requestToggle() {
	select {
	case toggleChan <- struct{}{}:
	default:
	}
}

func (a *app) gracefulShutdown() {
	shutdownOnce.Do(func() {
		a.mu.Lock()
		n := a.sessions
		a.mu.Unlock()
		if n > 0 {
			log.SessionEnd(n)
		}
		log.Close()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		os.Exit(0)
	})
}

func deviceLineText(name string) string {
	suffix := ""
	if audio.IsBluetooth(name) {
		suffix = " (BT!)"
	}
	return "mic: " + name + suffix
}

func main() {
	refreshFlag := flag.Duration("refresh", session.DefaultRefresh, "Live metric refresh interval (e.g. 16ms for ~60Hz)")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	saveFlag := flag.String("save", "", "Directory for per-session FLAC recordings (empty = don't save)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	testFlag := flag.Bool("test", false, "Headless mode: run one session over a WAV file and print the summary")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("orato %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	a := &app{
		rec:     session.NewRecorder(),
		an:      analyzer.New(),
		gen:     feedback.New(),
		saveDir: *saveFlag,
	}
	a.sched = session.NewScheduler(a.extractLive, a.rec, func(s metrics.Sample) {
		tuiSend(LiveMetricsMsg{Sample: s})
	})

	if *testFlag {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: orato -test <wav-file>")
			os.Exit(1)
		}
		runTestMode(a, args[0])
		return
	}

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := ctx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
	}

	captureConfig := audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	}
	capture, err := ctx.NewCapture(selectedDevice, captureConfig)
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Printf("Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	a.device = capture.DeviceName()
	capture.SetCallback(a.onAudio)
	defer capture.ClearCallback()

	if err := capture.Start(); err != nil {
		log.Errorf("capture start error: %v", err)
		fmt.Printf("Error starting capture: %v\n", err)
		os.Exit(1)
	}
	defer capture.Stop()

	schedCtx, cancelSched := context.WithCancel(context.Background())
	defer cancelSched()
	go a.sched.Run(schedCtx, *refreshFlag)

	tuiMu.Lock()
	tuiProgram = NewTUIProgram()
	tuiMu.Unlock()
	go func() {
		if _, err := tuiProgram.Run(); err != nil {
			log.Errorf("TUI error: %v", err)
			os.Exit(1)
		}
		a.gracefulShutdown()
	}()

	tuiSend(DeviceLineMsg{Text: deviceLineText(a.device)})
	tuiSend(BluetoothWarningMsg{IsBT: audio.IsBluetooth(a.device)})

	// Poll for device changes (hotplug). Losing the device mid-session
	// is not an error: the live tick just stops advancing and the
	// session finalizes with what was already retained.
	go func() {
		var last []string
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			devices, err := ctx.Devices()
			if err != nil {
				continue
			}
			names := make([]string, len(devices))
			for i := range devices {
				names[i] = devices[i].Name
			}
			if slices.Equal(last, names) {
				continue
			}
			last = names
			if selectedDevice != nil && !slices.Contains(names, selectedDevice.Name) {
				log.Info("device_disconnected: " + selectedDevice.Name)
				tuiSend(DeviceLineMsg{Text: "mic: " + selectedDevice.Name + " (disconnected)"})
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)

	for {
		select {
		case <-toggleChan:
			if a.rec.State() == session.Recording {
				a.finishSession()
			} else {
				a.startSession()
			}
		case <-sigChan:
			a.gracefulShutdown()
		}
	}
}

// onAudio runs on the capture thread: feed the analyzer ring and, when
// a session is being saved, the FLAC encoder.
func (a *app) onAudio(data []byte, frameCount uint32) {
	a.an.Feed(data, frameCount)
	a.mu.Lock()
	enc := a.enc
	a.mu.Unlock()
	if enc != nil {
		if err := enc.EncodePCM(data); err != nil {
			log.Errorf("flac encode error: %v", err)
		}
	}
}

// extractLive is the scheduler's sample source.
func (a *app) extractLive() (metrics.Sample, bool) {
	w, ok := a.an.Window()
	if !ok {
		return metrics.Sample{}, false
	}
	return metrics.Extract(w), true
}

func (a *app) startSession() {
	if !a.rec.Start() {
		return
	}
	log.SessionStart(a.device)

	a.mu.Lock()
	a.sessionStart = time.Now()
	a.sessionDone = make(chan struct{})
	done := a.sessionDone
	if a.saveDir != "" {
		enc, err := encoder.NewFlac()
		if err != nil {
			log.Errorf("flac init error: %v", err)
		} else {
			a.enc = enc
		}
	}
	a.mu.Unlock()

	tuiSend(SessionStartMsg{})

	go func() {
		start := time.Now()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				tuiSend(SessionTickMsg{
					Duration: time.Since(start).Seconds(),
					Retained: a.rec.RetainedCount(),
				})
			}
		}
	}()
}

func (a *app) finishSession() {
	if a.rec.State() != session.Recording {
		return
	}
	a.mu.Lock()
	dur := time.Since(a.sessionStart)
	a.mu.Unlock()

	summary := a.sched.StopSession()
	if a.rec.State() != session.Idle {
		// Stop landed inside the transition cooldown; session goes on.
		return
	}

	a.mu.Lock()
	a.sessions++
	if a.sessionDone != nil {
		close(a.sessionDone)
		a.sessionDone = nil
	}
	enc := a.enc
	a.enc = nil
	a.mu.Unlock()

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
	tuiSend(SessionStopMsg{})
	tuiSend(SummaryMsg{Summary: summary})

	if enc != nil {
		a.saveSessionAudio(enc)
	}

	// Feedback generation may hit the network; it must never gate the
	// live-metrics loop.
	go a.generateFeedback(summary)
}

func (a *app) saveSessionAudio(enc *encoder.FlacEncoder) {
	if err := enc.Close(); err != nil {
		log.Errorf("flac close error: %v", err)
		return
	}
	if enc.TotalFrames() == 0 {
		return
	}
	name := "session_" + time.Now().Format("20060102_150405") + ".flac"
	path := filepath.Join(a.saveDir, name)
	if err := os.MkdirAll(a.saveDir, 0755); err != nil {
		log.Errorf("save dir error: %v", err)
		return
	}
	if err := os.WriteFile(path, enc.Bytes(), 0644); err != nil {
		log.Errorf("save session audio error: %v", err)
		return
	}
	log.Info("session_audio_saved: " + path)
}

func (a *app) generateFeedback(summary session.Summary) {
	start := time.Now()
	text, fellBack := feedback.Generate(context.Background(), a.gen, summary)
	name := a.gen.Name()
	if fellBack {
		name = "rules"
	}
	log.FeedbackResult(name, float64(time.Since(start).Milliseconds()), fellBack)
	log.FeedbackText(text)
	tuiSend(FeedbackMsg{Text: text, Generator: name})
}

func copyFeedback(text string) {
	if text == "" {
		return
	}
	if err := clipboard.Copy(text); err != nil {
		log.Warnf("clipboard copy failed: %v", err)
	}
}
