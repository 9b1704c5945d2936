// Package log writes diagnostics and finalized feedback to files in a
// per-user log directory. Logging is optional: before Init (or after
// Close) every helper is a silent no-op.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog      zerolog.Logger
	diagFile     *os.File
	feedbackFile *os.File
	logMu        sync.Mutex
	logReady     bool
	pid          int
	dir          string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: ORATO_LOG_PATH environment variable
	envPath := os.Getenv("ORATO_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	feedbackPath := filepath.Join(dir, "feedback_log.txt")
	feedbackFile, err = os.OpenFile(feedbackPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if feedbackFile != nil {
		feedbackFile.Close()
		feedbackFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// SummaryData mirrors session.Summary without importing it; log stays
// a leaf package.
type SummaryData struct {
	Volume         int
	Clarity        int
	Pace           int
	PitchVariation int
	Frequency      int
	Energy         int
	UsedCount      int
	DiscardedCount int
	DurationS      float64
}

func SessionStart(device string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("device", device).
		Msg("session_start")
}

func SessionSummary(s SummaryData) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("volume", s.Volume).
		Int("clarity", s.Clarity).
		Int("pace", s.Pace).
		Int("pitch_variation", s.PitchVariation).
		Int("frequency", s.Frequency).
		Int("energy", s.Energy).
		Int("used", s.UsedCount).
		Int("discarded", s.DiscardedCount).
		Float64("duration_s", s.DurationS).
		Msg("session_summary")
}

func FeedbackResult(generator string, totalMs float64, fellBack bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("generator", generator).
		Float64("total_ms", totalMs).
		Bool("fallback", fellBack).
		Msg("feedback")
}

func FeedbackText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	feedbackFile.WriteString(line)
}

func SessionEnd(count int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("count", count).
		Msg("session_end")
}
