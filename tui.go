package main

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"orato/metrics"
	"orato/session"
)

// TUI message types
type SessionStartMsg struct{}
type SessionStopMsg struct{}
type SessionTickMsg struct {
	Duration float64
	Retained int
}
type LiveMetricsMsg struct{ Sample metrics.Sample }
type SummaryMsg struct{ Summary session.Summary }
type FeedbackMsg struct {
	Text      string
	Generator string
}
type DeviceLineMsg struct{ Text string }
type BluetoothWarningMsg struct{ IsBT bool }

type tuiState int

const (
	tuiStateIdle tuiState = iota
	tuiStateRecording
)

type tuiModel struct {
	state         tuiState
	live          metrics.Sample
	duration      float64
	retained      int
	width, height int
	deviceLine    string
	btWarning     bool

	summary     *session.Summary
	sessionNum  int
	feedback    string
	generator   string
	copied      bool
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

const barWidth = 30

// Pre-computed styles to avoid allocations in the render loop
var (
	barStyleLow   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	barStyleMid   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	barStyleHigh  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barStyleEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	recStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpBoldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

func NewTUIProgram() *tea.Program {
	m := tuiModel{}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ", "enter":
			requestToggle()
		case "c":
			if m.feedback != "" {
				copyFeedback(m.feedback)
				m.copied = true
			}
		}

	case SessionStartMsg:
		m.state = tuiStateRecording
		m.duration = 0
		m.retained = 0
		m.summary = nil
		m.feedback = ""
		m.copied = false

	case SessionStopMsg:
		m.state = tuiStateIdle

	case SessionTickMsg:
		m.duration = msg.Duration
		m.retained = msg.Retained

	case LiveMetricsMsg:
		// Light smoothing keeps the bars readable at 60 Hz.
		m.live = smooth(m.live, msg.Sample)

	case SummaryMsg:
		s := msg.Summary
		m.summary = &s
		m.sessionNum++

	case FeedbackMsg:
		m.feedback = msg.Text
		m.generator = msg.Generator
		m.copied = false

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case BluetoothWarningMsg:
		m.btWarning = msg.IsBT
	}
	return m, nil
}

func smooth(prev, next metrics.Sample) metrics.Sample {
	mix := func(a, b float64) float64 { return a*0.6 + b*0.4 }
	return metrics.Sample{
		Volume:         mix(prev.Volume, next.Volume),
		Clarity:        mix(prev.Clarity, next.Clarity),
		Pace:           mix(prev.Pace, next.Pace),
		PitchVariation: mix(prev.PitchVariation, next.PitchVariation),
		Frequency:      mix(prev.Frequency, next.Frequency),
		Energy:         mix(prev.Energy, next.Energy),
	}
}

func renderBar(label string, value float64) string {
	filled := int(value / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	var style lipgloss.Style
	switch {
	case value < 30:
		style = barStyleLow
	case value <= 70:
		style = barStyleMid
	default:
		style = barStyleHigh
	}
	bar := style.Render(strings.Repeat("█", filled)) +
		barStyleEmpty.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %s %s",
		labelStyle.Render(fmt.Sprintf("%-10s", label)),
		bar,
		valueStyle.Render(fmt.Sprintf("%3.0f", value)))
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var lines []string

	lines = append(lines, titleStyle.Render("orato "+version))
	if m.deviceLine != "" {
		lines = append(lines, idleStyle.Render(m.deviceLine))
	}
	if m.btWarning {
		lines = append(lines, warnStyle.Render("⚠ Bluetooth mic: metrics may read low"))
	}
	lines = append(lines, "")

	if m.state == tuiStateRecording {
		lines = append(lines, recStyle.Render(fmt.Sprintf("● REC %.1fs · %d samples", m.duration, m.retained)))
	} else {
		lines = append(lines, idleStyle.Render("○ STANDBY"))
	}
	lines = append(lines, "")

	lines = append(lines,
		renderBar("volume", m.live.Volume),
		renderBar("clarity", m.live.Clarity),
		renderBar("pace", m.live.Pace),
		renderBar("pitch var", m.live.PitchVariation),
		renderBar("frequency", m.live.Frequency),
		renderBar("energy", m.live.Energy),
		"",
	)

	if m.summary != nil {
		s := m.summary
		lines = append(lines, titleStyle.Render(fmt.Sprintf("Session #%d", m.sessionNum)))
		lines = append(lines, valueStyle.Render(fmt.Sprintf(
			"  vol %d · clar %d · pace %d · pitch %d · freq %d · energy %d",
			s.Volume, s.Clarity, s.Pace, s.PitchVariation, s.Frequency, s.Energy)))
		lines = append(lines, idleStyle.Render(fmt.Sprintf(
			"  %d samples used, %d discarded as noise", s.UsedCount, s.DiscardedCount)))
		lines = append(lines, "")
	}

	if m.feedback != "" {
		header := "Feedback (" + m.generator + ")"
		if m.copied {
			header += " " + okStyle.Render("[✓ copied]")
		}
		lines = append(lines, titleStyle.Render(header))
		wrapWidth := m.width - 2
		if wrapWidth < 20 {
			wrapWidth = 20
		}
		for _, para := range strings.Split(m.feedback, "\n") {
			for _, line := range wrapText(para, wrapWidth) {
				lines = append(lines, textStyle.Render(line))
			}
		}
		lines = append(lines, "")
	} else if m.summary != nil {
		lines = append(lines, idleStyle.Render("Generating feedback..."))
		lines = append(lines, "")
	}

	help := helpBoldStyle.Render("space") + helpStyle.Render(" start/stop · ") +
		helpBoldStyle.Render("c") + helpStyle.Render(" copy feedback · ") +
		helpBoldStyle.Render("q") + helpStyle.Render(" quit")
	lines = append(lines, help)

	return strings.Join(lines, "\n")
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		// Find last space within width
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
