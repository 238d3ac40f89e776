// ABOUTME: Bubbletea model for the now-playing display
// ABOUTME: Shows the current file, its format and position, and list totals
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/NotCompsky/playwav/pkg/audio"
	"github.com/NotCompsky/playwav/pkg/playback"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controls lets the display act on playback
type Controls interface {
	// Skip stops the current file and moves to the next one
	Skip()
	// Quit stops the current file and the rest of the list
	Quit()
}

// Model represents the TUI state
type Model struct {
	// Current file
	path    string
	codec   audio.CodecID
	spec    audio.SampleSpec
	volume  float64
	window  playback.Window
	errors  int
	playing bool

	// List totals
	played int
	failed int

	quitting bool
	controls Controls

	width  int
	height int
}

// ProgressMsg reports the state of the file being played
type ProgressMsg playback.Progress

// ResultMsg carries the list totals so far
type ResultMsg struct {
	Played int
	Failed int
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// NewModel creates a model; controls may be nil
func NewModel(controls Controls) Model {
	return Model{controls: controls}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case ProgressMsg:
		m.applyProgress(msg)
	case ResultMsg:
		m.played = msg.Played
		m.failed = msg.Failed
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.controls != nil {
			m.controls.Quit()
		}
		return m, tea.Quit
	case "n":
		if m.controls != nil && m.playing {
			m.controls.Skip()
		}
	}
	return m, nil
}

func (m *Model) applyProgress(p ProgressMsg) {
	m.path = p.Path
	m.codec = p.Codec
	m.spec = p.Spec
	m.volume = p.Volume
	m.window = p.Window
	m.errors = p.WriteErrors
	m.playing = !p.Done
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping playback...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("playwav"))
	b.WriteString("\n")

	if m.path == "" {
		b.WriteString(valueStyle.Render("Waiting for the first file..."))
		b.WriteString("\n\n")
	} else {
		m.renderFile(&b)
	}

	b.WriteString(headerStyle.Render("Played: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.played)))
	b.WriteString(headerStyle.Render("  Failed: "))
	if m.failed > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%d", m.failed)))
	} else {
		b.WriteString(valueStyle.Render("0"))
	}
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("n: next file  q: quit"))
	return b.String()
}

func (m Model) renderFile(b *strings.Builder) {
	state := "Playing: "
	if !m.playing {
		state = "Finished: "
	}
	b.WriteString(headerStyle.Render(state))
	b.WriteString(valueStyle.Render(truncate(filepath.Base(m.path), m.nameWidth())))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Format: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s %dHz %s, %s to sink",
		m.codec, m.spec.SampleRate, channelName(m.spec.Channels), m.spec.Wire)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Volume: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2f", m.volume)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Position: "))
	b.WriteString(valueStyle.Render(m.renderPosition()))
	b.WriteString("\n")

	if m.errors > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Sink write errors: %d", m.errors)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// renderPosition shows the time played inside the window, with a bar
// when the window has an end
func (m Model) renderPosition() string {
	rate := m.spec.SampleRate
	played := max(m.window.Current-m.window.Start, 0)
	if m.window.End == playback.Unbounded {
		return formatFrames(played, rate)
	}
	length := m.window.End - m.window.Start
	return fmt.Sprintf("[%s] %s / %s",
		renderBar(played, length, 30), formatFrames(played, rate), formatFrames(length, rate))
}

func (m Model) nameWidth() int {
	if m.width > 20 {
		return m.width - 12
	}
	return 60
}

func renderBar(value, total int64, width int) string {
	filled := width
	if total > 0 && value < total {
		filled = int(value * int64(width) / total)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func formatFrames(frames int64, rate int) string {
	if rate <= 0 {
		return "0:00"
	}
	d := time.Duration(frames) * time.Second / time.Duration(rate)
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func truncate(s string, length int) string {
	if len(s) <= length || length <= 3 {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}
