// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and feeds it playback progress
package ui

import (
	"time"

	"github.com/NotCompsky/playwav/internal/playlist"
	"github.com/NotCompsky/playwav/pkg/playback"
	tea "github.com/charmbracelet/bubbletea"
)

// TUI runs the now-playing display
type TUI struct {
	program *tea.Program
	updates chan tea.Msg
	stopped chan struct{}
}

// New creates the display. Call Run to show it.
func New(controls Controls) *TUI {
	return &TUI{
		program: tea.NewProgram(NewModel(controls), tea.WithAltScreen()),
		updates: make(chan tea.Msg, 16),
		stopped: make(chan struct{}),
	}
}

// Run shows the display until the user quits or Finish is called
func (t *TUI) Run() error {
	go func() {
		for {
			select {
			case msg := <-t.updates:
				t.program.Send(msg)
			case <-t.stopped:
				return
			}
		}
	}()

	_, err := t.program.Run()
	close(t.stopped)
	return err
}

// Progress forwards a playback update. Intermediate updates are dropped
// when the display falls behind; the final one for a file is not.
func (t *TUI) Progress(p playback.Progress) {
	if p.Done {
		t.send(ProgressMsg(p))
		return
	}
	select {
	case t.updates <- ProgressMsg(p):
	default:
	}
}

func (t *TUI) send(msg tea.Msg) {
	select {
	case t.updates <- msg:
	case <-t.stopped:
	}
}

// Finish closes the display after the last file
func (t *TUI) Finish() {
	// let the last update render
	time.Sleep(100 * time.Millisecond)
	t.program.Quit()
}

// Track wraps player so the display shows list totals
func (t *TUI) Track(player playlist.Player) playlist.Player {
	return &trackingPlayer{player: player, tui: t}
}

type trackingPlayer struct {
	player playlist.Player
	tui    *TUI
	result ResultMsg
}

func (p *trackingPlayer) Play(path string, start, end time.Duration, volume float64) error {
	err := p.player.Play(path, start, end, volume)
	if err != nil {
		p.result.Failed++
	} else {
		p.result.Played++
	}
	p.tui.send(p.result)
	return err
}
