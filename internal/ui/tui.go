// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and forwards status updates
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI manages the status display
type TUI struct {
	program  *tea.Program
	updates  chan StatusMsg
	quitChan chan struct{}

	mu      sync.Mutex
	stopped bool
}

// New creates a TUI for engine
func New(engine Controller, name, addr string) *TUI {
	t := &TUI{
		updates:  make(chan StatusMsg, 10),
		quitChan: make(chan struct{}, 1),
	}

	m := NewModel(engine, name, addr)
	m.quitChan = t.quitChan
	t.program = tea.NewProgram(m, tea.WithAltScreen())
	return t
}

// Run blocks until the TUI exits
func (t *TUI) Run() error {
	go func() {
		for msg := range t.updates {
			t.program.Send(msg)
		}
	}()

	_, err := t.program.Run()
	return err
}

// Update sends a status update without blocking
func (t *TUI) Update(msg StatusMsg) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	select {
	case t.updates <- msg:
	default:
	}
}

// Stop quits the program
func (t *TUI) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	t.program.Quit()
	close(t.updates)
}

// QuitChan signals when the user asked to quit
func (t *TUI) QuitChan() <-chan struct{} {
	return t.quitChan
}
