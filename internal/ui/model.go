// ABOUTME: Bubbletea model for the soundbox status TUI
// ABOUTME: Lists playback instances and maps keys to pause/resume/stop
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/soundbox/internal/version"
	"github.com/harperreed/soundbox/pkg/soundengine"
)

// How often the instance list is refreshed
const refreshInterval = 250 * time.Millisecond

// Controller is the part of the engine the TUI drives
type Controller interface {
	Snapshot() []soundengine.InstanceInfo
	Pause(id string) bool
	Resume(id string) bool
	Stop(id string) bool
}

// Model represents the TUI state
type Model struct {
	engine Controller

	// Header
	name    string
	addr    string
	clients int

	instances []soundengine.InstanceInfo
	selected  int
	message   string

	quitting bool
	quitChan chan struct{}

	width  int
	height int
}

// StatusMsg updates the header
type StatusMsg struct {
	Clients int
	Message string
}

type tickMsg time.Time

// NewModel creates a model polling engine
func NewModel(engine Controller, name, addr string) Model {
	return Model{
		engine: engine,
		name:   name,
		addr:   addr,
	}
}

// Init starts the refresh tick
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.refresh()
		return m, tickEvery()
	case StatusMsg:
		m.clients = msg.Clients
		if msg.Message != "" {
			m.message = msg.Message
		}
	}

	return m, nil
}

// refresh reloads the instance list, keeping the cursor in range
func (m *Model) refresh() {
	if m.engine == nil {
		return
	}
	m.instances = m.engine.Snapshot()
	if m.selected >= len(m.instances) {
		m.selected = len(m.instances) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) current() (soundengine.InstanceInfo, bool) {
	if m.selected < 0 || m.selected >= len(m.instances) {
		return soundengine.InstanceInfo{}, false
	}
	return m.instances[m.selected], true
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.quitChan != nil {
			select {
			case m.quitChan <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.instances)-1 {
			m.selected++
		}

	case " ":
		inst, ok := m.current()
		if !ok {
			return m, nil
		}
		if inst.State == soundengine.StatePaused {
			m.setResult("resume", inst.ID, m.engine.Resume(inst.ID))
		} else {
			m.setResult("pause", inst.ID, m.engine.Pause(inst.ID))
		}
		m.refresh()

	case "s":
		inst, ok := m.current()
		if !ok {
			return m, nil
		}
		m.setResult("stop", inst.ID, m.engine.Stop(inst.ID))
		m.refresh()
	}

	return m, nil
}

func (m *Model) setResult(action, id string, ok bool) {
	if ok {
		m.message = fmt.Sprintf("%s %s", action, id)
	} else {
		m.message = fmt.Sprintf("%s %s failed", action, id)
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	listHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Shutting down soundbox...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(version.String()))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Name: "))
	b.WriteString(valueStyle.Render(m.name))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Control: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s (%d connected)", m.addr, m.clients)))
	b.WriteString("\n\n")

	b.WriteString(listHeaderStyle.Render(fmt.Sprintf("Sounds (%d)", len(m.instances))))
	b.WriteString("\n\n")

	if len(m.instances) == 0 {
		b.WriteString(valueStyle.Render("  Nothing playing"))
		b.WriteString("\n")
	}
	for i, inst := range m.instances {
		line := renderInstance(inst)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(valueStyle.Render(m.message))
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("↑/↓:Select  space:Pause/Resume  s:Stop  q:Quit"))

	return b.String()
}

func renderInstance(inst soundengine.InstanceInfo) string {
	loop := ""
	if inst.Loop {
		loop = " ⟳"
	}
	return fmt.Sprintf("%-20s %-8s [%s] %s/%s vol %3.0f%%%s",
		truncate(inst.ID, 20),
		inst.State,
		renderBar(inst.Position, inst.Duration, 20),
		formatSeconds(inst.Position),
		formatSeconds(inst.Duration),
		inst.Volume*100,
		loop,
	)
}

// Utility functions
func renderBar(value, max float64, width int) string {
	filled := 0
	if max > 0 {
		filled = int(value / max * float64(width))
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func formatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
