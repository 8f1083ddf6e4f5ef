package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// =============================================================================
// BatchModel - live progress of a batch extraction
// =============================================================================

type fileState int

const (
	statePending fileState = iota
	stateRunning
	stateDone
	stateFailed
)

// fileUpdateMsg reports a state change of one input.
type fileUpdateMsg struct {
	index  int
	state  fileState
	detail string
}

// batchDoneMsg ends the program once every input has finished.
type batchDoneMsg struct{}

type tickMsg time.Time

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// BatchModel is the bubbletea model showing one row per input image.
type BatchModel struct {
	Names   []string
	States  []fileState
	Details []string
	Height  int
	Offset  int

	frame    int
	started  time.Time
	finished bool

	// interrupt is called when the user quits before the batch is done.
	interrupt func()
}

// NewBatchModel creates a model for the given input labels.
func NewBatchModel(names []string, interrupt func()) BatchModel {
	return BatchModel{
		Names:     names,
		States:    make([]fileState, len(names)),
		Details:   make([]string, len(names)),
		Height:    15,
		started:   time.Now(),
		interrupt: interrupt,
	}
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m BatchModel) Init() tea.Cmd {
	return tick()
}

func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.interrupt != nil {
				m.interrupt()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	case fileUpdateMsg:
		if msg.index >= 0 && msg.index < len(m.States) {
			m.States[msg.index] = msg.state
			m.Details[msg.index] = msg.detail
			m.follow(msg.index)
		}
	case batchDoneMsg:
		m.finished = true
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

// follow scrolls so that the row at i is visible.
func (m *BatchModel) follow(i int) {
	if i < m.Offset {
		m.Offset = i
	}
	if i >= m.Offset+m.Height {
		m.Offset = i - m.Height + 1
	}
}

// Counts returns how many inputs have finished and how many of those failed.
func (m BatchModel) Counts() (finished, failed int) {
	for _, s := range m.States {
		switch s {
		case stateDone:
			finished++
		case stateFailed:
			finished++
			failed++
		}
	}
	return finished, failed
}

func (m BatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Extracting navigation graphs"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Names))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		rows = append(rows, []string{m.icon(m.States[i]), m.Names[i], m.Details[i]})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Image", "Result").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.States) {
				return lipgloss.NewStyle()
			}
			switch m.States[idx] {
			case stateFailed:
				return lipgloss.NewStyle().Foreground(colorRed)
			case stateDone:
				if col == 0 {
					return lipgloss.NewStyle().Foreground(colorGreen)
				}
				return lipgloss.NewStyle().Foreground(colorWhite)
			case stateRunning:
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorDim)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	finished, failed := m.Counts()
	status := fmt.Sprintf("  [%d/%d] %s", finished, len(m.Names), time.Since(m.started).Round(100*time.Millisecond))
	if failed > 0 {
		status += fmt.Sprintf(", %d failed", failed)
	}
	b.WriteString(StyleDim.Render(status))
	b.WriteString("\n")

	return b.String()
}

func (m BatchModel) icon(s fileState) string {
	switch s {
	case stateRunning:
		return spinnerFrames[m.frame%len(spinnerFrames)]
	case stateDone:
		return iconSuccess
	case stateFailed:
		return iconError
	}
	return "·"
}
