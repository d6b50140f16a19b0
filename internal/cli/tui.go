package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adforge/adforge/pkg/export"
)

var (
	barFilledStyle = lipgloss.NewStyle().Foreground(colorGreen)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim)
	barLabelStyle  = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// ExportProgressModel - Live export job progress
// =============================================================================

// exportTickMsg triggers a re-read of the job state.
type exportTickMsg time.Time

// ExportProgressModel is the bubbletea model that tails a running
// export job and draws its progress bar. It quits once the job
// reaches a terminal status.
type ExportProgressModel struct {
	Job    *export.Job
	Cancel func()

	Width     int
	Cancelled bool
}

// NewExportProgressModel creates a progress model for the given job.
func NewExportProgressModel(job *export.Job, cancel func()) ExportProgressModel {
	return ExportProgressModel{
		Job:    job,
		Cancel: cancel,
		Width:  40,
	}
}

func (m ExportProgressModel) Init() tea.Cmd {
	return m.tick()
}

func (m ExportProgressModel) tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return exportTickMsg(t)
	})
}

func (m ExportProgressModel) finished() bool {
	switch m.Job.Status() {
	case export.StatusDone, export.StatusFailed:
		return true
	}
	return false
}

func (m ExportProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Cancelled = true
			if m.Cancel != nil {
				m.Cancel()
			}
			return m, nil
		}
	case exportTickMsg:
		if m.finished() {
			return m, tea.Quit
		}
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.Width = msg.Width - 20
		if m.Width < 10 {
			m.Width = 10
		}
		if m.Width > 60 {
			m.Width = 60
		}
	}
	return m, nil
}

func (m ExportProgressModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Exporting %s", m.Job.Kind)))
	b.WriteString("\n\n")

	p := m.Job.Progress()
	filled := int(p * float64(m.Width))
	if filled > m.Width {
		filled = m.Width
	}
	b.WriteString("  ")
	b.WriteString(barFilledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(barEmptyStyle.Render(strings.Repeat("░", m.Width-filled)))
	b.WriteString(barLabelStyle.Render(fmt.Sprintf(" %3.0f%%", p*100)))
	b.WriteString("\n\n")

	msg := m.Job.Message()
	if m.Cancelled && !m.finished() {
		msg = "cancelling"
	}
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(msg))
	b.WriteString("\n")

	for _, w := range m.Job.Warnings() {
		b.WriteString("  ")
		b.WriteString(StyleWarning.Render("! " + w))
		b.WriteString("\n")
	}

	if !m.finished() {
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("  q cancel"))
		b.WriteString("\n")
	}

	return b.String()
}
