package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"shipit.dev/shipit/internal/pipeline"
)

// StageItem represents a pipeline stage being displayed
type StageItem struct {
	Name       string
	Status     pipeline.Status
	SkipReason string
	Error      error
}

// StageStartMsg is sent when a stage starts running
type StageStartMsg struct {
	Name string
}

// StageDoneMsg is sent when a stage finishes
type StageDoneMsg struct {
	Result pipeline.StepResult
}

// PipelineDoneMsg signals the whole run is complete
type PipelineDoneMsg struct {
	Err error
}

// PipelineModel is the bubbletea model for pipeline progress
type PipelineModel struct {
	items    []StageItem
	spinner  spinner.Model
	done     bool
	quitting bool
	cancel   context.CancelFunc
	styles   progressStyles
}

type progressStyles struct {
	spinnerStyle lipgloss.Style
	doneStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	stageStyle   lipgloss.Style
	dimStyle     lipgloss.Style
}

// NewPipelineModel creates a progress model for the given stage names
func NewPipelineModel(stages []string, cancel context.CancelFunc) PipelineModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := make([]StageItem, len(stages))
	for i, name := range stages {
		items[i] = StageItem{Name: name, Status: pipeline.StatusPending}
	}

	return PipelineModel{
		items:   items,
		spinner: s,
		cancel:  cancel,
		styles: progressStyles{
			spinnerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
			doneStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			stageStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
			dimStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		},
	}
}

func (m PipelineModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m PipelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil // wait for PipelineDoneMsg so results stay consistent
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StageStartMsg:
		for i := range m.items {
			if m.items[i].Name == msg.Name {
				m.items[i].Status = pipeline.StatusRunning
			}
		}
		return m, nil

	case StageDoneMsg:
		for i := range m.items {
			if m.items[i].Name == msg.Result.Stage {
				m.items[i].Status = msg.Result.Status
				m.items[i].SkipReason = msg.Result.SkipReason
				m.items[i].Error = msg.Result.Err
			}
		}
		return m, nil

	case PipelineDoneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m PipelineModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	for i, item := range m.items {
		var icon string
		var status string

		switch item.Status {
		case pipeline.StatusPending:
			icon = m.styles.dimStyle.Render("○")
			status = m.styles.dimStyle.Render("pending")
		case pipeline.StatusRunning:
			icon = m.spinner.View()
			status = m.styles.spinnerStyle.Render("running...")
		case pipeline.StatusOK:
			icon = m.styles.doneStyle.Render("✓")
			status = m.styles.doneStyle.Render("ok")
		case pipeline.StatusSkipped:
			icon = m.styles.dimStyle.Render("−")
			status = m.styles.dimStyle.Render("skipped")
			if item.SkipReason != "" {
				status += " " + m.styles.dimStyle.Render("("+item.SkipReason+")")
			}
		case pipeline.StatusFailed:
			icon = m.styles.errorStyle.Render("✗")
			status = m.styles.errorStyle.Render("failed")
		}

		stageName := m.styles.stageStyle.Render(item.Name)
		line := fmt.Sprintf("  %s %s %s", icon, stageName, status)

		if item.Status == pipeline.StatusFailed && item.Error != nil {
			line += " " + m.styles.errorStyle.Render(item.Error.Error())
		}

		b.WriteString(line)
		if i < len(m.items)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")

	if m.done {
		ok := 0
		failed := 0
		for _, item := range m.items {
			switch item.Status {
			case pipeline.StatusOK:
				ok++
			case pipeline.StatusFailed:
				failed++
			}
		}
		b.WriteString("\n")
		if failed > 0 {
			b.WriteString(m.styles.errorStyle.Render(fmt.Sprintf("Completed: %d, Failed: %d", ok, failed)))
		} else {
			b.WriteString(m.styles.doneStyle.Render(fmt.Sprintf("✓ All %d stages completed", ok)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RunPipelineTUI runs the pipeline with an interactive progress view.
// Ctrl+C cancels the run via the provided cancel func.
func RunPipelineTUI(ctx context.Context, cancel context.CancelFunc, p *pipeline.Pipeline) ([]pipeline.StepResult, error) {
	model := NewPipelineModel(p.Steps(), cancel)
	prog := tea.NewProgram(model)

	p.OnStepStart(func(stage string) {
		prog.Send(StageStartMsg{Name: stage})
	})
	p.OnStepDone(func(result pipeline.StepResult) {
		prog.Send(StageDoneMsg{Result: result})
	})

	var results []pipeline.StepResult
	var runErr error
	go func() {
		results, runErr = p.Run(ctx)
		prog.Send(PipelineDoneMsg{Err: runErr})
	}()

	if _, err := prog.Run(); err != nil {
		return nil, err
	}
	return results, runErr
}

// IsTTY returns true if we can use a TTY for the interactive progress view
func IsTTY() bool {
	if !((isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))) {
		return false
	}
	// Also try to open /dev/tty to verify it's actually available
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
