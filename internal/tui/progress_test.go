package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"shipit.dev/shipit/internal/pipeline"
)

func TestPipelineModel(t *testing.T) {
	t.Parallel()

	stages := []string{"setup", "build", "publish"}

	t.Run("starts with all stages pending", func(t *testing.T) {
		t.Parallel()

		m := NewPipelineModel(stages, nil)
		view := m.View()
		require.Contains(t, view, "setup")
		require.Contains(t, view, "build")
		require.Contains(t, view, "publish")
		require.Contains(t, view, "pending")
	})

	t.Run("marks a running stage", func(t *testing.T) {
		t.Parallel()

		m := NewPipelineModel(stages, nil)
		updated, _ := m.Update(StageStartMsg{Name: "build"})
		view := updated.View()
		require.Contains(t, view, "running")
	})

	t.Run("records stage results", func(t *testing.T) {
		t.Parallel()

		m := NewPipelineModel(stages, nil)
		model := tea.Model(m)
		model, _ = model.Update(StageDoneMsg{Result: pipeline.StepResult{Stage: "setup", Status: pipeline.StatusOK}})
		model, _ = model.Update(StageDoneMsg{Result: pipeline.StepResult{
			Stage: "build", Status: pipeline.StatusSkipped, SkipReason: "dry run",
		}})

		view := model.View()
		require.Contains(t, view, "ok")
		require.Contains(t, view, "skipped")
		require.Contains(t, view, "dry run")
	})

	t.Run("summarizes when done", func(t *testing.T) {
		t.Parallel()

		m := NewPipelineModel(stages, nil)
		model := tea.Model(m)
		for _, stage := range stages {
			model, _ = model.Update(StageDoneMsg{Result: pipeline.StepResult{Stage: stage, Status: pipeline.StatusOK}})
		}
		model, cmd := model.Update(PipelineDoneMsg{})
		require.NotNil(t, cmd)

		view := model.View()
		require.Contains(t, view, "All 3 stages completed")
	})
}
