package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New(
			Step{Name: "one", Run: func(context.Context) error { order = append(order, "one"); return nil }},
			Step{Name: "two", Run: func(context.Context) error { order = append(order, "two"); return nil }},
		)

		results, err := p.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"one", "two"}, order)
		require.Equal(t, StatusOK, results[0].Status)
		require.Equal(t, StatusOK, results[1].Status)
	})

	t.Run("halts on the first failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		var ran []string
		p := New(
			Step{Name: "build", Run: func(context.Context) error { ran = append(ran, "build"); return boom }},
			Step{Name: "test", Run: func(context.Context) error { ran = append(ran, "test"); return nil }},
			Step{Name: "publish", Run: func(context.Context) error { ran = append(ran, "publish"); return nil }},
		)

		results, err := p.Run(context.Background())
		require.Error(t, err)
		require.True(t, errors.Is(err, shipiterrors.ErrStepFailed))
		require.True(t, errors.Is(err, boom))

		var stepErr *shipiterrors.StepError
		require.ErrorAs(t, err, &stepErr)
		require.Equal(t, "build", stepErr.Stage)

		require.Equal(t, []string{"build"}, ran)
		require.Equal(t, StatusFailed, results[0].Status)
		require.Equal(t, StatusSkipped, results[1].Status)
		require.Equal(t, StatusSkipped, results[2].Status)
		require.Equal(t, "earlier stage failed", results[1].SkipReason)
	})

	t.Run("skips steps whose Skip returns a reason", func(t *testing.T) {
		t.Parallel()

		var ran bool
		p := New(
			Step{
				Name: "test",
				Skip: func() (string, bool) { return "no test command configured", true },
				Run:  func(context.Context) error { ran = true; return nil },
			},
		)

		results, err := p.Run(context.Background())
		require.NoError(t, err)
		require.False(t, ran)
		require.Equal(t, StatusSkipped, results[0].Status)
		require.Equal(t, "no test command configured", results[0].SkipReason)
	})

	t.Run("a canceled context skips remaining steps", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		p := New(
			Step{Name: "one", Run: func(context.Context) error { cancel(); return nil }},
			Step{Name: "two", Run: func(context.Context) error { return nil }},
		)

		results, err := p.Run(ctx)
		require.Error(t, err)
		require.Equal(t, StatusOK, results[0].Status)
		require.Equal(t, StatusSkipped, results[1].Status)
		require.Equal(t, "canceled", results[1].SkipReason)
	})

	t.Run("invokes progress callbacks", func(t *testing.T) {
		t.Parallel()

		var started []string
		var finished []string
		p := New(
			Step{Name: "one", Run: func(context.Context) error { return nil }},
			Step{Name: "two", Skip: func() (string, bool) { return "n/a", true }},
		)
		p.OnStepStart(func(stage string) { started = append(started, stage) })
		p.OnStepDone(func(result StepResult) { finished = append(finished, result.Stage) })

		_, err := p.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"one"}, started)
		require.Equal(t, []string{"one", "two"}, finished)
	})

	t.Run("Steps lists stage names in order", func(t *testing.T) {
		t.Parallel()

		p := New(
			Step{Name: "setup"},
			Step{Name: "build"},
		)
		require.Equal(t, []string{"setup", "build"}, p.Steps())
	})
}
