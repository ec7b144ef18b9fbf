// Package pipeline sequences the release stages and enforces fail-fast
// semantics: the first failing stage halts the run and the remaining
// stages are marked skipped.
package pipeline

import (
	"context"
	"time"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// Status is the outcome of a single stage.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Step is one pipeline stage.
type Step struct {
	// Name identifies the stage ("build", "test", ...).
	Name string
	// Skip, when set, is consulted before Run; a non-empty reason
	// marks the stage skipped without running it.
	Skip func() (reason string, skip bool)
	// Run does the work.
	Run func(ctx context.Context) error
}

// StepResult records the outcome of a stage.
type StepResult struct {
	Stage      string
	Status     Status
	SkipReason string
	Duration   time.Duration
	Err        error
}

// Pipeline is an ordered list of steps executed sequentially.
type Pipeline struct {
	steps   []Step
	onStart func(stage string)
	onDone  func(result StepResult)
}

// New creates a pipeline from steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// OnStepStart registers a callback invoked before each stage runs.
func (p *Pipeline) OnStepStart(fn func(stage string)) {
	p.onStart = fn
}

// OnStepDone registers a callback invoked after each stage finishes.
func (p *Pipeline) OnStepDone(fn func(result StepResult)) {
	p.onDone = fn
}

// Steps returns the stage names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name
	}
	return names
}

// Run executes the steps in order. The first failure stops execution;
// results for all stages are always returned, unrun stages as skipped.
// The returned error is a StepError wrapping the stage's failure.
func (p *Pipeline) Run(ctx context.Context) ([]StepResult, error) {
	results := make([]StepResult, len(p.steps))
	var failed error

	for i, step := range p.steps {
		results[i] = StepResult{Stage: step.Name, Status: StatusPending}

		if failed != nil {
			results[i].Status = StatusSkipped
			results[i].SkipReason = "earlier stage failed"
			p.notifyDone(results[i])
			continue
		}

		if err := ctx.Err(); err != nil {
			results[i].Status = StatusSkipped
			results[i].SkipReason = "canceled"
			p.notifyDone(results[i])
			if failed == nil {
				failed = shipiterrors.NewStepError(step.Name, err)
			}
			continue
		}

		if step.Skip != nil {
			if reason, skip := step.Skip(); skip {
				results[i].Status = StatusSkipped
				results[i].SkipReason = reason
				p.notifyDone(results[i])
				continue
			}
		}

		if p.onStart != nil {
			p.onStart(step.Name)
		}
		results[i].Status = StatusRunning

		start := time.Now()
		err := step.Run(ctx)
		results[i].Duration = time.Since(start)

		if err != nil {
			results[i].Status = StatusFailed
			results[i].Err = err
			failed = shipiterrors.NewStepError(step.Name, err)
		} else {
			results[i].Status = StatusOK
		}
		p.notifyDone(results[i])
	}

	return results, failed
}

func (p *Pipeline) notifyDone(result StepResult) {
	if p.onDone != nil {
		p.onDone(result)
	}
}
