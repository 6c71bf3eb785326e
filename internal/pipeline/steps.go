package pipeline

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/walletbuilder/internal/config"
)

// Step is a discrete unit of work in a build. It reports how many files it wrote.
type Step func(ctx context.Context, cfg *config.Config) (int, error)

// StepName is a strongly-typed identifier for a pipeline step.
type StepName string

// Canonical step names.
const (
	StepClean   StepName = "clean"
	StepCopy    StepName = "copy"
	StepStyles  StepName = "styles"
	StepScripts StepName = "scripts"
	StepHTML    StepName = "html"
	StepPack    StepName = "pack"
)

// StepResult captures the outcome of a single step.
type StepResult string

const (
	StepResultSuccess  StepResult = "success"
	StepResultFailed   StepResult = "failed"
	StepResultCanceled StepResult = "canceled"
	StepResultSkipped  StepResult = "skipped"
)

// StepError ties a failure to the step that produced it.
type StepError struct {
	Step     StepName
	Err      error
	Canceled bool
}

func (e *StepError) Error() string {
	if e.Canceled {
		return fmt.Sprintf("step %s canceled: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// StepDef pairs a step name with its executing function.
type StepDef struct {
	Name StepName
	Fn   Step
}

// Pipeline is a fluent builder for ordered step definitions.
type Pipeline struct{ Defs []StepDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StepDef, 0, 6)} }

// Add appends a step unconditionally.
func (p *Pipeline) Add(name StepName, fn Step) *Pipeline {
	p.Defs = append(p.Defs, StepDef{Name: name, Fn: fn})
	return p
}

// AddIf appends a step only if cond is true.
func (p *Pipeline) AddIf(cond bool, name StepName, fn Step) *Pipeline {
	if cond {
		p.Add(name, fn)
	}
	return p
}

// Build returns a copy of the step definitions.
func (p *Pipeline) Build() []StepDef {
	out := make([]StepDef, len(p.Defs))
	copy(out, p.Defs)
	return out
}

// Names lists the step names in order.
func Names(defs []StepDef) []StepName {
	names := make([]StepName, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}
