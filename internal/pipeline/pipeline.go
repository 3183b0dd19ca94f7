// Package pipeline sequences the phases a compilation run drives a
// lifetime through. Adapted from the teacher's pipeline.Pipeline —
// originally a list of Processors each handed the previous one's
// PipelineContext — generalized here to a named list of zero-argument
// steps that share a diagnostics sink instead of threading a context value
// through each stage, since every real step (parse, resolve, one of the
// four driver stages) already closes over the lifetime it operates on.
package pipeline

import "github.com/cthulhu-project/cthulhu/internal/diag"

// Step is one named phase of a compilation run.
type Step struct {
	Name string
	Run  func()
}

// Pipeline runs a fixed sequence of steps, stopping once the shared sink
// has accumulated an Error-or-worse diagnostic — mirroring §6's "a phase
// must not proceed" rule; the teacher's version kept running every
// processor regardless so LSP mode could collect both parse and semantic
// errors, which this version preserves by letting the caller decide to
// call Run again, one step group at a time, when it wants that behavior.
type Pipeline struct {
	steps []Step
}

// New constructs a pipeline of steps, run in order.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes each step until one leaves sink carrying an error, or every
// step has run. It returns the names of the steps that actually ran.
func (p *Pipeline) Run(sink *diag.Sink) []string {
	var ran []string
	for _, s := range p.steps {
		s.Run()
		ran = append(ran, s.Name)
		if sink.HasErrors() {
			break
		}
	}
	return ran
}
