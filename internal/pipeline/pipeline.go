package pipeline

import "github.com/funvibe/tot/internal/diagnostics"

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the stages in order. A stage whose input failed returns the
// context unchanged, so later stages are skipped without special casing.
// A cancelled context stops the run before the next stage.
func (p *Pipeline) Run(ctx *PipelineContext) *PipelineContext {
	for _, stage := range p.processors {
		if ctx.Context != nil {
			if err := ctx.Context.Err(); err != nil {
				ctx.AddError(diagnostics.Wrap(diagnostics.KindInvalidProgram, err, "interrupted before %s", stageName(stage)))
				return ctx
			}
		}
		ctx = stage.Process(ctx)
	}
	return ctx
}

func stageName(stage Processor) string {
	if n, ok := stage.(Named); ok {
		return n.Name()
	}
	return "next stage"
}
