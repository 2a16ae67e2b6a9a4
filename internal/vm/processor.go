package vm

import (
	"github.com/funvibe/tot/internal/pipeline"
)

// ExecuteProcessor runs the program produced by Source on VM.
type ExecuteProcessor struct {
	VM     *VM
	Source *CompileProcessor
}

func (p *ExecuteProcessor) Name() string { return "execution" }

func (p *ExecuteProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || p.Source == nil || p.Source.Program == nil {
		return ctx
	}
	if _, err := p.VM.Run(ctx.Context, p.Source.Program); err != nil {
		ctx.AddError(err)
	}
	return ctx
}
