package parser

import (
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Name() string { return "parsing" }

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	if ctx.TokenStream == nil {
		ctx.AddError(diagnostics.New(diagnostics.KindSyntax, "parser: token stream is nil"))
		return ctx
	}

	p := New(ctx.TokenStream, ctx)
	switch ctx.Mode {
	case pipeline.ModeStatement:
		if stmt := p.ParseStatementOnly(); stmt != nil {
			ctx.AstRoot = stmt
		}
	case pipeline.ModeStatements:
		if prog := p.ParseProgram(); prog != nil {
			ctx.AstRoot = prog
		}
	case pipeline.ModeFile:
		if file := p.ParseFile(); file != nil {
			ctx.AstRoot = file
		}
	}
	return ctx
}
