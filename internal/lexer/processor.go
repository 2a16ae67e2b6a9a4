package lexer

import "github.com/funvibe/tot/internal/pipeline"

type LexerProcessor struct{}

func (lp *LexerProcessor) Name() string { return "lexing" }

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.TokenStream = New(ctx.SourceCode).Tokenize()
	return ctx
}
