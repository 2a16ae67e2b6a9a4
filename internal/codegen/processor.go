package codegen

import (
	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/lexer"
	"github.com/funvibe/tot/internal/parser"
	"github.com/funvibe/tot/internal/pipeline"
)

// GenerateProcessor is the pipeline stage rendering a parsed file.
type GenerateProcessor struct {
	Codegen *Codegen
	Output  string
}

func (gp *GenerateProcessor) Name() string { return "code generation" }

func (gp *GenerateProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || ctx.AstRoot == nil {
		return ctx
	}
	file, ok := ctx.AstRoot.(*ast.File)
	if !ok {
		ctx.AddError(diagnostics.New(diagnostics.KindInvalidProgram, "code generation needs a file of function definitions"))
		return ctx
	}
	out, err := gp.Codegen.GenerateFile(file)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	gp.Output = out
	return ctx
}

// Generate parses source as a file of function definitions and renders it.
// filePath only labels diagnostics.
func (g *Codegen) Generate(source, filePath string) (string, error) {
	ctx := pipeline.NewPipelineContext(source, pipeline.ModeFile)
	ctx.FilePath = filePath
	gp := &GenerateProcessor{Codegen: g}
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}, gp).Run(ctx)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return gp.Output, nil
}
