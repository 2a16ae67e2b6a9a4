package vm

import (
	"github.com/funvibe/tot/internal/lexer"
	"github.com/funvibe/tot/internal/parser"
	"github.com/funvibe/tot/internal/pipeline"
)

// Program is the lowered form of one syntax tree. It is immutable once
// returned by the compiler.
type Program struct {
	Instructions []Instruction
	File         string
}

// Len returns the number of instructions
func (p *Program) Len() int {
	return len(p.Instructions)
}

// FromStatement parses and lowers source holding exactly one statement.
// Conversions are planned when the program runs.
func FromStatement(source string) (*Program, error) {
	return lower(source, pipeline.ModeStatement, NewCompiler(nil, nil))
}

// FromSource parses and lowers a sequence of statements.
func FromSource(source string) (*Program, error) {
	return lower(source, pipeline.ModeStatements, NewCompiler(nil, nil))
}

func lower(source string, mode pipeline.Mode, c *Compiler) (*Program, error) {
	ctx := pipeline.NewPipelineContext(source, mode)
	cp := &CompileProcessor{Compiler: c}
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}, cp).Run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cp.Program, nil
}

// CompileProcessor lowers ctx.AstRoot. The result is left in Program.
type CompileProcessor struct {
	Compiler *Compiler
	Program  *Program
}

func (cp *CompileProcessor) Name() string { return "lowering" }

func (cp *CompileProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || ctx.AstRoot == nil {
		return ctx
	}
	prog, err := cp.Compiler.Compile(ctx.AstRoot)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	prog.File = ctx.FilePath
	cp.Program = prog
	return ctx
}
