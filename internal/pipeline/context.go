package pipeline

import (
	"context"
	"errors"

	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/token"
)

// Processor is one stage of a pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Named is implemented by stages that report a name in diagnostics.
type Named interface {
	Name() string
}

// Mode selects what the parser expects the source to contain.
type Mode int

const (
	ModeStatement  Mode = iota // exactly one statement
	ModeStatements             // a sequence of statements
	ModeFile                   // function definitions
)

// PipelineContext carries the source and every intermediate result.
type PipelineContext struct {
	Context    context.Context
	FilePath   string
	SourceCode string
	Mode       Mode

	TokenStream []token.Token
	AstRoot     ast.Node

	Errors []*diagnostics.Error
}

func NewPipelineContext(source string, mode Mode) *PipelineContext {
	return &PipelineContext{
		Context:    context.Background(),
		SourceCode: source,
		Mode:       mode,
	}
}

// AddError records err. Errors that are not diagnostics are classified as
// invalid programs.
func (c *PipelineContext) AddError(err error) {
	var de *diagnostics.Error
	if !errors.As(err, &de) {
		de = diagnostics.Wrap(diagnostics.KindInvalidProgram, err, "%s", "internal error")
	}
	if de.File == "" && c.FilePath != "" {
		cp := *de
		cp.File = c.FilePath
		de = &cp
	}
	c.Errors = append(c.Errors, de)
}

// Failed reports whether any stage recorded an error.
func (c *PipelineContext) Failed() bool {
	return len(c.Errors) > 0
}

// Err returns the first recorded error, or nil.
func (c *PipelineContext) Err() error {
	if len(c.Errors) == 0 {
		return nil
	}
	return c.Errors[0]
}
