package pipeline

import (
	"context"
	"testing"

	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/stretchr/testify/assert"
)

type recordStage struct {
	name string
	seen *[]string
}

func (s recordStage) Process(ctx *PipelineContext) *PipelineContext {
	*s.seen = append(*s.seen, s.name)
	return ctx
}

type failStage struct{}

func (failStage) Process(ctx *PipelineContext) *PipelineContext {
	ctx.AddError(diagnostics.New(diagnostics.KindSyntax, "boom"))
	return ctx
}

func TestRunOrder(t *testing.T) {
	var seen []string
	ctx := New(recordStage{"a", &seen}, failStage{}, recordStage{"b", &seen}).Run(NewPipelineContext("", ModeStatement))

	assert.Equal(t, []string{"a", "b"}, seen, "stages after a failure still run")
	assert.ErrorIs(t, ctx.Err(), diagnostics.ErrSyntax)
}

func TestRunCancelled(t *testing.T) {
	var seen []string
	pctx := NewPipelineContext("", ModeStatement)
	c, cancel := context.WithCancel(context.Background())
	cancel()
	pctx.Context = c

	ctx := New(recordStage{"a", &seen}).Run(pctx)
	assert.Empty(t, seen)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.ErrorIs(t, ctx.Err(), diagnostics.ErrInvalidProgram)
	assert.Contains(t, ctx.Err().Error(), "interrupted before next stage")
}

type lexStage struct{}

func (lexStage) Name() string { return "lexing" }

func (lexStage) Process(ctx *PipelineContext) *PipelineContext { return ctx }

func TestRunCancelledNamesStage(t *testing.T) {
	pctx := NewPipelineContext("", ModeStatement)
	c, cancel := context.WithCancel(context.Background())
	cancel()
	pctx.Context = c

	msg := New(lexStage{}).Run(pctx).Err().Error()
	assert.Contains(t, msg, "interrupted before lexing")
	assert.NotContains(t, msg, "*")
	assert.NotContains(t, msg, "Stage")
}

func TestAddErrorLabelsFile(t *testing.T) {
	ctx := NewPipelineContext("", ModeFile)
	ctx.FilePath = "a.tot"
	ctx.AddError(assert.AnError)

	assert.True(t, ctx.Failed())
	assert.ErrorIs(t, ctx.Err(), diagnostics.ErrInvalidProgram)
	assert.Contains(t, ctx.Err().Error(), "a.tot:")
}
