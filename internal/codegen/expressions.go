package codegen

import (
	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/convert"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/symbols"
)

func (g *Codegen) expression(expr ast.Expression) (string, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		code, err := g.backend.Literal(e.Value)
		return code, diagnostics.WithSpan(err, e.Span())
	case *ast.Reference:
		return g.backend.Reference(e.Path), nil
	case *ast.BlockExpression:
		return g.block(e)
	case *ast.IfExpression:
		return g.ifExpression(e)
	case *ast.ForExpression:
		return g.forExpression(e)
	case *ast.WhileExpression:
		return g.whileExpression(e)
	case *ast.CallExpression:
		return g.call(e)
	case *ast.ConvertExpression:
		return g.convert(e)
	case nil:
		return "", diagnostics.New(diagnostics.KindInvalidProgram, "missing expression")
	}
	return "", diagnostics.NewAt(diagnostics.KindInvalidProgram, expr.Span(), "cannot generate %s", expr.Kind())
}

func (g *Codegen) block(b *ast.BlockExpression) (string, error) {
	defer g.types.Enter(symbols.ScopeBlock)()

	stmts, err := g.statements(b.Statements)
	if err != nil {
		return "", err
	}
	val := ""
	if b.Value != nil {
		if val, err = g.expression(b.Value); err != nil {
			return "", err
		}
	}
	return g.backend.Block(stmts, val), nil
}

func (g *Codegen) ifExpression(e *ast.IfExpression) (string, error) {
	cond, err := g.expression(e.Condition)
	if err != nil {
		return "", err
	}
	then, err := g.block(e.Consequence)
	if err != nil {
		return "", err
	}
	els := ""
	if e.Alternative != nil {
		if els, err = g.expression(e.Alternative); err != nil {
			return "", err
		}
	}
	return g.backend.If(cond, then, els), nil
}

func (g *Codegen) forExpression(e *ast.ForExpression) (string, error) {
	iterable, err := g.expression(e.Iterable)
	if err != nil {
		return "", err
	}
	itemType := g.infer.ElementType(g.infer.TypeOf(e.Iterable))

	defer g.types.Enter(symbols.ScopeBlock)()
	g.types.Declare(e.Item.Value, symbols.Symbol{
		Name: e.Item.Value, Type: itemType, Kind: symbols.LoopSymbol, DefinitionNode: e.Item,
	})
	body, err := g.block(e.Body)
	if err != nil {
		return "", err
	}
	return g.backend.For(e.Item.Value, iterable, body), nil
}

func (g *Codegen) whileExpression(e *ast.WhileExpression) (string, error) {
	cond, err := g.expression(e.Condition)
	if err != nil {
		return "", err
	}
	body, err := g.block(e.Body)
	if err != nil {
		return "", err
	}
	return g.backend.While(cond, body), nil
}

func (g *Codegen) call(e *ast.CallExpression) (string, error) {
	args := make([]string, len(e.Arguments))
	for i, arg := range e.Arguments {
		code, err := g.expression(arg)
		if err != nil {
			return "", err
		}
		args[i] = code
	}
	code, err := g.backend.Call(e.Function.Value, args)
	return code, diagnostics.WithSpan(err, e.Span())
}

// convert plans the conversion from the inferred source type, exactly as
// lowering for the virtual machine does.
func (g *Codegen) convert(e *ast.ConvertExpression) (string, error) {
	src, err := g.expression(e.Source)
	if err != nil {
		return "", err
	}
	plan, err := convert.PlanPaths(g.registry, g.infer.TypeOf(e.Source), e.Target.Value)
	if err != nil {
		return "", diagnostics.WithSpan(err, e.Span())
	}
	code, err := g.backend.Convert(plan, src)
	return code, diagnostics.WithSpan(err, e.Span())
}
