package vm

import (
	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/symbols"
	"github.com/funvibe/tot/internal/value"
)

func (c *Compiler) compileExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.Literal:
		c.emit(LoadValue(e.Value), e.Span())
		return nil
	case *ast.Reference:
		c.emit(LoadRef(e.Path), e.Span())
		return nil
	case *ast.BlockExpression:
		return c.compileBlock(e)
	case *ast.IfExpression:
		return c.compileIf(e)
	case *ast.ForExpression:
		return c.compileFor(e)
	case *ast.WhileExpression:
		return c.compileWhile(e)
	case *ast.CallExpression:
		return c.compileCall(e)
	case *ast.ConvertExpression:
		return c.compileConvert(e)
	case nil:
		return diagnostics.New(diagnostics.KindInvalidProgram, "missing expression")
	}
	return diagnostics.NewAt(diagnostics.KindInvalidProgram, expr.Span(), "cannot lower %s", expr.Kind())
}

// compileCall evaluates every argument into a per-position json local of a
// dedicated scope and passes the locals by reference.
func (c *Compiler) compileCall(e *ast.CallExpression) error {
	defer c.types.Enter(symbols.ScopeBlock)()

	c.emit(EnterScope(), e.Span())
	args := make([]value.Path, len(e.Arguments))
	for i, arg := range e.Arguments {
		name := syntheticName(i)
		if err := c.compileExpression(arg); err != nil {
			return err
		}
		c.emit(Declare(name, config.JsonTypeName), arg.Span())
		c.emit(Store(name), arg.Span())
		c.types.Declare(name, symbols.Symbol{Name: name, Type: config.JsonTypeName, Kind: symbols.SyntheticSymbol})
		args[i] = value.NewPath(name)
	}
	c.emit(Call(e.Function.Value, args...), e.Span())
	c.emit(ExitScope(), e.Span())
	return nil
}

func (c *Compiler) compileConvert(e *ast.ConvertExpression) error {
	if err := c.compileExpression(e.Source); err != nil {
		return err
	}
	from := c.infer.TypeOf(e.Source)
	to := e.Target.Value

	ins := Convert(from, to)
	plan, err := c.plan(from, to)
	if err != nil {
		return diagnostics.WithSpan(err, e.Span())
	}
	ins.Plan = plan
	c.emit(ins, e.Span())
	return nil
}
