package vm

import (
	"strconv"

	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/symbols"
)

func (c *Compiler) compileStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		return c.compileLet(s)
	case *ast.AssignStatement:
		return c.compileAssign(s)
	case *ast.ReturnStatement:
		if err := c.compileExpression(s.Value); err != nil {
			return err
		}
		c.emit(Return(), s.Span())
		return nil
	case *ast.ExpressionStatement:
		return c.compileExpression(s.Expression)
	case *ast.FuncDef:
		return diagnostics.NewAt(diagnostics.KindInvalidProgram, s.Span(),
			"function %s can only be generated, not run", s.Signature.Name.Value)
	}
	return diagnostics.NewAt(diagnostics.KindInvalidProgram, stmt.Span(), "cannot lower %s", stmt.Kind())
}

// compileLet binds the variable once its initializer is evaluated; the
// initializer still sees any outer variable of the same name.
func (c *Compiler) compileLet(s *ast.LetStatement) error {
	typePath := s.Type.Value
	if err := c.checkType(typePath, s.Type.Span()); err != nil {
		return err
	}
	name := s.Name.Value

	c.emit(Declare(name, typePath), s.Span())
	if err := c.compileExpression(s.Value); err != nil {
		return err
	}
	c.emit(Store(name), s.Span())
	c.types.Declare(name, symbols.Symbol{Name: name, Type: typePath, Kind: symbols.VariableSymbol, DefinitionNode: s})
	return nil
}

func (c *Compiler) compileAssign(s *ast.AssignStatement) error {
	if err := c.compileExpression(s.Value); err != nil {
		return err
	}
	c.emit(Assign(s.Target.Path), s.Span())
	return nil
}

// compileBlock lowers statements followed by the optional trailing value
// inside a fresh scope. Without a trailing value the register keeps what
// the last statement left in it.
func (c *Compiler) compileBlock(b *ast.BlockExpression) error {
	defer c.types.Enter(symbols.ScopeBlock)()

	c.emit(EnterScope(), b.Span())
	for _, stmt := range b.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	if b.Value != nil {
		if err := c.compileExpression(b.Value); err != nil {
			return err
		}
	}
	c.emit(ExitScope(), b.Span())
	return nil
}

// syntheticName is the local a call binds its i-th argument to.
func syntheticName(i int) string {
	return config.SyntheticParamPrefix + strconv.Itoa(i)
}
