package codegen

import (
	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/symbols"
)

func (g *Codegen) statements(stmts []ast.Statement) ([]string, error) {
	out := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		code, err := g.statement(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}

func (g *Codegen) statement(stmt ast.Statement) (string, error) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		typeName, err := g.typeName(s.Type)
		if err != nil {
			return "", err
		}
		expr, err := g.expression(s.Value)
		if err != nil {
			return "", err
		}
		g.types.Declare(s.Name.Value, symbols.Symbol{
			Name: s.Name.Value, Type: s.Type.Value, Kind: symbols.VariableSymbol, DefinitionNode: s,
		})
		return g.backend.Let(s.Name.Value, typeName, expr), nil

	case *ast.AssignStatement:
		expr, err := g.expression(s.Value)
		if err != nil {
			return "", err
		}
		return g.backend.Assign(s.Target.Path, expr), nil

	case *ast.ReturnStatement:
		expr, err := g.expression(s.Value)
		if err != nil {
			return "", err
		}
		return g.backend.Return(expr, false), nil

	case *ast.ExpressionStatement:
		expr, err := g.expression(s.Expression)
		if err != nil {
			return "", err
		}
		return g.backend.Statement(expr), nil
	}
	return "", diagnostics.NewAt(diagnostics.KindInvalidProgram, stmt.Span(), "cannot generate %s", stmt.Kind())
}
