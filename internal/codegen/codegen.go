// Package codegen lowers source files of function definitions to target
// language source through a backend.Backend.
package codegen

import (
	"log/slog"
	"strings"

	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/backend"
	"github.com/funvibe/tot/internal/convert"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/symbols"
)

// Codegen tracks the declared type of every variable in scope so that
// conversions and calls render with the right types. A Codegen is not safe
// for concurrent use.
type Codegen struct {
	backend  backend.Backend
	registry *registry.Registry
	types    *symbols.TypeTable
	infer    convert.Inferrer
	logger   *slog.Logger
}

// New creates a generator. A nil registry knows builtin types only; a nil
// logger discards.
func New(b backend.Backend, reg *registry.Registry, logger *slog.Logger) *Codegen {
	if reg == nil {
		reg = registry.New(nil)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	types := symbols.NewTypeTable()
	return &Codegen{
		backend:  b,
		registry: reg,
		types:    types,
		infer:    convert.Inferrer{Registry: reg, Types: types},
		logger:   logger,
	}
}

// GenerateFile renders every function of file, in order.
func (g *Codegen) GenerateFile(file *ast.File) (string, error) {
	var sb strings.Builder
	for i, fn := range file.Functions {
		code, err := g.GenerateFunc(fn)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(code)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// GenerateFunc renders one function definition.
func (g *Codegen) GenerateFunc(fn *ast.FuncDef) (string, error) {
	defer g.types.Enter(symbols.ScopeFunction)()

	sig := fn.Signature
	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		typeName, err := g.typeName(p.Type)
		if err != nil {
			return "", err
		}
		params[i] = g.backend.Param(p.Name.Value, typeName)
		g.types.Declare(p.Name.Value, symbols.Symbol{
			Name: p.Name.Value, Type: p.Type.Value, Kind: symbols.ParamSymbol, DefinitionNode: p,
		})
	}

	ret := ""
	if sig.ReturnType != nil {
		var err error
		if ret, err = g.typeName(sig.ReturnType); err != nil {
			return "", err
		}
	}

	body, err := g.functionBody(fn.Body, ret != "")
	if err != nil {
		return "", err
	}

	g.logger.Debug("generated function", "name", sig.Name.Value, "backend", g.backend.Name(), "params", len(params))
	return g.backend.Function(g.backend.Signature(sig.Name.Value, params, ret), body), nil
}

// functionBody renders the body block with its trailing value as the
// function result. A function without a return type and without a trailing
// value returns unit. A trailing loop is rendered as a statement.
func (g *Codegen) functionBody(b *ast.BlockExpression, returnsValue bool) (string, error) {
	defer g.types.Enter(symbols.ScopeBlock)()

	stmts, err := g.statements(b.Statements)
	if err != nil {
		return "", err
	}
	val := ""
	switch {
	case isLoop(b.Value):
		expr, err := g.expression(b.Value)
		if err != nil {
			return "", err
		}
		stmts = append(stmts, g.backend.Statement(expr))
		if !returnsValue {
			val = g.backend.Return("()", true)
		}
	case b.Value != nil:
		expr, err := g.expression(b.Value)
		if err != nil {
			return "", err
		}
		val = g.backend.Return(expr, true)
	case !returnsValue:
		val = g.backend.Return("()", true)
	}
	return g.backend.Block(stmts, val), nil
}

// isLoop reports whether expr is a loop, which yields no value.
func isLoop(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.ForExpression, *ast.WhileExpression:
		return true
	}
	return false
}

func (g *Codegen) typeName(p *ast.Path) (string, error) {
	name, err := g.backend.TypeName(p.Value)
	if err != nil {
		return "", diagnostics.WithSpan(err, p.Span())
	}
	return name, nil
}
