package vm

import (
	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/convert"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/symbols"
	"github.com/funvibe/tot/internal/token"
	"github.com/funvibe/tot/internal/typesystem"
)

// Compiler lowers syntax trees to instructions. It tracks the declared type
// of every variable in scope so that conversions know their source type.
type Compiler struct {
	registry *registry.Registry // nil: conversions are planned at run time
	types    *symbols.TypeTable

	infer convert.Inferrer
	code  []Instruction
}

// NewCompiler creates a compiler. A nil types table starts empty; passing
// the same table to several compilers keeps top-level declarations visible
// between them.
func NewCompiler(reg *registry.Registry, types *symbols.TypeTable) *Compiler {
	if types == nil {
		types = symbols.NewTypeTable()
	}
	return &Compiler{
		registry: reg,
		types:    types,
		infer:    convert.Inferrer{Registry: reg, Types: types},
	}
}

// Compile lowers a statement, a statement sequence or an expression. On
// error nothing is returned; top-level declarations made by statements
// lowered before the failing one stay in the types table.
func (c *Compiler) Compile(node ast.Node) (*Program, error) {
	c.code = nil
	depth := c.types.Depth()
	defer c.types.Truncate(depth)

	var err error
	switch n := node.(type) {
	case *ast.Program:
		for _, stmt := range n.Statements {
			if err = c.compileStatement(stmt); err != nil {
				break
			}
		}
	case ast.Statement:
		err = c.compileStatement(n)
	case ast.Expression:
		err = c.compileExpression(n)
	default:
		err = diagnostics.NewAt(diagnostics.KindInvalidProgram, node.Span(), "cannot lower %s", node.Kind())
	}
	if err != nil {
		return nil, err
	}

	prog := &Program{Instructions: c.code}
	c.code = nil
	return prog, nil
}

// emit helpers

func (c *Compiler) emit(ins Instruction, span token.Span) int {
	ins.Span = span
	c.code = append(c.code, ins)
	return len(c.code) - 1
}

// emitJump emits a jump with a placeholder offset and returns its index.
func (c *Compiler) emitJump(op Opcode, name string, span token.Span) int {
	return c.emit(Instruction{Op: op, Name: name}, span)
}

// patchJump sets the offset of the jump at idx so that it lands on the next
// instruction to be emitted. Offsets count the instructions skipped.
func (c *Compiler) patchJump(idx int) {
	c.code[idx].Offset = len(c.code) - (idx + 1)
}

// emitLoop emits a backward jump landing on target.
func (c *Compiler) emitLoop(target int, span token.Span) {
	idx := len(c.code)
	c.emit(Loop(idx+1-target), span)
}

// plan decides a conversion during lowering when a registry is available.
func (c *Compiler) plan(from, to string) (*convert.Plan, error) {
	if c.registry == nil {
		if _, err := typesystem.ParseType(to); err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindUnresolvedType, err, "%s", to)
		}
		return nil, nil
	}
	return convert.PlanPaths(c.registry, from, to)
}

// checkType verifies that a declared type path resolves.
func (c *Compiler) checkType(typePath string, span token.Span) error {
	var err error
	if c.registry != nil {
		_, err = c.registry.Resolve(typePath)
	} else if _, perr := typesystem.ParseType(typePath); perr != nil {
		err = diagnostics.Wrap(diagnostics.KindUnresolvedType, perr, "%s", typePath)
	}
	return diagnostics.WithSpan(err, span)
}
