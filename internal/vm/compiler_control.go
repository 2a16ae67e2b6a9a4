package vm

import (
	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/symbols"
	"github.com/funvibe/tot/internal/value"
)

// compileIf lowers
//
//	EnterScope
//	<condition>
//	JumpIfFalse  -> else
//	<then block>
//	Jump         -> end
//	else: <else block>
//	end: ExitScope
//
// Without an else branch the Jump skips nothing and a false condition
// leaves the condition value in the register.
func (c *Compiler) compileIf(e *ast.IfExpression) error {
	defer c.types.Enter(symbols.ScopeBlock)()

	c.emit(EnterScope(), e.Span())
	if err := c.compileExpression(e.Condition); err != nil {
		return err
	}
	elseJump := c.emitJump(OP_JUMP_IF_FALSE, "", e.Condition.Span())
	if err := c.compileBlock(e.Consequence); err != nil {
		return err
	}
	endJump := c.emitJump(OP_JUMP, "", e.Span())
	c.patchJump(elseJump)

	if e.Alternative != nil {
		if err := c.compileExpression(e.Alternative); err != nil {
			return err
		}
	}
	c.patchJump(endJump)
	c.emit(ExitScope(), e.Span())
	return nil
}

// compileFor lowers
//
//	EnterScope
//	<iterable>
//	Iter
//	Declare $iter
//	Store $iter
//	top: IterNext $iter -> end
//	EnterScope
//	Declare <item>
//	Store <item>
//	<body>
//	ExitScope
//	Loop -> top
//	end: ExitScope
//	Load null
func (c *Compiler) compileFor(e *ast.ForExpression) error {
	defer c.types.Enter(symbols.ScopeBlock)()

	c.emit(EnterScope(), e.Span())
	if err := c.compileExpression(e.Iterable); err != nil {
		return err
	}
	itemType := c.infer.ElementType(c.infer.TypeOf(e.Iterable))

	c.emit(Iter(), e.Iterable.Span())
	c.emit(Declare(config.IteratorLocalName, config.JsonTypeName), e.Iterable.Span())
	c.emit(Store(config.IteratorLocalName), e.Iterable.Span())
	c.types.Declare(config.IteratorLocalName, symbols.Symbol{Name: config.IteratorLocalName, Type: config.JsonTypeName, Kind: symbols.SyntheticSymbol})

	top := len(c.code)
	exit := c.emitJump(OP_ITER_NEXT, config.IteratorLocalName, e.Span())
	if err := c.compileIteration(e, itemType); err != nil {
		return err
	}
	c.emitLoop(top, e.Span())
	c.patchJump(exit)

	c.emit(ExitScope(), e.Span())
	c.emit(LoadValue(value.NULL), e.Span())
	return nil
}

// compileIteration lowers one pass of a for body. IterNext leaves the next
// item in the register.
func (c *Compiler) compileIteration(e *ast.ForExpression, itemType string) error {
	defer c.types.Enter(symbols.ScopeBlock)()

	name := e.Item.Value
	c.emit(EnterScope(), e.Body.Span())
	c.emit(Declare(name, itemType), e.Item.Span())
	c.emit(Store(name), e.Item.Span())
	c.types.Declare(name, symbols.Symbol{Name: name, Type: itemType, Kind: symbols.LoopSymbol, DefinitionNode: e.Item})

	if err := c.compileBlock(e.Body); err != nil {
		return err
	}
	c.emit(ExitScope(), e.Body.Span())
	return nil
}

// compileWhile lowers
//
//	top: <condition>
//	JumpIfFalse -> end
//	<body>
//	Loop -> top
//	end: Load null
func (c *Compiler) compileWhile(e *ast.WhileExpression) error {
	top := len(c.code)
	if err := c.compileExpression(e.Condition); err != nil {
		return err
	}
	exit := c.emitJump(OP_JUMP_IF_FALSE, "", e.Condition.Span())
	if err := c.compileBlock(e.Body); err != nil {
		return err
	}
	c.emitLoop(top, e.Span())
	c.patchJump(exit)
	c.emit(LoadValue(value.NULL), e.Span())
	return nil
}
