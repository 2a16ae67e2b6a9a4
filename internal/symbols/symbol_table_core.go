package symbols

import (
	"github.com/funvibe/tot/internal/ast"
)

type SymbolKind int

type ScopeType int

const (
	ScopeGlobal   ScopeType = iota // Top-level statements, or the VM root scope
	ScopeFunction                  // Function parameters
	ScopeBlock                     // Block, call or loop body
)

func (s ScopeType) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	}
	return "unknown"
}

const (
	VariableSymbol SymbolKind = iota // let binding
	ParamSymbol                      // function parameter
	LoopSymbol                       // for loop item
	SyntheticSymbol                  // compiler-introduced local
)

// Symbol is what lowering knows about a name: its declared type path.
type Symbol struct {
	Name           string
	Type           string // Type path as written, e.g. "a::B" or "list[i32]"
	Kind           SymbolKind
	DefinitionNode ast.Node // nil for synthetic locals
}

// TypeTable tracks declared type paths during lowering and code generation.
type TypeTable = Table[Symbol]

// NewTypeTable creates a TypeTable with its global scope.
func NewTypeTable() *TypeTable {
	return NewTable[Symbol]()
}
