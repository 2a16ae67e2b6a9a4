package vm

import (
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/symbols"
	"github.com/funvibe/tot/internal/value"
)

// Frame is the variable storage of a VM: a stack of scopes mapping names to
// values. The root scope lives as long as the VM.
type Frame struct {
	scopes *symbols.Table[value.Value]
}

func NewFrame() *Frame {
	return &Frame{scopes: symbols.NewTable[value.Value]()}
}

func (f *Frame) Push() {
	f.scopes.Push(symbols.ScopeBlock)
}

func (f *Frame) Pop() error {
	if err := f.scopes.Pop(); err != nil {
		return diagnostics.Wrap(diagnostics.KindInvalidProgram, err, "unbalanced scope exit")
	}
	return nil
}

func (f *Frame) Depth() int { return f.scopes.Depth() }

// Truncate drops every scope above depth.
func (f *Frame) Truncate(depth int) { f.scopes.Truncate(depth) }

// Bind binds name in the innermost scope, shadowing outer bindings.
func (f *Frame) Bind(name string, v value.Value) {
	f.scopes.Declare(name, v)
}

// Lookup returns the value bound to name in the nearest scope.
func (f *Frame) Lookup(name string) (value.Value, bool) {
	return f.scopes.Lookup(name)
}

// Load follows path from its root variable.
func (f *Frame) Load(path value.Path) (value.Value, error) {
	root, ok := f.scopes.Lookup(path.Root())
	if !ok {
		return nil, diagnostics.New(diagnostics.KindUnresolvedReference, "%s is not declared", path.Root())
	}
	return value.Get(root, path[1:])
}

// Assign replaces the value at path. A bare name rebinds the nearest
// declaration; a longer path updates the container in place.
func (f *Frame) Assign(path value.Path, v value.Value) error {
	name := path.Root()
	root, ok := f.scopes.Lookup(name)
	if !ok {
		return diagnostics.New(diagnostics.KindUnresolvedReference, "%s is not declared", name)
	}
	updated, err := value.Set(root, path[1:], v)
	if err != nil {
		return err
	}
	f.scopes.Assign(name, updated)
	return nil
}

// Scopes lists the bindings of every scope, outermost first.
func (f *Frame) Scopes() []symbols.ScopeInfo[value.Value] {
	return f.scopes.Scopes()
}
