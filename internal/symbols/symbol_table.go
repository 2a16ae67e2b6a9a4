// Package symbols implements the lexical scope stack shared by lowering
// (names to declared types) and the virtual machine (names to values).
package symbols

import "fmt"

type scope[T any] struct {
	kind    ScopeType
	names   []string // declaration order
	entries map[string]T
}

// Table is a stack of scopes. Lookups scan from the innermost scope
// outward, so an inner declaration shadows an outer one until its scope
// is popped. The outermost (global) scope is never popped.
type Table[T any] struct {
	scopes []*scope[T]
}

func NewTable[T any]() *Table[T] {
	t := &Table[T]{}
	t.Push(ScopeGlobal)
	return t
}

func (t *Table[T]) Push(kind ScopeType) {
	t.scopes = append(t.scopes, &scope[T]{kind: kind, entries: make(map[string]T)})
}

// Pop removes the innermost scope. It fails on the global scope.
func (t *Table[T]) Pop() error {
	if len(t.scopes) <= 1 {
		return fmt.Errorf("cannot pop the global scope")
	}
	t.scopes[len(t.scopes)-1] = nil
	t.scopes = t.scopes[:len(t.scopes)-1]
	return nil
}

// Enter pushes a scope and returns the function that pops it, for use with
// defer:
//
//	defer table.Enter(symbols.ScopeBlock)()
func (t *Table[T]) Enter(kind ScopeType) func() {
	depth := t.Depth()
	t.Push(kind)
	return func() { t.Truncate(depth) }
}

// Depth is the number of scopes, the global one included.
func (t *Table[T]) Depth() int {
	return len(t.scopes)
}

// Truncate pops scopes until at most depth remain. The global scope is kept.
func (t *Table[T]) Truncate(depth int) {
	if depth < 1 {
		depth = 1
	}
	for len(t.scopes) > depth {
		_ = t.Pop()
	}
}

// Declare binds name in the innermost scope, replacing a binding of the
// same name in that scope.
func (t *Table[T]) Declare(name string, v T) {
	s := t.scopes[len(t.scopes)-1]
	if _, ok := s.entries[name]; !ok {
		s.names = append(s.names, name)
	}
	s.entries[name] = v
}

// Lookup returns the innermost binding of name.
func (t *Table[T]) Lookup(name string) (T, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if v, ok := t.scopes[i].entries[name]; ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Assign replaces the innermost existing binding of name. It reports false
// when name is not bound in any scope.
func (t *Table[T]) Assign(name string, v T) bool {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if _, ok := t.scopes[i].entries[name]; ok {
			t.scopes[i].entries[name] = v
			return true
		}
	}
	return false
}

// IsDeclaredInCurrentScope reports whether name is bound in the innermost scope.
func (t *Table[T]) IsDeclaredInCurrentScope(name string) bool {
	_, ok := t.scopes[len(t.scopes)-1].entries[name]
	return ok
}

// Binding is one name visible in a scope.
type Binding[T any] struct {
	Name  string
	Value T
}

// ScopeInfo describes one level of the stack, outermost first.
type ScopeInfo[T any] struct {
	Kind     ScopeType
	Bindings []Binding[T]
}

// Scopes returns a snapshot of the stack, outermost first. Bindings are in
// declaration order.
func (t *Table[T]) Scopes() []ScopeInfo[T] {
	out := make([]ScopeInfo[T], len(t.scopes))
	for i, s := range t.scopes {
		out[i].Kind = s.kind
		for _, name := range s.names {
			out[i].Bindings = append(out[i].Bindings, Binding[T]{Name: name, Value: s.entries[name]})
		}
	}
	return out
}
