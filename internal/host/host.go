// Package host defines the boundary between the virtual machine and the
// functions it calls. A Call instruction is the only point where execution
// leaves the machine.
package host

import (
	"context"
	"fmt"
	"sort"

	"github.com/funvibe/tot/internal/value"
)

// Behavior executes external calls on behalf of the virtual machine. Execute
// may block; the machine waits for it before running the next instruction.
// Implementations should stop early when ctx is cancelled.
type Behavior interface {
	Execute(ctx context.Context, method string, args []value.Value) (value.Value, error)
}

// Func is a single host function.
type Func func(ctx context.Context, args []value.Value) (value.Value, error)

// Funcs is a Behavior that dispatches on the method path.
type Funcs map[string]Func

func (f Funcs) Execute(ctx context.Context, method string, args []value.Value) (value.Value, error) {
	fn, ok := f[method]
	if !ok {
		return nil, fmt.Errorf("unknown function %s", method)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fn(ctx, args)
}

// With returns a copy of f extended by other. Functions in other win.
func (f Funcs) With(other Funcs) Funcs {
	out := make(Funcs, len(f)+len(other))
	for name, fn := range f {
		out[name] = fn
	}
	for name, fn := range other {
		out[name] = fn
	}
	return out
}

// Names returns the registered method paths, sorted.
func (f Funcs) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(ctx context.Context, method string, args []value.Value) (value.Value, error)

func (f BehaviorFunc) Execute(ctx context.Context, method string, args []value.Value) (value.Value, error) {
	return f(ctx, method, args)
}
