package vm

import (
	"context"

	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/value"
)

// Run executes prog and returns the final register value. On success, or
// on Return, every scope the program entered is exited. On error the frame
// is left as the failing instruction found it.
func (vm *VM) Run(ctx context.Context, prog *Program) (value.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}

	depth := vm.frame.Depth()
	code := prog.Instructions
	ip := 0
	for ip < len(code) {
		ins := code[ip]
		ip++

		var err error
		switch ins.Op {
		case OP_DECLARE:
			// types are checked during lowering

		case OP_STORE:
			vm.frame.Bind(ins.Name, vm.register)
			vm.register = value.NULL

		case OP_LOAD:
			err = vm.load(ins.Operand)

		case OP_ASSIGN:
			if err = vm.frame.Assign(ins.Target, vm.register); err == nil {
				vm.register = value.NULL
			}

		case OP_ENTER_SCOPE:
			vm.frame.Push()

		case OP_EXIT_SCOPE:
			err = vm.frame.Pop()

		case OP_CALL:
			err = vm.call(ctx, ins)

		case OP_CONVERT:
			err = vm.convert(ins)

		case OP_RETURN:
			vm.frame.Truncate(depth)
			return vm.register, nil

		case OP_JUMP_IF_FALSE:
			if value.IsFalse(vm.register) {
				ip, err = forward(ip, ins.Offset, len(code))
			}

		case OP_JUMP:
			ip, err = forward(ip, ins.Offset, len(code))

		case OP_LOOP:
			if err = ctx.Err(); err != nil {
				err = interrupted(err)
				break
			}
			if ins.Offset < 0 || ip-ins.Offset < 0 {
				err = diagnostics.New(diagnostics.KindInvalidProgram, "loop offset %d out of range", ins.Offset)
				break
			}
			ip -= ins.Offset

		case OP_ITER:
			err = vm.iter()

		case OP_ITER_NEXT:
			var done bool
			if done, err = vm.iterNext(ins.Name); err == nil && done {
				ip, err = forward(ip, ins.Offset, len(code))
			}

		default:
			err = diagnostics.New(diagnostics.KindInvalidProgram, "unknown opcode %d", ins.Op)
		}

		if err != nil {
			return nil, diagnostics.WithSpan(err, ins.Span)
		}
	}

	vm.frame.Truncate(depth)
	return vm.register, nil
}

// forward moves ip past n instructions. Landing exactly at the end is
// allowed.
func forward(ip, n, size int) (int, error) {
	if n < 0 || ip+n > size {
		return ip, diagnostics.New(diagnostics.KindInvalidProgram, "jump offset %d out of range", n)
	}
	return ip + n, nil
}

func interrupted(err error) error {
	return diagnostics.Wrap(diagnostics.KindInvalidProgram, err, "execution interrupted")
}

// load puts a literal, or a copy of the referenced value, in the register.
func (vm *VM) load(op Operand) error {
	if !op.IsRef() {
		vm.register = value.Copy(op.Value)
		return nil
	}
	v, err := vm.frame.Load(op.Ref)
	if err != nil {
		return err
	}
	vm.register = value.Copy(v)
	return nil
}

// iter replaces the list in the register with an iterator over its items.
func (vm *VM) iter() error {
	l, ok := vm.register.(*value.List)
	if !ok {
		return diagnostics.New(diagnostics.KindScope, "cannot iterate over %s", vm.register.Type())
	}
	items := make([]value.Value, len(l.Elements))
	copy(items, l.Elements)
	vm.register = &value.Iterator{Items: items}
	return nil
}

// iterNext advances the iterator bound to name, leaving the item in the
// register. It reports true once the iterator is exhausted.
func (vm *VM) iterNext(name string) (bool, error) {
	v, ok := vm.frame.Lookup(name)
	if !ok {
		return false, diagnostics.New(diagnostics.KindUnresolvedReference, "%s is not declared", name)
	}
	it, ok := v.(*value.Iterator)
	if !ok {
		return false, diagnostics.New(diagnostics.KindInvalidProgram, "%s holds %s, not an iterator", name, v.Type())
	}
	item, ok := it.Next()
	if !ok {
		return true, nil
	}
	vm.register = item
	return false, nil
}
