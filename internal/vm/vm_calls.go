package vm

import (
	"context"

	"github.com/funvibe/tot/internal/convert"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/value"
)

// call resolves the argument references and hands copies to the host
// behavior. The result replaces the register; a nil result is null.
func (vm *VM) call(ctx context.Context, ins Instruction) error {
	args := make([]value.Value, len(ins.Args))
	for i, ref := range ins.Args {
		v, err := vm.frame.Load(ref)
		if err != nil {
			return err
		}
		args[i] = value.Copy(v)
	}

	vm.logger.Debug("host call", "vm", vm.id, "method", ins.Name, "args", len(args))
	if vm.behavior == nil {
		return diagnostics.New(diagnostics.KindHostCall, "%s: no host behavior attached", ins.Name)
	}
	result, err := vm.behavior.Execute(ctx, ins.Name, args)
	if err != nil {
		vm.logger.Debug("host call failed", "vm", vm.id, "method", ins.Name, "error", err)
		return diagnostics.Wrap(diagnostics.KindHostCall, err, "%s", ins.Name)
	}
	if result == nil {
		result = value.NULL
	}
	vm.register = result
	return nil
}

func (vm *VM) convert(ins Instruction) error {
	plan := ins.Plan
	if plan == nil {
		var err error
		if plan, err = vm.planFor(ins.From, ins.Type); err != nil {
			return err
		}
	}
	out, err := plan.Apply(vm.register)
	if err != nil {
		return err
	}
	vm.register = out
	return nil
}

// planFor builds a conversion against the VM registry, caching the result.
func (vm *VM) planFor(from, to string) (*convert.Plan, error) {
	key := planKey{from, to}
	if p, ok := vm.plans[key]; ok {
		return p, nil
	}
	p, err := convert.PlanPaths(vm.registry, from, to)
	if err != nil {
		return nil, err
	}
	vm.plans[key] = p
	return p, nil
}
