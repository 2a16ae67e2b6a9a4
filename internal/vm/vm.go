package vm

import (
	"context"
	"log/slog"

	"github.com/funvibe/tot/internal/convert"
	"github.com/funvibe/tot/internal/host"
	"github.com/funvibe/tot/internal/lexer"
	"github.com/funvibe/tot/internal/parser"
	"github.com/funvibe/tot/internal/pipeline"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/symbols"
	"github.com/funvibe/tot/internal/value"
	"github.com/google/uuid"
)

// VM executes lowered programs against a persistent frame. State survives
// between runs: variables declared at the top level by one program are
// visible to the next. A VM is not safe for concurrent use.
type VM struct {
	id       uuid.UUID
	frame    *Frame
	register value.Value

	behavior host.Behavior
	registry *registry.Registry
	types    *symbols.TypeTable // declared types of top-level variables
	logger   *slog.Logger

	plans map[planKey]*convert.Plan
}

type planKey struct {
	from, to string
}

type Option func(*VM)

// WithRegistry resolves declared types and conversions against reg.
func WithRegistry(reg *registry.Registry) Option {
	return func(vm *VM) { vm.registry = reg }
}

func WithLogger(logger *slog.Logger) Option {
	return func(vm *VM) { vm.logger = logger }
}

// New creates a VM calling out to behavior. Without a registry only
// builtin types are known.
func New(behavior host.Behavior, opts ...Option) *VM {
	vm := &VM{
		id:       uuid.New(),
		frame:    NewFrame(),
		register: value.NULL,
		behavior: behavior,
		types:    symbols.NewTypeTable(),
		plans:    make(map[planKey]*convert.Plan),
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.registry == nil {
		vm.registry = registry.New(nil)
	}
	if vm.logger == nil {
		vm.logger = slog.New(slog.DiscardHandler)
	}
	return vm
}

func (vm *VM) ID() uuid.UUID                { return vm.id }
func (vm *VM) Frame() *Frame                { return vm.frame }
func (vm *VM) Register() value.Value        { return vm.register }
func (vm *VM) Registry() *registry.Registry { return vm.registry }

// Compiler returns a compiler sharing the VM's registry and top-level
// declarations.
func (vm *VM) Compiler() *Compiler {
	return NewCompiler(vm.registry, vm.types)
}

// Eval parses, lowers and runs source holding exactly one statement.
func (vm *VM) Eval(ctx context.Context, source string) (value.Value, error) {
	return vm.eval(ctx, source, pipeline.ModeStatement)
}

// EvalScript parses, lowers and runs a sequence of statements.
func (vm *VM) EvalScript(ctx context.Context, source string) (value.Value, error) {
	return vm.eval(ctx, source, pipeline.ModeStatements)
}

func (vm *VM) eval(ctx context.Context, source string, mode pipeline.Mode) (value.Value, error) {
	pctx := pipeline.NewPipelineContext(source, mode)
	pctx.Context = ctx
	cp := &CompileProcessor{Compiler: vm.Compiler()}
	pctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		cp,
		&ExecuteProcessor{VM: vm, Source: cp},
	).Run(pctx)
	if err := pctx.Err(); err != nil {
		return nil, err
	}
	return vm.register, nil
}
