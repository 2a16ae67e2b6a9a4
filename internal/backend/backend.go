// Package backend defines how lowered source is rendered in a target
// language. The code generator walks the syntax tree and asks a Backend
// for every fragment; backends never see the tree itself.
package backend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/convert"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/value"
)

// Backend renders target-language fragments. Fragments may span several
// lines; nested fragments are indented by the backend that embeds them.
type Backend interface {
	// Name returns the backend name used in configuration
	Name() string
	// FileExt is the extension of generated files, dot included
	FileExt() string

	Signature(name string, params []string, ret string) string
	Param(name, typeName string) string
	Function(signature, body string) string

	// TypeName renders a type path. Model paths are resolved against the
	// registry and rendered fully qualified.
	TypeName(typePath string) (string, error)

	Literal(v value.Value) (string, error)
	Reference(path value.Path) string
	Call(path string, args []string) (string, error)
	Convert(plan *convert.Plan, src string) (string, error)

	Let(name, typeName, expr string) string
	Assign(target value.Path, expr string) string
	Statement(expr string) string
	// Return renders a function result: the trailing value of the body when
	// trailing is set, an explicit early return otherwise.
	Return(expr string, trailing bool) string

	Block(stmts []string, val string) string
	If(cond, then, els string) string
	For(item, iterable, body string) string
	While(cond, body string) string
}

// Callee describes how generated code reaches one host function.
type Callee struct {
	Path     string // target-language path
	Async    bool
	Fallible bool
}

// Options are shared by every backend.
type Options struct {
	// Crate prefixes host function paths that have no explicit callee
	Crate string
	Calls map[string]Callee
}

// OptionsFromConfig builds backend options from the tool configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{Crate: cfg.Crate, Calls: make(map[string]Callee, len(cfg.Calls))}
	for name, c := range cfg.Calls {
		opts.Calls[name] = Callee{Path: c.Path, Async: !c.Sync, Fallible: !c.Infallible}
	}
	return opts
}

// Callee returns how the host function at path is reached. Functions
// without an entry are async, fallible and live under Crate.
func (o Options) Callee(path string) Callee {
	c, ok := o.Calls[path]
	if !ok {
		c = Callee{Async: true, Fallible: true}
	}
	if c.Path == "" {
		c.Path = path
		if o.Crate != "" {
			c.Path = o.Crate + config.NamespaceSeparator + path
		}
	}
	return c
}

// Factory creates a backend resolving types against reg.
type Factory func(reg *registry.Registry, opts Options) Backend

var factories = map[string]Factory{
	RustName: func(reg *registry.Registry, opts Options) Backend { return NewRust(reg, opts) },
}

// New creates the backend registered under name.
func New(name string, reg *registry.Registry, opts Options) (Backend, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f(reg, opts), nil
}

// Names lists the registered backends, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// indent prefixes every non-empty line of s with one level of indentation.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "    " + line
		}
	}
	return strings.Join(lines, "\n")
}
