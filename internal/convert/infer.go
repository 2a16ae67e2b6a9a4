package convert

import (
	"github.com/funvibe/tot/internal/ast"
	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/symbols"
	"github.com/funvibe/tot/internal/typesystem"
	"github.com/funvibe/tot/internal/value"
)

// Inferrer infers the type path an expression evaluates to from the
// declared types in scope. Anything that cannot be inferred is json.
// Without a registry only the declared type of a bare variable is known.
type Inferrer struct {
	Registry *registry.Registry
	Types    *symbols.TypeTable
}

func (in Inferrer) TypeOf(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Literal:
		return LiteralType(e.Value)
	case *ast.Reference:
		return in.ReferenceType(e.Path)
	case *ast.ConvertExpression:
		return e.Target.Value
	case *ast.BlockExpression:
		if e.Value != nil {
			return in.TypeOf(e.Value)
		}
	case *ast.IfExpression:
		return in.TypeOf(e.Consequence)
	}
	return config.JsonTypeName
}

// LiteralType is the type of a literal value: integers are i64, floats f64.
func LiteralType(v value.Value) string {
	switch v.(type) {
	case *value.String:
		return config.StringTypeName
	case *value.Int:
		return config.I64TypeName
	case *value.Float:
		return config.F64TypeName
	case *value.Bool:
		return config.BoolTypeName
	}
	return config.JsonTypeName
}

// ReferenceType follows path from the declared type of its root.
func (in Inferrer) ReferenceType(path value.Path) string {
	sym, ok := in.Types.Lookup(path.Root())
	if !ok {
		return config.JsonTypeName
	}
	if len(path) == 1 {
		return sym.Type
	}
	if in.Registry == nil {
		return config.JsonTypeName
	}

	cur, err := in.Registry.Resolve(sym.Type)
	if err != nil {
		return config.JsonTypeName
	}
	for _, seg := range path[1:] {
		if cur, ok = in.step(cur, seg); !ok {
			return config.JsonTypeName
		}
	}
	// list and map types written inside a schema file may hold names that
	// only resolve from that file
	typePath := cur.TypePath()
	if _, err := in.Registry.Resolve(typePath); err != nil {
		return config.JsonTypeName
	}
	return typePath
}

func (in Inferrer) step(cur registry.Resolved, seg value.Segment) (registry.Resolved, bool) {
	if cur.IsModel() {
		if seg.IsIndex {
			return registry.Resolved{}, false
		}
		next, err := in.Registry.FieldType(cur, seg.Key)
		return next, err == nil
	}
	var inner typesystem.Type
	switch t := cur.Type.(type) {
	case typesystem.TList:
		if !seg.IsIndex {
			return registry.Resolved{}, false
		}
		inner = t.Item
	case typesystem.TMap:
		if seg.IsIndex {
			return registry.Resolved{}, false
		}
		inner = t.Value
	default:
		return registry.Resolved{}, false
	}
	next, err := in.Registry.ResolveType(cur.File, inner)
	return next, err == nil
}

// ElementType is the item type of a list type path, or json.
func (in Inferrer) ElementType(typePath string) string {
	t, err := typesystem.ParseType(typePath)
	if err != nil {
		return config.JsonTypeName
	}
	l, ok := t.(typesystem.TList)
	if !ok {
		return config.JsonTypeName
	}
	if _, isRef := l.Item.(typesystem.TRef); isRef && in.Registry != nil {
		res, err := in.Registry.Resolve(l.Item.String())
		if err != nil {
			return config.JsonTypeName
		}
		return res.TypePath()
	}
	return l.Item.String()
}

// PlanPaths resolves both type paths against reg and builds the conversion.
func PlanPaths(reg *registry.Registry, from, to string) (*Plan, error) {
	source, err := reg.Resolve(from)
	if err != nil {
		return nil, err
	}
	target, err := reg.Resolve(to)
	if err != nil {
		return nil, err
	}
	return Build(reg, source, target)
}
