// Package convert implements structural conversion between schema types.
// A Plan is computed from the resolved source and target types alone, so the
// virtual machine and the code generator make the same decisions.
package convert

import (
	"fmt"

	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/typesystem"
)

type Kind int

const (
	Copy        Kind = iota // identical types
	Stringify               // numeric scalar to string
	Widen                   // numeric scalar to f64
	Serialize               // model to json
	Deserialize             // json to model, shape checked when applied
	Struct                  // struct to struct, field by field
)

var kindNames = map[Kind]string{
	Copy:        "copy",
	Stringify:   "stringify",
	Widen:       "widen",
	Serialize:   "serialize",
	Deserialize: "deserialize",
	Struct:      "struct",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Plan struct {
	Kind   Kind
	Source registry.Resolved
	Target registry.Resolved
	Fields []FieldPlan // Struct only, in target field order

	reg *registry.Registry
}

// FieldPlan converts one target field. Absent is set when the source has no
// field of that name; the target field is then optional and left empty.
type FieldPlan struct {
	Name           string
	Required       bool
	SourceRequired bool
	Absent         bool
	Plan           *Plan
}

func (p *Plan) String() string {
	return fmt.Sprintf("%s %s -> %s", p.Kind, p.Source.TypePath(), p.Target.TypePath())
}

type pairKey struct {
	source, target string
}

// Build computes the conversion from source to target. Fields present on
// both structs with differing types are converted recursively with the same
// rules.
func Build(reg *registry.Registry, source, target registry.Resolved) (*Plan, error) {
	b := &builder{reg: reg, inProgress: make(map[pairKey]*Plan)}
	return b.build(source, target)
}

type builder struct {
	reg        *registry.Registry
	inProgress map[pairKey]*Plan
}

func (b *builder) build(source, target registry.Resolved) (*Plan, error) {
	plan := &Plan{Source: source, Target: target, reg: b.reg}

	if source.Same(target) {
		plan.Kind = Copy
		return plan, nil
	}

	switch {
	case isNumeric(source) && isScalar(target, typesystem.String):
		plan.Kind = Stringify
		return plan, nil
	case isNumeric(source) && isScalar(target, typesystem.F64):
		plan.Kind = Widen
		return plan, nil
	case isConcreteModel(source) && isScalar(target, typesystem.Json):
		plan.Kind = Serialize
		return plan, nil
	case isScalar(source, typesystem.Json) && isConcreteModel(target):
		plan.Kind = Deserialize
		return plan, nil
	case isModelKind(source, typesystem.KindStruct) && isModelKind(target, typesystem.KindStruct):
		return b.buildStruct(plan)
	}

	return nil, unsupported(source, target)
}

func (b *builder) buildStruct(plan *Plan) (*Plan, error) {
	key := pairKey{plan.Source.TypePath(), plan.Target.TypePath()}
	if existing, ok := b.inProgress[key]; ok {
		return existing, nil
	}
	plan.Kind = Struct
	b.inProgress[key] = plan
	defer delete(b.inProgress, key)

	srcFields, err := b.reg.EffectiveFields(plan.Source)
	if err != nil {
		return nil, err
	}
	dstFields, err := b.reg.EffectiveFields(plan.Target)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]registry.Field, len(srcFields))
	for _, f := range srcFields {
		byName[f.Name] = f
	}

	for _, dst := range dstFields {
		fp := FieldPlan{Name: dst.Name, Required: dst.Required}
		src, ok := byName[dst.Name]
		if !ok {
			if dst.Required {
				return nil, diagnostics.New(diagnostics.KindMissingRequiredField,
					"%s has no field %s required by %s", plan.Source.TypePath(), dst.Name, plan.Target.TypePath())
			}
			fp.Absent = true
			plan.Fields = append(plan.Fields, fp)
			continue
		}

		srcType, err := b.reg.ResolveType(src.File, src.Type)
		if err != nil {
			return nil, err
		}
		dstType, err := b.reg.ResolveType(dst.File, dst.Type)
		if err != nil {
			return nil, err
		}
		sub, err := b.build(srcType, dstType)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", dst.Name, err)
		}
		fp.Plan = sub
		fp.SourceRequired = src.Required
		plan.Fields = append(plan.Fields, fp)
	}
	return plan, nil
}

func unsupported(source, target registry.Resolved) error {
	return diagnostics.New(diagnostics.KindUnsupportedConversion, "cannot convert %s to %s", source.TypePath(), target.TypePath())
}

func isScalar(r registry.Resolved, kind typesystem.ScalarKind) bool {
	s, ok := r.Type.(typesystem.TScalar)
	return ok && s.Kind == kind
}

func isNumeric(r registry.Resolved) bool {
	s, ok := r.Type.(typesystem.TScalar)
	return ok && s.IsNumeric()
}

func isModelKind(r registry.Resolved, kind typesystem.ModelKind) bool {
	return r.IsModel() && r.Model.Type.Kind == kind
}

// isConcreteModel reports whether values of r can exist. Virtual models are
// contracts only.
func isConcreteModel(r registry.Resolved) bool {
	return r.IsModel() && r.Model.Type.Kind != typesystem.KindVirtual
}
