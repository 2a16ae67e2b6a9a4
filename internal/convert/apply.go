package convert

import (
	"math/big"
	"strconv"

	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/value"
	"github.com/shopspring/decimal"
)

// Apply converts v according to the plan. The input is never modified.
func (p *Plan) Apply(v value.Value) (value.Value, error) {
	switch p.Kind {
	case Copy, Serialize:
		return value.Copy(v), nil
	case Stringify:
		return stringify(v)
	case Widen:
		return widen(v)
	case Deserialize:
		if err := validate(p.reg, p.Target, v, "$"); err != nil {
			return nil, err
		}
		return value.Copy(v), nil
	case Struct:
		return p.applyStruct(v)
	}
	return nil, unsupported(p.Source, p.Target)
}

func (p *Plan) applyStruct(v value.Value) (value.Value, error) {
	src, ok := v.(*value.Object)
	if !ok {
		return nil, diagnostics.New(diagnostics.KindUnsupportedConversion,
			"%s value must be an object, got %s", p.Source.TypePath(), v.Type())
	}

	out := value.NewObject()
	for _, f := range p.Fields {
		if f.Absent {
			continue
		}
		fv, ok := src.Get(f.Name)
		if !ok || fv.Type() == value.NULL_VALUE {
			if f.Required {
				return nil, diagnostics.New(diagnostics.KindMissingRequiredField,
					"field %s of %s is required by %s", f.Name, p.Source.TypePath(), p.Target.TypePath())
			}
			continue
		}
		converted, err := f.Plan.Apply(fv)
		if err != nil {
			return nil, err
		}
		out.Set(f.Name, converted)
	}
	return out, nil
}

func stringify(v value.Value) (value.Value, error) {
	switch v := v.(type) {
	case *value.Int:
		return &value.String{Value: strconv.FormatInt(v.Value, 10)}, nil
	case *value.Float:
		return &value.String{Value: strconv.FormatFloat(v.Value, 'f', -1, 64)}, nil
	case *value.String:
		d, err := decimal.NewFromString(v.Value)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.KindUnsupportedConversion, err, "not a number: %q", v.Value)
		}
		return &value.String{Value: decimalText(d)}, nil
	}
	return nil, diagnostics.New(diagnostics.KindUnsupportedConversion, "cannot stringify %s", v.Type())
}

// decimalText renders d keeping its scale, so "1.50" stays "1.50".
func decimalText(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func widen(v value.Value) (value.Value, error) {
	switch v := v.(type) {
	case *value.Int:
		return &value.Float{Value: float64(v.Value)}, nil
	case *value.Float:
		return v, nil
	case *value.String:
		if d, err := decimal.NewFromString(v.Value); err == nil {
			f, _ := d.Float64()
			return &value.Float{Value: f}, nil
		}
		if b, ok := new(big.Int).SetString(v.Value, 10); ok {
			f, _ := new(big.Float).SetInt(b).Float64()
			return &value.Float{Value: f}, nil
		}
		return nil, diagnostics.New(diagnostics.KindUnsupportedConversion, "not a number: %q", v.Value)
	}
	return nil, diagnostics.New(diagnostics.KindUnsupportedConversion, "cannot widen %s to f64", v.Type())
}
