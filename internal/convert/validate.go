package convert

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"

	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/typesystem"
	"github.com/funvibe/tot/internal/value"
	"github.com/shopspring/decimal"
)

// Enum values are objects {"type": variant, "payload": ...}.
const (
	EnumTagKey     = "type"
	EnumPayloadKey = "payload"
)

// Validate checks that v has the shape of the resolved type.
func Validate(reg *registry.Registry, t registry.Resolved, v value.Value) error {
	return validate(reg, t, v, "$")
}

func validate(reg *registry.Registry, t registry.Resolved, v value.Value, at string) error {
	if !t.IsModel() {
		return validateType(reg, t, v, at)
	}

	m := t.Model
	switch m.Type.Kind {
	case typesystem.KindStruct, typesystem.KindVirtual:
		fields, err := reg.EffectiveFields(t)
		if err != nil {
			return err
		}
		return validateFields(reg, t.TypePath(), fields, v, at)

	case typesystem.KindNewType:
		inner, err := reg.ResolveType(t.File, m.Type.Inner)
		if err != nil {
			return err
		}
		return validate(reg, inner, v, at)

	case typesystem.KindConst:
		if err := validateScalar(m.Type.ValueType, v, at); err != nil {
			return err
		}
		var cv typesystem.ConstValue
		switch v := v.(type) {
		case *value.Int:
			cv = typesystem.IntConst(v.Value)
		case *value.String:
			cv = typesystem.StringConst(v.Value)
		}
		if _, ok := m.NameOf(cv); !ok {
			return mismatch(at, "%s is not a value of %s", v.Inspect(), t.TypePath())
		}
		return nil

	case typesystem.KindEnum:
		obj, ok := v.(*value.Object)
		if !ok {
			return mismatch(at, "%s expects an object, got %s", t.TypePath(), v.Type())
		}
		tag, ok := obj.Get(EnumTagKey)
		tagStr, isStr := tag.(*value.String)
		if !ok || !isStr {
			return mismatch(at, "%s value needs a string %q", t.TypePath(), EnumTagKey)
		}
		variant, ok := m.Variant(tagStr.Value)
		if !ok {
			return mismatch(at, "%s has no variant %s", t.TypePath(), tagStr.Value)
		}
		payload, hasPayload := obj.Get(EnumPayloadKey)
		if hasPayload && payload.Type() == value.NULL_VALUE {
			hasPayload = false
		}
		payloadAt := at + "." + EnumPayloadKey
		switch {
		case variant.PayloadType != nil:
			if !hasPayload {
				return diagnostics.New(diagnostics.KindMissingRequiredField, "%s: %s::%s needs a payload", at, t.TypePath(), variant.Name)
			}
			pt, err := reg.ResolveType(t.File, variant.PayloadType)
			if err != nil {
				return err
			}
			return validate(reg, pt, payload, payloadAt)
		case variant.PayloadFields != nil:
			if !hasPayload {
				return diagnostics.New(diagnostics.KindMissingRequiredField, "%s: %s::%s needs a payload", at, t.TypePath(), variant.Name)
			}
			fields := make([]registry.Field, len(variant.PayloadFields))
			for i, f := range variant.PayloadFields {
				fields[i] = registry.Field{FieldDef: f, File: t.File}
			}
			return validateFields(reg, t.TypePath()+"::"+variant.Name, fields, payload, payloadAt)
		default:
			if hasPayload {
				return mismatch(at, "%s::%s takes no payload", t.TypePath(), variant.Name)
			}
		}
		return nil
	}
	return mismatch(at, "unknown model kind %s", m.Type.Kind)
}

func validateFields(reg *registry.Registry, owner string, fields []registry.Field, v value.Value, at string) error {
	obj, ok := v.(*value.Object)
	if !ok {
		return mismatch(at, "%s expects an object, got %s", owner, v.Type())
	}
	for _, f := range fields {
		fv, ok := obj.Get(f.Name)
		if !ok || fv.Type() == value.NULL_VALUE {
			if f.Required {
				return diagnostics.New(diagnostics.KindMissingRequiredField, "%s: %s requires field %s", at, owner, f.Name)
			}
			continue
		}
		ft, err := reg.ResolveType(f.File, f.Type)
		if err != nil {
			return err
		}
		if err := validate(reg, ft, fv, at+"."+f.Name); err != nil {
			return err
		}
	}
	return nil
}

func validateType(reg *registry.Registry, t registry.Resolved, v value.Value, at string) error {
	switch ty := t.Type.(type) {
	case typesystem.TScalar:
		return validateScalar(ty, v, at)
	case typesystem.TList:
		list, ok := v.(*value.List)
		if !ok {
			return mismatch(at, "expected %s, got %s", ty, v.Type())
		}
		item, err := reg.ResolveType(t.File, ty.Item)
		if err != nil {
			return err
		}
		for i, e := range list.Elements {
			if err := validate(reg, item, e, at+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		return nil
	case typesystem.TMap:
		obj, ok := v.(*value.Object)
		if !ok {
			return mismatch(at, "expected %s, got %s", ty, v.Type())
		}
		val, err := reg.ResolveType(t.File, ty.Value)
		if err != nil {
			return err
		}
		for _, k := range obj.Keys {
			if err := validate(reg, val, obj.Fields[k], at+"."+k); err != nil {
				return err
			}
		}
		return nil
	}
	return mismatch(at, "unexpected type %s", t.TypePath())
}

func validateScalar(t typesystem.TScalar, v value.Value, at string) error {
	switch t.Kind {
	case typesystem.Json:
		return nil
	case typesystem.Bool:
		if _, ok := v.(*value.Bool); ok {
			return nil
		}
	case typesystem.I8, typesystem.I16, typesystem.I32, typesystem.I64:
		if i, ok := v.(*value.Int); ok {
			lo, hi := t.IntRange()
			if i.Value < lo || i.Value > hi {
				return mismatch(at, "%d out of range for %s", i.Value, t)
			}
			return nil
		}
	case typesystem.F64:
		switch v.(type) {
		case *value.Int, *value.Float:
			return nil
		}
	case typesystem.Decimal:
		switch v := v.(type) {
		case *value.Int, *value.Float:
			return nil
		case *value.String:
			if _, err := decimal.NewFromString(v.Value); err == nil {
				return nil
			}
			return mismatch(at, "%q is not a decimal", v.Value)
		}
	case typesystem.BigInt:
		switch v := v.(type) {
		case *value.Int:
			return nil
		case *value.String:
			if _, ok := new(big.Int).SetString(v.Value, 10); ok {
				return nil
			}
			return mismatch(at, "%q is not an integer", v.Value)
		}
	case typesystem.Bytes:
		if s, ok := v.(*value.String); ok {
			if _, err := base64.StdEncoding.DecodeString(s.Value); err != nil {
				return mismatch(at, "bytes must be base64: %v", err)
			}
			return nil
		}
	case typesystem.String:
		if _, ok := v.(*value.String); ok {
			return nil
		}
	}
	return mismatch(at, "expected %s, got %s", t, v.Type())
}

func mismatch(at, format string, args ...any) error {
	return diagnostics.New(diagnostics.KindUnsupportedConversion, "%s: %s", at, fmt.Sprintf(format, args...))
}
