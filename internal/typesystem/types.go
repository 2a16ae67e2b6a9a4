package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/tot/internal/config"
)

// Type is the interface for all schema types.
type Type interface {
	String() string
	typeNode()
}

type ScalarKind int

const (
	Bool ScalarKind = iota
	I8
	I16
	I32
	I64
	F64
	Decimal
	BigInt
	Bytes
	String
	Json
)

var scalarNames = map[ScalarKind]string{
	Bool:    config.BoolTypeName,
	I8:      config.I8TypeName,
	I16:     config.I16TypeName,
	I32:     config.I32TypeName,
	I64:     config.I64TypeName,
	F64:     config.F64TypeName,
	Decimal: config.DecimalTypeName,
	BigInt:  config.BigIntTypeName,
	Bytes:   config.BytesTypeName,
	String:  config.StringTypeName,
	Json:    config.JsonTypeName,
}

func (k ScalarKind) String() string {
	if name, ok := scalarNames[k]; ok {
		return name
	}
	return fmt.Sprintf("scalar(%d)", int(k))
}

// ScalarByName returns the scalar kind for a keyword.
func ScalarByName(name string) (ScalarKind, bool) {
	for k, n := range scalarNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// TScalar is one of the fixed built-in types.
type TScalar struct {
	Kind ScalarKind
}

func (t TScalar) String() string { return t.Kind.String() }
func (t TScalar) typeNode()      {}

// IsNumeric reports whether values of the scalar are numbers.
func (t TScalar) IsNumeric() bool {
	switch t.Kind {
	case I8, I16, I32, I64, F64, Decimal, BigInt:
		return true
	}
	return false
}

// IsInteger reports whether the scalar is a fixed-width signed integer.
func (t TScalar) IsInteger() bool {
	switch t.Kind {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

// IntRange returns the inclusive bounds of a fixed-width integer scalar.
func (t TScalar) IntRange() (int64, int64) {
	switch t.Kind {
	case I8:
		return -1 << 7, 1<<7 - 1
	case I16:
		return -1 << 15, 1<<15 - 1
	case I32:
		return -1 << 31, 1<<31 - 1
	default:
		return -1 << 63, 1<<63 - 1
	}
}

// TList is a homogeneous list.
type TList struct {
	Item Type
}

func (t TList) String() string { return config.ListTypeName + "[" + t.Item.String() + "]" }
func (t TList) typeNode()      {}

// TMap is a string-keyed map.
type TMap struct {
	Value Type
}

func (t TMap) String() string { return config.MapTypeName + "[" + t.Value.String() + "]" }
func (t TMap) typeNode()      {}

// TRef references a model, optionally through an include namespace.
type TRef struct {
	Namespace string // empty for same-file references
	Target    string
}

func (t TRef) String() string {
	if t.Namespace == "" {
		return t.Target
	}
	return t.Namespace + config.NamespaceSeparator + t.Target
}
func (t TRef) typeNode() {}

// Scalar constructors
var (
	TBool    = TScalar{Kind: Bool}
	TI8      = TScalar{Kind: I8}
	TI16     = TScalar{Kind: I16}
	TI32     = TScalar{Kind: I32}
	TI64     = TScalar{Kind: I64}
	TF64     = TScalar{Kind: F64}
	TDecimal = TScalar{Kind: Decimal}
	TBigInt  = TScalar{Kind: BigInt}
	TBytes   = TScalar{Kind: Bytes}
	TString  = TScalar{Kind: String}
	TJson    = TScalar{Kind: Json}
)

// Equal reports structural equality. References compare by their written
// namespace and target; identity after resolution is the registry's concern.
func Equal(a, b Type) bool {
	switch ta := a.(type) {
	case TScalar:
		tb, ok := b.(TScalar)
		return ok && ta.Kind == tb.Kind
	case TList:
		tb, ok := b.(TList)
		return ok && Equal(ta.Item, tb.Item)
	case TMap:
		tb, ok := b.(TMap)
		return ok && Equal(ta.Value, tb.Value)
	case TRef:
		tb, ok := b.(TRef)
		return ok && ta == tb
	}
	return false
}

// ParseType parses a type string such as "i32", "list[string]",
// "map[ns.Model]" or "a::b::Model".
func ParseType(s string) (Type, error) {
	t, rest, err := parseType(s)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("invalid type: %s", s)
	}
	return t, nil
}

func parseType(s string) (Type, string, error) {
	s = strings.TrimSpace(s)
	name, rest := splitIdentifier(s)
	if name == "" {
		return nil, "", fmt.Errorf("invalid type: %q", s)
	}

	switch name {
	case config.ListTypeName, config.MapTypeName:
		inner, rest, err := parseBracketed(rest, s)
		if err != nil {
			return nil, "", err
		}
		if name == config.ListTypeName {
			return TList{Item: inner}, rest, nil
		}
		return TMap{Value: inner}, rest, nil
	}

	if kind, ok := ScalarByName(name); ok {
		return TScalar{Kind: kind}, rest, nil
	}

	return parseReference(name), rest, nil
}

func parseBracketed(rest, whole string) (Type, string, error) {
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "[") {
		return nil, "", fmt.Errorf("invalid type: %s", whole)
	}
	inner, rest, err := parseType(rest[1:])
	if err != nil {
		return nil, "", err
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "]") {
		return nil, "", fmt.Errorf("invalid type: %s", whole)
	}
	return inner, rest[1:], nil
}

// splitIdentifier takes the longest prefix made of identifier characters and
// namespace separators.
func splitIdentifier(s string) (string, string) {
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '_' || c == '.' || c == ':' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'):
			i++
		default:
			return s[:i], s[i:]
		}
	}
	return s, ""
}

// parseReference splits a qualified name on its last separator. Both "::"
// and the schema-file form "." are accepted; the namespace is normalized to
// use "::".
func parseReference(name string) TRef {
	name = strings.ReplaceAll(name, config.NamespaceSeparator, config.LegacyNamespaceSeparator)
	idx := strings.LastIndex(name, config.LegacyNamespaceSeparator)
	if idx < 0 {
		return TRef{Target: name}
	}
	ns := strings.ReplaceAll(name[:idx], config.LegacyNamespaceSeparator, config.NamespaceSeparator)
	return TRef{Namespace: ns, Target: name[idx+1:]}
}
