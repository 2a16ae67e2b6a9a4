package typesystem

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

type ModelKind int

const (
	KindStruct ModelKind = iota
	KindVirtual
	KindEnum
	KindNewType
	KindConst
)

var modelKindNames = map[ModelKind]string{
	KindStruct:  "struct",
	KindVirtual: "virtual",
	KindEnum:    "enum",
	KindNewType: "new_type",
	KindConst:   "const",
}

func (k ModelKind) String() string {
	if name, ok := modelKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("model(%d)", int(k))
}

func modelKindByName(name string) (ModelKind, bool) {
	for k, n := range modelKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// ModelDef is one named type declared in a Definition.
type ModelDef struct {
	Name       string
	Desc       string
	Attributes map[string]string
	Type       ModelType
}

// ModelType holds the shape of a model. Which fields are set depends on Kind:
// Struct and Virtual use Extend and Fields, Enum uses Variants, NewType uses
// Inner and Const uses ValueType and Values.
type ModelType struct {
	Kind ModelKind

	Extend string // type path of the virtual model a struct extends
	Fields []FieldDef

	Variants []VariantDef

	Inner Type

	ValueType TScalar
	Values    []ConstValueDef
}

type FieldDef struct {
	Name       string
	Type       Type
	Desc       string
	Attributes map[string]string
	Required   bool
}

// VariantDef is one case of an enum. At most one of PayloadType and
// PayloadFields is set.
type VariantDef struct {
	Name          string
	PayloadType   Type
	PayloadFields []FieldDef
	Desc          string
}

// HasPayload reports whether the variant carries data.
func (v *VariantDef) HasPayload() bool {
	return v.PayloadType != nil || v.PayloadFields != nil
}

type ConstValueDef struct {
	Name  string
	Value ConstValue
	Desc  string
}

// ConstValue is an integer or string literal of a const model.
type ConstValue struct {
	Int      int64
	Str      string
	IsString bool
}

func IntConst(i int64) ConstValue     { return ConstValue{Int: i} }
func StringConst(s string) ConstValue { return ConstValue{Str: s, IsString: true} }

func (c ConstValue) String() string {
	if c.IsString {
		return strconv.Quote(c.Str)
	}
	return strconv.FormatInt(c.Int, 10)
}

// ValueOf returns the value bound to name in a const model.
func (m *ModelDef) ValueOf(name string) (ConstValue, bool) {
	for _, v := range m.Type.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return ConstValue{}, false
}

// NameOf returns the name bound to value in a const model.
func (m *ModelDef) NameOf(value ConstValue) (string, bool) {
	for _, v := range m.Type.Values {
		if v.Value == value {
			return v.Name, true
		}
	}
	return "", false
}

// Field returns the declared field with the given name. Fields inherited
// through Extend are not visible here; use the registry for those.
func (m *ModelDef) Field(name string) (*FieldDef, bool) {
	for i := range m.Type.Fields {
		if m.Type.Fields[i].Name == name {
			return &m.Type.Fields[i], true
		}
	}
	return nil, false
}

// Variant returns the enum variant with the given name.
func (m *ModelDef) Variant(name string) (*VariantDef, bool) {
	for i := range m.Type.Variants {
		if m.Type.Variants[i].Name == name {
			return &m.Type.Variants[i], true
		}
	}
	return nil, false
}

// YAML decoding

type rawModel struct {
	Name       string            `yaml:"name"`
	Desc       string            `yaml:"desc,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	Type       ModelType         `yaml:"type"`
}

func (m *ModelDef) UnmarshalYAML(node *yaml.Node) error {
	var raw rawModel
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("line %d: model without name", node.Line)
	}
	*m = ModelDef(raw)
	return nil
}

func (m ModelDef) MarshalYAML() (interface{}, error) {
	return rawModel(m), nil
}

type rawModelType struct {
	Name      string          `yaml:"name"`
	Extend    string          `yaml:"extend,omitempty"`
	Fields    []FieldDef      `yaml:"fields,omitempty"`
	Variants  []VariantDef    `yaml:"variants,omitempty"`
	InnerType yaml.Node       `yaml:"inner_type,omitempty"`
	ValueType string          `yaml:"value_type,omitempty"`
	Values    []ConstValueDef `yaml:"values,omitempty"`
}

func (t *ModelType) UnmarshalYAML(node *yaml.Node) error {
	var raw rawModelType
	if err := node.Decode(&raw); err != nil {
		return err
	}
	kind, ok := modelKindByName(raw.Name)
	if !ok {
		return fmt.Errorf("line %d: unknown model type %q", node.Line, raw.Name)
	}

	out := ModelType{Kind: kind}
	switch kind {
	case KindStruct, KindVirtual:
		out.Extend = raw.Extend
		out.Fields = raw.Fields
		if kind == KindVirtual && raw.Extend != "" {
			return fmt.Errorf("line %d: virtual model cannot extend %q", node.Line, raw.Extend)
		}
	case KindEnum:
		out.Variants = raw.Variants
	case KindNewType:
		if raw.InnerType.Kind == 0 {
			return fmt.Errorf("line %d: new_type without inner_type", node.Line)
		}
		inner, err := decodeType(&raw.InnerType)
		if err != nil {
			return err
		}
		out.Inner = inner
	case KindConst:
		vk, ok := ScalarByName(raw.ValueType)
		vt := TScalar{Kind: vk}
		if !ok || !(vt.IsInteger() || vk == String) {
			return fmt.Errorf("line %d: invalid const value_type %q", node.Line, raw.ValueType)
		}
		out.ValueType = vt
		out.Values = raw.Values
		for _, v := range raw.Values {
			if v.Value.IsString != (vk == String) {
				return fmt.Errorf("line %d: const value %s does not match %s", node.Line, v.Name, vt)
			}
		}
	}
	*t = out
	return nil
}

func (t ModelType) MarshalYAML() (interface{}, error) {
	raw := rawModelType{Name: t.Kind.String()}
	switch t.Kind {
	case KindStruct, KindVirtual:
		raw.Extend = t.Extend
		raw.Fields = t.Fields
	case KindEnum:
		raw.Variants = t.Variants
	case KindNewType:
		raw.InnerType = yaml.Node{Kind: yaml.ScalarNode, Value: t.Inner.String()}
	case KindConst:
		raw.ValueType = t.ValueType.String()
		raw.Values = t.Values
	}
	return raw, nil
}

type rawField struct {
	Name       string            `yaml:"name"`
	Type       yaml.Node         `yaml:"type"`
	Desc       string            `yaml:"desc,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	Required   bool              `yaml:"required,omitempty"`
}

func (f *FieldDef) UnmarshalYAML(node *yaml.Node) error {
	var raw rawField
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("line %d: field without name", node.Line)
	}
	t, err := decodeType(&raw.Type)
	if err != nil {
		return fmt.Errorf("field %s: %w", raw.Name, err)
	}
	*f = FieldDef{
		Name:       raw.Name,
		Type:       t,
		Desc:       raw.Desc,
		Attributes: raw.Attributes,
		Required:   raw.Required,
	}
	return nil
}

func (f FieldDef) MarshalYAML() (interface{}, error) {
	return rawField{
		Name:       f.Name,
		Type:       yaml.Node{Kind: yaml.ScalarNode, Value: f.Type.String()},
		Desc:       f.Desc,
		Attributes: f.Attributes,
		Required:   f.Required,
	}, nil
}

type rawVariant struct {
	Name          string     `yaml:"name"`
	PayloadType   yaml.Node  `yaml:"payload_type,omitempty"`
	PayloadFields []FieldDef `yaml:"payload_fields,omitempty"`
	Desc          string     `yaml:"desc,omitempty"`
}

func (v *VariantDef) UnmarshalYAML(node *yaml.Node) error {
	var raw rawVariant
	if err := node.Decode(&raw); err != nil {
		return err
	}
	out := VariantDef{Name: raw.Name, PayloadFields: raw.PayloadFields, Desc: raw.Desc}
	if raw.PayloadType.Kind != 0 {
		if raw.PayloadFields != nil {
			return fmt.Errorf("line %d: variant %s has both payload_type and payload_fields", node.Line, raw.Name)
		}
		t, err := decodeType(&raw.PayloadType)
		if err != nil {
			return fmt.Errorf("variant %s: %w", raw.Name, err)
		}
		out.PayloadType = t
	}
	*v = out
	return nil
}

func (v VariantDef) MarshalYAML() (interface{}, error) {
	raw := rawVariant{Name: v.Name, PayloadFields: v.PayloadFields, Desc: v.Desc}
	if v.PayloadType != nil {
		raw.PayloadType = yaml.Node{Kind: yaml.ScalarNode, Value: v.PayloadType.String()}
	}
	return raw, nil
}

type rawConstValue struct {
	Name  string    `yaml:"name"`
	Value yaml.Node `yaml:"value"`
	Desc  string    `yaml:"desc,omitempty"`
}

func (c *ConstValueDef) UnmarshalYAML(node *yaml.Node) error {
	var raw rawConstValue
	if err := node.Decode(&raw); err != nil {
		return err
	}
	out := ConstValueDef{Name: raw.Name, Desc: raw.Desc}
	switch raw.Value.ShortTag() {
	case "!!int":
		var i int64
		if err := raw.Value.Decode(&i); err != nil {
			return fmt.Errorf("const %s: %w", raw.Name, err)
		}
		out.Value = IntConst(i)
	case "!!str":
		out.Value = StringConst(raw.Value.Value)
	default:
		return fmt.Errorf("line %d: const %s must be an integer or a string", node.Line, raw.Name)
	}
	*c = out
	return nil
}

func (c ConstValueDef) MarshalYAML() (interface{}, error) {
	raw := rawConstValue{Name: c.Name, Desc: c.Desc}
	if c.Value.IsString {
		raw.Value = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Value.Str}
	} else {
		raw.Value = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(c.Value.Int, 10)}
	}
	return raw, nil
}

type rawType struct {
	Name      string    `yaml:"name"`
	ItemType  yaml.Node `yaml:"item_type"`
	ValueType yaml.Node `yaml:"value_type"`
	Namespace string    `yaml:"namespace"`
	Target    string    `yaml:"target"`
}

// decodeType accepts either a type string or the mapping form
// {name: list, item_type: ...}, {name: map, value_type: ...} or
// {name: reference, namespace: ..., target: ...}.
func decodeType(node *yaml.Node) (Type, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return ParseType(node.Value)
	case yaml.MappingNode:
	default:
		return nil, fmt.Errorf("line %d: type must be a string or a mapping", node.Line)
	}

	var raw rawType
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	switch raw.Name {
	case "list":
		item, err := decodeType(&raw.ItemType)
		if err != nil {
			return nil, err
		}
		return TList{Item: item}, nil
	case "map":
		val, err := decodeType(&raw.ValueType)
		if err != nil {
			return nil, err
		}
		return TMap{Value: val}, nil
	case "reference":
		if raw.Target == "" {
			return nil, fmt.Errorf("line %d: reference without target", node.Line)
		}
		return TRef{Namespace: raw.Namespace, Target: raw.Target}, nil
	}
	if kind, ok := ScalarByName(raw.Name); ok {
		return TScalar{Kind: kind}, nil
	}
	return nil, fmt.Errorf("line %d: unknown type %q", node.Line, raw.Name)
}
