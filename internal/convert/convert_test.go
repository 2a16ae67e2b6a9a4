package convert

import (
	"errors"
	"testing"

	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/typesystem"
	"github.com/funvibe/tot/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelsYAML = `
models:
  - name: Point
    type:
      name: struct
      fields:
        - {name: x, type: i32, required: true}
        - {name: y, type: f64, required: true}
        - {name: label, type: string}
        - {name: tags, type: "list[string]"}
        - {name: price, type: decimal}
  - name: A
    type:
      name: struct
      fields:
        - {name: bar, type: string, required: true}
        - {name: count, type: i32}
  - name: BRequired
    type:
      name: struct
      fields:
        - {name: bar, type: string, required: true}
        - {name: foo, type: string, required: true}
  - name: BOptional
    type:
      name: struct
      fields:
        - {name: bar, type: string, required: true}
        - {name: foo, type: string}
        - {name: count, type: string}
  - name: Shape
    type:
      name: enum
      variants:
        - name: Empty
        - name: Circle
          payload_type: f64
        - name: Rect
          payload_fields:
            - {name: w, type: f64, required: true}
  - name: Level
    type:
      name: const
      value_type: i8
      values:
        - {name: Low, value: 1}
        - {name: High, value: 2}
  - name: UserId
    type:
      name: new_type
      inner_type: i64
  - name: Base
    type:
      name: virtual
      fields:
        - {name: id, type: i64, required: true}
  - name: Node
    type:
      name: struct
      extend: Base
      fields:
        - {name: next, type: Node}
  - name: OtherNode
    type:
      name: struct
      fields:
        - {name: id, type: i64, required: true}
        - {name: next, type: OtherNode}
`

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	def, err := typesystem.ParseDefinition([]byte(modelsYAML))
	require.NoError(t, err)
	return registry.New(map[string]*typesystem.Definition{"m.yaml": def})
}

func resolve(t *testing.T, reg *registry.Registry, path string) registry.Resolved {
	t.Helper()
	res, err := reg.Resolve(path)
	require.NoError(t, err)
	return res
}

func jsonValue(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.FromJSON([]byte(s))
	require.NoError(t, err)
	return v
}

func TestBuildKinds(t *testing.T) {
	reg := testRegistry(t)
	tests := []struct {
		source, target string
		kind           Kind
	}{
		{"string", "string", Copy},
		{"bool", "bool", Copy},
		{"i32", "i32", Copy},
		{"m::Point", "m::Point", Copy},
		{"i8", "string", Stringify},
		{"decimal", "string", Stringify},
		{"i64", "f64", Widen},
		{"bigint", "f64", Widen},
		{"m::Point", "json", Serialize},
		{"m::Shape", "json", Serialize},
		{"m::Level", "json", Serialize},
		{"m::UserId", "json", Serialize},
		{"json", "m::Point", Deserialize},
		{"json", "m::Shape", Deserialize},
		{"m::A", "m::BOptional", Struct},
	}
	for _, tt := range tests {
		t.Run(tt.source+"->"+tt.target, func(t *testing.T) {
			plan, err := Build(reg, resolve(t, reg, tt.source), resolve(t, reg, tt.target))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, plan.Kind)
		})
	}
}

func TestBuildUnsupported(t *testing.T) {
	reg := testRegistry(t)
	pairs := [][2]string{
		{"string", "i32"},
		{"bool", "string"},
		{"f64", "i32"},
		{"m::Point", "string"},
		{"m::Base", "json"},
		{"json", "m::Base"},
		{"m::Shape", "m::Point"},
		{"list[i32]", "list[string]"},
	}
	for _, p := range pairs {
		_, err := Build(reg, resolve(t, reg, p[0]), resolve(t, reg, p[1]))
		assert.True(t, errors.Is(err, diagnostics.ErrUnsupportedConversion), "%s -> %s: %v", p[0], p[1], err)
	}
}

func TestMissingRequiredField(t *testing.T) {
	reg := testRegistry(t)
	a := resolve(t, reg, "m::A")

	_, err := Build(reg, a, resolve(t, reg, "m::BRequired"))
	assert.True(t, errors.Is(err, diagnostics.ErrMissingRequiredField))

	plan, err := Build(reg, a, resolve(t, reg, "m::BOptional"))
	require.NoError(t, err)
	require.Len(t, plan.Fields, 3)
	assert.True(t, plan.Fields[1].Absent)

	out, err := plan.Apply(jsonValue(t, `{"bar":"x","count":3}`))
	require.NoError(t, err)
	obj := out.(*value.Object)
	_, hasFoo := obj.Get("foo")
	assert.False(t, hasFoo)
	assert.True(t, value.Equal(jsonValue(t, `{"bar":"x","count":"3"}`), out))
}

func TestStructFieldsConvertRecursively(t *testing.T) {
	reg := testRegistry(t)
	plan, err := Build(reg, resolve(t, reg, "m::A"), resolve(t, reg, "m::BOptional"))
	require.NoError(t, err)

	count := plan.Fields[2]
	require.NotNil(t, count.Plan)
	assert.Equal(t, Stringify, count.Plan.Kind)
}

func TestStructApplyRequiresValue(t *testing.T) {
	reg := testRegistry(t)
	plan, err := Build(reg, resolve(t, reg, "m::A"), resolve(t, reg, "m::BOptional"))
	require.NoError(t, err)

	_, err = plan.Apply(jsonValue(t, `{"count":1}`))
	assert.True(t, errors.Is(err, diagnostics.ErrMissingRequiredField))

	_, err = plan.Apply(jsonValue(t, `"nope"`))
	assert.True(t, errors.Is(err, diagnostics.ErrUnsupportedConversion))
}

func TestRecursiveStructPlan(t *testing.T) {
	reg := testRegistry(t)
	plan, err := Build(reg, resolve(t, reg, "m::Node"), resolve(t, reg, "m::OtherNode"))
	require.NoError(t, err)
	require.Len(t, plan.Fields, 2)
	assert.Same(t, plan, plan.Fields[1].Plan)

	out, err := plan.Apply(jsonValue(t, `{"id":1,"next":{"id":2}}`))
	require.NoError(t, err)
	assert.True(t, value.Equal(jsonValue(t, `{"id":1,"next":{"id":2}}`), out))
}

func TestRoundTripThroughJson(t *testing.T) {
	reg := testRegistry(t)
	point := resolve(t, reg, "m::Point")
	js := resolve(t, reg, "json")

	toJSON, err := Build(reg, point, js)
	require.NoError(t, err)
	fromJSON, err := Build(reg, js, point)
	require.NoError(t, err)

	inputs := []string{
		`{"x":1,"y":2.5}`,
		`{"x":-3,"y":0,"label":"p","tags":["a","b"],"price":"10.25"}`,
	}
	for _, in := range inputs {
		v := jsonValue(t, in)
		j, err := toJSON.Apply(v)
		require.NoError(t, err)
		back, err := fromJSON.Apply(j)
		require.NoError(t, err)
		assert.True(t, value.Equal(v, back), in)
	}
}

func TestDeserializeValidation(t *testing.T) {
	reg := testRegistry(t)
	js := resolve(t, reg, "json")

	tests := []struct {
		target string
		input  string
		isErr  error
	}{
		{"m::Point", `{"x":1,"y":2}`, nil},
		{"m::Point", `{"x":1}`, diagnostics.ErrMissingRequiredField},
		{"m::Point", `{"x":"1","y":2}`, diagnostics.ErrUnsupportedConversion},
		{"m::Point", `{"x":3000000000,"y":2}`, diagnostics.ErrUnsupportedConversion},
		{"m::Point", `{"x":1,"y":2,"price":"abc"}`, diagnostics.ErrUnsupportedConversion},
		{"m::Point", `{"x":1,"y":2,"tags":["a",1]}`, diagnostics.ErrUnsupportedConversion},
		{"m::Point", `[1,2]`, diagnostics.ErrUnsupportedConversion},
		{"m::Shape", `{"type":"Empty"}`, nil},
		{"m::Shape", `{"type":"Circle","payload":1.5}`, nil},
		{"m::Shape", `{"type":"Circle"}`, diagnostics.ErrMissingRequiredField},
		{"m::Shape", `{"type":"Rect","payload":{"w":2}}`, nil},
		{"m::Shape", `{"type":"Rect","payload":{}}`, diagnostics.ErrMissingRequiredField},
		{"m::Shape", `{"type":"Empty","payload":1}`, diagnostics.ErrUnsupportedConversion},
		{"m::Shape", `{"type":"Square"}`, diagnostics.ErrUnsupportedConversion},
		{"m::Level", `2`, nil},
		{"m::Level", `3`, diagnostics.ErrUnsupportedConversion},
		{"m::UserId", `42`, nil},
		{"m::UserId", `"42"`, diagnostics.ErrUnsupportedConversion},
		{"m::Node", `{"id":1,"next":{"id":2,"next":{}}}`, diagnostics.ErrMissingRequiredField},
	}
	for _, tt := range tests {
		t.Run(tt.target+" "+tt.input, func(t *testing.T) {
			plan, err := Build(reg, js, resolve(t, reg, tt.target))
			require.NoError(t, err)
			_, err = plan.Apply(jsonValue(t, tt.input))
			if tt.isErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.isErr), "got %v", err)
			}
		})
	}
}

func TestScalarConversions(t *testing.T) {
	reg := testRegistry(t)
	tests := []struct {
		source, target string
		input          value.Value
		expected       value.Value
	}{
		{"i32", "string", &value.Int{Value: 42}, &value.String{Value: "42"}},
		{"f64", "string", &value.Float{Value: 1.5}, &value.String{Value: "1.5"}},
		{"decimal", "string", &value.String{Value: "1.50"}, &value.String{Value: "1.50"}},
		{"decimal", "string", &value.String{Value: "-0.100"}, &value.String{Value: "-0.100"}},
		{"decimal", "string", &value.String{Value: "12"}, &value.String{Value: "12"}},
		{"i64", "f64", &value.Int{Value: 3}, &value.Float{Value: 3}},
		{"decimal", "f64", &value.String{Value: "0.25"}, &value.Float{Value: 0.25}},
		{"bigint", "f64", &value.String{Value: "12"}, &value.Float{Value: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.source+"->"+tt.target, func(t *testing.T) {
			plan, err := Build(reg, resolve(t, reg, tt.source), resolve(t, reg, tt.target))
			require.NoError(t, err)
			got, err := plan.Apply(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
