package backend

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/convert"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModels = `
models:
  - name: Src
    type:
      name: struct
      fields:
        - {name: id, type: i64, required: true}
        - {name: name, type: string, required: true}
        - {name: opt, type: string}
        - {name: note, type: string}
        - {name: count, type: i32}
  - name: Dst
    type:
      name: struct
      fields:
        - {name: id, type: string, required: true}
        - {name: name, type: string}
        - {name: opt, type: string, required: true}
        - {name: note, type: string}
        - {name: count, type: f64}
        - {name: missing, type: string}
  - name: One
    type:
      name: struct
      fields:
        - {name: a, type: string, required: true}
  - name: Two
    type:
      name: struct
      fields:
        - {name: a, type: string, required: true}
`

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Load(context.Background(), fstest.MapFS{
		"base.yaml": {Data: []byte(testModels)},
	}, nil)
	require.NoError(t, err)
	return reg
}

func TestRustTypeName(t *testing.T) {
	r := NewRust(testRegistry(t), Options{})
	tests := []struct {
		path string
		want string
	}{
		{"bool", "bool"},
		{"i32", "i32"},
		{"f64", "f64"},
		{"string", "String"},
		{"json", "serde_json::Value"},
		{"decimal", "rust_decimal::Decimal"},
		{"bigint", "tot_spec_util::big_int::BigInt"},
		{"bytes", "Vec<u8>"},
		{"list[string]", "Vec<String>"},
		{"map[list[i64]]", "std::collections::HashMap<String, Vec<i64>>"},
		{"base::Src", "base::Src"},
		{"list[base::Dst]", "Vec<base::Dst>"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := r.TypeName(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := r.TypeName("base::Nope")
	assert.ErrorIs(t, err, diagnostics.ErrUnresolvedType)
}

func TestRustLiteral(t *testing.T) {
	r := NewRust(nil, Options{})
	tests := []struct {
		name string
		v    value.Value
		want string
	}{
		{"string", &value.String{Value: "foo"}, `"foo".to_string()`},
		{"escaped", &value.String{Value: "a\"b\\c\n"}, `"a\"b\\c\n".to_string()`},
		{"control", &value.String{Value: "\x01"}, `"\u{1}".to_string()`},
		{"int", &value.Int{Value: -3}, "-3"},
		{"whole float", &value.Float{Value: 2}, "2.0"},
		{"float", &value.Float{Value: 0.5}, "0.5"},
		{"bool", value.TRUE, "true"},
		{"null", value.NULL, "serde_json::Value::Null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Literal(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRustCall(t *testing.T) {
	r := NewRust(nil, Options{
		Crate: "my_crate",
		Calls: map[string]Callee{
			"a::b::sync_func": {Async: false, Fallible: true},
			"log":             {Path: "tracing::info", Async: false, Fallible: false},
		},
	})
	tests := []struct {
		name string
		path string
		args []string
		want string
	}{
		{"print", "print", []string{"a.clone()", "1"}, `println!("{} {}", a.clone(), 1)`},
		{"print nothing", "print", nil, "println!()"},
		{"default callee", "a::b::f", []string{"x.clone()"}, "my_crate::a::b::f(x.clone()).await?"},
		{"sync", "a::b::sync_func", nil, "my_crate::a::b::sync_func()?"},
		{"explicit path", "log", []string{"1"}, "tracing::info(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Call(tt.path, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRustConvert(t *testing.T) {
	reg := testRegistry(t)
	r := NewRust(reg, Options{})
	tests := []struct {
		name     string
		from, to string
		src      string
		want     string
	}{
		{"copy", "string", "string", "x.clone()", "x.clone()"},
		{"stringify", "i32", "string", "x.clone()", "x.clone().to_string()"},
		{"stringify negative", "i64", "string", "-1", "(-1).to_string()"},
		{"widen i32", "i32", "f64", "x.clone()", "f64::from(x.clone())"},
		{"widen i64", "i64", "f64", "x.clone()", "(x.clone() as f64)"},
		{"stringify bigint", "bigint", "string", "x.clone()", "x.clone().inner().to_string()"},
		{"widen bigint", "bigint", "f64", "x.clone()", "x.clone().inner().to_f64().value()"},
		{"stringify decimal", "decimal", "string", "x.clone()", "x.clone().to_string()"},
		{"serialize", "base::One", "json", "x.clone()", "{\n    let s = x.clone();\n    serde_json::to_value(&s)?\n}"},
		{"deserialize", "json", "base::One", "x.clone()", "{\n    let s = x.clone();\n    serde_json::from_value(s)?\n}"},
		{"short struct", "base::One", "base::Two", "x.clone()", "{\n    let s = x.clone();\n    base::Two { a: s.a.clone() }\n}"},
		{"struct fields", "base::Src", "base::Dst", "x.clone()", `{
    let s = x.clone();
    base::Dst {
        id: s.id.clone().to_string(),
        name: Some(s.name.clone()),
        opt: s.opt.clone().ok_or_else(|| anyhow::anyhow!("missing field opt"))?,
        note: s.note.clone(),
        count: match s.count.clone() {
            Some(v) => Some(f64::from(v)),
            None => None,
        },
        missing: None,
    }
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := convert.PlanPaths(reg, tt.from, tt.to)
			require.NoError(t, err)
			got, err := r.Convert(plan, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRustStatements(t *testing.T) {
	r := NewRust(nil, Options{})
	path := value.Path{value.Key("v"), value.Key("type"), value.Index(0)}

	assert.Equal(t, "let mut j: String = i.clone();", r.Let("j", "String", "i.clone()"))
	assert.Equal(t, "let mut r#match: i32 = 1;", r.Let("match", "i32", "1"))
	assert.Equal(t, "v.r#type[0] = 1;", r.Assign(path, "1"))
	assert.Equal(t, "v.r#type[0].clone()", r.Reference(path))
	assert.Equal(t, "Ok(k.clone())", r.Return("k.clone()", true))
	assert.Equal(t, "return Ok(k.clone());", r.Return("k.clone()", false))
	assert.Equal(t, "{}", r.Block(nil, ""))
	assert.Equal(t, "{\n    a;\n    {\n        b;\n    }\n    c\n}",
		r.Block([]string{"a;", r.Block([]string{"b;"}, "")}, "c"))
	assert.Equal(t, "if c {} else {}", r.If("c", "{}", "{}"))
	assert.Equal(t, "for r#in in xs.clone() {}", r.For("in", "xs.clone()", "{}"))
	assert.Equal(t, "while c {}", r.While("c", "{}"))
	assert.Equal(t,
		"async fn f(a: i32, b: String) -> anyhow::Result<()> {}",
		r.Function(r.Signature("f", []string{r.Param("a", "i32"), r.Param("b", "String")}, ""), "{}"))
}

func TestNew(t *testing.T) {
	b, err := New(RustName, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "rs", b.Name())
	assert.Equal(t, ".rs", b.FileExt())

	_, err = New("cobol", nil, Options{})
	assert.ErrorContains(t, err, `unknown backend "cobol" (available: rs)`)
	assert.Equal(t, []string{"rs"}, Names())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Crate: "my_crate",
		Calls: map[string]config.CallConfig{
			"a::b::sync_func": {Sync: true},
			"log":             {Path: "tracing::info", Sync: true, Infallible: true},
		},
	}
	opts := OptionsFromConfig(cfg)

	assert.Equal(t, Callee{Path: "my_crate::a::b::sync_func", Async: false, Fallible: true}, opts.Callee("a::b::sync_func"))
	assert.Equal(t, Callee{Path: "tracing::info"}, opts.Callee("log"))
	assert.Equal(t, Callee{Path: "my_crate::other", Async: true, Fallible: true}, opts.Callee("other"))
	assert.Equal(t, Callee{Path: "other", Async: true, Fallible: true}, Options{}.Callee("other"))
}
