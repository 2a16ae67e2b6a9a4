package codegen

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/funvibe/tot/internal/backend"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/parser"
	"github.com/funvibe/tot/internal/pipeline"
	"github.com/funvibe/tot/internal/registry"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseModels = `
models:
  - name: FirstRequest
    type:
      name: struct
      fields:
        - {name: foo, type: string}
  - name: FirstResponse
    type:
      name: struct
      fields:
        - {name: foo, type: string, required: true}
  - name: SecondRequest
    type:
      name: struct
      fields:
        - {name: foo, type: string, required: true}
  - name: SecondResponse
    type:
      name: struct
      fields:
        - {name: bar, type: string}
`

const specModels = `
models:
  - name: TestStruct
    type:
      name: struct
      fields:
        - {name: foo, type: string, required: true}
`

func testCodegen(t *testing.T, logger *slog.Logger) *Codegen {
	t.Helper()
	reg, err := registry.Load(context.Background(), fstest.MapFS{
		"base.yaml": {Data: []byte(baseModels)},
		"spec.yaml": {Data: []byte(specModels)},
	}, nil)
	require.NoError(t, err)
	b, err := backend.New(backend.RustName, reg, backend.Options{
		Crate: "my_crate",
		Calls: map[string]backend.Callee{
			"a::b::sync_func": {Fallible: true},
		},
	})
	require.NoError(t, err)
	return New(b, reg, logger)
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name: "hello",
			source: `fn hello(i: string) -> string {
    let j: string = i;
    let k: string = {
        if true {
            "foo"
        } else {
            "bar"
        }
    };
    if true {
        return "foo";
    } else {
        return "bar";
    };
    print(k);
    let sync_call_result: string = a::b::sync_func(k);
    let async_call_result: string = a::b::async_func(sync_call_result);
    k
}`,
			want: `async fn hello(i: String) -> anyhow::Result<String> {
    let mut j: String = i.clone();
    let mut k: String = {
        if true {
            "foo".to_string()
        } else {
            "bar".to_string()
        }
    };
    if true {
        return Ok("foo".to_string());
    } else {
        return Ok("bar".to_string());
    };
    println!("{}", k.clone());
    let mut sync_call_result: String = my_crate::a::b::sync_func(k.clone())?;
    let mut async_call_result: String = my_crate::a::b::async_func(sync_call_result.clone()).await?;
    Ok(k.clone())
}
`,
		},
		{
			name: "type conversion",
			source: `fn test_it(i: json) -> base::SecondResponse {
    let i: json = i;
    let j: base::FirstResponse = a::b::first(i as base::FirstRequest);
    let k: base::SecondResponse = a::b::second(j as base::SecondRequest);
    k
}`,
			want: `async fn test_it(i: serde_json::Value) -> anyhow::Result<base::SecondResponse> {
    let mut i: serde_json::Value = i.clone();
    let mut j: base::FirstResponse = my_crate::a::b::first({
        let s = i.clone();
        serde_json::from_value(s)?
    }).await?;
    let mut k: base::SecondResponse = my_crate::a::b::second({
        let s = j.clone();
        base::SecondRequest { foo: s.foo.clone() }
    }).await?;
    Ok(k.clone())
}
`,
		},
		{
			name: "assign to field",
			source: `fn test_assign_to_field(i: json) -> json {
    let v: spec::TestStruct = i as spec::TestStruct;
    v.foo = "bar bar";
    v as json
}`,
			want: `async fn test_assign_to_field(i: serde_json::Value) -> anyhow::Result<serde_json::Value> {
    let mut v: spec::TestStruct = {
        let s = i.clone();
        serde_json::from_value(s)?
    };
    v.foo = "bar bar".to_string();
    Ok({
        let s = v.clone();
        serde_json::to_value(&s)?
    })
}
`,
		},
		{
			name: "loop item typed from list",
			source: `fn each(xs: list[base::FirstResponse]) {
    for x in xs {
        let y: base::SecondRequest = x as base::SecondRequest;
        print(y.foo);
    }
}`,
			want: `async fn each(xs: Vec<base::FirstResponse>) -> anyhow::Result<()> {
    for x in xs.clone() {
        let mut y: base::SecondRequest = {
            let s = x.clone();
            base::SecondRequest { foo: s.foo.clone() }
        };
        println!("{}", y.foo.clone());
    };
    Ok(())
}
`,
		},
		{
			name: "while and several functions",
			source: `fn empty() {}

fn spin(n: i32) -> f64 {
    while false {
        print(n);
    };
    n as f64
}`,
			want: `async fn empty() -> anyhow::Result<()> {
    Ok(())
}

async fn spin(n: i32) -> anyhow::Result<f64> {
    while false {
        println!("{}", n.clone());
    };
    Ok(f64::from(n.clone()))
}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testCodegen(t, nil).Generate(tt.source, "test.tot")
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("generated code mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
		loc    string
	}{
		{"syntax", "fn f( {}", diagnostics.ErrSyntax, "test.tot:1:"},
		{"unknown param type", "fn f(a: base::Nope) {}", diagnostics.ErrUnresolvedType, "test.tot:1:9"},
		{"unknown let type", "fn f() {\n    let a: nope = 1;\n}", diagnostics.ErrUnresolvedType, "test.tot:2:12"},
		{"no conversion", "fn f() -> i32 {\n    true as i32\n}", diagnostics.ErrUnsupportedConversion, "test.tot:2:5"},
		{"missing field", "fn f(a: base::SecondResponse) {\n    print(a as base::SecondRequest);\n}", diagnostics.ErrMissingRequiredField, "test.tot:2:11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testCodegen(t, nil).Generate(tt.source, "test.tot")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, strings.HasPrefix(err.Error(), tt.loc), "error %q should start with %q", err, tt.loc)
		})
	}
}

func TestScopesRestored(t *testing.T) {
	g := testCodegen(t, nil)
	_, err := g.Generate("fn f(a: i32) { let b: i32 = a; }", "")
	require.NoError(t, err)
	assert.Equal(t, 1, g.types.Depth())

	_, err = g.Generate("fn f() { a }", "")
	require.NoError(t, err, "references are not checked during generation")
}

func TestProcessorRejectsStatements(t *testing.T) {
	node, err := parser.ParseStatements("let a: i32 = 1;")
	require.NoError(t, err)

	ctx := pipeline.NewPipelineContext("", pipeline.ModeStatements)
	ctx.AstRoot = node
	gp := &GenerateProcessor{Codegen: testCodegen(t, nil)}
	ctx = gp.Process(ctx)

	assert.ErrorIs(t, ctx.Err(), diagnostics.ErrInvalidProgram)
	assert.Empty(t, gp.Output)
}

func TestGenerateLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := testCodegen(t, logger).Generate("fn f(a: i32) {}", "")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="generated function"`)
	assert.Contains(t, out, "name=f")
	assert.Contains(t, out, "backend=rs")
}
