package vm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/host"
	"github.com/funvibe/tot/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVM(t *testing.T, opts ...Option) (*VM, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return New(host.Builtins(&out), opts...), &out
}

func evalAll(t *testing.T, m *VM, statements ...string) value.Value {
	t.Helper()
	var result value.Value
	for _, s := range statements {
		var err error
		result, err = m.Eval(context.Background(), s)
		require.NoError(t, err, s)
	}
	return result
}

func TestEvalResults(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   value.Value
	}{
		{"literal", `42`, &value.Int{Value: 42}},
		{"negative", `-1.5`, &value.Float{Value: -1.5}},
		{"block value", `{ let x: i64 = 3; x }`, &value.Int{Value: 3}},
		{"if true", `if true { 1 } else { 2 }`, &value.Int{Value: 1}},
		{"if false", `if false { 1 } else { 2 }`, &value.Int{Value: 2}},
		{"else if", `if false { 1 } else if true { 2 } else { 3 }`, &value.Int{Value: 2}},
		{"if false without else", `if false { 1 }`, value.FALSE},
		{"null is truthy", `if json("null") { 1 } else { 2 }`, &value.Int{Value: 1}},
		{"zero is truthy", `if 0 { 1 } else { 2 }`, &value.Int{Value: 1}},
		{"let", `let x: i32 = 1;`, value.NULL},
		{"loop", `for i in json("[1]") { i }`, value.NULL},
		{"stringify", `7 as string`, &value.String{Value: "7"}},
		{"widen", `7 as f64`, &value.Float{Value: 7}},
		{"decimal keeps scale", `{ let d: decimal = "1.50"; d as string }`, &value.String{Value: "1.50"}},
		{"host call", `len("héllo")`, &value.Int{Value: 5}},
		{"nested call", `len(concat("ab", "c"))`, &value.Int{Value: 3}},
		{"return", `{ return 5; 6 }`, &value.Int{Value: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestVM(t)
			got, err := m.Eval(context.Background(), tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, m.Frame().Depth())
		})
	}
}

func TestPersistentState(t *testing.T) {
	m, _ := newTestVM(t)
	got := evalAll(t, m,
		`let x: json = json("{\"a\": {\"b\": [1, 2]}, \"c\": true}");`,
		`x.a.b[1] = 5;`,
		`x.a.b[1]`,
	)
	assert.Equal(t, &value.Int{Value: 5}, got)

	// siblings untouched
	c, err := m.Eval(context.Background(), `x.c`)
	require.NoError(t, err)
	assert.Equal(t, value.TRUE, c)

	// new final key
	got = evalAll(t, m, `x.a.d = "new";`, `x.a.d`)
	assert.Equal(t, &value.String{Value: "new"}, got)
}

func TestLoadCopies(t *testing.T) {
	m, _ := newTestVM(t)
	evalAll(t, m,
		`let x: json = json("[1, 2]");`,
		`let y: json = x;`,
		`y[0] = 9;`,
	)
	x, ok := m.Frame().Lookup("x")
	require.True(t, ok)
	assert.Equal(t, &value.List{Elements: []value.Value{&value.Int{Value: 1}, &value.Int{Value: 2}}}, x)
}

func TestShadowing(t *testing.T) {
	m, out := newTestVM(t)
	_, err := m.EvalScript(context.Background(), `
		let x: i64 = 1;
		{
			let x: i64 = 2;
			print(x);
			x = 3;
			print(x);
		}
		print(x);
	`)
	require.NoError(t, err)
	assert.Equal(t, "2\n3\n1\n", out.String())
}

func TestAssignOuterFromBlock(t *testing.T) {
	m, _ := newTestVM(t)
	got := evalAll(t, m, `let n: i64 = 1;`, `{ n = 2; }`, `n`)
	assert.Equal(t, &value.Int{Value: 2}, got)
}

func TestLoops(t *testing.T) {
	m, out := newTestVM(t)
	_, err := m.EvalScript(context.Background(), `
		let xs: list[i64] = json("[1, 2, 3]");
		for i in xs { print("item", i) }
		let go: bool = true;
		while go {
			print("once");
			go = false;
		}
		for i in json("[]") { print("never") }
	`)
	require.NoError(t, err)
	assert.Equal(t, "item 1\nitem 2\nitem 3\nonce\n", out.String())
	assert.Equal(t, 1, m.Frame().Depth())
	_, ok := m.Frame().Lookup("i")
	assert.False(t, ok)
}

func TestNestedLoops(t *testing.T) {
	m, out := newTestVM(t)
	_, err := m.EvalScript(context.Background(), `
		for a in json("[1, 2]") {
			for b in json("[\"x\", \"y\"]") { print(a, b) }
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "1 x\n1 y\n2 x\n2 y\n", out.String())
}

func TestStructConversion(t *testing.T) {
	m, _ := newTestVM(t, WithRegistry(testRegistry(t)))
	got := evalAll(t, m,
		`let a: m::A = json("{\"bar\": \"x\", \"count\": 1}") as m::A;`,
		`a as m::B`,
	)
	obj, ok := got.(*value.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"bar"}, obj.Keys)
	assert.Equal(t, &value.String{Value: "x"}, obj.Fields["bar"])
}

func TestDeserializeChecksShape(t *testing.T) {
	m, _ := newTestVM(t, WithRegistry(testRegistry(t)))
	_, err := m.Eval(context.Background(), `json("{\"count\": 1}") as m::A`)
	assert.ErrorIs(t, err, diagnostics.ErrMissingRequiredField)
}

func TestRunPlansConversion(t *testing.T) {
	prog, err := FromSource(`let n: i32 = 12; n as string`)
	require.NoError(t, err)

	m, _ := newTestVM(t)
	got, err := m.Run(context.Background(), prog)
	require.NoError(t, err)
	assert.Equal(t, &value.String{Value: "12"}, got)
}

func TestCompileErrorRunsNothing(t *testing.T) {
	m, out := newTestVM(t, WithRegistry(testRegistry(t)))
	_, err := m.EvalScript(context.Background(), `print("ran"); let a: m::A = json("{}"); a as m::BReq`)
	assert.ErrorIs(t, err, diagnostics.ErrMissingRequiredField)
	assert.Empty(t, out.String())
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"unknown variable", `y`, diagnostics.ErrUnresolvedReference},
		{"assign undeclared", `y = 1;`, diagnostics.ErrUnresolvedReference},
		{"unknown function", `missing(1)`, diagnostics.ErrHostCall},
		{"host failure", `len(1)`, diagnostics.ErrHostCall},
		{"field of scalar", `{ let x: i64 = 1; x.a }`, diagnostics.ErrScope},
		{"index out of bounds", `{ let x: json = json("[]"); x[0] }`, diagnostics.ErrScope},
		{"missing field", `{ let x: json = json("{}"); x.a }`, diagnostics.ErrUnresolvedReference},
		{"iterate scalar", `for i in 1 { }`, diagnostics.ErrScope},
		{"no conversion", `true as i32`, diagnostics.ErrUnsupportedConversion},
		{"syntax", `let = 1;`, diagnostics.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestVM(t)
			_, err := m.Eval(context.Background(), tt.source)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestErrorLeavesFrame(t *testing.T) {
	m, _ := newTestVM(t)
	_, err := m.EvalScript(context.Background(), `let x: i64 = 1; { let y: i64 = 2; nope(); }`)
	require.Error(t, err)

	var de *diagnostics.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, diagnostics.KindHostCall, de.Kind)
	assert.Equal(t, 1, de.Span.Line)

	// the block and the call scope are still open
	assert.Equal(t, 3, m.Frame().Depth())
	_, ok := m.Frame().Lookup("y")
	assert.True(t, ok)
}

func TestInvalidPrograms(t *testing.T) {
	tests := []struct {
		name string
		code []Instruction
	}{
		{"exit root scope", []Instruction{ExitScope()}},
		{"jump past end", []Instruction{Jump(2)}},
		{"negative jump", []Instruction{Jump(-1)}},
		{"loop before start", []Instruction{Loop(3)}},
		{"iterate without iterator", []Instruction{LoadValue(value.TRUE), Store("it"), IterNext("it", 0)}},
		{"unknown opcode", []Instruction{{Op: Opcode(200)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestVM(t)
			_, err := m.Run(context.Background(), &Program{Instructions: tt.code})
			assert.ErrorIs(t, err, diagnostics.ErrInvalidProgram)
		})
	}
}

func TestJumpToEnd(t *testing.T) {
	m, _ := newTestVM(t)
	got, err := m.Run(context.Background(), &Program{Instructions: []Instruction{
		LoadValue(&value.Int{Value: 1}),
		Jump(1),
		LoadValue(&value.Int{Value: 2}),
	}})
	require.NoError(t, err)
	assert.Equal(t, &value.Int{Value: 1}, got)
}

func TestCustomBehavior(t *testing.T) {
	var gotMethod string
	var gotArgs []value.Value
	behavior := host.BehaviorFunc(func(_ context.Context, method string, args []value.Value) (value.Value, error) {
		gotMethod, gotArgs = method, args
		return nil, nil
	})

	m := New(behavior)
	got, err := m.Eval(context.Background(), `svc::users::get("id", 2)`)
	require.NoError(t, err)
	assert.Equal(t, value.NULL, got)
	assert.Equal(t, "svc::users::get", gotMethod)
	assert.Equal(t, []value.Value{&value.String{Value: "id"}, &value.Int{Value: 2}}, gotArgs)
}

func TestHostErrorWrapped(t *testing.T) {
	cause := errors.New("boom")
	m := New(host.Funcs{"fail": func(context.Context, []value.Value) (value.Value, error) {
		return nil, cause
	}})
	_, err := m.Eval(context.Background(), `fail()`)
	assert.ErrorIs(t, err, diagnostics.ErrHostCall)
	assert.ErrorIs(t, err, cause)
}

func TestNoBehavior(t *testing.T) {
	m := New(nil)
	_, err := m.Eval(context.Background(), `f()`)
	assert.ErrorIs(t, err, diagnostics.ErrHostCall)
}

func TestCancelledContext(t *testing.T) {
	m, _ := newTestVM(t)
	evalAll(t, m, `let go: bool = true;`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Eval(ctx, `while go { }`)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "interrupted before lexing")
	assert.NotContains(t, err.Error(), "Processor")
}

func TestCancelledDuringLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	m := New(host.BehaviorFunc(func(context.Context, string, []value.Value) (value.Value, error) {
		calls++
		cancel()
		return nil, nil
	}))

	_, err := m.Eval(ctx, `while true { stop(); }`)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, diagnostics.ErrInvalidProgram)
	assert.Equal(t, 1, calls)
}

func TestCallLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m, _ := newTestVM(t, WithLogger(logger))

	evalAll(t, m, `print("x")`)
	assert.Contains(t, logs.String(), "host call")
	assert.Contains(t, logs.String(), "method=print")
	assert.Contains(t, logs.String(), "vm="+m.ID().String())
}

func TestIndependentMachines(t *testing.T) {
	a, _ := newTestVM(t)
	b, _ := newTestVM(t)
	assert.NotEqual(t, a.ID(), b.ID())

	evalAll(t, a, `let x: i64 = 1;`)
	_, err := b.Eval(context.Background(), `x`)
	assert.ErrorIs(t, err, diagnostics.ErrUnresolvedReference)
}
