package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/convert"
	"github.com/funvibe/tot/internal/diagnostics"
	"github.com/funvibe/tot/internal/registry"
	"github.com/funvibe/tot/internal/typesystem"
	"github.com/funvibe/tot/internal/value"
)

// RustName is the configuration name of the Rust backend.
const RustName = "rs"

// Rust renders async functions returning anyhow::Result. Models are
// expected to be serde types generated from the same schema files, living
// at their type path (a::b::C).
type Rust struct {
	registry *registry.Registry
	opts     Options
}

func NewRust(reg *registry.Registry, opts Options) *Rust {
	if reg == nil {
		reg = registry.New(nil)
	}
	return &Rust{registry: reg, opts: opts}
}

var rustScalars = map[typesystem.ScalarKind]string{
	typesystem.Bool:    "bool",
	typesystem.I8:      "i8",
	typesystem.I16:     "i16",
	typesystem.I32:     "i32",
	typesystem.I64:     "i64",
	typesystem.F64:     "f64",
	typesystem.Decimal: "rust_decimal::Decimal",
	typesystem.BigInt:  "tot_spec_util::big_int::BigInt",
	typesystem.Bytes:   "Vec<u8>",
	typesystem.String:  "String",
	typesystem.Json:    "serde_json::Value",
}

var rustKeywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true, "continue": true,
	"crate": true, "dyn": true, "else": true, "enum": true, "extern": true, "false": true,
	"fn": true, "for": true, "if": true, "impl": true, "in": true, "let": true, "loop": true,
	"match": true, "mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "static": true, "struct": true, "trait": true, "true": true, "type": true,
	"unsafe": true, "use": true, "where": true, "while": true,
}

func (r *Rust) Name() string    { return RustName }
func (r *Rust) FileExt() string { return ".rs" }

func (r *Rust) Signature(name string, params []string, ret string) string {
	if ret == "" {
		ret = "()"
	}
	return fmt.Sprintf("async fn %s(%s) -> anyhow::Result<%s>", rustIdent(name), strings.Join(params, ", "), ret)
}

func (r *Rust) Param(name, typeName string) string {
	return rustIdent(name) + ": " + typeName
}

func (r *Rust) Function(signature, body string) string {
	return signature + " " + body
}

func (r *Rust) TypeName(typePath string) (string, error) {
	res, err := r.registry.Resolve(typePath)
	if err != nil {
		return "", err
	}
	if res.IsModel() {
		return res.TypePath(), nil
	}
	return r.typeName(res.File, res.Type)
}

func (r *Rust) typeName(owner string, t typesystem.Type) (string, error) {
	switch t := t.(type) {
	case typesystem.TScalar:
		return rustScalars[t.Kind], nil
	case typesystem.TList:
		inner, err := r.typeName(owner, t.Item)
		if err != nil {
			return "", err
		}
		return "Vec<" + inner + ">", nil
	case typesystem.TMap:
		inner, err := r.typeName(owner, t.Value)
		if err != nil {
			return "", err
		}
		return "std::collections::HashMap<String, " + inner + ">", nil
	case typesystem.TRef:
		res, err := r.registry.ResolveReference(owner, t)
		if err != nil {
			return "", err
		}
		return res.TypePath(), nil
	}
	return "", diagnostics.New(diagnostics.KindUnresolvedType, "no rust type for %s", t)
}

func (r *Rust) Literal(v value.Value) (string, error) {
	switch v := v.(type) {
	case *value.String:
		return rustString(v.Value) + ".to_string()", nil
	case *value.Int:
		return strconv.FormatInt(v.Value, 10), nil
	case *value.Float:
		s := strconv.FormatFloat(v.Value, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s, nil
	case *value.Bool:
		return strconv.FormatBool(v.Value), nil
	case *value.Null:
		return "serde_json::Value::Null", nil
	}
	return "", diagnostics.New(diagnostics.KindInvalidProgram, "cannot render %s literal", v.Type())
}

// rustString quotes s as a Rust string literal.
func rustString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&sb, `\u{%x}`, c)
			} else {
				sb.WriteRune(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func rustIdent(name string) string {
	if rustKeywords[name] {
		return "r#" + name
	}
	return name
}

// place renders a path as an assignable place expression.
func place(path value.Path) string {
	var sb strings.Builder
	for i, s := range path {
		switch {
		case s.IsIndex:
			sb.WriteString("[" + strconv.Itoa(s.Index) + "]")
		case i == 0:
			sb.WriteString(rustIdent(s.Key))
		default:
			sb.WriteString("." + rustIdent(s.Key))
		}
	}
	return sb.String()
}

// Reference clones the referenced value; generated code never borrows.
func (r *Rust) Reference(path value.Path) string {
	return place(path) + ".clone()"
}

func (r *Rust) Call(path string, args []string) (string, error) {
	if path == config.PrintFuncName {
		placeholders := make([]string, len(args))
		for i := range args {
			placeholders[i] = "{}"
		}
		if len(args) == 0 {
			return "println!()", nil
		}
		return fmt.Sprintf("println!(%q, %s)", strings.Join(placeholders, " "), strings.Join(args, ", ")), nil
	}

	callee := r.opts.Callee(path)
	code := callee.Path + "(" + strings.Join(args, ", ") + ")"
	if callee.Async {
		code += ".await"
	}
	if callee.Fallible {
		code += "?"
	}
	return code, nil
}

func (r *Rust) Convert(plan *convert.Plan, src string) (string, error) {
	switch plan.Kind {
	case convert.Copy:
		return src, nil
	case convert.Stringify:
		if isBigInt(plan.Source) {
			return operand(src) + ".inner().to_string()", nil
		}
		return operand(src) + ".to_string()", nil
	case convert.Widen:
		return widenToF64(plan.Source, src), nil
	case convert.Serialize:
		return r.Block([]string{"let s = " + src + ";"}, "serde_json::to_value(&s)?"), nil
	case convert.Deserialize:
		return r.Block([]string{"let s = " + src + ";"}, "serde_json::from_value(s)?"), nil
	case convert.Struct:
		return r.convertStruct(plan, src)
	}
	return "", diagnostics.New(diagnostics.KindUnsupportedConversion, "no rust rendering for %s", plan)
}

func operand(src string) string {
	if strings.HasPrefix(src, "-") {
		return "(" + src + ")"
	}
	return src
}

func widenToF64(source registry.Resolved, src string) string {
	s, _ := source.Type.(typesystem.TScalar)
	switch s.Kind {
	case typesystem.F64:
		return src
	case typesystem.I64:
		return "(" + src + " as f64)"
	case typesystem.Decimal:
		return "rust_decimal::prelude::ToPrimitive::to_f64(&" + src + ").unwrap_or_default()"
	case typesystem.BigInt:
		return src + ".inner().to_f64().value()"
	}
	return "f64::from(" + src + ")"
}

// isBigInt reports whether r is the bigint wrapper, whose ibig value sits
// behind inner().
func isBigInt(r registry.Resolved) bool {
	s, ok := r.Type.(typesystem.TScalar)
	return ok && s.Kind == typesystem.BigInt
}

// convertStruct builds the target struct from the fields of a cloned
// source. Optional fields are Options on both sides.
func (r *Rust) convertStruct(plan *convert.Plan, src string) (string, error) {
	fields := make([]string, 0, len(plan.Fields))
	multiline := false
	for _, f := range plan.Fields {
		expr, err := r.convertField(f)
		if err != nil {
			return "", err
		}
		if strings.Contains(expr, "\n") {
			multiline = true
		}
		fields = append(fields, rustIdent(f.Name)+": "+expr)
	}

	target := plan.Target.TypePath()
	literal := target + " { " + strings.Join(fields, ", ") + " }"
	if len(fields) == 0 {
		literal = target + " {}"
	} else if multiline || len(literal) > 80 {
		literal = target + " {\n" + indent(strings.Join(fields, ",\n")) + ",\n}"
	}
	return r.Block([]string{"let s = " + src + ";"}, literal), nil
}

func (r *Rust) convertField(f convert.FieldPlan) (string, error) {
	if f.Absent {
		return "None", nil
	}
	access := "s." + rustIdent(f.Name) + ".clone()"

	switch {
	case f.SourceRequired && f.Required:
		return r.Convert(f.Plan, access)
	case f.SourceRequired:
		conv, err := r.Convert(f.Plan, access)
		if err != nil {
			return "", err
		}
		return "Some(" + conv + ")", nil
	case f.Required:
		unwrapped := access + ".ok_or_else(|| anyhow::anyhow!(" + strconv.Quote("missing field "+f.Name) + "))?"
		return r.Convert(f.Plan, unwrapped)
	}

	if f.Plan.Kind == convert.Copy {
		return access, nil
	}
	conv, err := r.Convert(f.Plan, "v")
	if err != nil {
		return "", err
	}
	return "match " + access + " {\n" +
		indent("Some(v) => Some("+conv+"),\nNone => None,") +
		"\n}", nil
}

func (r *Rust) Let(name, typeName, expr string) string {
	return "let mut " + rustIdent(name) + ": " + typeName + " = " + expr + ";"
}

func (r *Rust) Assign(target value.Path, expr string) string {
	return place(target) + " = " + expr + ";"
}

func (r *Rust) Statement(expr string) string {
	return expr + ";"
}

func (r *Rust) Return(expr string, trailing bool) string {
	if trailing {
		return "Ok(" + expr + ")"
	}
	return "return Ok(" + expr + ");"
}

func (r *Rust) Block(stmts []string, val string) string {
	lines := append([]string(nil), stmts...)
	if val != "" {
		lines = append(lines, val)
	}
	if len(lines) == 0 {
		return "{}"
	}
	return "{\n" + indent(strings.Join(lines, "\n")) + "\n}"
}

func (r *Rust) If(cond, then, els string) string {
	code := "if " + cond + " " + then
	if els != "" {
		code += " else " + els
	}
	return code
}

func (r *Rust) For(item, iterable, body string) string {
	return "for " + rustIdent(item) + " in " + iterable + " " + body
}

func (r *Rust) While(cond, body string) string {
	return "while " + cond + " " + body
}
