package host

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/tot/internal/config"
	"github.com/funvibe/tot/internal/value"
)

// Builtins returns the functions every interpreter session provides.
// print writes to out.
func Builtins(out io.Writer) Funcs {
	return Funcs{
		config.JsonFuncName:   builtinJson,
		config.PrintFuncName:  builtinPrint(out),
		config.LenFuncName:    builtinLen,
		config.ConcatFuncName: builtinConcat,
	}
}

func checkArgs(name string, args []value.Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

// json(text) parses text as a JSON document.
func builtinJson(_ context.Context, args []value.Value) (value.Value, error) {
	if err := checkArgs(config.JsonFuncName, args, 1); err != nil {
		return nil, err
	}
	s, ok := args[0].(*value.String)
	if !ok {
		return nil, fmt.Errorf("json expects a string, got %s", args[0].Type())
	}
	return value.FromJSON([]byte(s.Value))
}

// Display renders v for output: strings without quotes, everything else as JSON.
func Display(v value.Value) string {
	if s, ok := v.(*value.String); ok {
		return s.Value
	}
	if data, err := value.ToJSON(v); err == nil {
		return string(data)
	}
	return v.Inspect()
}

func builtinPrint(out io.Writer) Func {
	return func(_ context.Context, args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Display(a)
		}
		if _, err := fmt.Fprintln(out, strings.Join(parts, " ")); err != nil {
			return nil, err
		}
		return value.NULL, nil
	}
}

func builtinLen(_ context.Context, args []value.Value) (value.Value, error) {
	if err := checkArgs(config.LenFuncName, args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *value.String:
		return &value.Int{Value: int64(utf8.RuneCountInString(v.Value))}, nil
	case *value.List:
		return &value.Int{Value: int64(len(v.Elements))}, nil
	case *value.Object:
		return &value.Int{Value: int64(v.Len())}, nil
	}
	return nil, fmt.Errorf("len of %s", args[0].Type())
}

func builtinConcat(_ context.Context, args []value.Value) (value.Value, error) {
	if err := checkArgs(config.ConcatFuncName, args, 2); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *value.String:
		if b, ok := args[1].(*value.String); ok {
			return &value.String{Value: a.Value + b.Value}, nil
		}
	case *value.List:
		if b, ok := args[1].(*value.List); ok {
			out := &value.List{Elements: make([]value.Value, 0, len(a.Elements)+len(b.Elements))}
			out.Elements = append(out.Elements, a.Elements...)
			out.Elements = append(out.Elements, b.Elements...)
			return out, nil
		}
	}
	return nil, fmt.Errorf("cannot concat %s and %s", args[0].Type(), args[1].Type())
}
