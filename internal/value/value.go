// Package value defines the runtime values of the virtual machine. Values are
// trees: lists and objects own their children and are copied, never shared,
// when they move between variables.
package value

import (
	"strconv"
	"strings"
)

type ValueType string

const (
	NULL_VALUE     = "NULL"
	BOOL_VALUE     = "BOOL"
	INT_VALUE      = "INT"
	FLOAT_VALUE    = "FLOAT"
	STRING_VALUE   = "STRING"
	LIST_VALUE     = "LIST"
	OBJECT_VALUE   = "OBJECT"
	ITERATOR_VALUE = "ITERATOR"
)

type Value interface {
	Type() ValueType
	Inspect() string
}

type Null struct{}

func (n *Null) Type() ValueType { return NULL_VALUE }
func (n *Null) Inspect() string { return "null" }

type Bool struct {
	Value bool
}

func (b *Bool) Type() ValueType { return BOOL_VALUE }
func (b *Bool) Inspect() string { return strconv.FormatBool(b.Value) }

type Int struct {
	Value int64
}

func (i *Int) Type() ValueType { return INT_VALUE }
func (i *Int) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ValueType { return FLOAT_VALUE }
func (f *Float) Inspect() string { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type String struct {
	Value string
}

func (s *String) Type() ValueType { return STRING_VALUE }
func (s *String) Inspect() string { return strconv.Quote(s.Value) }

type List struct {
	Elements []Value
}

func (l *List) Type() ValueType { return LIST_VALUE }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Object is a string-keyed map that remembers insertion order.
type Object struct {
	Keys   []string
	Fields map[string]Value
}

func NewObject() *Object {
	return &Object{Fields: make(map[string]Value)}
}

func (o *Object) Type() ValueType { return OBJECT_VALUE }
func (o *Object) Inspect() string {
	parts := make([]string, len(o.Keys))
	for i, k := range o.Keys {
		parts[i] = strconv.Quote(k) + ": " + o.Fields[k].Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.Fields[key]
	return v, ok
}

// Set binds key, appending it to the key order if new.
func (o *Object) Set(key string, v Value) {
	if o.Fields == nil {
		o.Fields = make(map[string]Value)
	}
	if _, ok := o.Fields[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Fields[key] = v
}

func (o *Object) Len() int { return len(o.Keys) }

// Iterator walks a snapshot of a list. It lives only inside loops.
type Iterator struct {
	Items []Value
	Pos   int
}

func (it *Iterator) Type() ValueType { return ITERATOR_VALUE }
func (it *Iterator) Inspect() string { return "<iterator>" }

// Next returns the next item and advances.
func (it *Iterator) Next() (Value, bool) {
	if it.Pos >= len(it.Items) {
		return nil, false
	}
	v := it.Items[it.Pos]
	it.Pos++
	return v, true
}

// Shared singletons for immutable values
var (
	NULL  = &Null{}
	TRUE  = &Bool{Value: true}
	FALSE = &Bool{Value: false}
)

func NativeBool(b bool) *Bool {
	if b {
		return TRUE
	}
	return FALSE
}

// Copy returns a deep copy of v. Scalars are immutable and returned as is.
func Copy(v Value) Value {
	switch v := v.(type) {
	case *List:
		out := &List{Elements: make([]Value, len(v.Elements))}
		for i, e := range v.Elements {
			out.Elements[i] = Copy(e)
		}
		return out
	case *Object:
		out := &Object{Keys: make([]string, len(v.Keys)), Fields: make(map[string]Value, len(v.Fields))}
		copy(out.Keys, v.Keys)
		for k, f := range v.Fields {
			out.Fields[k] = Copy(f)
		}
		return out
	case *Iterator:
		items := make([]Value, len(v.Items))
		copy(items, v.Items)
		return &Iterator{Items: items, Pos: v.Pos}
	}
	return v
}

// Equal reports deep equality. Object key order is not significant; an Int
// and a Float are never equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a := a.(type) {
	case *Null:
		return true
	case *Bool:
		return a.Value == b.(*Bool).Value
	case *Int:
		return a.Value == b.(*Int).Value
	case *Float:
		return a.Value == b.(*Float).Value
	case *String:
		return a.Value == b.(*String).Value
	case *List:
		bl := b.(*List)
		if len(a.Elements) != len(bl.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i], bl.Elements[i]) {
				return false
			}
		}
		return true
	case *Object:
		bo := b.(*Object)
		if len(a.Fields) != len(bo.Fields) {
			return false
		}
		for k, v := range a.Fields {
			w, ok := bo.Fields[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	}
	return a == b
}

// IsFalse reports whether v is the boolean false. Every other value,
// including null and zero, counts as true for conditional jumps.
func IsFalse(v Value) bool {
	b, ok := v.(*Bool)
	return ok && !b.Value
}
