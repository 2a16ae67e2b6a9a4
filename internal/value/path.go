package value

import (
	"strconv"
	"strings"

	"github.com/funvibe/tot/internal/diagnostics"
)

// Segment is one step of a path: an object key or a list index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func Key(k string) Segment { return Segment{Key: k} }
func Index(i int) Segment  { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Path addresses a value: a variable name followed by keys and indices.
type Path []Segment

// NewPath builds a path rooted at a variable.
func NewPath(root string, rest ...Segment) Path {
	return append(Path{Key(root)}, rest...)
}

// Root returns the variable name the path starts at.
func (p Path) Root() string {
	if len(p) == 0 {
		return ""
	}
	return p[0].Key
}

func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p {
		if i > 0 && !s.IsIndex {
			sb.WriteByte('.')
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Get follows segs from v.
func Get(v Value, segs []Segment) (Value, error) {
	cur := v
	for i, s := range segs {
		next, err := step(cur, s)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, diagnostics.New(diagnostics.KindUnresolvedReference, "no field %s at %s", s.Key, Path(segs[:i+1]))
		}
		cur = next
	}
	return cur, nil
}

func step(cur Value, s Segment) (Value, error) {
	if s.IsIndex {
		l, ok := cur.(*List)
		if !ok {
			return nil, diagnostics.New(diagnostics.KindScope, "cannot index %s with %s", cur.Type(), s)
		}
		if s.Index < 0 || s.Index >= len(l.Elements) {
			return nil, diagnostics.New(diagnostics.KindScope, "index %d out of bounds (len %d)", s.Index, len(l.Elements))
		}
		return l.Elements[s.Index], nil
	}
	o, ok := cur.(*Object)
	if !ok {
		return nil, diagnostics.New(diagnostics.KindScope, "cannot access field %s of %s", s.Key, cur.Type())
	}
	next, ok := o.Get(s.Key)
	if !ok {
		return nil, nil
	}
	return next, nil
}

// Set replaces the value at segs inside root and returns the new root. The
// last key of an object path may be new; every other step must exist.
// Containers along the path are modified in place, siblings are untouched.
func Set(root Value, segs []Segment, v Value) (Value, error) {
	if len(segs) == 0 {
		return v, nil
	}
	parent, err := Get(root, segs[:len(segs)-1])
	if err != nil {
		return nil, err
	}
	last := segs[len(segs)-1]
	if last.IsIndex {
		l, ok := parent.(*List)
		if !ok {
			return nil, diagnostics.New(diagnostics.KindScope, "cannot index %s with %s", parent.Type(), last)
		}
		if last.Index < 0 || last.Index >= len(l.Elements) {
			return nil, diagnostics.New(diagnostics.KindScope, "index %d out of bounds (len %d)", last.Index, len(l.Elements))
		}
		l.Elements[last.Index] = v
		return root, nil
	}
	o, ok := parent.(*Object)
	if !ok {
		return nil, diagnostics.New(diagnostics.KindScope, "cannot set field %s of %s", last.Key, parent.Type())
	}
	o.Set(last.Key, v)
	return root, nil
}
