package decl

import "strings"

// Builtin is a target-independent primitive type.
type Builtin int

const (
	NotBuiltin Builtin = iota
	String
	Bool
	Int
	Double
	Date
	DateTime
	URL
	Data
	Any
)

var builtinNames = map[Builtin]string{
	String:   "String",
	Bool:     "Bool",
	Int:      "Int",
	Double:   "Double",
	Date:     "Date",
	DateTime: "DateTime",
	URL:      "URL",
	Data:     "Data",
	Any:      "Any",
}

func (b Builtin) String() string {
	return builtinNames[b]
}

// Container is the collection wrapper of a TypeRef.
type Container int

const (
	Scalar Container = iota
	List
	Map
)

// TypeRef is a reference to a type: a named declaration, a builtin, or a list
// or string-keyed map of another TypeRef.
type TypeRef struct {
	Name      string
	Escaped   bool
	Scope     []string
	Builtin   Builtin
	Container Container
	Elem      *TypeRef
	Optional  bool
}

// Named references a declaration declared inside scope (empty for top level).
func Named(name string, escaped bool, scope []string) TypeRef {
	return TypeRef{Name: name, Escaped: escaped, Scope: append([]string(nil), scope...)}
}

// BuiltinType references a builtin primitive.
func BuiltinType(b Builtin) TypeRef {
	return TypeRef{Builtin: b}
}

// ListOf wraps elem in a list.
func ListOf(elem TypeRef) TypeRef {
	e := elem.NonOptional()
	return TypeRef{Container: List, Elem: &e}
}

// MapOf wraps value in a string-keyed map.
func MapOf(value TypeRef) TypeRef {
	v := value.NonOptional()
	return TypeRef{Container: Map, Elem: &v}
}

// NonOptional returns a copy with the optional flag cleared.
func (t TypeRef) NonOptional() TypeRef {
	t.Optional = false
	return t
}

// WithOptional returns a copy with the optional flag set.
func (t TypeRef) WithOptional(optional bool) TypeRef {
	t.Optional = optional
	return t
}

// IsList reports whether the reference is a list.
func (t TypeRef) IsList() bool {
	return t.Container == List
}

// Key is the canonical identity of the reference. Two references with equal
// keys denote the same type.
func (t TypeRef) Key() string {
	var b strings.Builder
	t.writeKey(&b)
	return b.String()
}

func (t TypeRef) writeKey(b *strings.Builder) {
	switch t.Container {
	case List:
		b.WriteString("[")
		t.Elem.writeKey(b)
		b.WriteString("]")
	case Map:
		b.WriteString("[String: ")
		t.Elem.writeKey(b)
		b.WriteString("]")
	default:
		if t.Builtin != NotBuiltin {
			b.WriteString(t.Builtin.String())
		} else {
			for _, s := range t.Scope {
				b.WriteString(s)
				b.WriteString(".")
			}
			b.WriteString(t.Name)
		}
	}
	if t.Optional {
		b.WriteString("?")
	}
}

// String renders the reference in a neutral notation.
func (t TypeRef) String() string {
	return t.Key()
}
