package schema

// Meta is carried by every shape.
type Meta struct {
	Title       string
	Description string
	Deprecated  bool
	Nullable    bool
}

// MetaOf extracts the shared metadata of a node.
func MetaOf(n *Node) Meta {
	if n == nil {
		return Meta{}
	}
	return Meta{
		Title:       n.Title,
		Description: n.Description,
		Deprecated:  n.Deprecated,
		Nullable:    n.IsNullable(),
	}
}

// Shape is the closed set of schema variants. Only the types in this package
// implement it.
type Shape interface {
	Info() Meta
	shape()
}

// Reference points to a named schema in components/schemas.
type Reference struct {
	Meta
	Ref  string
	Name string
}

// Property is one declared property of a Record, in policy order.
type Property struct {
	Key      string
	Node     *Node
	Required bool
}

// Record is an object with declared properties.
type Record struct {
	Meta
	Properties []Property
}

// StringEnum is a closed set of string values, sorted and deduplicated.
type StringEnum struct {
	Meta
	Values []string
}

// List is an array of Element.
type List struct {
	Meta
	Element *Node
}

// OneOf is a union of alternatives.
type OneOf struct {
	Meta
	Alternatives []*Node
}

// Map is a dictionary keyed by arbitrary strings.
type Map struct {
	Meta
	Value *Node
}

// PrimitiveKind is the JSON scalar kind of a Primitive.
type PrimitiveKind int

const (
	String PrimitiveKind = iota
	Boolean
	Integer
	Number
)

func (k PrimitiveKind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case Number:
		return "number"
	default:
		return "string"
	}
}

// Primitive is a scalar, optionally refined by a format tag.
type Primitive struct {
	Meta
	Kind   PrimitiveKind
	Format string
}

// Opaque is the fallback for unstructured nodes.
type Opaque struct {
	Meta
}

func (m Meta) Info() Meta { return m }

func (Reference) shape()  {}
func (Record) shape()     {}
func (StringEnum) shape() {}
func (List) shape()       {}
func (OneOf) shape()      {}
func (Map) shape()        {}
func (Primitive) shape()  {}
func (Opaque) shape()     {}
