package decl

import (
	"strings"

	"github.com/barisgit/apigen/internal/typegen/naming"
)

// Decl is a render-agnostic declaration: *Record, *TaggedUnion, *Alias or
// *Extension.
type Decl interface {
	DeclName() naming.Identifier
	decl()
}

// Member is a stored property of a Record.
type Member struct {
	Name       naming.Identifier
	Key        string
	Type       TypeRef
	Deprecated bool
	Doc        string
	// Default marks a non-optional member whose type is default constructible.
	Default bool
}

// KeyOverride maps a member to the serialization key it differs from.
type KeyOverride struct {
	Member naming.Identifier
	Key    string
}

// QueryItem binds a member of a parameter container to its query key.
type QueryItem struct {
	Member naming.Identifier
	Key    string
	List   bool
	// Nested members are containers that serialize their own items.
	Nested bool
}

// Query describes how a parameter container serializes to query items.
type Query struct {
	Items []QueryItem
}

// PathParam binds a path template placeholder to a member.
type PathParam struct {
	Member      naming.Identifier
	Placeholder string
}

// Request describes how an endpoint record builds its HTTP request.
type Request struct {
	Method     string
	Path       string
	PathParams []PathParam
	Parameters bool
	Body       bool
}

// Record is a product type.
type Record struct {
	Name      naming.Identifier
	Doc       string
	Members   []Member
	Overrides []KeyOverride
	Nested    []Decl
	Query     *Query
	Request   *Request
}

// NewRecord builds a record and records a key override for every member
// whose name differs from its serialization key.
func NewRecord(name naming.Identifier, doc string, members []Member, nested []Decl) *Record {
	r := &Record{Name: name, Doc: doc, Members: members, Nested: nested}
	for _, m := range members {
		if m.Name.Name != m.Key {
			r.Overrides = append(r.Overrides, KeyOverride{Member: m.Name, Key: m.Key})
		}
	}
	return r
}

// UnionStyle selects how a TaggedUnion is emitted.
type UnionStyle int

const (
	// Payload cases each carry one value; decoding tries them in order.
	Payload UnionStyle = iota
	// Discriminator is a closed enum of raw strings.
	Discriminator
	// Open is a raw string with named constants.
	Open
	// Namespace has no cases and only scopes nested declarations.
	Namespace
)

func (s UnionStyle) String() string {
	switch s {
	case Discriminator:
		return "discriminator"
	case Open:
		return "open"
	case Namespace:
		return "namespace"
	default:
		return "payload"
	}
}

// Case is one case of a TaggedUnion.
type Case struct {
	Name    naming.Identifier
	Payload *TypeRef
	Raw     string
}

// TaggedUnion is a sum type, an enum of raw values, or a namespace.
type TaggedUnion struct {
	Name   naming.Identifier
	Doc    string
	Style  UnionStyle
	Cases  []Case
	Nested []Decl
}

// Alias names another type.
type Alias struct {
	Name   naming.Identifier
	Doc    string
	Target TypeRef
}

// Extension appends declarations to an existing declaration.
type Extension struct {
	Path   []string
	Nested []Decl
}

func (r *Record) DeclName() naming.Identifier      { return r.Name }
func (u *TaggedUnion) DeclName() naming.Identifier { return u.Name }
func (a *Alias) DeclName() naming.Identifier       { return a.Name }
func (e *Extension) DeclName() naming.Identifier {
	return naming.Identifier{Name: strings.Join(e.Path, ".")}
}

func (*Record) decl()      {}
func (*TaggedUnion) decl() {}
func (*Alias) decl()       {}
func (*Extension) decl()   {}

// NestedSet collects nested declarations, keeping the first one per name.
type NestedSet struct {
	seen  map[string]bool
	decls []Decl
}

// Add appends d unless a declaration with the same name was already added.
func (s *NestedSet) Add(d Decl) {
	if d == nil {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	name := d.DeclName().Name
	if s.seen[name] {
		return
	}
	s.seen[name] = true
	s.decls = append(s.decls, d)
}

// Decls returns the collected declarations in insertion order.
func (s *NestedSet) Decls() []Decl {
	return s.decls
}
