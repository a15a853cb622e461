package endpoints

import (
	"sort"
	"strings"

	"github.com/barisgit/apigen/internal/typegen/decl"
	"github.com/barisgit/apigen/internal/typegen/naming"
	"github.com/barisgit/apigen/internal/typegen/schema"
)

// PathComponents maps a path template onto type names: literal segments
// become type names and "{param}" segments become "By<Param>".
func PathComponents(path string, policy naming.Policy) []string {
	var components []string
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			param := strings.TrimSuffix(strings.TrimPrefix(part, "{"), "}")
			components = append(components, "By"+policy.TypeName(param).Name)
			continue
		}
		components = append(components, policy.TypeName(part).Name)
	}
	return components
}

// Tree is one node of the endpoint namespace.
type Tree struct {
	Name     string
	children map[string]*Tree
}

// NewTree creates an empty node.
func NewTree(name string) *Tree {
	return &Tree{Name: name, children: make(map[string]*Tree)}
}

// Child returns the child called name, creating it if needed.
func (t *Tree) Child(name string) *Tree {
	if c, ok := t.children[name]; ok {
		return c
	}
	c := NewTree(name)
	t.children[name] = c
	return c
}

// Insert adds every component of path below t.
func (t *Tree) Insert(path []string) {
	current := t
	for _, c := range path {
		current = current.Child(c)
	}
}

// Children returns the children sorted by name.
func (t *Tree) Children() []*Tree {
	out := make([]*Tree, 0, len(t.children))
	for _, c := range t.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Decls renders the children of t as caseless namespace unions.
func (t *Tree) Decls() []decl.Decl {
	children := t.Children()
	decls := make([]decl.Decl, 0, len(children))
	for _, c := range children {
		decls = append(decls, &decl.TaggedUnion{
			Name:   naming.Identifier{Name: c.Name},
			Style:  decl.Namespace,
			Nested: c.Decls(),
		})
	}
	return decls
}

// BuildNamespace builds the namespace tree of every path that has at least
// one supported method.
func BuildNamespace(doc *schema.Document, policy naming.Policy) *Tree {
	root := NewTree("")
	for _, path := range doc.Paths() {
		if !doc.Endpoints[path].HasMethod() {
			continue
		}
		root.Insert(PathComponents(path, policy))
	}
	return root
}
