package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/barisgit/apigen/internal/typegen/decl"
	"github.com/barisgit/apigen/internal/typegen/naming"
	"github.com/barisgit/apigen/internal/typegen/resolver"
	"github.com/barisgit/apigen/internal/typegen/schema"
)

// Synthesizer lowers shapes into declarations. It holds no mutable state and
// may be used from several goroutines, each with its own Context.
type Synthesizer struct {
	refs   *resolver.References
	policy naming.Policy
}

// New creates a synthesizer.
func New(refs *resolver.References, policy naming.Policy) *Synthesizer {
	return &Synthesizer{refs: refs, policy: policy}
}

// Policy returns the identifier policy in use.
func (s *Synthesizer) Policy() naming.Policy {
	return s.policy
}

// Schema synthesizes the declarations for the top-level schema name. Records,
// enums and unions produce their own declaration; every other shape produces
// an alias, followed by the element declaration it needs, if any.
func (s *Synthesizer) Schema(name string) ([]decl.Decl, error) {
	node, ok := s.refs.Lookup(name)
	if !ok {
		return nil, &resolver.UnknownReferenceError{Ref: name}
	}
	shape, err := resolver.Classify(node)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}

	ctx := NewContext()
	switch shape.(type) {
	case schema.Record, schema.StringEnum, schema.OneOf:
		_, d, err := s.Shape(ctx, shape, name)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		return []decl.Decl{d}, nil
	case schema.Reference:
		ctx.resolving = []string{name}
	}

	alias := s.typeName(shape.Info(), name)
	key := name
	switch shape.(type) {
	case schema.List, schema.Map:
		key = alias.Name + "Element"
	}
	t, d, err := s.Shape(ctx, shape, key)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}

	decls := []decl.Decl{&decl.Alias{Name: alias, Doc: shape.Info().Description, Target: t.NonOptional()}}
	if d != nil {
		decls = append(decls, d)
	}
	return decls, nil
}

// Synthesize classifies node and lowers it under the contextual key.
func (s *Synthesizer) Synthesize(ctx *Context, node *schema.Node, key string) (decl.TypeRef, decl.Decl, error) {
	shape, err := resolver.Classify(node)
	if err != nil {
		return decl.TypeRef{}, nil, err
	}
	return s.Shape(ctx, shape, key)
}

// Shape lowers an already classified shape. The declaration is nil for shapes
// that only produce a type reference.
func (s *Synthesizer) Shape(ctx *Context, shape schema.Shape, key string) (decl.TypeRef, decl.Decl, error) {
	switch sh := shape.(type) {
	case schema.Record:
		return s.record(ctx, sh, key)
	case schema.StringEnum:
		return s.enum(ctx, sh, key)
	case schema.OneOf:
		return s.oneOf(ctx, sh, key)
	case schema.List:
		t, d, err := s.Synthesize(ctx, sh.Element, key)
		if err != nil {
			return decl.TypeRef{}, nil, err
		}
		return decl.ListOf(t), d, nil
	case schema.Map:
		t, d, err := s.Synthesize(ctx, sh.Value, key)
		if err != nil {
			return decl.TypeRef{}, nil, err
		}
		return decl.MapOf(t), d, nil
	case schema.Primitive:
		return decl.BuiltinType(primitive(sh)), nil, nil
	case schema.Reference:
		t, err := s.reference(ctx, sh)
		return t, nil, err
	case schema.Opaque:
		return decl.BuiltinType(decl.Any), nil, nil
	default:
		return decl.TypeRef{}, nil, fmt.Errorf("unsupported shape %T", shape)
	}
}

func (s *Synthesizer) typeName(meta schema.Meta, key string) naming.Identifier {
	if meta.Title != "" {
		return s.policy.TypeName(meta.Title)
	}
	return s.policy.TypeName(key)
}

func (s *Synthesizer) record(ctx *Context, rec schema.Record, key string) (decl.TypeRef, decl.Decl, error) {
	name := s.typeName(rec.Meta, key)
	ref := decl.Named(name.Name, name.Escaped, ctx.nesting)

	ctx.Push(name.Name)
	defer ctx.Pop()

	scope := s.policy.NewScope()
	var nested decl.NestedSet
	members := make([]decl.Member, 0, len(rec.Properties))
	for _, p := range rec.Properties {
		t, d, err := s.Synthesize(ctx, p.Node, p.Key)
		if err != nil {
			return decl.TypeRef{}, nil, fmt.Errorf("property %s: %w", p.Key, err)
		}
		meta := schema.MetaOf(p.Node)
		members = append(members, decl.Member{
			Name:       scope.Member(p.Key),
			Key:        p.Key,
			Type:       t.WithOptional(!p.Required || meta.Nullable),
			Deprecated: meta.Deprecated,
			Doc:        meta.Description,
		})
		nested.Add(d)
	}

	return ref, decl.NewRecord(name, rec.Description, members, nested.Decls()), nil
}

func (s *Synthesizer) enum(ctx *Context, e schema.StringEnum, key string) (decl.TypeRef, decl.Decl, error) {
	name := s.typeName(e.Meta, key)
	ref := decl.Named(name.Name, name.Escaped, ctx.nesting)

	if key == "type" && len(e.Values) == 1 {
		value := e.Values[0]
		return ref, &decl.TaggedUnion{
			Name:  name,
			Doc:   e.Description,
			Style: decl.Discriminator,
			Cases: []decl.Case{{Name: s.policy.MemberName(value), Raw: value}},
		}, nil
	}

	return ref, &decl.TaggedUnion{
		Name:  name,
		Doc:   e.Description,
		Style: decl.Open,
		Cases: s.enumCases(e.Values),
	}, nil
}

// enumCases names each value. A leading "-" marks a descending sort value and
// becomes a "Desc" suffix. Names are claimed in descending value order, so on
// a collision the greater value keeps the derived name.
func (s *Synthesizer) enumCases(values []string) []decl.Case {
	ordered := append([]string(nil), values...)
	sort.Sort(sort.Reverse(sort.StringSlice(ordered)))

	scope := s.policy.NewScope()
	cases := make([]decl.Case, 0, len(ordered))
	for _, v := range ordered {
		candidate := s.policy.MemberName(v)
		if strings.HasPrefix(v, "-") && len(v) > 1 {
			base := s.policy.MemberName(v[1:])
			candidate = naming.Identifier{Name: base.Name + "Desc"}
		}
		cases = append(cases, decl.Case{Name: scope.Claim(candidate, v), Raw: v})
	}
	sort.SliceStable(cases, func(i, j int) bool { return cases[i].Name.Name < cases[j].Name.Name })
	return cases
}

func (s *Synthesizer) oneOf(ctx *Context, u schema.OneOf, key string) (decl.TypeRef, decl.Decl, error) {
	name := s.typeName(u.Meta, key)
	ref := decl.Named(name.Name, name.Escaped, ctx.nesting)

	ctx.Push(name.Name)
	defer ctx.Pop()

	scope := s.policy.NewScope()
	seen := make(map[string]bool, len(u.Alternatives))
	var nested decl.NestedSet
	var cases []decl.Case
	for i, alt := range u.Alternatives {
		shape, err := resolver.Classify(alt)
		if err != nil {
			return decl.TypeRef{}, nil, fmt.Errorf("alternative %d: %w", i, err)
		}
		t, d, err := s.Shape(ctx, shape, alternativeKey(shape))
		if err != nil {
			return decl.TypeRef{}, nil, fmt.Errorf("alternative %d: %w", i, err)
		}
		payload := t.NonOptional()
		if seen[payload.Key()] {
			continue
		}
		seen[payload.Key()] = true

		base := caseBase(payload)
		cases = append(cases, decl.Case{Name: scope.Claim(s.policy.MemberName(base), base), Payload: &payload})
		nested.Add(d)
	}

	return ref, &decl.TaggedUnion{
		Name:   name,
		Doc:    u.Description,
		Style:  decl.Payload,
		Cases:  cases,
		Nested: nested.Decls(),
	}, nil
}

func (s *Synthesizer) reference(ctx *Context, r schema.Reference) (decl.TypeRef, error) {
	target, err := s.refs.Resolve(r.Ref, ctx.resolving...)
	if err != nil {
		return decl.TypeRef{}, err
	}

	switch target.Shape.(type) {
	case schema.Record, schema.StringEnum, schema.OneOf, schema.List, schema.Map:
		name := s.policy.TypeName(target.Name())
		return decl.Named(name.Name, name.Escaped, nil), nil
	default:
		t, _, err := s.Shape(NewContext(), target.Shape, target.Key)
		return t, err
	}
}

// alternativeKey names inline union alternatives that carry no title.
func alternativeKey(shape schema.Shape) string {
	switch sh := shape.(type) {
	case schema.Record:
		return "object"
	case schema.StringEnum:
		return "value"
	case schema.OneOf:
		return "variant"
	case schema.List:
		return elementKey(sh.Element)
	case schema.Map:
		return elementKey(sh.Value)
	default:
		return ""
	}
}

func elementKey(n *schema.Node) string {
	shape, err := resolver.Classify(n)
	if err != nil {
		return ""
	}
	return alternativeKey(shape)
}

func caseBase(t decl.TypeRef) string {
	switch t.Container {
	case decl.List:
		return caseBase(*t.Elem) + "List"
	case decl.Map:
		return caseBase(*t.Elem) + "Map"
	}
	if t.Builtin != decl.NotBuiltin {
		return t.Builtin.String()
	}
	return t.Name
}

func primitive(p schema.Primitive) decl.Builtin {
	switch p.Kind {
	case schema.Boolean:
		return decl.Bool
	case schema.Integer:
		return decl.Int
	case schema.Number:
		return decl.Double
	}
	switch p.Format {
	case "date":
		return decl.Date
	case "date-time":
		return decl.DateTime
	case "uri", "uri-reference":
		return decl.URL
	case "binary", "byte":
		return decl.Data
	default:
		return decl.String
	}
}
