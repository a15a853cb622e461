package endpoints

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/barisgit/apigen/internal/typegen/decl"
	"github.com/barisgit/apigen/internal/typegen/naming"
	"github.com/barisgit/apigen/internal/typegen/params"
	"github.com/barisgit/apigen/internal/typegen/schema"
	"github.com/barisgit/apigen/internal/typegen/synth"
)

var placeholderPattern = regexp.MustCompile(`\{([^}/]+)\}`)

// File is the declaration set of one endpoint path.
type File struct {
	Path       string
	Components []string
	Decls      []decl.Decl
}

// Builder turns endpoints into method records.
type Builder struct {
	synth  *synth.Synthesizer
	policy naming.Policy
}

// NewBuilder creates a builder that synthesizes inline schemas with s.
func NewBuilder(s *synth.Synthesizer) *Builder {
	return &Builder{synth: s, policy: s.Policy()}
}

// Build returns one file per path with at least one supported method, in
// path order.
func (b *Builder) Build(doc *schema.Document) ([]File, error) {
	var files []File
	for _, path := range doc.Paths() {
		ep := doc.Endpoints[path]
		if !ep.HasMethod() {
			continue
		}
		file, err := b.Endpoint(path, ep)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", path, err)
		}
		if len(file.Components) == 0 {
			continue
		}
		files = append(files, file)
	}
	return files, nil
}

// Endpoint builds the extension holding one record per method of ep.
func (b *Builder) Endpoint(path string, ep *schema.Endpoint) (File, error) {
	components := PathComponents(path, b.policy)
	file := File{Path: path, Components: components}

	var records []decl.Decl
	for _, op := range ep.Operations() {
		rec, err := b.method(path, components, op)
		if err != nil {
			return File{}, fmt.Errorf("%s: %w", op.Method, err)
		}
		records = append(records, rec)
	}
	file.Decls = []decl.Decl{&decl.Extension{Path: components, Nested: records}}
	return file, nil
}

func (b *Builder) method(path string, components []string, op *schema.Operation) (*decl.Record, error) {
	method := strings.ToUpper(op.Method)
	name := b.policy.TypeName(method)
	ctx := synth.NewContext(components...)
	ctx.Push(name.Name)

	scope := b.policy.NewScope()
	var nested decl.NestedSet
	var members []decl.Member
	request := &decl.Request{Method: method, Path: path}

	pathParams, err := b.pathParams(ctx, scope, &nested, path, op)
	if err != nil {
		return nil, err
	}
	for _, pp := range pathParams {
		request.PathParams = append(request.PathParams, pp.binding)
		members = append(members, pp.member)
	}

	if method == "GET" {
		rec, err := b.parameters(ctx, op)
		if err != nil {
			return nil, err
		}
		members = append(members, decl.Member{
			Name:    scope.Member("parameters"),
			Key:     "parameters",
			Type:    decl.Named(rec.Name.Name, false, ctx.Path()),
			Default: true,
		})
		nested.Add(rec)
		request.Parameters = true
	}

	if (method == "POST" || method == "PATCH") && op.RequestBody != nil {
		t, d, err := b.synth.Synthesize(ctx, op.RequestBody, "Body")
		if err != nil {
			return nil, fmt.Errorf("request body: %w", err)
		}
		members = append(members, decl.Member{
			Name: scope.Member("body"),
			Key:  "body",
			Type: t.NonOptional(),
			Doc:  schema.MetaOf(op.RequestBody).Description,
		})
		nested.Add(d)
		request.Body = true
	}

	if _, node := op.SuccessResponse(); node != nil {
		t, d, err := b.synth.Synthesize(ctx, node, "Response")
		if err != nil {
			return nil, fmt.Errorf("response: %w", err)
		}
		if d == nil || d.DeclName().Name != "Response" {
			nested.Add(&decl.Alias{Name: naming.Identifier{Name: "Response"}, Target: t.NonOptional()})
		}
		nested.Add(d)
	}

	doc := op.Description
	if doc == "" {
		doc = op.Summary
	}
	rec := decl.NewRecord(name, doc, members, nested.Decls())
	rec.Request = request
	return rec, nil
}

type pathParam struct {
	member  decl.Member
	binding decl.PathParam
}

// pathParams binds every placeholder of the template, in template order.
// Placeholders without a declared parameter become strings.
func (b *Builder) pathParams(ctx *synth.Context, scope *naming.Scope, nested *decl.NestedSet, path string, op *schema.Operation) ([]pathParam, error) {
	declared := make(map[string]schema.Parameter)
	for _, p := range op.PathParameters() {
		declared[p.Name] = p
	}

	var out []pathParam
	seen := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(path, -1) {
		placeholder := match[1]
		if seen[placeholder] {
			continue
		}
		seen[placeholder] = true

		t := decl.BuiltinType(decl.String)
		member := decl.Member{Key: placeholder}
		if p, ok := declared[placeholder]; ok && p.Schema != nil {
			pt, d, err := b.synth.Synthesize(ctx, p.Schema, placeholder)
			if err != nil {
				return nil, fmt.Errorf("path parameter %s: %w", placeholder, err)
			}
			t = pt
			nested.Add(d)
			member.Doc = p.Description
			member.Deprecated = p.Deprecated
		}
		member.Name = scope.Member(placeholder)
		member.Type = t.NonOptional()
		out = append(out, pathParam{
			member:  member,
			binding: decl.PathParam{Member: member.Name, Placeholder: placeholder},
		})
	}
	return out, nil
}

// parameters builds the Parameters record of a GET method from its grouped
// query parameters.
func (b *Builder) parameters(ctx *synth.Context, op *schema.Operation) (*decl.Record, error) {
	groups, err := params.GroupParameters(op.QueryParameters())
	if err != nil {
		return nil, err
	}

	name := naming.Identifier{Name: "Parameters"}
	ctx.Push(name.Name)
	defer ctx.Pop()

	scope := b.policy.NewScope()
	var nested decl.NestedSet
	var members []decl.Member
	var items []decl.QueryItem
	for _, g := range groups {
		if g.IsFlat() {
			m, d, err := b.queryMember(ctx, scope, g.Root, *g.Value)
			if err != nil {
				return nil, err
			}
			members = append(members, m)
			nested.Add(d)
			items = append(items, decl.QueryItem{Member: m.Name, Key: g.Root, List: m.Type.IsList()})
			continue
		}

		rec, err := b.group(ctx, g)
		if err != nil {
			return nil, err
		}
		m := decl.Member{
			Name:    scope.Member(g.Root),
			Key:     g.Root,
			Type:    decl.Named(rec.Name.Name, rec.Name.Escaped, ctx.Path()),
			Default: true,
		}
		if g.Value != nil {
			m.Doc = g.Value.Description
		}
		members = append(members, m)
		nested.Add(rec)
		items = append(items, decl.QueryItem{Member: m.Name, Key: g.Root, Nested: true})
	}

	rec := decl.NewRecord(name, "", members, nested.Decls())
	rec.Query = &decl.Query{Items: items}
	return rec, nil
}

// group builds the nested record of a bracketed parameter group.
func (b *Builder) group(ctx *synth.Context, g params.Group) (*decl.Record, error) {
	name := b.policy.TypeName(g.Root)
	ctx.Push(name.Name)
	defer ctx.Pop()

	scope := b.policy.NewScope()
	var nested decl.NestedSet
	var members []decl.Member
	var items []decl.QueryItem

	if g.Value != nil {
		m, d, err := b.queryMember(ctx, scope, "value", *g.Value)
		if err != nil {
			return nil, err
		}
		m.Key = g.Root
		members = append(members, m)
		nested.Add(d)
		items = append(items, decl.QueryItem{Member: m.Name, Key: g.Root, List: m.Type.IsList()})
	}
	for _, n := range g.Nested {
		m, d, err := b.queryMember(ctx, scope, n.Key, n.Parameter)
		if err != nil {
			return nil, err
		}
		m.Key = n.Parameter.Name
		members = append(members, m)
		nested.Add(d)
		items = append(items, decl.QueryItem{Member: m.Name, Key: n.Parameter.Name, List: m.Type.IsList()})
	}

	rec := decl.NewRecord(name, "", members, nested.Decls())
	rec.Query = &decl.Query{Items: items}
	return rec, nil
}

// queryMember synthesizes the optional member for one query parameter.
func (b *Builder) queryMember(ctx *synth.Context, scope *naming.Scope, key string, p schema.Parameter) (decl.Member, decl.Decl, error) {
	t, d, err := b.synth.Synthesize(ctx, p.Schema, key)
	if err != nil {
		return decl.Member{}, nil, fmt.Errorf("query parameter %s: %w", p.Name, err)
	}
	doc := p.Description
	if p.Required {
		doc = strings.TrimSpace(doc + " **(required)**")
	}
	return decl.Member{
		Name:       scope.Member(key),
		Key:        key,
		Type:       t.WithOptional(true),
		Deprecated: p.Deprecated || schema.MetaOf(p.Schema).Deprecated,
		Doc:        doc,
	}, d, nil
}
