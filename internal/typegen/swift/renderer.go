package swift

import (
	"bytes"
	_ "embed"
	"fmt"
	"path"
	"regexp"
	"strings"
	"text/template"

	"github.com/barisgit/apigen/internal/typegen/decl"
	"github.com/barisgit/apigen/internal/typegen/naming"
)

//go:embed templates/file.swift.tmpl
var fileTemplate string

var placeholderPattern = regexp.MustCompile(`\{([^}/]+)\}`)

// AccessLevels lists the accepted access modifiers.
var AccessLevels = []string{"public", "internal", "package"}

// Options configures the renderer.
type Options struct {
	AccessLevel string
	// Header lines are emitted as comments below the autogenerated marker.
	Header []string
}

// Renderer renders declarations as Swift source files.
type Renderer struct {
	access string
	header []string
	policy naming.Policy
	file   *template.Template
}

type fileData struct {
	Header []string
	Decls  []string
}

// New creates a Swift renderer.
func New(opts Options) (*Renderer, error) {
	access := opts.AccessLevel
	if access == "" {
		access = "public"
	}
	valid := false
	for _, a := range AccessLevels {
		if a == access {
			valid = true
		}
	}
	if !valid {
		return nil, fmt.Errorf("unsupported access level '%s'", access)
	}

	tmpl, err := template.New("file").Parse(fileTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Renderer{access: access, header: opts.Header, policy: naming.DefaultPolicy(), file: tmpl}, nil
}

// Policy returns the Swift identifier policy.
func (r *Renderer) Policy() naming.Policy {
	return r.policy
}

// SchemaPath returns the file name of a top-level schema declaration.
func (r *Renderer) SchemaPath(d decl.Decl) string {
	return d.DeclName().Name + ".swift"
}

// NamespacePath returns the file name of the endpoint namespace scaffold.
func (r *Renderer) NamespacePath() string {
	return "Namespace.swift"
}

// EndpointPath returns the file name of the endpoint with the given path
// components.
func (r *Renderer) EndpointPath(components []string) string {
	return path.Join(components...) + ".swift"
}

// RenderFile renders decls into one source file.
func (r *Renderer) RenderFile(decls []decl.Decl) (string, error) {
	data := fileData{Header: r.header}
	for _, d := range decls {
		var w codeWriter
		if err := r.decl(&w, d); err != nil {
			return "", err
		}
		data.Decls = append(data.Decls, w.String())
	}

	var buf bytes.Buffer
	if err := r.file.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) decl(w *codeWriter, d decl.Decl) error {
	switch d := d.(type) {
	case *decl.Record:
		return r.record(w, d)
	case *decl.TaggedUnion:
		return r.union(w, d)
	case *decl.Alias:
		w.doc(d.Doc)
		w.line("%s typealias %s = %s", r.access, ident(d.Name), r.typeName(d.Target))
		return nil
	case *decl.Extension:
		w.open("extension %s", strings.Join(d.Path, "."))
		if err := r.nested(w, d.Nested, false); err != nil {
			return err
		}
		w.close()
		return nil
	default:
		return fmt.Errorf("unsupported declaration %T", d)
	}
}

// nested renders decls separated by blank lines. leading adds a blank line
// before the first one.
func (r *Renderer) nested(w *codeWriter, decls []decl.Decl, leading bool) error {
	for i, d := range decls {
		if i > 0 || leading {
			w.blank()
		}
		if err := r.decl(w, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) record(w *codeWriter, rec *decl.Record) error {
	conformances := "Hashable, Codable, Sendable"
	if rec.Query != nil || rec.Request != nil {
		conformances = "Hashable, Sendable"
	}

	w.doc(rec.Doc)
	w.open("%s struct %s: %s", r.access, ident(rec.Name), conformances)

	for _, m := range rec.Members {
		w.doc(m.Doc)
		if m.Deprecated {
			w.line("@available(*, deprecated)")
		}
		if m.Default {
			w.line("%s var %s: %s = .init()", r.access, ident(m.Name), r.typeName(m.Type))
		} else {
			w.line("%s var %s: %s", r.access, ident(m.Name), r.typeName(m.Type))
		}
	}
	if len(rec.Members) > 0 {
		w.blank()
	}

	r.initializer(w, rec)

	if len(rec.Overrides) > 0 && rec.Query == nil && rec.Request == nil {
		w.blank()
		w.open("private enum CodingKeys: String, CodingKey")
		for _, m := range rec.Members {
			if m.Name.Name != m.Key {
				w.line("case %s = %s", ident(m.Name), literal(m.Key))
			} else {
				w.line("case %s", ident(m.Name))
			}
		}
		w.close()
	}

	if rec.Query != nil {
		w.blank()
		r.queryItems(w, rec)
	}
	if rec.Request != nil {
		w.blank()
		r.request(w, rec)
	}

	if err := r.nested(w, rec.Nested, true); err != nil {
		return err
	}
	w.close()
	return nil
}

func (r *Renderer) initializer(w *codeWriter, rec *decl.Record) {
	if len(rec.Members) == 0 {
		w.line("%s init() {}", r.access)
		return
	}

	w.line("%s init(", r.access)
	w.indent++
	for i, m := range rec.Members {
		arg := ident(m.Name) + ": " + r.typeName(m.Type)
		if m.Name.Escaped {
			arg = ident(m.Name) + " _" + m.Name.Name + ": " + r.typeName(m.Type)
		}
		switch {
		case m.Default:
			arg += " = .init()"
		case m.Type.Optional:
			arg += " = nil"
		}
		if i < len(rec.Members)-1 {
			arg += ","
		}
		w.line(arg)
	}
	w.indent--
	w.open(")")
	for _, m := range rec.Members {
		if m.Name.Escaped {
			w.line("self.%s = _%s", ident(m.Name), m.Name.Name)
		} else {
			w.line("self.%s = %s", m.Name.Name, m.Name.Name)
		}
	}
	w.close()
}

func (r *Renderer) queryItems(w *codeWriter, rec *decl.Record) {
	members := make(map[string]decl.Member, len(rec.Members))
	for _, m := range rec.Members {
		members[m.Name.Name] = m
	}

	w.open("%s var queryItems: [URLQueryItem]", r.access)
	w.line("var items: [URLQueryItem] = []")
	for _, item := range rec.Query.Items {
		m := members[item.Member.Name]
		name := ident(item.Member)
		switch {
		case item.Nested:
			w.line("items += %s.queryItems", name)
		case item.List:
			if m.Type.Optional {
				w.open("if let values = %s, !values.isEmpty", name)
			} else {
				w.open("if case let values = %s, !values.isEmpty", name)
			}
			w.line(`items.append(URLQueryItem(name: %s, value: values.map { "\($0)" }.joined(separator: ",")))`, literal(item.Key))
			w.close()
		case m.Type.Optional:
			w.open("if let value = %s", name)
			w.line(`items.append(URLQueryItem(name: %s, value: "\(value)"))`, literal(item.Key))
			w.close()
		default:
			w.line(`items.append(URLQueryItem(name: %s, value: "\(%s)"))`, literal(item.Key), name)
		}
	}
	w.line("return items")
	w.close()
}

func (r *Renderer) request(w *codeWriter, rec *decl.Record) {
	req := rec.Request
	bindings := make(map[string]naming.Identifier, len(req.PathParams))
	for _, p := range req.PathParams {
		bindings[p.Placeholder] = p.Member
	}
	path := placeholderPattern.ReplaceAllStringFunc(req.Path, func(m string) string {
		placeholder := m[1 : len(m)-1]
		if id, ok := bindings[placeholder]; ok {
			return `\(` + ident(id) + `)`
		}
		return m
	})
	pathLiteral := `"` + strings.ReplaceAll(path, `"`, `\"`) + `"`

	w.open("%s var path: String", r.access)
	w.line(pathLiteral)
	w.close()
	w.blank()

	w.open("%s func request(with baseURL: URL) throws -> URLRequest?", r.access)
	w.line("var components = URLComponents(url: baseURL, resolvingAgainstBaseURL: true)")
	w.line("components?.path = path")
	if req.Parameters {
		if p, ok := memberWithKey(rec, "parameters"); ok {
			w.line("components?.queryItems = %s.queryItems", ident(p.Name))
			w.open("if components?.queryItems?.isEmpty ?? false")
			w.line("components?.queryItems = nil")
			w.close()
		}
	}
	w.blank()
	w.line("var urlRequest = components?.url.map { URLRequest(url: $0) }")
	w.line("urlRequest?.httpMethod = %s", literal(req.Method))
	if req.Body {
		if b, ok := memberWithKey(rec, "body"); ok {
			w.line(`urlRequest?.setValue("application/json", forHTTPHeaderField: "Content-Type")`)
			w.line("urlRequest?.httpBody = try JSONEncoder().encode(%s)", ident(b.Name))
		}
	}
	w.line("return urlRequest")
	w.close()
}

func memberWithKey(rec *decl.Record, key string) (decl.Member, bool) {
	for i := len(rec.Members) - 1; i >= 0; i-- {
		if rec.Members[i].Key == key {
			return rec.Members[i], true
		}
	}
	return decl.Member{}, false
}

func (r *Renderer) union(w *codeWriter, u *decl.TaggedUnion) error {
	w.doc(u.Doc)
	switch u.Style {
	case decl.Namespace:
		if len(u.Nested) == 0 {
			w.line("%s enum %s {}", r.access, ident(u.Name))
			return nil
		}
		w.open("%s enum %s", r.access, ident(u.Name))
		if err := r.nested(w, u.Nested, false); err != nil {
			return err
		}
		w.close()
		return nil

	case decl.Discriminator:
		w.open("%s enum %s: String, Hashable, Codable, Sendable", r.access, ident(u.Name))
		for _, c := range u.Cases {
			if c.Name.Name != c.Raw {
				w.line("case %s = %s", ident(c.Name), literal(c.Raw))
			} else {
				w.line("case %s", ident(c.Name))
			}
		}

	case decl.Open:
		w.open("%s struct %s: RawRepresentable, Hashable, Codable, Sendable, CustomStringConvertible", r.access, ident(u.Name))
		for _, c := range u.Cases {
			w.line("/// `%s`", c.Raw)
			w.line("%s static var %s: Self { .init(rawValue: %s) }", r.access, ident(c.Name), literal(c.Raw))
		}
		if len(u.Cases) > 0 {
			w.blank()
		}
		w.line("%s var description: String { rawValue }", r.access)
		w.blank()
		w.line("%s let rawValue: String", r.access)
		w.blank()
		w.open("%s init(rawValue: String)", r.access)
		w.line("self.rawValue = rawValue")
		w.close()

	default:
		w.open("%s enum %s: Hashable, Codable, Sendable", r.access, ident(u.Name))
		for _, c := range u.Cases {
			w.line("case %s(%s)", ident(c.Name), r.typeName(*c.Payload))
		}
		w.blank()
		w.open("%s init(from decoder: any Decoder) throws", r.access)
		w.open("self = try")
		w.line("var lastError: Error!")
		for _, c := range u.Cases {
			w.open("do")
			w.line("return .%s(try %s(from: decoder))", ident(c.Name), r.typeName(*c.Payload))
			w.indent--
			w.open("} catch")
			w.line("lastError = error")
			w.close()
		}
		w.line("throw lastError")
		w.indent--
		w.line("}()")
		w.close()
		w.blank()
		w.open("%s func encode(to encoder: any Encoder) throws", r.access)
		w.line("switch self {")
		for _, c := range u.Cases {
			w.line("case .%s(let value):", ident(c.Name))
			w.indent++
			w.line("try value.encode(to: encoder)")
			w.indent--
		}
		w.line("}")
		w.close()
	}

	if err := r.nested(w, u.Nested, true); err != nil {
		return err
	}
	w.close()
	return nil
}

func (r *Renderer) typeName(t decl.TypeRef) string {
	var s string
	switch t.Container {
	case decl.List:
		s = "[" + r.typeName(*t.Elem) + "]"
	case decl.Map:
		s = "[String: " + r.typeName(*t.Elem) + "]"
	default:
		if t.Builtin != decl.NotBuiltin {
			s = builtin(t.Builtin)
		} else {
			name := t.Name
			if t.Escaped {
				name = "`" + name + "`"
			}
			s = strings.Join(append(append([]string(nil), t.Scope...), name), ".")
		}
	}
	if t.Optional {
		s += "?"
	}
	return s
}

func builtin(b decl.Builtin) string {
	switch b {
	case decl.Bool:
		return "Bool"
	case decl.Int:
		return "Int"
	case decl.Double:
		return "Double"
	case decl.URL:
		return "URL"
	case decl.Data, decl.Any:
		return "Data"
	default:
		// Dates travel as ISO 8601 strings; decoding them is left to callers.
		return "String"
	}
}

func ident(id naming.Identifier) string {
	if id.Escaped {
		return "`" + id.Name + "`"
	}
	return id.Name
}
