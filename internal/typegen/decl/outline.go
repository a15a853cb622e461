package decl

// Outline is a serializable summary of a declaration tree.
type Outline struct {
	Kind    string          `json:"kind" yaml:"kind"`
	Name    string          `json:"name" yaml:"name"`
	Style   string          `json:"style,omitempty" yaml:"style,omitempty"`
	Target  string          `json:"target,omitempty" yaml:"target,omitempty"`
	Members []OutlineMember `json:"members,omitempty" yaml:"members,omitempty"`
	Cases   []OutlineCase   `json:"cases,omitempty" yaml:"cases,omitempty"`
	Nested  []Outline       `json:"nested,omitempty" yaml:"nested,omitempty"`
}

// OutlineMember summarises a Member.
type OutlineMember struct {
	Name       string `json:"name" yaml:"name"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
	Type       string `json:"type" yaml:"type"`
	Deprecated bool   `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// OutlineCase summarises a Case.
type OutlineCase struct {
	Name    string `json:"name" yaml:"name"`
	Payload string `json:"payload,omitempty" yaml:"payload,omitempty"`
	Raw     string `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Outlines summarises a list of declarations.
func Outlines(decls []Decl) []Outline {
	out := make([]Outline, 0, len(decls))
	for _, d := range decls {
		out = append(out, OutlineOf(d))
	}
	return out
}

// OutlineOf summarises d and its nested declarations.
func OutlineOf(d Decl) Outline {
	switch d := d.(type) {
	case *Record:
		o := Outline{Kind: "record", Name: d.Name.Name, Nested: Outlines(d.Nested)}
		for _, m := range d.Members {
			om := OutlineMember{Name: m.Name.Name, Type: m.Type.String(), Deprecated: m.Deprecated}
			if m.Key != m.Name.Name {
				om.Key = m.Key
			}
			o.Members = append(o.Members, om)
		}
		return o
	case *TaggedUnion:
		o := Outline{Kind: "union", Name: d.Name.Name, Style: d.Style.String(), Nested: Outlines(d.Nested)}
		for _, c := range d.Cases {
			oc := OutlineCase{Name: c.Name.Name, Raw: c.Raw}
			if c.Payload != nil {
				oc.Payload = c.Payload.String()
			}
			o.Cases = append(o.Cases, oc)
		}
		return o
	case *Alias:
		return Outline{Kind: "alias", Name: d.Name.Name, Target: d.Target.String()}
	case *Extension:
		return Outline{Kind: "extension", Name: d.DeclName().Name, Nested: Outlines(d.Nested)}
	default:
		return Outline{Kind: "unknown"}
	}
}
