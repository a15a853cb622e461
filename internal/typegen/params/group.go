package params

import (
	"fmt"
	"sort"
	"strings"

	"github.com/barisgit/apigen/internal/typegen/naming"
	"github.com/barisgit/apigen/internal/typegen/schema"
)

// MalformedParameterKeyError reports a bracketed parameter key that cannot be
// grouped.
type MalformedParameterKeyError struct {
	Key    string
	Reason string
}

func (e *MalformedParameterKeyError) Error() string {
	return fmt.Sprintf("malformed parameter key '%s': %s", e.Key, e.Reason)
}

// Nested is one bracketed sub-key of a group.
type Nested struct {
	// Key is the accessor derived from the bracket payload.
	Key       string
	Parameter schema.Parameter
}

// Group collects the parameters sharing one root key. A group without nested
// entries is a flat parameter carried in Value.
type Group struct {
	Root   string
	Value  *schema.Parameter
	Nested []Nested
}

// IsFlat reports whether the group is a plain key=value parameter.
func (g Group) IsFlat() bool {
	return len(g.Nested) == 0
}

// Keys returns the raw keys of the group in serialization order.
func (g Group) Keys() []string {
	var keys []string
	if g.Value != nil {
		keys = append(keys, g.Value.Name)
	}
	for _, n := range g.Nested {
		keys = append(keys, n.Parameter.Name)
	}
	return keys
}

// GroupParameters deduplicates parameters by raw key, keeping the first,
// sorts them by raw key and folds bracketed keys under their root.
func GroupParameters(parameters []schema.Parameter) ([]Group, error) {
	seen := make(map[string]bool, len(parameters))
	pending := make([]schema.Parameter, 0, len(parameters))
	for _, p := range parameters {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		pending = append(pending, p)
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Name < pending[j].Name })

	var groups []Group
	for len(pending) > 0 {
		head := pending[0]
		root, _, _ := strings.Cut(head.Name, "[")
		group := Group{Root: root}

		rest := pending[:0]
		for _, p := range pending {
			switch {
			case p.Name == root:
				if group.Value != nil {
					return nil, &MalformedParameterKeyError{Key: p.Name, Reason: "duplicate root value"}
				}
				value := p
				group.Value = &value
			case strings.HasPrefix(p.Name, root+"["):
				key, err := accessorKey(p.Name, root)
				if err != nil {
					return nil, err
				}
				group.Nested = append(group.Nested, Nested{Key: key, Parameter: p})
			default:
				rest = append(rest, p)
			}
		}
		pending = rest
		groups = append(groups, group)
	}
	return groups, nil
}

// accessorKey turns "filter[app.id]" into "appId".
func accessorKey(raw, root string) (string, error) {
	payload := strings.TrimPrefix(raw, root+"[")
	if !strings.HasSuffix(payload, "]") {
		return "", &MalformedParameterKeyError{Key: raw, Reason: "missing closing bracket"}
	}
	payload = strings.TrimSuffix(payload, "]")
	if payload == "" {
		return "", &MalformedParameterKeyError{Key: raw, Reason: "empty bracket payload"}
	}
	if strings.ContainsAny(payload, "[]") {
		return "", &MalformedParameterKeyError{Key: raw, Reason: "nested brackets"}
	}

	segments := strings.Split(payload, ".")
	for i, s := range segments {
		segments[i] = naming.UpperFirst(s)
	}
	return naming.LowerFirst(strings.Join(segments, "")), nil
}
