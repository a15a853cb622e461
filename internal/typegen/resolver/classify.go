package resolver

import (
	"sort"

	"github.com/barisgit/apigen/internal/typegen/naming"
	"github.com/barisgit/apigen/internal/typegen/schema"
)

// Classify maps a node to exactly one shape. Candidates are tried in a fixed
// order: Record, StringEnum, List, OneOf, Map, string, boolean, integer,
// number, Reference, Opaque.
func Classify(n *schema.Node) (schema.Shape, error) {
	if n == nil {
		return schema.Opaque{}, nil
	}
	meta := schema.MetaOf(n)

	switch {
	case isRecord(n):
		return schema.Record{Meta: meta, Properties: properties(n)}, nil
	case isStringEnum(n):
		return schema.StringEnum{Meta: meta, Values: enumValues(n)}, nil
	case n.Has("array"):
		return schema.List{Meta: meta, Element: n.Items}, nil
	case len(n.OneOf) > 0:
		return schema.OneOf{Meta: meta, Alternatives: n.OneOf}, nil
	case len(n.AnyOf) > 0 && n.Title != "":
		return schema.OneOf{Meta: meta, Alternatives: n.AnyOf}, nil
	case isObject(n) && n.AdditionalSchema() != nil:
		return schema.Map{Meta: meta, Value: n.AdditionalSchema()}, nil
	case n.Has("string"):
		return schema.Primitive{Meta: meta, Kind: schema.String, Format: n.Format}, nil
	case n.Has("boolean"):
		return schema.Primitive{Meta: meta, Kind: schema.Boolean}, nil
	case n.Has("integer"):
		return schema.Primitive{Meta: meta, Kind: schema.Integer, Format: n.Format}, nil
	case n.Has("number"):
		return schema.Primitive{Meta: meta, Kind: schema.Number, Format: n.Format}, nil
	case n.Ref != "":
		return schema.Reference{Meta: meta, Ref: n.Ref, Name: RefName(n.Ref)}, nil
	case len(n.AllOf) > 0:
		return nil, &UnresolvableShapeError{Keyword: "allOf"}
	case len(n.AnyOf) > 0:
		return nil, &UnresolvableShapeError{Keyword: "anyOf"}
	case n.Not != nil:
		return nil, &UnresolvableShapeError{Keyword: "not"}
	default:
		return schema.Opaque{Meta: meta}, nil
	}
}

func isObject(n *schema.Node) bool {
	if n.Has("object") {
		return true
	}
	return n.Untyped() && (len(n.Properties) > 0 || len(n.Required) > 0 || n.AdditionalProperties != nil)
}

// isRecord rejects an object whose only content is an additionalProperties
// schema, which is a Map.
func isRecord(n *schema.Node) bool {
	if !isObject(n) {
		return false
	}
	return len(n.Properties) > 0 || len(n.Required) > 0 || n.AdditionalSchema() == nil
}

func isStringEnum(n *schema.Node) bool {
	if !n.Has("string") && !n.Untyped() {
		return false
	}
	for _, v := range n.Enum {
		if _, ok := v.(string); ok {
			return true
		}
	}
	return false
}

func enumValues(n *schema.Node) []string {
	seen := make(map[string]bool, len(n.Enum))
	var values []string
	for _, v := range n.Enum {
		s, ok := v.(string)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		values = append(values, s)
	}
	sort.Strings(values)
	return values
}

func properties(n *schema.Node) []schema.Property {
	required := make(map[string]bool, len(n.Required))
	for _, name := range n.Required {
		required[name] = true
	}

	keys := make([]string, 0, len(n.Properties))
	for key := range n.Properties {
		keys = append(keys, key)
	}
	naming.SortKeys(keys)

	props := make([]schema.Property, 0, len(keys))
	for _, key := range keys {
		props = append(props, schema.Property{
			Key:      key,
			Node:     n.Properties[key],
			Required: required[key],
		})
	}
	return props
}
