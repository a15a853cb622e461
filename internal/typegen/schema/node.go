package schema

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Node is a JSON Schema node as it appears in an OpenAPI document.
type Node struct {
	Ref                  string           `json:"$ref,omitempty"`
	Title                string           `json:"title,omitempty"`
	Description          string           `json:"description,omitempty"`
	Type                 TypeSet          `json:"type,omitempty"`
	Format               string           `json:"format,omitempty"`
	Nullable             bool             `json:"nullable,omitempty"`
	Deprecated           bool             `json:"deprecated,omitempty"`
	Enum                 []any            `json:"enum,omitempty"`
	Properties           map[string]*Node `json:"properties,omitempty"`
	Required             []string         `json:"required,omitempty"`
	Items                *Node            `json:"items,omitempty"`
	AdditionalProperties *Additional      `json:"additionalProperties,omitempty"`
	OneOf                []*Node          `json:"oneOf,omitempty"`
	AnyOf                []*Node          `json:"anyOf,omitempty"`
	AllOf                []*Node          `json:"allOf,omitempty"`
	Not                  *Node            `json:"not,omitempty"`
}

// Has reports whether the node declares the given type.
func (n *Node) Has(t string) bool {
	if n == nil {
		return false
	}
	for _, v := range n.Type {
		if v == t {
			return true
		}
	}
	return false
}

// Untyped reports whether the node declares no type besides "null".
func (n *Node) Untyped() bool {
	if n == nil {
		return true
	}
	for _, v := range n.Type {
		if v != "null" {
			return false
		}
	}
	return true
}

// IsNullable reports nullability in both 3.0 and 3.1 style.
func (n *Node) IsNullable() bool {
	return n != nil && (n.Nullable || n.Has("null"))
}

// AdditionalSchema returns the additionalProperties schema, if one is given.
func (n *Node) AdditionalSchema() *Node {
	if n == nil || n.AdditionalProperties == nil {
		return nil
	}
	return n.AdditionalProperties.Schema
}

// TypeSet holds "type" which is a string in 3.0 and may be a list in 3.1.
type TypeSet []string

func (t *TypeSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("invalid type list: %w", err)
		}
		*t = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("invalid type: %w", err)
	}
	*t = TypeSet{single}
	return nil
}

func (t TypeSet) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Additional holds additionalProperties, which is either a bool or a schema.
type Additional struct {
	Allowed bool
	Schema  *Node
}

func (a *Additional) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		a.Allowed = true
		return nil
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		a.Allowed = false
		return nil
	}
	var node Node
	if err := json.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("invalid additionalProperties: %w", err)
	}
	a.Allowed = true
	a.Schema = &node
	return nil
}

func (a Additional) MarshalJSON() ([]byte, error) {
	if a.Schema != nil {
		return json.Marshal(a.Schema)
	}
	return json.Marshal(a.Allowed)
}
