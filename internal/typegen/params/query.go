package params

import (
	"fmt"
	"net/url"
	"strings"
)

type valueKind int

const (
	unset valueKind = iota
	stringValue
	listValue
	nestedValue
)

// Value is a query value: a string, a list of strings, or a nested group.
type Value struct {
	kind   valueKind
	str    string
	list   []string
	nested *Container
}

// String returns a single string value.
func String(s string) Value {
	return Value{kind: stringValue, str: s}
}

// List returns a list value, serialized comma-joined.
func List(items ...string) Value {
	return Value{kind: listValue, list: append([]string(nil), items...)}
}

// NestedValue wraps a group container.
func NestedValue(c *Container) Value {
	return Value{kind: nestedValue, nested: c}
}

// IsSet reports whether the value produces any query item.
func (v Value) IsSet() bool {
	switch v.kind {
	case stringValue:
		return true
	case listValue:
		return len(v.list) > 0
	case nestedValue:
		return v.nested != nil && len(v.nested.QueryItems()) > 0
	default:
		return false
	}
}

func (v Value) items(key string) []Item {
	switch v.kind {
	case stringValue:
		return []Item{{Key: key, Value: v.str}}
	case listValue:
		if len(v.list) == 0 {
			return nil
		}
		return []Item{{Key: key, Value: strings.Join(v.list, ",")}}
	case nestedValue:
		if v.nested == nil {
			return nil
		}
		return v.nested.QueryItems()
	default:
		return nil
	}
}

// Item is one name=value pair of a query string.
type Item struct {
	Key   string
	Value string
}

func (i Item) String() string {
	return i.Key + "=" + i.Value
}

// Container holds the values of one nested group, addressed by accessor key.
type Container struct {
	group  Group
	root   Value
	values map[string]Value
}

// NewContainer creates an empty container for g.
func NewContainer(g Group) *Container {
	return &Container{group: g, values: make(map[string]Value, len(g.Nested))}
}

// SetRoot sets the value of the bare root key.
func (c *Container) SetRoot(v Value) error {
	if c.group.Value == nil {
		return fmt.Errorf("group %s has no root value", c.group.Root)
	}
	if v.kind == nestedValue {
		return fmt.Errorf("group %s: nested value not allowed", c.group.Root)
	}
	c.root = v
	return nil
}

// Set sets the value of the sub-key with accessor key.
func (c *Container) Set(key string, v Value) error {
	if v.kind == nestedValue {
		return fmt.Errorf("group %s: nested value not allowed", c.group.Root)
	}
	for _, n := range c.group.Nested {
		if n.Key == key {
			c.values[key] = v
			return nil
		}
	}
	return fmt.Errorf("group %s has no key '%s'", c.group.Root, key)
}

func (c *Container) setRaw(raw string, v Value) error {
	for _, n := range c.group.Nested {
		if n.Parameter.Name == raw {
			return c.Set(n.Key, v)
		}
	}
	return fmt.Errorf("unknown parameter '%s'", raw)
}

// QueryItems returns the root value first, then each set sub-key under its raw
// key, in group order.
func (c *Container) QueryItems() []Item {
	var items []Item
	if c.group.Value != nil {
		items = append(items, c.root.items(c.group.Value.Name)...)
	}
	for _, n := range c.group.Nested {
		items = append(items, c.values[n.Key].items(n.Parameter.Name)...)
	}
	return items
}

// Parameters is the runtime counterpart of a generated Parameters record.
type Parameters struct {
	groups []Group
	values map[string]Value
}

// New creates an empty parameter set for groups.
func New(groups []Group) *Parameters {
	p := &Parameters{groups: groups, values: make(map[string]Value, len(groups))}
	for _, g := range groups {
		if !g.IsFlat() {
			p.values[g.Root] = NestedValue(NewContainer(g))
		}
	}
	return p
}

// Groups returns the groups in serialization order.
func (p *Parameters) Groups() []Group {
	return p.groups
}

// Container returns the container of the nested group root.
func (p *Parameters) Container(root string) (*Container, bool) {
	v, ok := p.values[root]
	if !ok || v.kind != nestedValue {
		return nil, false
	}
	return v.nested, true
}

// Set assigns v to the parameter with the raw key, either a flat key, a group
// root or a bracketed "root[sub]" key.
func (p *Parameters) Set(raw string, v Value) error {
	root, _, bracketed := strings.Cut(raw, "[")
	for _, g := range p.groups {
		if g.Root != root {
			continue
		}
		if g.IsFlat() {
			if bracketed {
				break
			}
			if v.kind == nestedValue {
				return fmt.Errorf("parameter %s: nested value not allowed", raw)
			}
			p.values[root] = v
			return nil
		}
		c := p.values[root].nested
		if !bracketed {
			return c.SetRoot(v)
		}
		return c.setRaw(raw, v)
	}
	return fmt.Errorf("unknown parameter '%s'", raw)
}

// SetStrings sets a single value as a string and several as a list.
func (p *Parameters) SetStrings(raw string, values ...string) error {
	if len(values) == 1 {
		return p.Set(raw, String(values[0]))
	}
	return p.Set(raw, List(values...))
}

// QueryItems returns every set item in group order.
func (p *Parameters) QueryItems() []Item {
	var items []Item
	for _, g := range p.groups {
		items = append(items, p.values[g.Root].items(g.Root)...)
	}
	return items
}

// Encode returns the percent-encoded query string in group order.
func (p *Parameters) Encode() string {
	items := p.QueryItems()
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, url.QueryEscape(item.Key)+"="+url.QueryEscape(item.Value))
	}
	return strings.Join(parts, "&")
}
