package resolver

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/barisgit/apigen/internal/typegen/schema"
)

const schemaPrefix = "#/components/schemas/"

// RefName returns the schema name a local $ref points to.
func RefName(ref string) string {
	name := ref
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		name = ref[i+1:]
	}
	name = strings.ReplaceAll(name, "~1", "/")
	return strings.ReplaceAll(name, "~0", "~")
}

// Target is the end of a reference chain.
type Target struct {
	// Key is the components/schemas name of the final schema.
	Key   string
	Node  *schema.Node
	Shape schema.Shape
	// Chain lists every name visited, the final one included.
	Chain []string
}

// Name returns the preferred type name source: the title, else the key.
func (t Target) Name() string {
	if title := t.Shape.Info().Title; title != "" {
		return title
	}
	return t.Key
}

// References resolves named references against components/schemas.
// It is safe for concurrent use.
type References struct {
	schemas map[string]*schema.Node
	cache   *lru.Cache[string, Target]
}

// NewReferences creates a resolver. A cacheSize of zero disables caching.
func NewReferences(schemas map[string]*schema.Node, cacheSize int) (*References, error) {
	r := &References{schemas: schemas}
	if cacheSize > 0 {
		cache, err := lru.New[string, Target](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create reference cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// Lookup returns the raw node registered under name.
func (r *References) Lookup(name string) (*schema.Node, bool) {
	n, ok := r.schemas[name]
	return n, ok
}

// Resolve follows ref transitively until it reaches a non-reference shape.
// active lists names already being resolved by the caller; revisiting any of
// them is reported as a cycle.
func (r *References) Resolve(ref string, active ...string) (Target, error) {
	if !strings.HasPrefix(ref, schemaPrefix) {
		return Target{}, &UnknownReferenceError{Ref: ref}
	}
	name := RefName(ref)

	if r.cache != nil {
		if target, ok := r.cache.Get(name); ok && !overlaps(target.Chain, active) {
			return target, nil
		}
	}

	chain := append([]string(nil), active...)
	for {
		if contains(chain, name) {
			return Target{}, &CyclicReferenceError{Chain: append(chain, name)}
		}
		chain = append(chain, name)

		node, ok := r.schemas[name]
		if !ok {
			return Target{}, &UnknownReferenceError{Ref: ref}
		}
		shape, err := Classify(node)
		if err != nil {
			return Target{}, fmt.Errorf("schema %s: %w", name, err)
		}

		next, isRef := shape.(schema.Reference)
		if !isRef {
			target := Target{Key: name, Node: node, Shape: shape, Chain: chain[len(active):]}
			if r.cache != nil {
				r.cache.Add(RefName(ref), target)
			}
			return target, nil
		}
		if !strings.HasPrefix(next.Ref, schemaPrefix) {
			return Target{}, &UnknownReferenceError{Ref: next.Ref}
		}
		name = next.Name
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func overlaps(a, b []string) bool {
	for _, v := range a {
		if contains(b, v) {
			return true
		}
	}
	return false
}
