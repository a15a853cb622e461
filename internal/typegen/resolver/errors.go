package resolver

import (
	"fmt"
	"strings"
)

// UnresolvableShapeError reports a node that matches no supported shape.
type UnresolvableShapeError struct {
	Keyword string
}

func (e *UnresolvableShapeError) Error() string {
	return fmt.Sprintf("unresolvable shape: unsupported composition keyword '%s'", e.Keyword)
}

// CyclicReferenceError reports a reference chain that revisits a name.
type CyclicReferenceError struct {
	Chain []string
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("cyclic reference: %s", strings.Join(e.Chain, " -> "))
}

// UnknownReferenceError reports a $ref that cannot be found.
type UnknownReferenceError struct {
	Ref string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown reference '%s'", e.Ref)
}
