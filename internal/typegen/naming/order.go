package naming

import (
	"fmt"
	"sort"
	"strings"
)

// Priorities lists the keys that always sort first, in this order.
var Priorities = []string{
	"id",
	"type",
	"attributes",
	"relationships",
	"width",
	"height",
}

func priority(key string) int {
	for i, p := range Priorities {
		if p == key {
			return i
		}
	}
	return -1
}

// Less orders original property keys: priority keys first, then the rest
// lexicographically.
func Less(a, b string) bool {
	pa, pb := priority(a), priority(b)
	switch {
	case pa >= 0 && pb >= 0:
		return pa < pb
	case pa >= 0:
		return true
	case pb >= 0:
		return false
	default:
		return a < b
	}
}

// SortKeys sorts keys in place by Less.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool { return Less(keys[i], keys[j]) })
}

// Scope hands out identifiers that are unique within one declaration.
type Scope struct {
	policy  Policy
	names   map[string]bool
	lowered map[string]bool
}

// NewScope creates an empty scope.
func (p Policy) NewScope() *Scope {
	return &Scope{
		policy:  p,
		names:   make(map[string]bool),
		lowered: make(map[string]bool),
	}
}

// Member derives a member name for raw and claims it.
func (s *Scope) Member(raw string) Identifier {
	return s.Claim(s.policy.MemberName(raw), raw)
}

// Claim registers a candidate identifier. When its lower-cased form is already
// taken the verbatim form of raw is used instead; a name that is still taken
// gets a numeric suffix.
func (s *Scope) Claim(candidate Identifier, raw string) Identifier {
	id := candidate
	if s.lowered[strings.ToLower(id.Name)] {
		id = s.policy.Verbatim(raw)
	}
	if s.names[id.Name] {
		base := id.Name
		for n := 2; ; n++ {
			next := fmt.Sprintf("%s_%d", base, n)
			if !s.names[next] {
				id = Identifier{Name: next, Escaped: id.Escaped}
				break
			}
		}
	}
	s.names[id.Name] = true
	s.lowered[strings.ToLower(id.Name)] = true
	return id
}
