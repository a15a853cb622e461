package naming

import (
	"regexp"
	"strings"
	"unicode"
)

// Identifier is a derived name ready for emission.
// Escaped identifiers collide with a host keyword (or are verbatim fallbacks)
// and must be rendered in the host language's escaped form.
type Identifier struct {
	Name    string `json:"name" yaml:"name"`
	Escaped bool   `json:"escaped,omitempty" yaml:"escaped,omitempty"`
}

func (i Identifier) String() string {
	return i.Name
}

// SwiftKeywords are the reserved words that force an escaped identifier.
var SwiftKeywords = []string{
	"class", "struct", "actor", "enum", "protocol", "func", "var", "let",
	"if", "else", "while", "for", "return", "break", "continue", "switch",
	"case", "default", "import", "extension", "deinit", "init", "self",
	"super", "true", "false", "nil", "guard", "in",
}

// ReservedWords rewrites individual lower-cased segments.
var ReservedWords = map[string]string{
	"os":       "OS",
	"tv":       "TV",
	"iphone":   "iPhone",
	"ipad":     "iPad",
	"ios":      "iOS",
	"macos":    "macOS",
	"watchos":  "watchOS",
	"tvos":     "tvOS",
	"visionos": "visionOS",
	"self":     "current",
}

// TypeAliases rewrites type names that would shadow library types.
var TypeAliases = map[string]string{
	"Type":        "DataType",
	"JsonPointer": "ErrorSourcePointer",
	"Parameter":   "ErrorSourceParameter",
}

var invalidChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Policy derives type and member names for one host language.
type Policy struct {
	keywords    map[string]bool
	reserved    map[string]string
	typeAliases map[string]string
}

// NewPolicy creates a policy escaping the given keywords.
func NewPolicy(keywords []string) Policy {
	p := Policy{
		keywords:    make(map[string]bool, len(keywords)),
		reserved:    ReservedWords,
		typeAliases: TypeAliases,
	}
	for _, k := range keywords {
		p.keywords[k] = true
	}
	return p
}

// DefaultPolicy returns the Swift policy.
func DefaultPolicy() Policy {
	return NewPolicy(SwiftKeywords)
}

// IsKeyword reports whether name needs escaping.
func (p Policy) IsKeyword(name string) bool {
	return p.keywords[name]
}

// MemberName derives a lower camel case member identifier.
func (p Policy) MemberName(raw string) Identifier {
	name := p.normalize(raw, true)
	return Identifier{Name: name, Escaped: p.keywords[name]}
}

// TypeName derives an upper camel case type identifier.
func (p Policy) TypeName(raw string) Identifier {
	name := upperFirst(p.normalize(raw, false))
	if alt, ok := p.typeAliases[name]; ok {
		name = alt
	}
	return Identifier{Name: name, Escaped: p.keywords[name]}
}

// Verbatim keeps raw as-is apart from invalid characters and a leading digit.
// The result is always escaped.
func (p Policy) Verbatim(raw string) Identifier {
	name := invalidChars.ReplaceAllString(raw, "_")
	if strings.Trim(name, "_") == "" {
		name = emptyName + name
	}
	if startsWithDigit(name) {
		name = "_" + name
	}
	return Identifier{Name: name, Escaped: true}
}

// emptyName stands in for values without a single identifier character.
const emptyName = "empty"

func (p Policy) normalize(raw string, lowerSingle bool) string {
	sanitized := invalidChars.ReplaceAllString(raw, "_")
	segments := strings.FieldsFunc(sanitized, func(r rune) bool { return r == '_' })

	var name string
	switch len(segments) {
	case 0:
		name = emptyName
	case 1:
		word := segments[0]
		if lowerSingle {
			word = lowerLeading(word)
		}
		name = p.rewrite(word)
	default:
		var b strings.Builder
		for i, segment := range segments {
			word := p.rewrite(strings.ToLower(segment))
			if i > 0 {
				word = upperFirst(word)
			}
			b.WriteString(word)
		}
		name = b.String()
	}

	if startsWithDigit(name) {
		name = "_" + name
	}
	return name
}

func (p Policy) rewrite(word string) string {
	if alt, ok := p.reserved[strings.ToLower(word)]; ok {
		return alt
	}
	return word
}

// lowerLeading lowers an all-caps acronym entirely and otherwise only the
// first letter: "URL" -> "url", "AppStore" -> "appStore".
func lowerLeading(word string) string {
	if word == "" || !unicode.IsUpper(rune(word[0])) {
		return word
	}
	if strings.ToUpper(word) == word {
		return strings.ToLower(word)
	}
	return strings.ToLower(word[:1]) + word[1:]
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// LowerFirst lower-cases the first character only.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// UpperFirst upper-cases the first character only.
func UpperFirst(s string) string {
	return upperFirst(s)
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
