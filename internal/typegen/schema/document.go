package schema

import "sort"

// Location is where a parameter travels in a request.
type Location string

const (
	InPath  Location = "path"
	InQuery Location = "query"
)

// Parameter is an operation parameter. Name is the raw key, which may use
// bracket notation such as "filter[id]".
type Parameter struct {
	Name        string
	In          Location
	Required    bool
	Deprecated  bool
	Description string
	Schema      *Node
}

// Operation is one HTTP method on a path.
type Operation struct {
	Method      string
	ID          string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  []Parameter
	RequestBody *Node
	Responses   map[string]*Node
}

// SuccessResponse returns the schema of the first 2xx response that has one.
func (o *Operation) SuccessResponse() (string, *Node) {
	codes := make([]string, 0, len(o.Responses))
	for code := range o.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if len(code) == 3 && code[0] == '2' && o.Responses[code] != nil {
			return code, o.Responses[code]
		}
	}
	return "", nil
}

// QueryParameters returns the parameters sent in the query string.
func (o *Operation) QueryParameters() []Parameter {
	return o.parametersIn(InQuery)
}

// PathParameters returns the parameters substituted into the path template.
func (o *Operation) PathParameters() []Parameter {
	return o.parametersIn(InPath)
}

func (o *Operation) parametersIn(loc Location) []Parameter {
	var out []Parameter
	for _, p := range o.Parameters {
		if p.In == loc {
			out = append(out, p)
		}
	}
	return out
}

// Endpoint is a path template with its operations.
type Endpoint struct {
	Path   string
	Get    *Operation
	Post   *Operation
	Patch  *Operation
	Delete *Operation
}

// HasMethod reports whether any supported operation is present.
func (e *Endpoint) HasMethod() bool {
	return e.Get != nil || e.Post != nil || e.Patch != nil || e.Delete != nil
}

// Operations returns the present operations in GET, POST, PATCH, DELETE order.
func (e *Endpoint) Operations() []*Operation {
	var ops []*Operation
	for _, op := range []*Operation{e.Get, e.Post, e.Patch, e.Delete} {
		if op != nil {
			ops = append(ops, op)
		}
	}
	return ops
}

// Document is a decoded interface description.
type Document struct {
	Title     string
	Version   string
	Schemas   map[string]*Node
	Endpoints map[string]*Endpoint
}

// SchemaNames returns the component schema names in sorted order.
func (d *Document) SchemaNames() []string {
	names := make([]string, 0, len(d.Schemas))
	for name := range d.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the endpoint paths in sorted order.
func (d *Document) Paths() []string {
	paths := make([]string, 0, len(d.Endpoints))
	for path := range d.Endpoints {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
