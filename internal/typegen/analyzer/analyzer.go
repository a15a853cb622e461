package analyzer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/barisgit/apigen/internal/typegen/resolver"
	"github.com/barisgit/apigen/internal/typegen/schema"
)

const (
	parameterPrefix   = "#/components/parameters/"
	requestBodyPrefix = "#/components/requestBodies/"
	responsePrefix    = "#/components/responses/"
)

// Format is the serialization of a document.
type Format int

const (
	JSON Format = iota
	YAML
)

// FormatOf picks the format from the file extension, falling back to
// sniffing the content.
func FormatOf(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".yaml", ".yml":
		return YAML
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return JSON
	}
	return YAML
}

// Options configures analysis.
type Options struct {
	Logf func(format string, args ...any)
}

// AnalyzeFile reads and decodes the document at path.
func AnalyzeFile(path string, opts Options) (*schema.Document, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Analyze(data, FormatOf(path, data))
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}

	if opts.Logf != nil {
		opts.Logf("Analyzed %s in %v: %d schemas, %d paths", path, time.Since(start), len(doc.Schemas), len(doc.Endpoints))
	}
	return doc, nil
}

// Analyze decodes a document.
func Analyze(data []byte, format Format) (*schema.Document, error) {
	if format == YAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return raw.document()
}

// yamlToJSON re-encodes YAML as JSON so both formats share one decoder.
// Non-string mapping keys, such as bare response codes, become strings.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	out, err := json.Marshal(normalize(v))
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML: %w", err)
	}
	return out, nil
}

func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i := range v {
			v[i] = normalize(v[i])
		}
		return v
	default:
		return v
	}
}

type rawDocument struct {
	Info struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	} `json:"info"`
	Paths      map[string]*rawPathItem `json:"paths"`
	Components struct {
		Schemas       map[string]*schema.Node  `json:"schemas"`
		Parameters    map[string]*rawParameter `json:"parameters"`
		RequestBodies map[string]*rawContent   `json:"requestBodies"`
		Responses     map[string]*rawContent   `json:"responses"`
	} `json:"components"`
}

type rawPathItem struct {
	Parameters []*rawParameter `json:"parameters"`
	Get        *rawOperation   `json:"get"`
	Post       *rawOperation   `json:"post"`
	Patch      *rawOperation   `json:"patch"`
	Delete     *rawOperation   `json:"delete"`
}

type rawParameter struct {
	Ref         string       `json:"$ref"`
	Name        string       `json:"name"`
	In          string       `json:"in"`
	Required    bool         `json:"required"`
	Deprecated  bool         `json:"deprecated"`
	Description string       `json:"description"`
	Schema      *schema.Node `json:"schema"`
}

type rawOperation struct {
	OperationID string                 `json:"operationId"`
	Summary     string                 `json:"summary"`
	Description string                 `json:"description"`
	Tags        []string               `json:"tags"`
	Deprecated  bool                   `json:"deprecated"`
	Parameters  []*rawParameter        `json:"parameters"`
	RequestBody *rawContent            `json:"requestBody"`
	Responses   map[string]*rawContent `json:"responses"`
}

// rawContent is a request body or a response.
type rawContent struct {
	Ref     string              `json:"$ref"`
	Content map[string]rawMedia `json:"content"`
}

type rawMedia struct {
	Schema *schema.Node `json:"schema"`
}

func (d *rawDocument) document() (*schema.Document, error) {
	doc := &schema.Document{
		Title:     d.Info.Title,
		Version:   d.Info.Version,
		Schemas:   d.Components.Schemas,
		Endpoints: make(map[string]*schema.Endpoint, len(d.Paths)),
	}
	if doc.Schemas == nil {
		doc.Schemas = make(map[string]*schema.Node)
	}

	for path, item := range d.Paths {
		if item == nil {
			continue
		}
		ep := &schema.Endpoint{Path: path}
		ops := []struct {
			method string
			raw    *rawOperation
			dst    **schema.Operation
		}{
			{"GET", item.Get, &ep.Get},
			{"POST", item.Post, &ep.Post},
			{"PATCH", item.Patch, &ep.Patch},
			{"DELETE", item.Delete, &ep.Delete},
		}
		for _, o := range ops {
			if o.raw == nil {
				continue
			}
			op, err := d.operation(o.method, item.Parameters, o.raw)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", o.method, path, err)
			}
			*o.dst = op
		}
		doc.Endpoints[path] = ep
	}
	return doc, nil
}

func (d *rawDocument) operation(method string, shared []*rawParameter, raw *rawOperation) (*schema.Operation, error) {
	op := &schema.Operation{
		Method:      method,
		ID:          raw.OperationID,
		Summary:     raw.Summary,
		Description: raw.Description,
		Tags:        raw.Tags,
		Deprecated:  raw.Deprecated,
		Responses:   make(map[string]*schema.Node),
	}

	params, err := d.parameters(shared, raw.Parameters)
	if err != nil {
		return nil, err
	}
	op.Parameters = params

	if raw.RequestBody != nil {
		body, err := d.content(raw.RequestBody, requestBodyPrefix, d.Components.RequestBodies)
		if err != nil {
			return nil, fmt.Errorf("request body: %w", err)
		}
		op.RequestBody = body
	}

	for code, resp := range raw.Responses {
		if resp == nil {
			continue
		}
		node, err := d.content(resp, responsePrefix, d.Components.Responses)
		if err != nil {
			return nil, fmt.Errorf("response %s: %w", code, err)
		}
		op.Responses[code] = node
	}
	return op, nil
}

// parameters merges path-level and operation-level parameters. Operation
// parameters replace path-level ones with the same name and location. Only
// path and query parameters are kept.
func (d *rawDocument) parameters(shared, own []*rawParameter) ([]schema.Parameter, error) {
	type key struct{ name, in string }
	var order []key
	byKey := make(map[key]schema.Parameter)

	for _, list := range [][]*rawParameter{shared, own} {
		for _, raw := range list {
			p, err := d.parameter(raw)
			if err != nil {
				return nil, err
			}
			if p.In != schema.InPath && p.In != schema.InQuery {
				continue
			}
			k := key{p.Name, string(p.In)}
			if _, ok := byKey[k]; !ok {
				order = append(order, k)
			}
			byKey[k] = p
		}
	}

	out := make([]schema.Parameter, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out, nil
}

func (d *rawDocument) parameter(raw *rawParameter) (schema.Parameter, error) {
	if raw == nil {
		return schema.Parameter{}, nil
	}
	if raw.Ref != "" {
		if !strings.HasPrefix(raw.Ref, parameterPrefix) {
			return schema.Parameter{}, &resolver.UnknownReferenceError{Ref: raw.Ref}
		}
		target, ok := d.Components.Parameters[strings.TrimPrefix(raw.Ref, parameterPrefix)]
		if !ok || target == nil || target.Ref != "" {
			return schema.Parameter{}, &resolver.UnknownReferenceError{Ref: raw.Ref}
		}
		raw = target
	}
	return schema.Parameter{
		Name:        raw.Name,
		In:          schema.Location(raw.In),
		Required:    raw.Required,
		Deprecated:  raw.Deprecated,
		Description: raw.Description,
		Schema:      raw.Schema,
	}, nil
}

// content returns the JSON schema of a body or response, following one
// component reference.
func (d *rawDocument) content(c *rawContent, prefix string, components map[string]*rawContent) (*schema.Node, error) {
	if c.Ref != "" {
		if !strings.HasPrefix(c.Ref, prefix) {
			return nil, &resolver.UnknownReferenceError{Ref: c.Ref}
		}
		target, ok := components[strings.TrimPrefix(c.Ref, prefix)]
		if !ok || target == nil || target.Ref != "" {
			return nil, &resolver.UnknownReferenceError{Ref: c.Ref}
		}
		c = target
	}
	return jsonSchema(c.Content), nil
}

// jsonSchema picks application/json, then any other JSON media type in
// sorted order.
func jsonSchema(content map[string]rawMedia) *schema.Node {
	if m, ok := content["application/json"]; ok {
		return m.Schema
	}
	types := make([]string, 0, len(content))
	for t := range content {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		if strings.Contains(t, "json") {
			return content[t].Schema
		}
	}
	return nil
}
