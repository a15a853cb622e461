package preview

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/goccy/go-json"

	"github.com/barisgit/apigen/internal/typegen/generator"
	"github.com/barisgit/apigen/internal/typegen/resolver"
	"github.com/barisgit/apigen/internal/typegen/schema"
	"github.com/barisgit/apigen/internal/typegen/swift"
	"github.com/barisgit/apigen/internal/typegen/synth"
)

func testDocument() *schema.Document {
	str := &schema.Node{Type: schema.TypeSet{"string"}}
	return &schema.Document{
		Title:   "Widgets",
		Version: "1.0",
		Schemas: map[string]*schema.Node{
			"Widget": {Type: schema.TypeSet{"object"}, Properties: map[string]*schema.Node{
				"id":   str,
				"kind": {Type: schema.TypeSet{"string"}, Enum: []any{"small", "large"}},
			}, Required: []string{"id"}},
		},
		Endpoints: map[string]*schema.Endpoint{
			"/v1/widgets": {Path: "/v1/widgets", Get: &schema.Operation{
				Method: "GET",
				Parameters: []schema.Parameter{
					{Name: "filter[id]", In: schema.InQuery, Schema: str},
					{Name: "sort", In: schema.InQuery, Schema: &schema.Node{Type: schema.TypeSet{"array"}, Items: str}},
				},
			}},
		},
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	doc := testDocument()

	r, err := swift.New(swift.Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	result, err := generator.New(r, generator.Options{}).Generate(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	refs, err := resolver.NewReferences(doc.Schemas, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	s := NewServer()
	s.Update(&Snapshot{
		Document: doc,
		Result:   result,
		Synth:    synth.New(refs, r.Policy()),
		Built:    time.Now(),
	})
	return s
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("Failed to decode response: %v\n%s", err, body)
	}
}

func TestListFiles(t *testing.T) {
	_, api := humatest.New(t)
	Register(api, testServer(t))

	resp := api.Get("/files")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var body struct {
		Files []string `json:"files"`
	}
	decode(t, resp.Body.Bytes(), &body)
	found := false
	for _, f := range body.Files {
		if f == "Schemas/Widget.swift" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected Schemas/Widget.swift, got %v", body.Files)
	}
}

func TestGetFile(t *testing.T) {
	_, api := humatest.New(t)
	Register(api, testServer(t))

	resp := api.Get("/file?path=Schemas/Widget.swift")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var body struct {
		Content string `json:"content"`
	}
	decode(t, resp.Body.Bytes(), &body)
	if !strings.Contains(body.Content, "struct Widget") {
		t.Errorf("Expected the Widget declaration, got:\n%s", body.Content)
	}

	if resp := api.Get("/file?path=Schemas/Missing.swift"); resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestGetSchemaOutline(t *testing.T) {
	_, api := humatest.New(t)
	Register(api, testServer(t))

	resp := api.Get("/schemas/Widget")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var body struct {
		Decls []struct {
			Kind    string `json:"kind"`
			Name    string `json:"name"`
			Members []struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"members"`
		} `json:"decls"`
	}
	decode(t, resp.Body.Bytes(), &body)
	if len(body.Decls) != 1 || body.Decls[0].Kind != "record" || body.Decls[0].Name != "Widget" {
		t.Fatalf("Unexpected outline: %+v", body.Decls)
	}
	if len(body.Decls[0].Members) != 2 || body.Decls[0].Members[0].Name != "id" {
		t.Errorf("Unexpected members: %+v", body.Decls[0].Members)
	}

	if resp := api.Get("/schemas/Missing"); resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestEncodeQuery(t *testing.T) {
	_, api := humatest.New(t)
	Register(api, testServer(t))

	resp := api.Post("/query", map[string]any{
		"path": "/v1/widgets",
		"values": map[string][]string{
			"filter[id]": {"42"},
			"sort":       {"name", "-created"},
		},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Query string   `json:"query"`
		Items []string `json:"items"`
	}
	decode(t, resp.Body.Bytes(), &body)
	if body.Query != "filter%5Bid%5D=42&sort=name%2C-created" {
		t.Errorf("Unexpected query: %s", body.Query)
	}
	if len(body.Items) != 2 {
		t.Errorf("Expected 2 items, got %v", body.Items)
	}

	unknown := api.Post("/query", map[string]any{
		"path":   "/v1/widgets",
		"values": map[string][]string{"page[size]": {"1"}},
	})
	if unknown.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", unknown.Code)
	}

	if resp := api.Post("/query", map[string]any{"path": "/v2/none", "values": map[string][]string{}}); resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestServiceUnavailableWithoutSnapshot(t *testing.T) {
	_, api := humatest.New(t)
	s := NewServer()
	s.Fail(errors.New("boom"))
	Register(api, s)

	if resp := api.Get("/files"); resp.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.Code)
	}

	resp := api.Get("/status")
	var body struct {
		Error string `json:"error"`
	}
	decode(t, resp.Body.Bytes(), &body)
	if body.Error != "boom" {
		t.Errorf("Expected error 'boom', got '%s'", body.Error)
	}
}

func TestHealth(t *testing.T) {
	_, api := humatest.New(t)
	s := NewServer()
	Register(api, s)

	status := func() string {
		resp := api.Get("/health")
		if resp.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.Code)
		}
		var body struct {
			Status string `json:"status"`
		}
		decode(t, resp.Body.Bytes(), &body)
		return body.Status
	}

	if got := status(); got != "starting" {
		t.Errorf("Expected 'starting', got '%s'", got)
	}
	s.Update(testServer(t).snapshot)
	if got := status(); got != "ok" {
		t.Errorf("Expected 'ok', got '%s'", got)
	}
	s.Fail(errors.New("boom"))
	if got := status(); got != "degraded" {
		t.Errorf("Expected 'degraded', got '%s'", got)
	}
}
