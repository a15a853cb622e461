package analyzer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/barisgit/apigen/internal/typegen/resolver"
	"github.com/barisgit/apigen/internal/typegen/schema"
)

const jsonDocument = `{
  "openapi": "3.0.1",
  "info": {"title": "Widgets", "version": "1.2"},
  "paths": {
    "/v1/widgets/{id}": {
      "parameters": [
        {"name": "id", "in": "path", "required": true, "description": "shared", "schema": {"type": "string"}},
        {"name": "limit", "in": "query", "schema": {"type": "integer"}}
      ],
      "get": {
        "operationId": "widgets_get",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "description": "own", "schema": {"type": "string"}},
          {"name": "X-Trace", "in": "header", "schema": {"type": "string"}},
          {"$ref": "#/components/parameters/Fields"}
        ],
        "responses": {
          "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Widget"}}}},
          "404": {"$ref": "#/components/responses/NotFound"}
        }
      },
      "patch": {
        "requestBody": {"content": {"application/vnd.api+json": {"schema": {"$ref": "#/components/schemas/Widget"}}}},
        "responses": {"204": {"description": "empty"}}
      },
      "put": {"responses": {}}
    }
  },
  "components": {
    "schemas": {
      "Widget": {"type": ["object", "null"], "properties": {"id": {"type": "string"}}, "additionalProperties": false}
    },
    "parameters": {
      "Fields": {"name": "fields[widgets]", "in": "query", "schema": {"type": "array", "items": {"type": "string"}}}
    },
    "responses": {
      "NotFound": {"content": {"application/json": {"schema": {"type": "object"}}}}
    }
  }
}`

const yamlDocument = `
openapi: 3.0.1
info:
  title: Widgets
  version: "1.2"
paths:
  /v1/widgets:
    post:
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Widget'
      responses:
        201:
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Widget'
components:
  schemas:
    Widget:
      type: object
      required: [id]
      properties:
        id:
          type: string
        tags:
          type: array
          items:
            type: string
            enum: [a, b]
`

func TestAnalyzeJSON(t *testing.T) {
	doc, err := Analyze([]byte(jsonDocument), JSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if doc.Title != "Widgets" || doc.Version != "1.2" {
		t.Errorf("Unexpected info: %s %s", doc.Title, doc.Version)
	}
	widget := doc.Schemas["Widget"]
	if widget == nil || !widget.Has("object") || !widget.IsNullable() {
		t.Errorf("Unexpected Widget schema: %+v", widget)
	}

	ep := doc.Endpoints["/v1/widgets/{id}"]
	if ep == nil || ep.Get == nil || ep.Patch == nil || ep.Post != nil {
		t.Fatalf("Unexpected endpoint: %+v", ep)
	}

	get := ep.Get
	if get.ID != "widgets_get" || get.Method != "GET" {
		t.Errorf("Unexpected operation: %+v", get)
	}
	if len(get.Parameters) != 3 {
		t.Fatalf("Expected 3 parameters, got %+v", get.Parameters)
	}
	if get.Parameters[0].Name != "id" || get.Parameters[0].Description != "own" {
		t.Errorf("Expected the operation-level id parameter, got %+v", get.Parameters[0])
	}
	if get.Parameters[2].Name != "fields[widgets]" || get.Parameters[2].In != schema.InQuery {
		t.Errorf("Expected the referenced fields parameter, got %+v", get.Parameters[2])
	}
	for _, p := range get.Parameters {
		if p.Name == "X-Trace" {
			t.Error("Expected header parameters to be dropped")
		}
	}

	code, resp := get.SuccessResponse()
	if code != "200" || resp == nil || resp.Ref != "#/components/schemas/Widget" {
		t.Errorf("Unexpected success response %s: %+v", code, resp)
	}
	if get.Responses["404"] == nil || !get.Responses["404"].Has("object") {
		t.Errorf("Expected the referenced 404 response, got %+v", get.Responses["404"])
	}

	if ep.Patch.RequestBody == nil || ep.Patch.RequestBody.Ref != "#/components/schemas/Widget" {
		t.Errorf("Expected the vnd.api+json body, got %+v", ep.Patch.RequestBody)
	}
	if _, resp := ep.Patch.SuccessResponse(); resp != nil {
		t.Errorf("Expected no success schema for 204, got %+v", resp)
	}
}

func TestAnalyzeYAML(t *testing.T) {
	doc, err := Analyze([]byte(yamlDocument), YAML)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	post := doc.Endpoints["/v1/widgets"].Post
	if post == nil {
		t.Fatal("Expected a POST operation")
	}
	if code, resp := post.SuccessResponse(); code != "201" || resp == nil {
		t.Errorf("Expected the 201 response, got %s", code)
	}

	tags := doc.Schemas["Widget"].Properties["tags"]
	if tags == nil || tags.Items == nil || len(tags.Items.Enum) != 2 {
		t.Errorf("Unexpected tags schema: %+v", tags)
	}
	if len(doc.Schemas["Widget"].Required) != 1 {
		t.Errorf("Expected one required property, got %v", doc.Schemas["Widget"].Required)
	}
}

func TestUnknownParameterReference(t *testing.T) {
	doc := `{"paths": {"/a": {"get": {"parameters": [{"$ref": "#/components/parameters/Missing"}], "responses": {}}}}}`
	_, err := Analyze([]byte(doc), JSON)

	var unknown *resolver.UnknownReferenceError
	if !errors.As(err, &unknown) || unknown.Ref != "#/components/parameters/Missing" {
		t.Errorf("Expected an unknown reference error, got %v", err)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		data string
		want Format
	}{
		{"api.json", "", JSON},
		{"api.YAML", "", YAML},
		{"api.yml", "{}", YAML},
		{"api", "  {\"openapi\": \"3.0.0\"}", JSON},
		{"api", "openapi: 3.0.0", YAML},
	}
	for _, tt := range tests {
		if got := FormatOf(tt.path, []byte(tt.data)); got != tt.want {
			t.Errorf("FormatOf(%s): Expected %d, got %d", tt.path, tt.want, got)
		}
	}
}

func TestAnalyzeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(path, []byte(yamlDocument), 0644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	var logged []string
	doc, err := AnalyzeFile(path, Options{Logf: func(format string, args ...any) { logged = append(logged, format) }})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(doc.Schemas) != 1 || len(logged) != 1 {
		t.Errorf("Expected 1 schema and 1 log line, got %d and %d", len(doc.Schemas), len(logged))
	}

	if _, err := AnalyzeFile(filepath.Join(t.TempDir(), "missing.json"), Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}
