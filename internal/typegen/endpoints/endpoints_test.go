package endpoints

import (
	"testing"

	"github.com/barisgit/apigen/internal/typegen/decl"
	"github.com/barisgit/apigen/internal/typegen/naming"
	"github.com/barisgit/apigen/internal/typegen/resolver"
	"github.com/barisgit/apigen/internal/typegen/schema"
	"github.com/barisgit/apigen/internal/typegen/synth"
)

func str() *schema.Node {
	return &schema.Node{Type: schema.TypeSet{"string"}}
}

func queryParam(name string, n *schema.Node) schema.Parameter {
	return schema.Parameter{Name: name, In: schema.InQuery, Schema: n}
}

func testDocument() *schema.Document {
	widget := &schema.Node{Type: schema.TypeSet{"object"}, Properties: map[string]*schema.Node{"id": str()}}
	return &schema.Document{
		Schemas: map[string]*schema.Node{"Widget": widget},
		Endpoints: map[string]*schema.Endpoint{
			"/v1/apps": {
				Path: "/v1/apps",
				Get: &schema.Operation{
					Method: "GET",
					Parameters: []schema.Parameter{
						queryParam("sort", &schema.Node{Type: schema.TypeSet{"array"}, Items: &schema.Node{Type: schema.TypeSet{"string"}, Enum: []any{"name", "-name"}}}),
						queryParam("filter[id]", str()),
						queryParam("filter[app.name]", str()),
						queryParam("limit", &schema.Node{Type: schema.TypeSet{"integer"}}),
					},
					Responses: map[string]*schema.Node{"200": {Ref: "#/components/schemas/Widget"}},
				},
				Post: &schema.Operation{
					Method:      "POST",
					RequestBody: &schema.Node{Ref: "#/components/schemas/Widget"},
					Responses:   map[string]*schema.Node{"201": {Ref: "#/components/schemas/Widget"}},
				},
			},
			"/v1/apps/{id}": {
				Path: "/v1/apps/{id}",
				Delete: &schema.Operation{
					Method:     "DELETE",
					Parameters: []schema.Parameter{{Name: "id", In: schema.InPath, Required: true, Schema: str()}},
				},
				Patch: &schema.Operation{Method: "PATCH"},
			},
			"/v1/empty": {Path: "/v1/empty"},
		},
	}
}

func newBuilder(t *testing.T, doc *schema.Document) *Builder {
	t.Helper()
	refs, err := resolver.NewReferences(doc.Schemas, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return NewBuilder(synth.New(refs, naming.DefaultPolicy()))
}

func TestPathComponents(t *testing.T) {
	tests := map[string][]string{
		"/v1/apps":                    {"V1", "Apps"},
		"/v1/apps/{id}":               {"V1", "Apps", "ById"},
		"/v1/apps/{id}/relationships": {"V1", "Apps", "ById", "Relationships"},
		"//v1//builds/":               {"V1", "Builds"},
	}
	for path, want := range tests {
		got := PathComponents(path, naming.DefaultPolicy())
		if len(got) != len(want) {
			t.Errorf("%s: Expected %v, got %v", path, want, got)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: Expected %v, got %v", path, want, got)
				break
			}
		}
	}
}

func TestBuildNamespace(t *testing.T) {
	tree := BuildNamespace(testDocument(), naming.DefaultPolicy())
	decls := tree.Decls()

	if len(decls) != 1 || decls[0].DeclName().Name != "V1" {
		t.Fatalf("Expected a single V1 namespace, got %v", decls)
	}
	v1 := decls[0].(*decl.TaggedUnion)
	if v1.Style != decl.Namespace || len(v1.Nested) != 1 {
		t.Fatalf("Expected V1 to hold only Apps, got %+v", v1)
	}
	apps := v1.Nested[0].(*decl.TaggedUnion)
	if apps.Name.Name != "Apps" || len(apps.Nested) != 1 || apps.Nested[0].DeclName().Name != "ById" {
		t.Errorf("Unexpected Apps namespace: %+v", apps)
	}
}

func TestBuildSkipsPathsWithoutMethods(t *testing.T) {
	files, err := newBuilder(t, testDocument()).Build(testDocument())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(files))
	}
	if files[0].Path != "/v1/apps" || files[1].Path != "/v1/apps/{id}" {
		t.Errorf("Unexpected paths: %s, %s", files[0].Path, files[1].Path)
	}
}

func TestMethodOrder(t *testing.T) {
	doc := testDocument()
	file, err := newBuilder(t, doc).Endpoint("/v1/apps/{id}", doc.Endpoints["/v1/apps/{id}"])
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	ext := file.Decls[0].(*decl.Extension)
	if ext.DeclName().Name != "V1.Apps.ById" {
		t.Errorf("Expected 'V1.Apps.ById', got '%s'", ext.DeclName().Name)
	}
	if len(ext.Nested) != 2 || ext.Nested[0].DeclName().Name != "PATCH" || ext.Nested[1].DeclName().Name != "DELETE" {
		t.Errorf("Expected PATCH then DELETE, got %v", ext.Nested)
	}

	del := ext.Nested[1].(*decl.Record)
	if len(del.Members) != 1 || del.Members[0].Name.Name != "id" || del.Members[0].Type.Optional {
		t.Errorf("Expected a required id member, got %+v", del.Members)
	}
	if len(del.Request.PathParams) != 1 || del.Request.PathParams[0].Placeholder != "id" {
		t.Errorf("Unexpected path params: %+v", del.Request.PathParams)
	}

	// PATCH declares no path parameter; the placeholder still binds a string.
	patch := ext.Nested[0].(*decl.Record)
	if len(patch.Members) != 1 || patch.Members[0].Type.Builtin != decl.String {
		t.Errorf("Expected an implicit String id, got %+v", patch.Members)
	}
	if patch.Request.Body {
		t.Error("Expected PATCH without a request body to have no body")
	}
}

func TestGETParameters(t *testing.T) {
	doc := testDocument()
	file, err := newBuilder(t, doc).Endpoint("/v1/apps", doc.Endpoints["/v1/apps"])
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	get := file.Decls[0].(*decl.Extension).Nested[0].(*decl.Record)

	if get.Request == nil || get.Request.Method != "GET" || !get.Request.Parameters {
		t.Fatalf("Unexpected request binding: %+v", get.Request)
	}
	if len(get.Members) != 1 || get.Members[0].Name.Name != "parameters" || !get.Members[0].Default {
		t.Fatalf("Expected a default parameters member, got %+v", get.Members)
	}
	if got := get.Members[0].Type.Key(); got != "V1.Apps.GET.Parameters" {
		t.Errorf("Expected 'V1.Apps.GET.Parameters', got '%s'", got)
	}

	var params *decl.Record
	var response *decl.Alias
	for _, d := range get.Nested {
		switch d := d.(type) {
		case *decl.Record:
			params = d
		case *decl.Alias:
			response = d
		}
	}
	if response == nil || response.Target.Key() != "Widget" {
		t.Errorf("Expected Response alias to Widget, got %+v", response)
	}
	if params == nil {
		t.Fatal("Expected a Parameters record")
	}

	wantItems := []decl.QueryItem{
		{Member: naming.Identifier{Name: "filter"}, Key: "filter", Nested: true},
		{Member: naming.Identifier{Name: "limit"}, Key: "limit"},
		{Member: naming.Identifier{Name: "sort"}, Key: "sort", List: true},
	}
	if params.Query == nil || len(params.Query.Items) != len(wantItems) {
		t.Fatalf("Expected %d query items, got %+v", len(wantItems), params.Query)
	}
	for i, want := range wantItems {
		if params.Query.Items[i] != want {
			t.Errorf("Item %d: Expected %+v, got %+v", i, want, params.Query.Items[i])
		}
	}

	var filter *decl.Record
	for _, d := range params.Nested {
		if r, ok := d.(*decl.Record); ok && r.Name.Name == "Filter" {
			filter = r
		}
	}
	if filter == nil {
		t.Fatal("Expected a nested Filter record")
	}
	if len(filter.Members) != 2 || filter.Members[0].Name.Name != "appName" || filter.Members[0].Key != "filter[app.name]" {
		t.Errorf("Unexpected filter members: %+v", filter.Members)
	}
	if !filter.Members[1].Type.Optional {
		t.Error("Expected filter members to be optional")
	}
}

func TestPOSTBody(t *testing.T) {
	doc := testDocument()
	file, err := newBuilder(t, doc).Endpoint("/v1/apps", doc.Endpoints["/v1/apps"])
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	post := file.Decls[0].(*decl.Extension).Nested[1].(*decl.Record)

	if post.Name.Name != "POST" || !post.Request.Body || post.Request.Parameters {
		t.Errorf("Unexpected POST record: %+v", post.Request)
	}
	if len(post.Members) != 1 || post.Members[0].Key != "body" || post.Members[0].Type.Key() != "Widget" {
		t.Errorf("Unexpected POST members: %+v", post.Members)
	}
}

func TestMalformedQueryKeyFails(t *testing.T) {
	doc := testDocument()
	doc.Endpoints["/v1/apps"].Get.Parameters = append(doc.Endpoints["/v1/apps"].Get.Parameters, queryParam("fields[", str()))

	if _, err := newBuilder(t, doc).Build(doc); err == nil {
		t.Error("Expected an error for a malformed key")
	}
}
