package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/barisgit/apigen/internal/typegen/generator"
)

const specDocument = `{
  "openapi": "3.0.1",
  "info": {"title": "Widgets", "version": "1.0"},
  "paths": {
    "/v1/widgets": {
      "get": {
        "parameters": [{"name": "filter[id]", "in": "query", "schema": {"type": "string"}}],
        "responses": {"200": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Widget"}}}}}
      }
    }
  },
  "components": {
    "schemas": {
      "Widget": {"type": "object", "required": ["id"], "properties": {"id": {"type": "string"}}}
    }
  }
}`

func writeSpec(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.json")
	if err := os.WriteFile(path, []byte(specDocument), 0644); err != nil {
		t.Fatalf("Failed to write spec: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := GenerateCmd()
	root.AddCommand(InspectCmd())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--quiet", "--config", filepath.Join(t.TempDir(), "apigen.yaml")))
	err := root.Execute()
	return out.String(), err
}

func TestGenerateWritesFiles(t *testing.T) {
	spec := writeSpec(t)
	output := filepath.Join(t.TempDir(), "Generated")

	if _, err := execute(t, spec, "-o", output); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, rel := range []string{"Schemas/Widget.swift", "Endpoints/Namespace.swift", "Endpoints/V1/Widgets.swift", generator.ManifestName} {
		if _, err := os.Stat(filepath.Join(output, rel)); err != nil {
			t.Errorf("Expected %s to exist: %v", rel, err)
		}
	}
}

func TestGenerateRemovesStaleFiles(t *testing.T) {
	spec := writeSpec(t)
	output := filepath.Join(t.TempDir(), "Generated")

	if _, err := execute(t, spec, "-o", output); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	stale := filepath.Join(output, "Schemas", "Old.swift")
	if err := os.WriteFile(stale, []byte("// old"), 0644); err != nil {
		t.Fatalf("Failed to write stale file: %v", err)
	}

	if _, err := execute(t, spec, "-o", output, "--skip-endpoints"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("Expected the stale file to be removed")
	}
	if _, err := os.Stat(filepath.Join(output, "Endpoints")); !os.IsNotExist(err) {
		t.Error("Expected no endpoint files with --skip-endpoints")
	}
}

func TestGenerateMissingSpec(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")
	_, err := execute(t, missing, "-o", t.TempDir())
	if err == nil || err.Error() != "missing OpenAPI spec file: "+missing {
		t.Errorf("Expected a missing spec error, got %v", err)
	}
}

func TestGenerateRequiresOutput(t *testing.T) {
	if _, err := execute(t, writeSpec(t)); err == nil || !strings.Contains(err.Error(), "output") {
		t.Errorf("Expected a required flag error, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", writeSpec(t), "Widget")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, part := range []string{"schema: Widget", "kind: record", "name: id"} {
		if !strings.Contains(out, part) {
			t.Errorf("Expected output to contain '%s', got:\n%s", part, out)
		}
	}

	if _, err := execute(t, "inspect", writeSpec(t), "Missing"); err == nil || !strings.Contains(err.Error(), "unknown schema") {
		t.Errorf("Expected an unknown schema error, got %v", err)
	}
}
