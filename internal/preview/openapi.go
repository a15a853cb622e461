package preview

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// API returns the preview API without serving it.
func (s *Server) API() huma.API {
	return s.newAPI(http.NewServeMux())
}

// OpenAPI returns the OpenAPI document describing the preview API, as YAML
// when yaml is set and JSON otherwise.
func (s *Server) OpenAPI(yaml bool) ([]byte, error) {
	if yaml {
		return s.API().OpenAPI().YAML()
	}
	return s.API().OpenAPI().MarshalJSON()
}

// WriteOpenAPI writes the OpenAPI document of the preview API to path. The
// format follows the extension.
func (s *Server) WriteOpenAPI(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	spec, err := s.OpenAPI(ext == ".yaml" || ext == ".yml")
	if err != nil {
		return fmt.Errorf("failed to generate OpenAPI document: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, spec, 0644); err != nil {
		return fmt.Errorf("failed to save OpenAPI document to %s: %w", path, err)
	}
	return nil
}

// OperationCount returns the number of operations in api.
func OperationCount(api huma.API) int {
	doc := api.OpenAPI()
	if doc == nil {
		return 0
	}

	count := 0
	for _, item := range doc.Paths {
		if item == nil {
			continue
		}
		for _, op := range []*huma.Operation{item.Get, item.Post, item.Put, item.Patch, item.Delete, item.Head, item.Options} {
			if op != nil {
				count++
			}
		}
	}
	return count
}
