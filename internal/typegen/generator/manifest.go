package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ManifestName is the file that marks a directory as generator output.
const ManifestName = ".apigen-manifest.json"

// Version is recorded in every manifest.
var Version = "0.1.0"

// Manifest lists the files of one generation run.
type Manifest struct {
	Generator string   `json:"generator"`
	Version   string   `json:"version"`
	Source    string   `json:"source,omitempty"`
	Files     []string `json:"files"`
}

// Manifest describes the result as generated from source.
func (r *Result) Manifest(source string) Manifest {
	return Manifest{Generator: "apigen", Version: Version, Source: source, Files: r.Paths()}
}

// Output returns the files to write, including the manifest.
func (r *Result) Output(source string) (map[string]string, error) {
	data, err := json.MarshalIndent(r.Manifest(source), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	out := make(map[string]string, len(r.Files)+1)
	for p, content := range r.Files {
		out[p] = content
	}
	out[ManifestName] = string(data) + "\n"
	return out, nil
}

// ReadManifest reads the manifest in dir. It returns os.ErrNotExist, wrapped,
// when dir is not generator output.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
