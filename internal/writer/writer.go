package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/barisgit/apigen/internal/typegen/generator"
)

// Writer writes generated files below an output directory.
type Writer struct {
	Dir string
}

// New creates a writer for dir.
func New(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Mkdir creates the output directory. With force, an existing directory that
// carries the generator manifest is removed first so stale files disappear.
// Directories without the manifest are never removed.
func (w *Writer) Mkdir(force bool) error {
	info, err := os.Stat(w.Dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to inspect %s: %w", w.Dir, err)
	case !info.IsDir():
		return fmt.Errorf("output path %s is not a directory", w.Dir)
	case force && w.Owned():
		if err := os.RemoveAll(w.Dir); err != nil {
			return fmt.Errorf("failed to remove stale output %s: %w", w.Dir, err)
		}
	}

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", w.Dir, err)
	}
	return nil
}

// Owned reports whether the output directory was produced by the generator.
func (w *Writer) Owned() bool {
	_, err := generator.ReadManifest(w.Dir)
	return err == nil
}

// Write atomically writes content to the relative path rel, creating parent
// directories as needed.
func (w *Writer) Write(rel, content string) error {
	target, err := w.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", rel, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

// WriteAll writes files in sorted path order.
func (w *Writer) WriteAll(files map[string]string) error {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := w.Write(p, files[p]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes the output directory", rel)
	}
	return filepath.Join(w.Dir, clean), nil
}
