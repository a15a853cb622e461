package generator

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/barisgit/apigen/internal/typegen/decl"
	"github.com/barisgit/apigen/internal/typegen/endpoints"
	"github.com/barisgit/apigen/internal/typegen/naming"
	"github.com/barisgit/apigen/internal/typegen/resolver"
	"github.com/barisgit/apigen/internal/typegen/schema"
	"github.com/barisgit/apigen/internal/typegen/synth"
)

// Renderer turns declarations into source files for one target language.
type Renderer interface {
	Policy() naming.Policy
	SchemaPath(d decl.Decl) string
	NamespacePath() string
	EndpointPath(components []string) string
	RenderFile(decls []decl.Decl) (string, error)
}

// Options configures a generation run.
type Options struct {
	SchemasDir    string
	EndpointsDir  string
	SkipEndpoints bool
	// CacheSize bounds the reference cache; zero disables it.
	CacheSize int
	// Logf receives progress messages when set.
	Logf func(format string, args ...any)
}

// Result maps output paths, relative to the output directory, to file
// contents.
type Result struct {
	Files map[string]string
}

// Paths returns the output paths in sorted order.
func (r *Result) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for p := range r.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (r *Result) add(p, content string) error {
	if _, exists := r.Files[p]; exists {
		return fmt.Errorf("duplicate output path '%s'", p)
	}
	r.Files[p] = content
	return nil
}

// Generator drives synthesis and rendering for a whole document.
type Generator struct {
	renderer Renderer
	opts     Options
}

// New creates a generator.
func New(renderer Renderer, opts Options) *Generator {
	if opts.SchemasDir == "" {
		opts.SchemasDir = "Schemas"
	}
	if opts.EndpointsDir == "" {
		opts.EndpointsDir = "Endpoints"
	}
	return &Generator{renderer: renderer, opts: opts}
}

func (g *Generator) logf(format string, args ...any) {
	if g.opts.Logf != nil {
		g.opts.Logf(format, args...)
	}
}

type schemaFile struct {
	path    string
	content string
	err     error
}

// Generate synthesizes and renders every file of doc in memory. It fails as
// a whole: on error no partial result is returned.
func (g *Generator) Generate(doc *schema.Document) (*Result, error) {
	refs, err := resolver.NewReferences(doc.Schemas, g.opts.CacheSize)
	if err != nil {
		return nil, err
	}
	s := synth.New(refs, g.renderer.Policy())
	result := &Result{Files: make(map[string]string)}

	names := doc.SchemaNames()
	files := make([]schemaFile, len(names))

	var wg sync.WaitGroup
	errorChan := make(chan int, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			files[i] = g.renderSchema(s, name)
			if files[i].err != nil {
				errorChan <- i
			}
		}(i, name)
	}
	wg.Wait()
	close(errorChan)

	var failed []int
	for i := range errorChan {
		failed = append(failed, i)
	}
	if len(failed) > 0 {
		sort.Ints(failed)
		errs := make([]error, 0, len(failed))
		for _, i := range failed {
			errs = append(errs, files[i].err)
		}
		return nil, errors.Join(errs...)
	}

	for _, f := range files {
		if err := result.add(f.path, f.content); err != nil {
			return nil, err
		}
	}
	g.logf("Rendered %d schemas", len(names))

	if g.opts.SkipEndpoints {
		return result, nil
	}
	if err := g.generateEndpoints(s, doc, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *Generator) renderSchema(s *synth.Synthesizer, name string) schemaFile {
	decls, err := s.Schema(name)
	if err != nil {
		return schemaFile{err: err}
	}
	content, err := g.renderer.RenderFile(decls)
	if err != nil {
		return schemaFile{err: fmt.Errorf("rendering schema %s: %w", name, err)}
	}
	return schemaFile{
		path:    path.Join(g.opts.SchemasDir, g.renderer.SchemaPath(decls[0])),
		content: content,
	}
}

func (g *Generator) generateEndpoints(s *synth.Synthesizer, doc *schema.Document, result *Result) error {
	namespace := endpoints.BuildNamespace(doc, g.renderer.Policy()).Decls()
	if len(namespace) == 0 {
		return nil
	}
	content, err := g.renderer.RenderFile(namespace)
	if err != nil {
		return fmt.Errorf("rendering namespace: %w", err)
	}
	if err := result.add(path.Join(g.opts.EndpointsDir, g.renderer.NamespacePath()), content); err != nil {
		return err
	}

	files, err := endpoints.NewBuilder(s).Build(doc)
	if err != nil {
		return err
	}
	for _, f := range files {
		content, err := g.renderer.RenderFile(f.Decls)
		if err != nil {
			return fmt.Errorf("rendering endpoint %s: %w", f.Path, err)
		}
		if err := result.add(path.Join(g.opts.EndpointsDir, g.renderer.EndpointPath(f.Components)), content); err != nil {
			return err
		}
	}
	g.logf("Rendered %d endpoints", len(files))
	return nil
}
