package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/barisgit/apigen/config"
	"github.com/barisgit/apigen/internal/preview"
	"github.com/barisgit/apigen/internal/typegen/analyzer"
	"github.com/barisgit/apigen/internal/typegen/generator"
	"github.com/barisgit/apigen/internal/typegen/resolver"
	"github.com/barisgit/apigen/internal/typegen/swift"
	"github.com/barisgit/apigen/internal/typegen/synth"
	"github.com/barisgit/apigen/internal/writer"
)

// pipeline carries what every command needs to turn a spec into files.
type pipeline struct {
	cfg   *config.ProjectConfig
	debug bool
	quiet bool
}

func newPipeline(cmd *cobra.Command) (*pipeline, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	quiet, _ := cmd.Flags().GetBool("quiet")
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath
	}

	options := config.DefaultLoadOptions()
	options.Path = configPath
	options.Quiet = quiet
	cfg, err := config.NewConfigManager(options).LoadConfig()
	if err != nil {
		return nil, err
	}

	if skip, _ := cmd.Flags().GetBool("skip-endpoints"); skip {
		cfg.SkipEndpoints = true
	}
	return &pipeline{cfg: cfg, debug: debug, quiet: quiet}, nil
}

func (p *pipeline) logf(format string, args ...any) {
	if p.debug && !p.quiet {
		log("🔍 "+fmt.Sprintf(format, args...), "\x1b[90m")
	}
}

func (p *pipeline) info(message string) {
	if !p.quiet {
		log(message, "\x1b[36m")
	}
}

func (p *pipeline) renderer() (*swift.Renderer, error) {
	return swift.New(swift.Options{
		AccessLevel: p.cfg.AccessLevel,
		Header:      p.cfg.Header,
	})
}

func checkSpec(specPath string) error {
	info, err := os.Stat(specPath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("missing OpenAPI spec file: %s", specPath)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", specPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("OpenAPI spec %s is a directory", specPath)
	}
	return nil
}

// run analyzes specPath and generates every file in memory.
func (p *pipeline) run(specPath string) (*preview.Snapshot, error) {
	doc, err := analyzer.AnalyzeFile(specPath, analyzer.Options{Logf: p.logf})
	if err != nil {
		return nil, err
	}

	r, err := p.renderer()
	if err != nil {
		return nil, err
	}
	result, err := generator.New(r, generator.Options{
		SchemasDir:    p.cfg.SchemasDir,
		EndpointsDir:  p.cfg.EndpointsDir,
		SkipEndpoints: p.cfg.SkipEndpoints,
		CacheSize:     p.cfg.Cache.Size,
		Logf:          p.logf,
	}).Generate(doc)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	refs, err := resolver.NewReferences(doc.Schemas, p.cfg.Cache.Size)
	if err != nil {
		return nil, err
	}
	return &preview.Snapshot{
		Document: doc,
		Result:   result,
		Synth:    synth.New(refs, r.Policy()),
		Built:    time.Now(),
	}, nil
}

// write replaces the output directory with result and its manifest.
func (p *pipeline) write(outputDir, specPath string, result *generator.Result) error {
	files, err := result.Output(filepath.Base(specPath))
	if err != nil {
		return err
	}

	w := writer.New(outputDir)
	if w.Owned() {
		p.logf("Replacing generated directory %s", outputDir)
	}
	if err := w.Mkdir(true); err != nil {
		return err
	}
	return w.WriteAll(files)
}
