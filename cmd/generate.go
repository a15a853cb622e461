package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/barisgit/apigen/internal/watch"
)

// GenerateCmd is the root command: apigen <spec> -o <dir>.
func GenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apigen <spec>",
		Short: "Generate Swift API types from an OpenAPI document",
		Long:  "Resolve the schemas and endpoints of an OpenAPI document and generate Swift declarations for them",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}

	cmd.PersistentFlags().String("config", "apigen.yaml", "Path to the configuration file")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("quiet", false, "Suppress output (for use in build scripts)")

	cmd.Flags().StringP("output", "o", "", "Output directory")
	cmd.Flags().Bool("watch", false, "Regenerate when the OpenAPI file changes")
	cmd.Flags().Bool("skip-endpoints", false, "Only generate schema files")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	specPath := args[0]
	output, _ := cmd.Flags().GetString("output")
	watchMode, _ := cmd.Flags().GetBool("watch")

	if err := checkSpec(specPath); err != nil {
		return err
	}
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	if err := generate(p, specPath, output); err != nil {
		if !watchMode {
			return err
		}
		p.fail(err)
	}
	if !watchMode {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p.info(fmt.Sprintf("👀 Watching %s for changes", specPath))
	w := watch.New(specPath, watch.Options{
		Debounce: p.cfg.Watch.Debounce(),
		OnError:  p.fail,
	})
	return w.Run(ctx, func(path string) {
		p.info(fmt.Sprintf("🔄 %s changed", path))
		if err := generate(p, specPath, output); err != nil {
			p.fail(err)
		}
	})
}

func generate(p *pipeline, specPath, output string) error {
	start := time.Now()
	p.info("🔧 Generating API types...")

	snap, err := p.run(specPath)
	if err != nil {
		return err
	}
	if err := p.write(output, specPath, snap.Result); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if !p.quiet {
		log(fmt.Sprintf("✅ Generated %d files in %s (%v)", len(snap.Result.Files), output, time.Since(start).Round(time.Millisecond)), "\x1b[32m")
		log(fmt.Sprintf("Resolved %d schemas and %d paths", len(snap.Document.Schemas), len(snap.Document.Endpoints)), "\x1b[36m")
	}
	return nil
}

func (p *pipeline) fail(err error) {
	log(fmt.Sprintf("❌ %v", err), "\x1b[31m")
}

func log(message, color string) {
	timestamp := time.Now().Format("15:04:05")
	if color == "" {
		color = "\x1b[0m"
	}
	fmt.Printf("%s[%s] %s\x1b[0m\n", color, timestamp, message)
}
