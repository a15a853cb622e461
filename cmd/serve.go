package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/barisgit/apigen/internal/preview"
	"github.com/barisgit/apigen/internal/watch"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [spec]",
		Short: "Serve a preview of the generated files",
		Long:  "Generate in memory and serve the files, schema outlines and query encoding over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default from preview.addr)")
	cmd.Flags().Bool("watch", false, "Regenerate when the OpenAPI file changes")
	cmd.Flags().Bool("skip-endpoints", false, "Only generate schema files")
	cmd.Flags().String("openapi", "", "Write the preview API's OpenAPI document to this file and exit")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	watchMode, _ := cmd.Flags().GetBool("watch")

	if openapiPath, _ := cmd.Flags().GetString("openapi"); openapiPath != "" {
		if err := preview.NewServer().WriteOpenAPI(openapiPath); err != nil {
			return err
		}
		fmt.Printf("✅ Wrote preview OpenAPI document: %s\n", openapiPath)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("serve requires an OpenAPI spec file")
	}
	specPath := args[0]
	if err := checkSpec(specPath); err != nil {
		return err
	}
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = p.cfg.Preview.Addr
	}

	server := preview.NewServer()
	refresh := func() {
		snap, err := p.run(specPath)
		if err != nil {
			p.fail(err)
			server.Fail(err)
			return
		}
		server.Update(snap)
		p.info(fmt.Sprintf("✅ Generated %d files", len(snap.Result.Files)))
	}
	refresh()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchMode {
		w := watch.New(specPath, watch.Options{
			Debounce: p.cfg.Watch.Debounce(),
			OnError:  p.fail,
		})
		go func() {
			if err := w.Run(ctx, func(string) { refresh() }); err != nil {
				p.fail(err)
			}
		}()
	}

	p.info(fmt.Sprintf("🌐 Preview at http://%s (docs at /docs)", addr))
	return server.ListenAndServe(ctx, addr)
}
