package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/barisgit/apigen/internal/typegen/decl"
)

func InspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <spec> [schema...]",
		Short: "Print the declarations synthesized for schemas",
		Long:  "Print a YAML outline of the declaration trees of the named schemas, or of every schema",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInspect,
	}
	return cmd
}

type inspected struct {
	Schema string         `yaml:"schema"`
	Decls  []decl.Outline `yaml:"decls"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	specPath := args[0]
	if err := checkSpec(specPath); err != nil {
		return err
	}
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	snap, err := p.run(specPath)
	if err != nil {
		return err
	}

	names := args[1:]
	if len(names) == 0 {
		names = snap.Document.SchemaNames()
	}

	var out []inspected
	for _, name := range names {
		if _, ok := snap.Document.Schemas[name]; !ok {
			return fmt.Errorf("unknown schema '%s'", name)
		}
		decls, err := snap.Synth.Schema(name)
		if err != nil {
			return fmt.Errorf("schema %s: %w", name, err)
		}
		out = append(out, inspected{Schema: name, Decls: decl.Outlines(decls)})
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode outline: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
