package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/barisgit/apigen/config"
	"github.com/barisgit/apigen/internal/typegen/swift"
)

func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an apigen.yaml configuration file",
		Long:  "Ask for the generation settings and write them to apigen.yaml",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}

	cmd.Flags().Bool("yes", false, "Accept the defaults without prompting")
	cmd.Flags().Bool("force", false, "Overwrite an existing configuration file")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	force, _ := cmd.Flags().GetBool("force")
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
		}
	}

	cfg := config.DefaultConfig()
	if !yes {
		if err := askConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	fmt.Printf("✅ Created configuration file: %s\n", configPath)
	fmt.Printf("   Access level: %s\n", cfg.AccessLevel)
	fmt.Printf("   Schemas: %s\n", cfg.SchemasDir)
	if cfg.SkipEndpoints {
		fmt.Printf("   Endpoints: skipped\n")
	} else {
		fmt.Printf("   Endpoints: %s\n", cfg.EndpointsDir)
	}
	return nil
}

func askConfig(cfg *config.ProjectConfig) error {
	questions := []*survey.Question{
		{
			Name: "access",
			Prompt: &survey.Select{
				Message: "Access level of generated declarations:",
				Options: swift.AccessLevels,
				Default: cfg.AccessLevel,
			},
		},
		{
			Name:     "schemas",
			Prompt:   &survey.Input{Message: "Schemas directory:", Default: cfg.SchemasDir},
			Validate: survey.Required,
		},
		{
			Name:   "endpoints",
			Prompt: &survey.Confirm{Message: "Generate endpoint records?", Default: true},
		},
	}

	answers := struct {
		Access    string `survey:"access"`
		Schemas   string `survey:"schemas"`
		Endpoints bool   `survey:"endpoints"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}
	cfg.AccessLevel = answers.Access
	cfg.SchemasDir = answers.Schemas
	cfg.SkipEndpoints = !answers.Endpoints

	if answers.Endpoints {
		prompt := &survey.Input{Message: "Endpoints directory:", Default: cfg.EndpointsDir}
		if err := survey.AskOne(prompt, &cfg.EndpointsDir, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	var header string
	prompt := &survey.Input{Message: "File header comment (optional):"}
	if err := survey.AskOne(prompt, &header); err != nil {
		return err
	}
	if header = strings.TrimSpace(header); header != "" {
		cfg.Header = []string{header}
	}
	return nil
}
