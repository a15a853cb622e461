package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/barisgit/apigen/config"
)

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage generator configuration",
		Long:  "Validate and view the apigen configuration",
	}

	cmd.AddCommand(configValidateCmd())
	cmd.AddCommand(configShowCmd())

	return cmd
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate configuration file",
		Long:  "Validate the syntax and structure of an apigen configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigValidate,
	}
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [config-file]",
		Short: "Show configuration information",
		Long:  "Display the effective configuration after defaults and environment overrides",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigShow,
	}

	cmd.Flags().Bool("verbose", false, "Show the full effective configuration as YAML")

	return cmd
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath(cmd, args)

	fmt.Printf("🔍 Validating configuration file: %s\n", configPath)
	if err := config.ValidateConfigFile(configPath); err != nil {
		fmt.Printf("❌ Configuration validation failed:\n%v\n", err)
		return err
	}
	fmt.Printf("✅ Configuration is valid!\n")

	if info, err := config.GetConfigInfo(configPath); err == nil {
		fmt.Printf("\n%s\n", info.String())
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath(cmd, args)
	verbose, _ := cmd.Flags().GetBool("verbose")

	info, err := config.GetConfigInfo(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	fmt.Printf("%s\n", info.String())

	if verbose {
		options := config.DefaultLoadOptions()
		options.Path = configPath
		options.Quiet = true
		cfg, err := config.NewConfigManager(options).LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load full configuration: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}
		fmt.Printf("\n📝 Effective Configuration:\n```yaml\n%s```\n", string(data))
	}
	return nil
}

func getConfigPath(cmd *cobra.Command, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return config.DefaultPath
}
