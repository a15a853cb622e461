package main

import (
	"fmt"
	"os"

	"github.com/barisgit/apigen/cmd"
	"github.com/barisgit/apigen/internal/typegen/generator"
)

func main() {
	rootCmd := cmd.GenerateCmd()
	rootCmd.Version = generator.Version

	rootCmd.AddCommand(cmd.InitCmd())
	rootCmd.AddCommand(cmd.ServeCmd())
	rootCmd.AddCommand(cmd.InspectCmd())
	rootCmd.AddCommand(cmd.ConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
