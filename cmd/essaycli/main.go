// Package main implements essaycli, which runs one essay assessment round from the terminal.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "essaycli",
	Short: "Generate rubrics and prompts, then check and score essays",
	Long: `essaycli drives the essay assessment pipeline without the HTTP server.
It reads the same GEMA_ environment variables as the API to pick a model provider.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(assessCmd)
}
