package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sitecounts",
		Short: "Render the site counts block",
		Long: `sitecounts renders the site counts block against a content repository:
published item counts per public content type, a short filtered list of posts,
and the id of the current item.

Configuration is read from the environment; run "sitecounts env" to list the variables.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(typesCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(envCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
