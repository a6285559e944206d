package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loreforge/loreforge/internal/cli"
	"github.com/loreforge/loreforge/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loreforged",
		Short: "Loreforge daemon",
		Long:  "Loreforge daemon for running the knowledge-base API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.SchemaCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
