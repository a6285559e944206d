package admin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// SchemaCmd returns the schema command, which prints the database DDL by
// concatenating the up migrations in order.
func SchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the database schema",
		Long:  "Print the full database DDL assembled from the migration files",
		RunE:  runSchema,
	}

	cmd.Flags().String("migrations", "migrations", "Directory containing migration files")

	return cmd
}

func runSchema(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("migrations")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations dir: %w", err)
	}

	var ups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			ups = append(ups, entry.Name())
		}
	}
	if len(ups) == 0 {
		return fmt.Errorf("no up migrations found in %s", dir)
	}
	sort.Strings(ups)

	for _, name := range ups {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "-- %s\n%s\n", name, strings.TrimRight(string(content), "\n"))
	}

	return nil
}
