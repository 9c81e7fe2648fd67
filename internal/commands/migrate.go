package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jujutime/juju/internal/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert a legacy data.csv into year-partitioned files",
	Long: `Convert the legacy single-file layout (data.csv) into per-year data files.

The legacy file is only deleted after the new files have been re-read and
verified; any failure rolls the new files back and leaves data.csv in place.
Running migrate when there is nothing to do is a safe no-op.`,
	Run: withEnv(func(e *env, cmd *cobra.Command, args []string) {
		engine := migration.New(e.files, e.store, e.registry, e.logger)

		outcome, err := engine.Run(context.Background())
		if err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			fmt.Println("The legacy data.csv was left untouched.")
			return
		}

		switch outcome {
		case migration.OutcomeMigrated:
			fmt.Println("Migration complete. Sessions now live in year-partitioned files.")
		default:
			fmt.Println("Nothing to migrate.")
		}
	}),
}
