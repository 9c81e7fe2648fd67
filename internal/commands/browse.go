package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jujutime/juju/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse recorded sessions interactively",
	Run: withEnv(func(e *env, cmd *cobra.Command, args []string) {
		sessions, err := e.repo.LoadAll(context.Background())
		if err != nil {
			fmt.Printf("Error loading sessions: %v\n", err)
			return
		}

		if err := tui.RunBrowseTUI(sessions, e.registry); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}),
}
