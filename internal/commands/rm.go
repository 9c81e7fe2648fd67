package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm [session-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a recorded session",
	Args:    cobra.ExactArgs(1),
	Run: withEnv(func(e *env, cmd *cobra.Command, args []string) {
		id := args[0]

		found, err := e.repo.Delete(context.Background(), id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if !found {
			fmt.Printf("No session with id %s\n", id)
			return
		}
		fmt.Printf("Deleted session %s\n", id)
	}),
}
