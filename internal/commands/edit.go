package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jujutime/juju/internal/repository"
)

var editCmd = &cobra.Command{
	Use:   "edit [session-id]",
	Short: "Edit one field of a recorded session",
	Long: `Edit one field of a recorded session. Exactly one field flag must be given.

Moving the start date into a different year relocates the session to that
year's data file.

Examples:
  juju edit 6f1c... --start "2025-08-30 09:15"
  juju edit 6f1c... --note "pairing session"
  juju edit 6f1c... --mood 5`,
	Args: cobra.ExactArgs(1),
	Run: withEnv(func(e *env, cmd *cobra.Command, args []string) {
		id := args[0]

		update, err := updateFromFlags(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		found, err := e.repo.Update(context.Background(), id, update)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if !found {
			fmt.Printf("No session with id %s\n", id)
			return
		}
		fmt.Printf("Updated %s of session %s\n", update.Field(), id)
	}),
}

// updateFromFlags maps exactly one changed flag onto a typed field update.
func updateFromFlags(cmd *cobra.Command) (repository.FieldUpdate, error) {
	var updates []repository.FieldUpdate

	if cmd.Flags().Changed("start") {
		v, _ := cmd.Flags().GetString("start")
		t, err := parseClockArg(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --start value: %w", err)
		}
		updates = append(updates, repository.SetStartDate{Value: t})
	}
	if cmd.Flags().Changed("end") {
		v, _ := cmd.Flags().GetString("end")
		t, err := parseClockArg(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --end value: %w", err)
		}
		updates = append(updates, repository.SetEndDate{Value: t})
	}
	if cmd.Flags().Changed("note") {
		v, _ := cmd.Flags().GetString("note")
		updates = append(updates, repository.SetNotes{Value: v})
	}
	if cmd.Flags().Changed("mood") {
		v, _ := cmd.Flags().GetInt("mood")
		updates = append(updates, repository.SetMood{Value: &v})
	}
	if cmd.Flags().Changed("milestone") {
		v, _ := cmd.Flags().GetString("milestone")
		if v == "" {
			updates = append(updates, repository.SetMilestone{Value: nil})
		} else {
			updates = append(updates, repository.SetMilestone{Value: &v})
		}
	}

	if len(updates) == 0 {
		return nil, fmt.Errorf("give exactly one of --start, --end, --note, --mood, --milestone")
	}
	if len(updates) > 1 {
		return nil, fmt.Errorf("only one field can be edited at a time")
	}
	return updates[0], nil
}

func init() {
	editCmd.Flags().String("start", "", "New start: \"yyyy-mm-dd HH:mm\" or \"HH:mm\"")
	editCmd.Flags().String("end", "", "New end: \"yyyy-mm-dd HH:mm\" or \"HH:mm\"")
	editCmd.Flags().String("note", "", "New note text")
	editCmd.Flags().Int("mood", 0, "New mood rating")
	editCmd.Flags().String("milestone", "", "Milestone text (empty clears it)")
}
