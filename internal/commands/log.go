package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jujutime/juju/internal/models"
)

const clockLayout = "2006-01-02 15:04"

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record a finished work session",
	Long: `Record a finished work session against a project.

Examples:
  juju log -p "Website" --from "2025-08-30 09:00" --to "2025-08-30 10:30"
  juju log -p "Website" --from "09:00" --to "10:30" -n "wrote the parser" -m 4`,
	Run: withEnv(func(e *env, cmd *cobra.Command, args []string) {
		projectName, _ := cmd.Flags().GetString("project")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		note, _ := cmd.Flags().GetString("note")
		mood, _ := cmd.Flags().GetInt("mood")

		start, err := parseClockArg(fromStr)
		if err != nil {
			fmt.Printf("Error: invalid --from value: %v\n", err)
			return
		}
		end, err := parseClockArg(toStr)
		if err != nil {
			fmt.Printf("Error: invalid --to value: %v\n", err)
			return
		}

		rec := models.SessionRecord{
			ID:        uuid.NewString(),
			StartDate: start,
			EndDate:   end,
			Note:      note,
		}
		if cmd.Flags().Changed("mood") {
			rec.Mood = &mood
		}

		if projectName != "" {
			project, err := e.registry.LookupProjectByName(projectName)
			if err == nil && project == nil {
				project, err = e.registry.CreateProject(projectName)
			}
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			rec.ProjectID = &project.ID
			rec.ProjectName = project.Name
		}

		if err := e.repo.Add(context.Background(), rec); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		duration := time.Duration(rec.DurationMinutes()) * time.Minute
		fmt.Printf("Logged %s session %s\n", formatDuration(duration), rec.ID)
	}),
}

// parseClockArg accepts "yyyy-mm-dd HH:mm" or a bare "HH:mm" meaning today.
func parseClockArg(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("value required")
	}
	if t, err := time.ParseInLocation(clockLayout, input, time.Local); err == nil {
		return t, nil
	}
	clock, err := time.Parse("15:04", input)
	if err != nil {
		return time.Time{}, fmt.Errorf("use \"yyyy-mm-dd HH:mm\" or \"HH:mm\"")
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	} else {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
}

func init() {
	logCmd.Flags().StringP("project", "p", "", "Project name (created on first use)")
	logCmd.Flags().String("from", "", "Session start: \"yyyy-mm-dd HH:mm\" or \"HH:mm\" (today)")
	logCmd.Flags().String("to", "", "Session end: \"yyyy-mm-dd HH:mm\" or \"HH:mm\" (today)")
	logCmd.Flags().StringP("note", "n", "", "Free-text note")
	logCmd.Flags().IntP("mood", "m", 0, "Mood rating")
}
