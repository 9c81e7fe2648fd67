package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jujutime/juju/internal/models"
	"github.com/jujutime/juju/internal/parser"
	"github.com/jujutime/juju/internal/repository"
)

var (
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List recorded sessions",
	Long:    "List recorded sessions with optional date and project filters",
	Run: withEnv(func(e *env, cmd *cobra.Command, args []string) {
		ctx := context.Background()

		week, _ := cmd.Flags().GetBool("week")
		yearOnly, _ := cmd.Flags().GetBool("year")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		projectName, _ := cmd.Flags().GetString("project")
		limit, _ := cmd.Flags().GetInt("limit")

		var sessions []models.SessionRecord
		var err error
		switch {
		case week:
			sessions, err = e.repo.LoadCurrentWeek(ctx)
		case yearOnly:
			sessions, err = e.repo.LoadCurrentYear(ctx)
		default:
			query := repository.Query{Limit: limit}
			if interval, ierr := intervalFromFlags(fromStr, toStr); ierr != nil {
				fmt.Printf("Error: %v\n", ierr)
				return
			} else if interval != nil {
				query.Interval = interval
			}
			if projectName != "" {
				project, perr := e.registry.LookupProjectByName(projectName)
				if perr != nil {
					fmt.Printf("Error: %v\n", perr)
					return
				}
				if project == nil {
					fmt.Printf("No project named %q\n", projectName)
					return
				}
				query.ProjectIDs = []string{project.ID}
			}
			sessions, err = e.repo.Load(ctx, query)
		}
		if err != nil {
			fmt.Printf("Error loading sessions: %v\n", err)
			return
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found. Use 'juju log' to record your first session.")
			return
		}

		printSessions(sessions)
	}),
}

// intervalFromFlags builds a query interval from --from/--to date arguments.
func intervalFromFlags(fromStr, toStr string) (*repository.Interval, error) {
	from, err := parser.ParseDateArg(fromStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --from value: %w", err)
	}
	to, err := parser.ParseDateArg(toStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --to value: %w", err)
	}
	if from == nil && to == nil {
		return nil, nil
	}

	interval := repository.Interval{
		Start: time.Date(1970, 1, 1, 0, 0, 0, 0, time.Local),
		End:   time.Now().AddDate(100, 0, 0),
	}
	if from != nil {
		interval.Start = *from
	}
	if to != nil {
		// --to names a day; the window closes at the end of it.
		interval.End = to.AddDate(0, 0, 1)
	}
	return &interval, nil
}

func printSessions(sessions []models.SessionRecord) {
	fmt.Printf("%-19s %-9s %-20s %-6s %s\n", "START", "DURATION", "PROJECT", "MOOD", "NOTE")
	fmt.Println(mutedStyle.Render(strings.Repeat("-", 80)))

	var total time.Duration
	for _, s := range sessions {
		total += time.Duration(s.DurationMinutes()) * time.Minute

		project := s.ProjectName
		if project == "" {
			project = "-"
		}
		if len(project) > 18 {
			project = project[:15] + "..."
		}

		mood := "-"
		if s.Mood != nil {
			mood = fmt.Sprintf("%d", *s.Mood)
		}

		note := strings.ReplaceAll(s.Note, "\n", " ")
		if len(note) > 30 {
			note = note[:27] + "..."
		}

		fmt.Printf("%-19s %-9s %-20s %-6s %s\n",
			s.StartDate.Format("2006-01-02 15:04"),
			formatDuration(time.Duration(s.DurationMinutes())*time.Minute),
			project,
			mood,
			note)
	}

	fmt.Println(mutedStyle.Render(strings.Repeat("-", 80)))
	fmt.Println(summaryStyle.Render(fmt.Sprintf("%d sessions, %s total", len(sessions), formatDuration(total))))
}

func init() {
	listCmd.Flags().Bool("week", false, "Show only the current week")
	listCmd.Flags().Bool("year", false, "Show only the current year")
	listCmd.Flags().String("from", "", "Start of date window: yyyy-mm-dd, today, yesterday, week")
	listCmd.Flags().String("to", "", "End of date window (inclusive day)")
	listCmd.Flags().StringP("project", "p", "", "Filter by project name")
	listCmd.Flags().Int("limit", 0, "Show at most N sessions")
}
