package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jujutime/juju/internal/models"
	"github.com/jujutime/juju/internal/registry"
)

// Focus represents what UI element has focus
type Focus int

const (
	FocusTable Focus = iota
	FocusSearch
)

// BrowseModel represents the TUI model for browsing recorded sessions
type BrowseModel struct {
	width  int
	height int

	// Session data, start date descending
	sessions []models.SessionRecord
	filtered []models.SessionRecord
	selected int // index in filtered slice

	activityTypes registry.ActivityTypeManager

	// UI state
	focus       Focus
	searchInput textinput.Model

	// Pagination
	currentPage int
	perPage     int
}

// NewBrowseModel creates a new session browser model
func NewBrowseModel(sessions []models.SessionRecord, activityTypes registry.ActivityTypeManager) BrowseModel {
	search := textinput.New()
	search.Placeholder = "project or note..."
	search.CharLimit = 64
	search.Width = 32

	return BrowseModel{
		sessions:      sessions,
		filtered:      sessions,
		activityTypes: activityTypes,
		focus:         FocusTable,
		searchInput:   search,
		perPage:       15,
	}
}

// Init initializes the model
func (m BrowseModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Height - title(2) - search(2) - header(2) - pagination(1) - help(2)
		available := m.height - 9
		if available < 3 {
			available = 3
		}
		m.perPage = available
		return m, nil

	case tea.KeyMsg:
		if m.focus == FocusSearch {
			return m.handleSearchKeys(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "up", "k":
			return m.moveSelectionUp(), nil

		case "down", "j":
			return m.moveSelectionDown(), nil

		case "left", "h":
			return m.prevPage(), nil

		case "right", "l":
			return m.nextPage(), nil

		case "/":
			m.focus = FocusSearch
			m.searchInput.Focus()
			return m, textinput.Blink
		}
	}

	return m, nil
}

// handleSearchKeys handles key input when the search box has focus
func (m BrowseModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = FocusTable
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applyFilter()
		return m, nil

	case "enter":
		m.focus = FocusTable
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter narrows the visible sessions to those matching the search query
// on project name or note, case-insensitive.
func (m *BrowseModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.searchInput.Value()))
	if query == "" {
		m.filtered = m.sessions
	} else {
		var filtered []models.SessionRecord
		for _, s := range m.sessions {
			if strings.Contains(strings.ToLower(s.ProjectName), query) ||
				strings.Contains(strings.ToLower(s.Note), query) {
				filtered = append(filtered, s)
			}
		}
		m.filtered = filtered
	}
	m.selected = 0
	m.currentPage = 0
}

// moveSelectionUp moves the selection up
func (m BrowseModel) moveSelectionUp() BrowseModel {
	if m.selected > 0 {
		m.selected--
		if m.selected < m.currentPage*m.perPage && m.currentPage > 0 {
			m.currentPage--
		}
	}
	return m
}

// moveSelectionDown moves the selection down
func (m BrowseModel) moveSelectionDown() BrowseModel {
	if m.selected < len(m.filtered)-1 {
		m.selected++
		if m.selected >= (m.currentPage+1)*m.perPage {
			m.currentPage++
		}
	}
	return m
}

// prevPage goes to the previous page
func (m BrowseModel) prevPage() BrowseModel {
	if m.currentPage > 0 {
		m.currentPage--
		m.selected = m.currentPage * m.perPage
	}
	return m
}

// nextPage goes to the next page
func (m BrowseModel) nextPage() BrowseModel {
	if (m.currentPage+1)*m.perPage < len(m.filtered) {
		m.currentPage++
		m.selected = m.currentPage * m.perPage
	}
	return m
}

// View renders the browser
func (m BrowseModel) View() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Background(lipgloss.Color(ColorAccentMain))
	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))

	var b strings.Builder
	b.WriteString(titleStyle.Render("juju — sessions"))
	b.WriteString("\n\n")

	if m.focus == FocusSearch || m.searchInput.Value() != "" {
		b.WriteString("search: " + m.searchInput.View())
		b.WriteString("\n\n")
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-17s %-9s %-18s %-14s %s",
		"START", "DURATION", "PROJECT", "ACTIVITY", "NOTE")))
	b.WriteString("\n")

	start := m.currentPage * m.perPage
	end := start + m.perPage
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	if len(m.filtered) == 0 {
		b.WriteString(rowStyle.Render("no sessions match"))
		b.WriteString("\n")
	}

	for i := start; i < end; i++ {
		line := m.renderRow(m.filtered[i])
		if i == m.selected {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	totalPages := (len(m.filtered) + m.perPage - 1) / m.perPage
	if totalPages > 1 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("page %d/%d", m.currentPage+1, totalPages)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select · ←/→ page · / search · q quit"))
	return b.String()
}

func (m BrowseModel) renderRow(s models.SessionRecord) string {
	project := s.ProjectName
	if project == "" {
		project = "-"
	}
	if len(project) > 16 {
		project = project[:13] + "..."
	}

	activity := "Uncategorized"
	if m.activityTypes != nil {
		activity = m.activityTypes.DisplayName(s.ActivityTypeID)
	}
	if len(activity) > 12 {
		activity = activity[:9] + "..."
	}

	note := strings.ReplaceAll(s.Note, "\n", " ")
	if len(note) > 28 {
		note = note[:25] + "..."
	}

	duration := time.Duration(s.DurationMinutes()) * time.Minute
	return fmt.Sprintf("%-17s %-9s %-18s %-14s %s",
		s.StartDate.Format("2006-01-02 15:04"),
		fmt.Sprintf("%dh%02dm", int(duration.Hours()), int(duration.Minutes())%60),
		project,
		activity,
		note)
}
