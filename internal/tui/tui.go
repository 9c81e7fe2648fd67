package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jujutime/juju/internal/models"
	"github.com/jujutime/juju/internal/registry"
)

// RunBrowseTUI starts the interactive session browser
func RunBrowseTUI(sessions []models.SessionRecord, activityTypes registry.ActivityTypeManager) error {
	model := NewBrowseModel(sessions, activityTypes)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
