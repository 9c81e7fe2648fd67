package tui

// Color constants for the juju TUI theme
const (
	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Primary text (titles, selected rows)
	ColorSecondaryText = "#B1B8C7" // Secondary text
	ColorDisabledText  = "#6D7383" // Disabled/muted text
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors
	ColorAccentMain   = "#7C3AED" // Accent elements, active borders
	ColorAccentBright = "#A78BFA" // Highlights, selection marker

	// State Colors
	ColorError   = "#EF4444" // Errors
	ColorSuccess = "#22C55E" // Confirmations
	ColorWarning = "#F59E0B" // Warnings
)
