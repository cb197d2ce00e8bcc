package theme

import "github.com/charmbracelet/lipgloss"

// Color constants for the crewdeck dark theme.
const (
	ColorBackground    = lipgloss.Color("#0b0f1a")
	ColorPanel         = lipgloss.Color("#11182a")
	ColorPrimary       = lipgloss.Color("#1e3a8a")
	ColorAccent        = lipgloss.Color("#dc2626")
	ColorTextPrimary   = lipgloss.Color("#e5e7eb")
	ColorTextSecondary = lipgloss.Color("#9ca3af")
	ColorBorderSoft    = lipgloss.Color("#24324f")
	ColorSuccess       = lipgloss.Color("#22c55e")
	ColorWarning       = lipgloss.Color("#f59e0b")
)

// Styles holds every lipgloss style used across the TUI.
type Styles struct {
	Panel        lipgloss.Style
	PanelFocused lipgloss.Style

	Header lipgloss.Style

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListItemMarked   lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonDanger  lipgloss.Style

	BadgeIdle       lipgloss.Style
	BadgeConnecting lipgloss.Style
	BadgeRunning    lipgloss.Style
	BadgeCompleted  lipgloss.Style
	BadgeError      lipgloss.Style

	Unread lipgloss.Style
	Muted  lipgloss.Style

	Warning lipgloss.Style

	HelpOverlay lipgloss.Style
	StatusBar   lipgloss.Style
}

// DefaultStyles returns the default set of styles for crewdeck.
// Callers receive a value copy, so mutations stay local.
func DefaultStyles() Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Background(ColorPanel).
			Foreground(ColorTextPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderSoft).
			Padding(1, 2),

		PanelFocused: lipgloss.NewStyle().
			Background(ColorPanel).
			Foreground(ColorTextPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(ColorTextPrimary).
			Bold(true).
			Padding(0, 2),

		ListItem: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			PaddingLeft(2),

		ListItemSelected: lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(ColorTextPrimary).
			Bold(true).
			PaddingLeft(2),

		ListItemMarked: lipgloss.NewStyle().
			Foreground(ColorWarning).
			PaddingLeft(2),

		Button: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorPanel).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderSoft).
			Padding(0, 3),

		ButtonFocused: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Bold(true).
			Padding(0, 3),

		ButtonDanger: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorAccent).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Bold(true).
			Padding(0, 3),

		BadgeIdle: lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Padding(0, 1),

		BadgeConnecting: lipgloss.NewStyle().
			Foreground(ColorBackground).
			Background(ColorWarning).
			Bold(true).
			Padding(0, 1),

		BadgeRunning: lipgloss.NewStyle().
			Foreground(ColorBackground).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1),

		BadgeCompleted: lipgloss.NewStyle().
			Foreground(ColorBackground).
			Background(ColorSuccess).
			Bold(true).
			Padding(0, 1),

		BadgeError: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorAccent).
			Bold(true).
			Padding(0, 1),

		Unread: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(ColorTextSecondary),

		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true),

		HelpOverlay: lipgloss.NewStyle().
			Background(ColorPanel).
			Foreground(ColorTextPrimary).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 3),

		StatusBar: lipgloss.NewStyle().
			Background(ColorPanel).
			Foreground(ColorTextSecondary).
			Padding(0, 1),
	}
}
