package tui

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	// SidebarWidth is the fixed width of the section sidebar in columns.
	SidebarWidth = 20

	// OverlayWidth is the preferred width of wizard overlays.
	OverlayWidth = 50
)

// Color palette
var (
	FocusColor     = lipgloss.Color("14")  // Cyan - focused panel border
	BlurColor      = lipgloss.Color("240") // Dark gray - unfocused panel border
	ValueColor     = lipgloss.Color("11")  // Yellow - setting values
	SelectionFg    = lipgloss.Color("0")   // Black - selected row text
	SelectionBg    = lipgloss.Color("14")  // Cyan - selected row background
	DimSelectionBg = lipgloss.Color("240") // Dark gray - selection in a blurred panel
	SubtleColor    = lipgloss.Color("240") // Dark gray - hints and help
	StatusFg       = lipgloss.Color("0")   // Black - status bar text
	StatusBg       = lipgloss.Color("11")  // Yellow - status bar background
	OverlayColor   = lipgloss.Color("11")  // Yellow - wizard overlay border
)

// Common styles
var (
	// Focused panel border
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(FocusColor)

	// Unfocused panel border
	BlurredPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(BlurColor)

	// Selected row in the focused panel
	SelectedStyle = lipgloss.NewStyle().
			Foreground(SelectionFg).
			Background(SelectionBg).
			Bold(true)

	// Selected row in a blurred panel
	DimSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(DimSelectionBg).
				Bold(true)

	// Setting value column
	ValueStyle = lipgloss.NewStyle().
			Foreground(ValueColor)

	// Keys with an explicit override
	ModifiedKeyStyle = lipgloss.NewStyle().
				Bold(true)

	// Hints for empty sections and panels
	HintStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// Help line at the bottom
	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// Status message bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(StatusFg).
			Background(StatusBg)

	// Wizard overlay box
	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(OverlayColor).
			Padding(0, 1)

	// Panel titles
	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true)
)

// renderOverlay centers an overlay box on the screen, dimming the
// exposed background.
func renderOverlay(content string, width, height int) string {
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("236")),
	)
}
