// Package styles holds the shared lipgloss palette for the artcat TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Crimson    = lipgloss.Color("#B50938")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Crimson)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)
)

// Header and footer bars
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(SlateDark).
			Padding(0, 1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// Table styles
var (
	TableBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(DimGray)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(Crimson).
				Bold(true)

	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				Bold(true)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Crimson).
			Padding(1, 2).
			Background(SlateDark)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Crimson)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Selection mark characters
const (
	SelectedChar   = "✓"
	UnselectedChar = " "
)

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
