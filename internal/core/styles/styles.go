// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	ErrorTextStyle     lipgloss.Style
	WarningTextStyle   lipgloss.Style
	SuccessTextStyle   lipgloss.Style

	// Grid styles.
	HeaderCellStyle   lipgloss.Style
	CellStyle         lipgloss.Style
	PinnedCellStyle   lipgloss.Style
	GroupCellStyle    lipgloss.Style
	ReadOnlyCellStyle lipgloss.Style
	CursorCellStyle   lipgloss.Style
	SelectedCellStyle lipgloss.Style
	PendingCellStyle  lipgloss.Style
	EditingCellStyle  lipgloss.Style
	InvalidCellStyle  lipgloss.Style

	// Status bar styles.
	StatusBarStyle   lipgloss.Style
	StatusModeStyle  lipgloss.Style
	StatusBatchStyle lipgloss.Style
	StatusMutedStyle lipgloss.Style
	StatusErrorStyle lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	ErrorTextStyle = lipgloss.NewStyle().Foreground(p.Error)
	WarningTextStyle = lipgloss.NewStyle().Foreground(p.Warning)
	SuccessTextStyle = lipgloss.NewStyle().Foreground(p.Success)

	CellStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Padding(0, 1)
	HeaderCellStyle = CellStyle.
		Foreground(p.Primary).
		Bold(true)
	PinnedCellStyle = CellStyle.
		Foreground(p.Secondary)
	GroupCellStyle = CellStyle.
		Foreground(p.Muted).
		Italic(true)
	ReadOnlyCellStyle = CellStyle.
		Foreground(p.Muted)
	CursorCellStyle = CellStyle.
		Background(p.Surface).
		Bold(true)
	SelectedCellStyle = CellStyle.
		Background(p.Surface)
	PendingCellStyle = CellStyle.
		Foreground(p.Warning)
	EditingCellStyle = CellStyle.
		Foreground(p.Background).
		Background(p.Primary)
	InvalidCellStyle = CellStyle.
		Foreground(p.Error).
		Underline(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Background(p.Surface)
	StatusModeStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Primary).
		Bold(true).
		Padding(0, 1)
	StatusBatchStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Warning).
		Bold(true).
		Padding(0, 1)
	StatusMutedStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Background(p.Surface).
		Padding(0, 1)
	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error).
		Background(p.Surface).
		Padding(0, 1)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func colorPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := colorPtr(CurrentPalette.Foreground)
	primary := colorPtr(CurrentPalette.Primary)
	secondary := colorPtr(CurrentPalette.Secondary)
	muted := colorPtr(CurrentPalette.Muted)
	surface := colorPtr(CurrentPalette.Surface)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted
	cfg.Table.Color = fg

	return cfg
}
