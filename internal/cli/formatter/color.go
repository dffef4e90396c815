package formatter

import (
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusStyle returns the style used to render a draft status.
func StatusStyle(status domain.DraftStatus) lipgloss.Style {
	switch status {
	case domain.DraftPublished:
		return StyleGreen
	case domain.DraftApproved:
		return StyleBlue
	case domain.DraftPendingReview:
		return StyleYellow
	case domain.DraftRejected:
		return StyleDim
	case domain.DraftFailed:
		return StyleRed
	default:
		return StyleFg
	}
}

// StatusIndicator returns a colored status marker such as "● PUBLISHED".
func StatusIndicator(status domain.DraftStatus) string {
	switch status {
	case domain.DraftPublished:
		return StyleGreen.Render("● PUBLISHED")
	case domain.DraftApproved:
		return StyleBlue.Render("● APPROVED")
	case domain.DraftPendingReview:
		return StyleYellow.Render("● PENDING REVIEW")
	case domain.DraftRejected:
		return StyleDim.Render("● REJECTED")
	case domain.DraftFailed:
		return StyleRed.Render("● FAILED")
	default:
		return StyleDim.Render("● UNKNOWN")
	}
}
