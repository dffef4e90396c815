package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var previewBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorDim).
	Padding(0, 1).
	Width(66)

// FormatDraftPreview renders a draft body in a bordered box with its
// character count against the platform limit. The count turns red when the
// body exceeds the limit.
func FormatDraftPreview(d *domain.Draft, platform *brand.Platform) string {
	var b strings.Builder

	header := fmt.Sprintf("%s · %s · %s", ShortID(d.ID), d.Platform, humanize(d.Pillar))
	b.WriteString(StyleHeader.Render(header))
	b.WriteString("  ")
	b.WriteString(StatusIndicator(d.Status))
	b.WriteString("\n")

	if d.Body != "" {
		b.WriteString(previewBox.Render(d.Body))
		b.WriteString("\n")
	}
	for _, ref := range d.MediaRefs {
		b.WriteString(StyleBlue.Render("media: " + ref))
		b.WriteString("\n")
	}

	count := utf8.RuneCountInString(d.Body)
	if platform != nil {
		line := fmt.Sprintf("%d/%d characters", count, platform.MaxChars)
		if count > platform.MaxChars {
			b.WriteString(StyleRed.Render(line + " (over limit)"))
		} else {
			b.WriteString(StyleDim.Render(line))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d characters", count)))
		b.WriteString("\n")
	}

	if d.ErrorDetail != nil {
		b.WriteString(StyleRed.Render("error: " + *d.ErrorDetail))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatDraftLine renders one compact table-free summary line for a draft.
func FormatDraftLine(d *domain.Draft) string {
	return fmt.Sprintf("%s  %-14s %-28s %s",
		StatusStyle(d.Status).Render("●"),
		d.Platform,
		humanize(d.Pillar),
		StyleDim.Render(ShortID(d.ID)))
}

// ShortID returns the first 8 characters of a draft id for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// humanize renders a snake_case pillar name for display.
func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
