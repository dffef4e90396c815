package notify

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/shopspring/decimal"
)

// maxOperationsShown caps the operations list per service in cost summaries;
// beyond it the remainder collapses into a "+ N more".
const maxOperationsShown = 3

func buildDraftMessage(cfg *brand.Config, draft *domain.Draft, now time.Time) *webhookMessage {
	brandName := "Pressroom"
	if cfg != nil && cfg.BrandID != "" {
		brandName = titleCase(cfg.BrandID)
	}

	e := embed{
		Title:       fmt.Sprintf("%s %s Draft", brandName, titleCase(draft.Platform)),
		Description: draft.Body,
		Color:       colorReview,
		Fields: []embedField{
			{Name: "Content Pillar", Value: titleCase(draft.Pillar), Inline: true},
			{Name: "Platform", Value: titleCase(draft.Platform), Inline: true},
			{Name: "Length", Value: fmt.Sprintf("%d characters", utf8.RuneCountInString(draft.Body)), Inline: true},
		},
		Footer:    &embedFooter{Text: "Created: " + draft.CreatedAt.UTC().Format("2006-01-02 15:04:05")},
		Timestamp: now.Format(time.RFC3339),
	}
	for _, ref := range draft.MediaRefs {
		e.Fields = append(e.Fields, embedField{Name: "Media", Value: ref})
	}

	return &webhookMessage{
		Content: fmt.Sprintf(
			"**New %s %s Draft Ready for Review**\n\nDecide with:\n`pressroom review decide %s --approve`\n`pressroom review decide %s --reject`\n",
			brandName, titleCase(draft.Platform), draft.ID, draft.ID),
		Embeds: []embed{e},
	}
}

// RenderCostMessage formats a cost report for the notification channel.
// The trailing report, when present, is appended as context below the
// primary window.
func RenderCostMessage(report, trailing *domain.CostReport) string {
	var b strings.Builder

	if report.EntryCount == 0 {
		b.WriteString("No costs recorded for this period.")
	} else {
		fmt.Fprintf(&b, "**Costs: %s**\n\n", renderTotals(report))
		for _, s := range report.Services {
			fmt.Fprintf(&b, "**%s**: %s %s (%d operations)\n",
				s.Service, s.Total.StringFixed(2), s.Currency, s.EntryCount)
			if len(s.Operations) <= maxOperationsShown {
				fmt.Fprintf(&b, "  Operations: %s\n\n", strings.Join(s.Operations, ", "))
			} else {
				fmt.Fprintf(&b, "  Operations: %s + %d more\n\n",
					strings.Join(s.Operations[:maxOperationsShown], ", "),
					len(s.Operations)-maxOperationsShown)
			}
		}
	}

	if trailing != nil {
		if report.EntryCount > 0 {
			b.WriteString("\n")
		} else {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "**7-day total**: %s (%d operations)",
			renderTotals(trailing), trailing.EntryCount)
	}
	return b.String()
}

// renderTotals sums the report per currency. With several currencies present
// each total is listed; nothing is ever converted.
func renderTotals(r *domain.CostReport) string {
	currencies := r.Currencies()
	if len(currencies) == 0 {
		return "0.00 USD"
	}
	parts := make([]string, 0, len(currencies))
	for _, cur := range currencies {
		total := decimal.Zero
		for _, s := range r.Services {
			if s.Currency == cur {
				total = total.Add(s.Total)
			}
		}
		parts = append(parts, fmt.Sprintf("%s %s", total.StringFixed(2), cur))
	}
	return strings.Join(parts, ", ")
}

// titleCase renders snake_case identifiers as human-readable titles, e.g.
// "technical_deep_dives" becomes "Technical Deep Dives".
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
