package formatter

import (
	"fmt"
	"strings"

	"github.com/bingitech/pressroom/internal/domain"
	"github.com/shopspring/decimal"
)

// FormatCostReport renders a windowed cost report as an aligned table with
// per-currency grand totals.
func FormatCostReport(r *domain.CostReport) string {
	var b strings.Builder

	window := fmt.Sprintf("%s → %s",
		r.Window.From.Format("2006-01-02 15:04"),
		r.Window.To.Format("2006-01-02 15:04"))
	b.WriteString(StyleHeader.Render("Costs"))
	b.WriteString("  " + StyleDim.Render(window))
	b.WriteString("\n\n")

	if r.EntryCount == 0 {
		b.WriteString(StyleGreen.Render("No costs recorded for this period."))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(r.Services))
	for _, s := range r.Services {
		rows = append(rows, []string{
			s.Service,
			s.Total.StringFixed(4) + " " + s.Currency,
			fmt.Sprintf("%d", s.EntryCount),
			strings.Join(s.Operations, ", "),
		})
	}
	b.WriteString(RenderTable([]string{"SERVICE", "TOTAL", "ENTRIES", "OPERATIONS"}, rows))

	b.WriteString("\n")
	for _, currency := range r.Currencies() {
		total := decimal.Zero
		for _, s := range r.Services {
			if s.Currency == currency {
				total = total.Add(s.Total)
			}
		}
		b.WriteString(StyleBold.Render(fmt.Sprintf("Total: %s %s", total.StringFixed(4), currency)))
		b.WriteString("\n")
	}
	return b.String()
}
