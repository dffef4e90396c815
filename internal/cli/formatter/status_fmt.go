package formatter

import (
	"fmt"
	"strings"

	"github.com/bingitech/pressroom/internal/domain"
	"github.com/bingitech/pressroom/internal/service"
)

// statusDisplayOrder fixes the section order in the status overview so
// actionable states come first.
var statusDisplayOrder = []domain.DraftStatus{
	domain.DraftPendingReview,
	domain.DraftApproved,
	domain.DraftFailed,
	domain.DraftPublished,
	domain.DraftRejected,
}

// FormatStatusOverview renders a brand's drafts grouped by status.
func FormatStatusOverview(o *service.StatusOverview) string {
	var b strings.Builder

	b.WriteString(StyleHeader.Render(fmt.Sprintf("%s · %d drafts", o.BrandID, o.Total)))
	b.WriteString("\n")

	if o.Total == 0 {
		b.WriteString(StyleDim.Render("Nothing generated yet. Run `pressroom generate` to create drafts."))
		b.WriteString("\n")
		return b.String()
	}

	for _, status := range statusDisplayOrder {
		drafts := o.ByStatus[status]
		if len(drafts) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(StatusIndicator(status))
		b.WriteString(StyleDim.Render(fmt.Sprintf(" (%d)", len(drafts))))
		b.WriteString("\n")
		for _, d := range drafts {
			b.WriteString("  " + FormatDraftLine(d) + "\n")
		}
	}
	return b.String()
}
