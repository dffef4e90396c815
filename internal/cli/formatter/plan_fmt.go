package formatter

import (
	"fmt"
	"strings"

	"github.com/bingitech/pressroom/internal/scheduler"
)

// FormatWeeklyPlan renders the weekly posting plan grouped by platform.
func FormatWeeklyPlan(plan *scheduler.WeeklyPlan) string {
	var b strings.Builder

	b.WriteString(StyleHeader.Render(
		fmt.Sprintf("Weekly plan · config %s · %d posts", plan.ConfigVersion, plan.TotalSlots())))
	b.WriteString("\n")

	for _, pp := range plan.Platforms {
		b.WriteString("\n")
		b.WriteString(StyleBold.Render(pp.Platform))
		b.WriteString(StyleDim.Render(fmt.Sprintf(" (%d/week)", len(pp.Slots))))
		b.WriteString("\n")
		if len(pp.Slots) == 0 {
			b.WriteString(StyleDim.Render("  no posts scheduled") + "\n")
			continue
		}
		for i, slot := range pp.Slots {
			fmt.Fprintf(&b, "  %2d. %s\n", i+1, humanize(slot.Pillar))
		}
	}
	return b.String()
}
