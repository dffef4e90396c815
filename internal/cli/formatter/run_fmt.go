package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/bingitech/pressroom/internal/domain"
)

// FormatRunReport renders an orchestrator run summary: one section per
// agent with its drafts, then an overall status line.
func FormatRunReport(r *domain.RunReport) string {
	var b strings.Builder

	b.WriteString(StyleHeader.Render(fmt.Sprintf("Run %s", ShortID(r.RunID))))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  config %s · seed %q · %s",
		r.ConfigVersion, r.Seed, r.FinishedAt.Sub(r.StartedAt).Round(displayPrecision(r)))))
	b.WriteString("\n\n")

	for _, ar := range r.Agents {
		b.WriteString(StyleBold.Render(string(ar.Kind) + " agent"))
		if ar.Err != "" {
			b.WriteString("  " + StyleRed.Render("✗ "+ar.Err))
			b.WriteString("\n")
		} else {
			b.WriteString("\n")
		}
		for _, outcome := range ar.Drafts {
			marker := StyleGreen.Render("+ generated")
			if outcome.Reused {
				marker = StyleDim.Render("= reused")
			}
			fmt.Fprintf(&b, "  %s  %-28s %s\n", marker, humanize(outcome.Pillar), StyleDim.Render(ShortID(outcome.DraftID)))
		}
	}

	b.WriteString("\n")
	switch r.Status {
	case domain.RunSucceeded:
		b.WriteString(StyleGreen.Render("✓ run succeeded"))
	case domain.RunPartial:
		b.WriteString(StyleYellow.Render(fmt.Sprintf("◐ partial run: %v failed", kindsToStrings(r.FailedAgents()))))
	default:
		b.WriteString(StyleRed.Render("✗ run failed"))
	}
	b.WriteString("\n")
	return b.String()
}

func kindsToStrings(kinds []domain.AgentKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func displayPrecision(r *domain.RunReport) time.Duration {
	if r.FinishedAt.Sub(r.StartedAt) < time.Second {
		return time.Millisecond
	}
	return 100 * time.Millisecond
}
