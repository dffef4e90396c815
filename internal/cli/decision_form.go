package cli

import (
	"fmt"

	"github.com/bingitech/pressroom/internal/cli/formatter"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// pressroomHuhTheme returns a huh theme matching the formatter palette.
func pressroomHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// runDecisionForm collects a decision and reviewer name interactively.
func runDecisionForm(draftID, reviewer string) (domain.ReviewDecision, string, error) {
	var decisionStr string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Decision for draft %s", draftID)).
				Options(
					huh.NewOption("Approve for publishing", string(domain.DecisionApprove)),
					huh.NewOption("Reject", string(domain.DecisionReject)),
				).
				Value(&decisionStr),
			huh.NewInput().
				Title("Reviewer").
				Placeholder("your name").
				Value(&reviewer).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("reviewer is required")
					}
					return nil
				}),
		),
	).WithTheme(pressroomHuhTheme()).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return "", "", err
	}
	return domain.ReviewDecision(decisionStr), reviewer, nil
}
