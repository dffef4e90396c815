package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/cli/formatter"
	"github.com/bingitech/pressroom/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type queueKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Approve key.Binding
	Reject  key.Binding
	Quit    key.Binding
}

func defaultQueueKeyMap() queueKeyMap {
	return queueKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next"),
		),
		Approve: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "approve"),
		),
		Reject: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reject"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// decisionDoneMsg reports the outcome of an async RecordDecision call.
type decisionDoneMsg struct {
	draftID  string
	decision domain.ReviewDecision
	err      error
}

// queueModel is the bubbletea Model for `review queue`. It steps through
// pending drafts one at a time; a decision advances to the next draft.
type queueModel struct {
	app      *App
	cfg      *brand.Config
	reviewer string

	drafts []*domain.Draft
	cursor int

	vp      viewport.Model
	width   int
	height  int
	ready   bool
	pending bool // a decision is in flight
	status  string
	decided int
	quit    bool
}

func newQueueModel(app *App, cfg *brand.Config, drafts []*domain.Draft) queueModel {
	reviewer := os.Getenv("PRESSROOM_REVIEWER")
	if reviewer == "" {
		reviewer = os.Getenv("USER")
	}
	if reviewer == "" {
		reviewer = "operator"
	}
	return queueModel{
		app:      app,
		cfg:      cfg,
		reviewer: reviewer,
		drafts:   drafts,
	}
}

func (m queueModel) Init() tea.Cmd {
	return nil
}

func (m queueModel) current() *domain.Draft {
	if m.cursor < 0 || m.cursor >= len(m.drafts) {
		return nil
	}
	return m.drafts[m.cursor]
}

func (m queueModel) decideCmd(d *domain.Draft, decision domain.ReviewDecision) tea.Cmd {
	app, reviewer := m.app, m.reviewer
	return func() tea.Msg {
		err := app.Review.RecordDecision(context.Background(), d.ID, decision, reviewer)
		return decisionDoneMsg{draftID: d.ID, decision: decision, err: err}
	}
}

func (m queueModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keys := defaultQueueKeyMap()

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 3
		footerHeight := 2
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerHeight - footerHeight
		}
		m.vp.SetContent(m.renderCurrent())
		return m, nil

	case decisionDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.status = formatter.StyleRed.Render(fmt.Sprintf("✗ %s: %v", formatter.ShortID(msg.draftID), msg.err))
			return m, nil
		}
		m.decided++
		m.status = formatter.StyleGreen.Render(fmt.Sprintf("✓ recorded %s for %s", msg.decision, formatter.ShortID(msg.draftID)))
		// Drop the decided draft and stay on the same slot.
		m.drafts = append(m.drafts[:m.cursor], m.drafts[m.cursor+1:]...)
		if m.cursor >= len(m.drafts) {
			m.cursor = len(m.drafts) - 1
		}
		if len(m.drafts) == 0 {
			m.quit = true
			return m, tea.Quit
		}
		m.vp.SetContent(m.renderCurrent())
		return m, nil

	case tea.KeyMsg:
		if m.pending {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Quit):
			m.quit = true
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.vp.SetContent(m.renderCurrent())
				m.vp.GotoTop()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.drafts)-1 {
				m.cursor++
				m.vp.SetContent(m.renderCurrent())
				m.vp.GotoTop()
			}
			return m, nil

		case key.Matches(msg, keys.Approve):
			if d := m.current(); d != nil {
				m.pending = true
				m.status = formatter.StyleDim.Render("recording decision...")
				return m, m.decideCmd(d, domain.DecisionApprove)
			}
			return m, nil

		case key.Matches(msg, keys.Reject):
			if d := m.current(); d != nil {
				m.pending = true
				m.status = formatter.StyleDim.Render("recording decision...")
				return m, m.decideCmd(d, domain.DecisionReject)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m queueModel) renderCurrent() string {
	d := m.current()
	if d == nil {
		return ""
	}
	var platform *brand.Platform
	if p, err := m.cfg.FindPlatform(d.Platform); err == nil {
		platform = &p
	}
	return formatter.FormatDraftPreview(d, platform)
}

func (m queueModel) View() string {
	if m.quit || !m.ready {
		return ""
	}

	header := formatter.StyleHeader.Render("Review Queue") +
		formatter.StyleDim.Render(fmt.Sprintf("  %d of %d pending", m.cursor+1, len(m.drafts)))

	help := formatter.StyleDim.Render("↑/k prev · ↓/j next · a approve · r reject · q quit")
	footer := help
	if m.status != "" {
		footer = m.status + "\n" + help
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		strings.Repeat("─", max(1, m.width)),
		m.vp.View(),
		footer,
	)
}

func runQueueTUI(app *App, cfg *brand.Config, pending []*domain.Draft) error {
	m := newQueueModel(app, cfg, pending)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(app.out()))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if qm, ok := final.(queueModel); ok && qm.decided > 0 {
		fmt.Fprintf(app.out(), "recorded %d decision(s)\n", qm.decided)
	}
	return nil
}
