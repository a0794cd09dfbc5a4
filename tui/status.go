package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/etherealgames/nexuscore/engine"
)

// renderStatusBar produces a full-width inverted status line showing
// vitals, progression, the current mission, and save activity.
func (m Model) renderStatusBar() string {
	gs := m.session.State()
	s := gs.Character.Stats

	left := fmt.Sprintf(" Lv %d | HP %d/%d | MP %d/%d | XP %d/%d",
		s.Level, s.Health, s.MaxHealth, s.Mana, s.MaxMana,
		s.Experience, engine.ExpNeeded(s.Level))

	mission := "no mission"
	if cv := m.session.Combat(); cv.MissionID != "" {
		mission = cv.MissionID
	} else if len(gs.Character.ActiveMissions) > 0 {
		mission = gs.Character.ActiveMissions[0].ID
	}

	right := fmt.Sprintf("%s | Inv: %d ", mission, len(gs.Character.Inventory))
	if m.saving {
		right = m.spinner.View() + " saving | " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
