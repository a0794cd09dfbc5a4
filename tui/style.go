package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlayer = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	styleEnemy = lipgloss.NewStyle().
			Foreground(lipgloss.Color("161"))

	styleEnemyElite = lipgloss.NewStyle().
			Foreground(lipgloss.Color("201")).
			Bold(true)

	styleEnemyDead = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleTarget = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleArenaBorder = lipgloss.NewStyle().
				Foreground(lipgloss.Color("238"))

	stylePlayerHit = lipgloss.NewStyle().
			Foreground(lipgloss.Color("120"))

	styleEnemyHit = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleCrit = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleMiss = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleVictory = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	styleDefeat = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleLoot = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))
)

// lineKind identifies the type of a combat-log line for styling.
type lineKind int

const (
	kindNeutral lineKind = iota
	kindPlayerHit
	kindEnemyHit
	kindCrit
	kindMiss
	kindVictory
	kindDefeat
	kindLoot
)

// classifyLine determines what kind of combat-log line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "Critical hit!"):
		return kindCrit
	case strings.Contains(line, "miss"):
		return kindMiss
	case strings.HasPrefix(line, "You deal"):
		return kindPlayerHit
	case strings.Contains(line, "damage to you"):
		return kindEnemyHit
	case strings.HasPrefix(line, "VICTORY") || strings.HasPrefix(line, "You defeated"):
		return kindVictory
	case strings.HasPrefix(line, "You have been defeated"):
		return kindDefeat
	case strings.Contains(line, "Level up") || strings.Contains(line, "received"):
		return kindLoot
	default:
		return kindNeutral
	}
}

// renderLogLine applies the style for a combat-log line.
func renderLogLine(line string) string {
	switch classifyLine(line) {
	case kindCrit:
		return styleCrit.Render(line)
	case kindMiss:
		return styleMiss.Render(line)
	case kindPlayerHit:
		return stylePlayerHit.Render(line)
	case kindEnemyHit:
		return styleEnemyHit.Render(line)
	case kindVictory:
		return styleVictory.Render(line)
	case kindDefeat:
		return styleDefeat.Render(line)
	case kindLoot:
		return styleLoot.Render(line)
	default:
		return line
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
