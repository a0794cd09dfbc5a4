package tui

import (
	"strings"

	"github.com/etherealgames/nexuscore/engine"
)

// Arena glyphs.
const (
	glyphPlayer = "@"
	glyphEnemy  = "e"
	glyphElite  = "E"
	glyphDead   = "x"
	glyphFloor  = "."
)

// renderArena draws the encounter as a bordered character grid. Entity
// positions in the unit square map to grid cells; the player wins cell
// collisions so it is never hidden.
func renderArena(v engine.CombatView, cols, rows int) string {
	if cols < 10 {
		cols = 10
	}
	if rows < 5 {
		rows = 5
	}

	grid := make([][]string, rows)
	for y := range grid {
		grid[y] = make([]string, cols)
		for x := range grid[y] {
			grid[y][x] = styleArenaBorder.Render(glyphFloor)
		}
	}

	cell := func(fx, fy float64) (int, int) {
		x := int(fx * float64(cols))
		y := int(fy * float64(rows))
		if x < 0 {
			x = 0
		}
		if x >= cols {
			x = cols - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= rows {
			y = rows - 1
		}
		return x, y
	}

	for _, en := range v.Enemies {
		x, y := cell(en.Pos.X, en.Pos.Y)
		switch {
		case !alive(en.Health):
			grid[y][x] = styleEnemyDead.Render(glyphDead)
		case en.ID == v.TargetID:
			grid[y][x] = styleTarget.Render(enemyGlyph(en.Name))
		case en.Name == "Elite Shadow":
			grid[y][x] = styleEnemyElite.Render(glyphElite)
		default:
			grid[y][x] = styleEnemy.Render(enemyGlyph(en.Name))
		}
	}

	if !v.PlayerDown {
		x, y := cell(v.PlayerPos.X, v.PlayerPos.Y)
		grid[y][x] = stylePlayer.Render(glyphPlayer)
	}

	var b strings.Builder
	b.WriteString(styleArenaBorder.Render("+" + strings.Repeat("-", cols) + "+"))
	b.WriteString("\n")
	for y := 0; y < rows; y++ {
		b.WriteString(styleArenaBorder.Render("|"))
		b.WriteString(strings.Join(grid[y], ""))
		b.WriteString(styleArenaBorder.Render("|"))
		b.WriteString("\n")
	}
	b.WriteString(styleArenaBorder.Render("+" + strings.Repeat("-", cols) + "+"))
	return b.String()
}

func enemyGlyph(name string) string {
	if name == "Elite Shadow" {
		return glyphElite
	}
	return glyphEnemy
}

func alive(health int) bool { return health > 0 }
