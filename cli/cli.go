// Package cli provides terminal I/O and command dispatch for plain and
// scripted play, where the TUI is unavailable or unwanted.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etherealgames/nexuscore/engine"
	"github.com/etherealgames/nexuscore/engine/mission"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Session   *engine.Session
	In        io.Reader
	Out       io.Writer
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat

	logSeen int // combat-log lines already printed
}

// New creates a CLI wired to the given session.
func New(s *engine.Session) *CLI {
	return &CLI{
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run starts the game loop: prompt, input, dispatch, output. It returns
// when the input is exhausted or the player quits.
func (c *CLI) Run() {
	c.printLine("Welcome to the Ethereal Nexus.")
	c.printLine("Type 'help' for commands.")
	c.printLine("")

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// "again" / "g" repeats the last command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		if c.dispatch(input) {
			return
		}
	}
	c.Session.Close()
}

// dispatch runs one command. Returns true when the game should exit.
func (c *CLI) dispatch(input string) bool {
	parts := strings.Fields(strings.ToLower(input))
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "quit", "exit":
		c.Session.Close()
		c.printSystem("Goodbye.")
		return true

	case "help", "h":
		c.cmdHelp()

	case "combat", "c":
		if err := c.Session.LaunchEncounter("combat"); err != nil {
			c.printSystem(err.Error())
		}
		c.printNewLog()

	case "explore", "e":
		if err := c.Session.LaunchEncounter("exploration"); err != nil {
			c.printSystem(err.Error())
		}
		c.printNewLog()

	case "attack", "a":
		c.Session.Attack()
		c.printNewLog()

	case "engage", "t":
		c.Session.EngageNearest()
		c.printNewLog()

	case "flee", "f":
		c.Session.Flee()
		c.printNewLog()

	case "north", "n":
		c.Session.MovePlayer(0, -1)
	case "south", "s":
		c.Session.MovePlayer(0, 1)
	case "west", "w":
		c.Session.MovePlayer(-1, 0)
	case "east":
		c.Session.MovePlayer(1, 0)

	case "look", "l":
		c.cmdLook()

	case "status", "st":
		c.cmdStatus()

	case "missions", "m":
		c.cmdMissions()

	case "inventory", "i", "inv":
		c.cmdInventory()

	case "use":
		if arg == "" {
			c.printSystem("use requires an item id")
			break
		}
		if err := c.Session.UseItem(arg); err != nil {
			c.printSystem(fmt.Sprintf("Cannot use %s: %v", arg, err))
		} else {
			c.printLine(fmt.Sprintf("Used %s.", arg))
		}

	case "save":
		if err := c.Session.Save(context.Background()); err != nil {
			c.printSystem(fmt.Sprintf("Save failed: %v", err))
		} else {
			c.printSystem("Game saved.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type 'help' for available commands.", cmd))
	}

	return false
}

// printNewLog prints combat-log lines added since the last command.
func (c *CLI) printNewLog() {
	cv := c.Session.Combat()
	if c.logSeen > len(cv.Log) {
		c.logSeen = 0 // log was reset by a new encounter
	}
	for _, line := range cv.Log[c.logSeen:] {
		c.printLine(line)
	}
	c.logSeen = len(cv.Log)
}

func (c *CLI) cmdLook() {
	cv := c.Session.Combat()
	if !cv.InCombat {
		gs := c.Session.State()
		c.printLine(fmt.Sprintf("You are in the %s. No enemies in sight.", gs.World.CurrentRealm))
		return
	}
	c.printLine(fmt.Sprintf("Mission %s. You stand at (%.2f, %.2f).", cv.MissionID, cv.PlayerPos.X, cv.PlayerPos.Y))
	for _, en := range cv.Enemies {
		status := fmt.Sprintf("%d/%d HP", en.Health, en.MaxHealth)
		if en.Health <= 0 {
			status = "slain"
		}
		marker := ""
		if en.ID == cv.TargetID {
			marker = " *"
		}
		c.printLine(fmt.Sprintf("  [%d] %s (%s) at (%.2f, %.2f)%s", en.ID, en.Name, status, en.Pos.X, en.Pos.Y, marker))
	}
}

func (c *CLI) cmdStatus() {
	gs := c.Session.State()
	s := gs.Character.Stats
	c.printLine(fmt.Sprintf("Level %d (%d/%d XP)", s.Level, s.Experience, engine.ExpNeeded(s.Level)))
	c.printLine(fmt.Sprintf("HP %d/%d  MP %d/%d", s.Health, s.MaxHealth, s.Mana, s.MaxMana))
	c.printLine(fmt.Sprintf("Atk %d  Def %d  Spd %d  Mag %d", s.Attack, s.Defense, s.Speed, s.Magic))
	if len(gs.Character.Achievements) > 0 {
		c.printLine(fmt.Sprintf("Achievements: %s", strings.Join(gs.Character.Achievements, ", ")))
	}
}

func (c *CLI) cmdMissions() {
	gs := c.Session.State()
	c.printLine("Active:")
	for _, m := range gs.Character.ActiveMissions {
		c.printLine(fmt.Sprintf("  %s - %s (%s)", m.ID, m.Name, m.Difficulty))
	}
	c.printLine("Available:")
	for _, m := range mission.Available(gs.Character) {
		marker := ""
		if !mission.CanStart(m, gs.Character) {
			marker = fmt.Sprintf(" [requires level %d]", m.Requirements.Level)
		}
		c.printLine(fmt.Sprintf("  %s - %s%s", m.ID, m.Name, marker))
	}
	if len(gs.Character.CompletedMissions) > 0 {
		c.printLine(fmt.Sprintf("Completed: %s", strings.Join(gs.Character.CompletedMissions, ", ")))
	}
}

func (c *CLI) cmdInventory() {
	gs := c.Session.State()
	if len(gs.Character.Inventory) == 0 {
		c.printLine("Inventory is empty.")
		return
	}
	for _, it := range gs.Character.Inventory {
		c.printLine(fmt.Sprintf("  %s x%d (%s, %s) [%s]", it.Name, it.Quantity, it.Type, it.Rarity, it.ID))
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Encounters:",
		"  combat (c)      - Launch a combat encounter",
		"  explore (e)     - Launch an exploration encounter",
		"  attack (a)      - Attack your target (approaches when out of range)",
		"  engage (t)      - Target and engage the nearest enemy",
		"  flee (f)        - Leave combat",
		"  north/south/west/east (n/s/w)  - Step across the arena",
		"  look (l)        - Show the arena",
		"",
		"Character:",
		"  status (st)     - Show stats and progression",
		"  missions (m)    - List missions",
		"  inventory (i)   - List carried items",
		"  use <item-id>   - Consume an item",
		"",
		"System:",
		"  save            - Save to the profile store",
		"  again (g)       - Repeat your last command",
		"  quit            - Exit",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
