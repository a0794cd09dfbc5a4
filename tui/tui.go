package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/etherealgames/nexuscore/engine"
	"github.com/etherealgames/nexuscore/engine/mission"
)

// renderTick drives view refreshes while enemies are moving. The
// session advances movement on its own clock; this only repaints.
const renderTick = 50 * time.Millisecond

// Model is the Bubble Tea model for the NexusCore TUI.
type Model struct {
	session *engine.Session

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	history  *History

	systemLines []string // meta-command output, shown under the combat log

	width       int
	height      int
	ready       bool
	quitting    bool
	saving      bool
	commandMode bool
}

// tickMsg triggers a view refresh while an encounter is running.
type tickMsg time.Time

// saveDoneMsg carries the result of a background save.
type saveDoneMsg struct{ err error }

// New creates a TUI model wired to the given session.
func New(s *engine.Session) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		session: s,
		input:   ti,
		spinner: sp,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(s *engine.Session) error {
	p := tea.NewProgram(New(s), tea.WithAltScreen())
	_, err := p.Run()
	s.Close()
	return err
}

// Init schedules the render tick.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(renderTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages (key presses, window resize, ticks, saves).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - m.arenaRows() - 4
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tickMsg:
		m.refreshViewport()
		return m, tick()

	case saveDoneMsg:
		m.saving = false
		if msg.err != nil {
			m.systemLines = append(m.systemLines, fmt.Sprintf("Save failed: %v", msg.err))
		} else {
			m.systemLines = append(m.systemLines, "Game saved.")
		}
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.commandMode {
			return m.updateCommand(msg)
		}
		return m.updateAction(msg)
	}

	return m, nil
}

// updateAction handles the normal-mode action keys.
func (m Model) updateAction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "/":
		m.commandMode = true
		m.input.Focus()
		return m, textinput.Blink

	case "up", "w":
		m.session.MovePlayer(0, -1)
	case "down", "s":
		m.session.MovePlayer(0, 1)
	case "left", "a":
		m.session.MovePlayer(-1, 0)
	case "right", "d":
		m.session.MovePlayer(1, 0)

	case "enter", " ":
		m.session.Attack()

	case "tab":
		m.session.EngageNearest()

	case "f":
		m.session.Flee()

	case "c":
		if err := m.session.LaunchEncounter("combat"); err != nil {
			m.systemLines = append(m.systemLines, err.Error())
		}
	case "e":
		if err := m.session.LaunchEncounter("exploration"); err != nil {
			m.systemLines = append(m.systemLines, err.Error())
		}

	case "ctrl+s":
		return m.startSave()
	}

	m.refreshViewport()
	return m, nil
}

// updateCommand handles key presses while the meta-command input is
// focused.
func (m Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.commandMode = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil

	case "enter":
		return m.handleCommand()

	case "up":
		if prev, ok := m.history.Prev(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return m, nil

	case "down":
		if next, ok := m.history.Next(); ok {
			m.input.SetValue(next)
			m.input.CursorEnd()
		} else {
			m.input.SetValue("")
			m.history.ResetCursor()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleCommand processes the submitted meta-command.
func (m Model) handleCommand() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.commandMode = false
	m.input.Blur()

	if input == "" {
		return m, nil
	}
	m.history.Push(input)
	m.history.ResetCursor()

	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "quit", "exit":
		m.quitting = true
		return m, tea.Quit

	case "save":
		return m.startSave()

	case "help":
		m.systemLines = append(m.systemLines, cmdHelp()...)

	case "state":
		m.systemLines = append(m.systemLines, m.cmdState()...)

	case "missions":
		m.systemLines = append(m.systemLines, m.cmdMissions()...)

	case "inventory", "inv":
		m.systemLines = append(m.systemLines, m.cmdInventory()...)

	case "use":
		if arg == "" {
			m.systemLines = append(m.systemLines, "use requires an item id")
		} else if err := m.session.UseItem(arg); err != nil {
			m.systemLines = append(m.systemLines, fmt.Sprintf("Cannot use %s: %v", arg, err))
		} else {
			m.systemLines = append(m.systemLines, fmt.Sprintf("Used %s.", arg))
		}

	default:
		m.systemLines = append(m.systemLines, fmt.Sprintf("Unknown command: /%s. Type /help for available commands.", cmd))
	}

	m.refreshViewport()
	return m, nil
}

// startSave kicks off a background save unless one is already running.
func (m Model) startSave() (tea.Model, tea.Cmd) {
	if m.saving {
		m.systemLines = append(m.systemLines, "Save already in progress.")
		m.refreshViewport()
		return m, nil
	}
	m.saving = true
	s := m.session
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return saveDoneMsg{err: s.Save(context.Background())}
	})
}

// arenaRows is the grid height for the current terminal size.
func (m Model) arenaRows() int {
	rows := m.height/2 - 3
	if rows < 5 {
		rows = 5
	}
	if rows > 14 {
		rows = 14
	}
	return rows
}

// refreshViewport rebuilds the combat log content and pins it to the
// bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	cv := m.session.Combat()
	styled := make([]string, 0, len(cv.Log)+len(m.systemLines))
	for _, line := range cv.Log {
		styled = append(styled, renderLogLine(line))
	}
	for _, line := range m.systemLines {
		styled = append(styled, styledSystemMsg(line))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// View renders the full layout: arena + combat log + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	arena := renderArena(m.session.Combat(), m.width-2, m.arenaRows())

	bottom := styleSystem.Render("wasd/arrows move · enter attack · tab target · f flee · c combat · e explore · ctrl+s save · / command · q quit")
	if m.commandMode {
		bottom = m.input.View()
	}

	return arena + "\n" + m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + bottom
}

func cmdHelp() []string {
	return []string{
		"Commands:",
		"  /save           Save to the profile store",
		"  /state          Dump character state",
		"  /missions       List active, available, and completed missions",
		"  /inventory      List carried items",
		"  /use <item-id>  Consume an item",
		"  /quit           Exit",
		"Keys: wasd/arrows move, enter attack, tab target nearest,",
		"f flee, c combat encounter, e exploration encounter, ctrl+s save",
	}
}

func (m *Model) cmdState() []string {
	gs := m.session.State()
	s := gs.Character.Stats
	return []string{
		fmt.Sprintf("Level %d (%d/%d XP)", s.Level, s.Experience, engine.ExpNeeded(s.Level)),
		fmt.Sprintf("HP %d/%d  MP %d/%d", s.Health, s.MaxHealth, s.Mana, s.MaxMana),
		fmt.Sprintf("Atk %d  Def %d  Spd %d  Mag %d", s.Attack, s.Defense, s.Speed, s.Magic),
		fmt.Sprintf("Realm: %s", gs.World.CurrentRealm),
		fmt.Sprintf("Achievements: %v", gs.Character.Achievements),
	}
}

func (m *Model) cmdMissions() []string {
	gs := m.session.State()
	out := []string{"Active:"}
	for _, ms := range gs.Character.ActiveMissions {
		out = append(out, fmt.Sprintf("  %s - %s (%s)", ms.ID, ms.Name, ms.Difficulty))
	}
	out = append(out, "Available:")
	for _, ms := range mission.Available(gs.Character) {
		marker := ""
		if !mission.CanStart(ms, gs.Character) {
			marker = " [requires level " + fmt.Sprint(ms.Requirements.Level) + "]"
		}
		out = append(out, fmt.Sprintf("  %s - %s%s", ms.ID, ms.Name, marker))
	}
	out = append(out, fmt.Sprintf("Completed: %v", gs.Character.CompletedMissions))
	return out
}

func (m *Model) cmdInventory() []string {
	gs := m.session.State()
	if len(gs.Character.Inventory) == 0 {
		return []string{"Inventory is empty."}
	}
	out := make([]string, 0, len(gs.Character.Inventory))
	for _, it := range gs.Character.Inventory {
		out = append(out, fmt.Sprintf("  %s x%d (%s, %s)", it.Name, it.Quantity, it.Type, it.Rarity))
	}
	return out
}

// viewportKeyMap returns a viewport keymap with everything except
// paging disabled (the rest of the keyboard drives the game).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithDisabled()),
		HalfPageUp:   key.NewBinding(key.WithDisabled()),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
