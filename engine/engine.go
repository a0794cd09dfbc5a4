// Package engine implements the combat and mission simulation: encounter
// generation, enemy steering, turn resolution, progression, and the
// session orchestrator that applies one logical mutation at a time.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/etherealgames/nexuscore/engine/codec"
	"github.com/etherealgames/nexuscore/engine/events"
	"github.com/etherealgames/nexuscore/engine/mission"
	"github.com/etherealgames/nexuscore/engine/state"
	"github.com/etherealgames/nexuscore/types"
)

// ErrSaveInFlight is returned when a save is requested while another is
// still running. The session allows at most one in-flight save.
var ErrSaveInFlight = errors.New("save already in flight")

// Store is the persistence collaborator: an async key-value blob store
// keyed by the session's profile identity. The session never learns how
// the payload is stored.
type Store interface {
	Save(ctx context.Context, pairs []codec.KV) error
}

// playerMoveStep is the keyboard movement distance per command.
const playerMoveStep = 0.05

// defaultRetryDelay is the pause before a defeat retry restores the
// player and restarts the mission.
const defaultRetryDelay = 1200 * time.Millisecond

// CombatView is the display-facing snapshot of the current encounter.
type CombatView struct {
	InCombat   bool
	Phase      Phase
	MissionID  string
	Enemies    []types.EnemyInstance
	PlayerPos  types.Vec
	PlayerDown bool
	TargetID   int
	Log        []string
}

// Session owns one player's game state and applies all mutations under a
// single lock: one combat exchange, mission transition, or experience
// grant at a time. The movement ticker is the only background writer and
// goes through the same lock.
type Session struct {
	mu sync.Mutex

	gs      *types.GameState
	rng     Source
	emitter *events.Emitter

	store  Store
	wallet string
	saving atomic.Bool

	// Encounter-scoped state, cleared when combat ends.
	enc        *Encounter
	movement   *Movement
	phase      Phase
	targetID   int
	playerDown bool
	missionID  string
	log        []string

	// RetryDelay is the defeat-retry pause. Zero retries synchronously,
	// which tests rely on.
	RetryDelay time.Duration
}

// NewSession creates a session around existing state. store may be nil
// for offline play; Save then fails with a persistence error but the
// game stays playable.
func NewSession(gs *types.GameState, seed int64, store Store, wallet string) *Session {
	s := &Session{
		gs:         gs,
		rng:        NewRNG(seed),
		emitter:    events.NewEmitter(),
		store:      store,
		wallet:     wallet,
		phase:      PhaseIdle,
		RetryDelay: defaultRetryDelay,
	}
	s.movement = NewMovement(s.rng)
	return s
}

// Events returns the session's event emitter for subscription.
func (s *Session) Events() *events.Emitter { return s.emitter }

// State returns a snapshot copy of the game state. Slices are copied so
// display code cannot alias live state.
func (s *Session) State() types.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.gs)
}

// Combat returns a snapshot of the current encounter for display.
func (s *Session) Combat() CombatView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.combatViewLocked()
}

func (s *Session) combatViewLocked() CombatView {
	v := CombatView{
		InCombat:   s.enc != nil && (s.phase == PhaseEngaging || s.phase == PhaseResolving),
		Phase:      s.phase,
		MissionID:  s.missionID,
		PlayerDown: s.playerDown,
		TargetID:   s.targetID,
		Log:        append([]string(nil), s.log...),
	}
	if s.enc != nil {
		v.PlayerPos = s.enc.PlayerPos
		for _, en := range s.enc.Enemies {
			v.Enemies = append(v.Enemies, *en)
		}
	}
	return v
}

// LaunchEncounter starts a combat encounter for the given activity type
// ("combat" or "exploration"). It selects the first unfinished mission
// of the chain for that activity, starts it if needed, builds the enemy
// roster scaled to player level, and begins the movement tick.
func (s *Session) LaunchEncounter(activity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.selectMissionLocked(activity)
	if id == "" {
		return fmt.Errorf("no mission available for activity %q", activity)
	}

	c, err := mission.Start(s.gs.Character, id)
	if err != nil {
		return err
	}
	started := len(c.ActiveMissions) > len(s.gs.Character.ActiveMissions)
	s.gs.Character = c
	s.missionID = id

	s.startEncounterLocked()

	if started {
		s.emitter.Emit(events.Event{
			Type:    events.MissionStarted,
			Mission: &events.MissionPayload{MissionID: id},
		})
	}
	return nil
}

// selectMissionLocked picks the mission id an activity launches into:
// the first combat mission neither completed nor active, the last one
// when the whole chain is done, or the tutorial for exploration.
func (s *Session) selectMissionLocked(activity string) string {
	c := s.gs.Character
	switch activity {
	case "combat":
		for _, id := range []string{"combat-1", "combat-2", "combat-3"} {
			if !state.Contains(c.CompletedMissions, id) {
				return id
			}
		}
		return "combat-3"
	case "exploration":
		return "tutorial-1"
	default:
		return ""
	}
}

// startEncounterLocked builds the roster and starts the movement tick.
// A relaunch over a running encounter drops the old steering state
// first: the new roster reuses enemy ids 1..n.
func (s *Session) startEncounterLocked() {
	s.movement.Stop()
	level := s.gs.Character.Stats.Level
	s.enc = NewEncounter(level, s.missionID)
	s.phase = PhaseEngaging
	s.targetID = 0
	s.playerDown = false

	n := len(s.enc.Enemies)
	plural := ""
	if n > 1 {
		plural = "s"
	}
	s.log = []string{
		fmt.Sprintf("Combat initiated! Level %d challenge with %d enemy%s!", level, n, plural),
		"Enemies are on the move - close in and strike!",
	}

	s.movement.Start(s.AdvanceMovement)

	s.emitter.Emit(events.Event{
		Type:      events.EncounterStarted,
		Encounter: &events.EncounterPayload{MissionID: s.missionID, EnemyCount: n},
	})
	s.emitCombatLocked()
}

// AdvanceMovement applies one enemy steering tick. Positions are swapped
// in as a whole snapshot under the session lock so readers never see a
// half-moved enemy. No-op when no encounter is active.
func (s *Session) AdvanceMovement() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc == nil || (s.phase != PhaseEngaging && s.phase != PhaseResolving) {
		return
	}
	for _, up := range s.movement.Advance(s.enc, s.enc.PlayerPos) {
		if en := s.enc.Enemy(up.ID); en != nil {
			en.Pos = up.Pos
		}
	}
}

// MovePlayer applies one keyboard movement step, clamped to the arena.
func (s *Session) MovePlayer(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc == nil {
		return
	}
	s.enc.PlayerPos = types.Vec{
		X: clampArena(s.enc.PlayerPos.X + dx*playerMoveStep),
		Y: clampArena(s.enc.PlayerPos.Y + dy*playerMoveStep),
	}
}

// EngageNearest targets the closest living enemy: within engagement
// range it resolves an attack, otherwise it takes one approach step
// toward the enemy. This is the keyboard attack command.
func (s *Session) EngageNearest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc == nil || s.playerDown {
		return
	}
	en, dist := s.enc.ClosestLivingEnemy(s.enc.PlayerPos)
	if en == nil {
		return
	}
	s.engageLocked(en, dist)
}

// EngageEnemy targets a specific enemy by id (the pointer-click path).
// Dead or unknown ids are ignored.
func (s *Session) EngageEnemy(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc == nil || s.playerDown {
		return
	}
	en := s.enc.Enemy(id)
	if en == nil || !en.Alive() {
		return
	}
	s.engageLocked(en, Distance(s.enc.PlayerPos, en.Pos))
}

// Attack resolves an exchange against the current target, if one is in
// range. Without a target it behaves like EngageNearest.
func (s *Session) Attack() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc == nil || s.playerDown {
		return
	}
	if s.targetID != 0 {
		if en := s.enc.Enemy(s.targetID); en != nil && en.Alive() {
			s.engageLocked(en, Distance(s.enc.PlayerPos, en.Pos))
			return
		}
		s.targetID = 0
	}
	if en, dist := s.enc.ClosestLivingEnemy(s.enc.PlayerPos); en != nil {
		s.engageLocked(en, dist)
	}
}

// engageLocked moves toward the enemy or, in range, resolves an attack.
func (s *Session) engageLocked(en *types.EnemyInstance, dist float64) {
	s.targetID = en.ID
	if dist >= EngageRange {
		s.enc.PlayerPos = ApproachTarget(s.enc.PlayerPos, en.Pos)
		s.emitCombatLocked()
		return
	}
	s.resolveLocked(en)
}

// resolveLocked runs one full exchange against the target enemy, then
// the defeat/victory bookkeeping.
func (s *Session) resolveLocked(en *types.EnemyInstance) {
	s.phase = PhaseResolving

	ex := ResolveExchange(s.gs.Character.Stats.Attack, en, s.rng)
	s.log = append(s.log, ExchangeLog(ex, en.Name)...)

	en.Health -= ex.Player.Damage
	if en.Health < 0 {
		en.Health = 0
	}
	s.gs.Character.Stats.Health -= ex.Enemy.Damage
	if s.gs.Character.Stats.Health < 0 {
		s.gs.Character.Stats.Health = 0
	}

	if !en.Alive() {
		s.log = append(s.log, fmt.Sprintf("You defeated %s!", en.Name))
		s.gs.Character.Stats = GainExperience(s.gs.Character.Stats, en.ExperienceReward)
		s.targetID = 0

		if len(s.enc.LivingEnemies()) == 0 {
			s.victoryLocked()
			return
		}
	}

	if s.gs.Character.Stats.Health <= 0 {
		s.defeatLocked()
		return
	}

	s.phase = PhaseEngaging
	s.emitCombatLocked()
}

// victoryLocked applies the all-enemies-dead branch: partial heal,
// tiered bonus XP, mission completion rewards (exactly once), chain
// advance, and the trophy. Runs at most once per encounter; the phase
// transition guards re-entry.
func (s *Session) victoryLocked() {
	s.phase = PhaseVictory
	s.movement.Stop()
	s.log = append(s.log, "VICTORY! All enemies defeated!")

	st := &s.gs.Character.Stats
	*st = VictoryHeal(*st)
	victoryXP := VictoryXP(st.Level)
	*st = GainExperience(*st, victoryXP)

	completed := s.missionID
	if reward, ok := mission.VictoryReward(completed); ok {
		*st = GainExperience(*st, reward.XP)
		s.gs.Character.Inventory = state.AddItem(s.gs.Character.Inventory, mission.RewardItem(completed, reward.Item))
	}

	if c, err := mission.Complete(s.gs.Character, completed); err == nil {
		if len(c.CompletedMissions) > len(s.gs.Character.CompletedMissions) {
			s.gs.Character = c
			// Reward XP was added raw; run the level-up check over it.
			s.gs.Character.Stats = GainExperience(s.gs.Character.Stats, 0)
			s.emitter.Emit(events.Event{
				Type:    events.MissionCompleted,
				Mission: &events.MissionPayload{MissionID: completed},
			})
		}
	}

	// Advance the chain so the next launch lands on the next mission.
	if next := mission.Next(completed); next != "" && !state.Contains(s.gs.Character.CompletedMissions, next) {
		if c, err := mission.Start(s.gs.Character, next); err == nil {
			s.gs.Character = c
			s.missionID = next
			s.emitter.Emit(events.Event{
				Type:    events.MissionStarted,
				Mission: &events.MissionPayload{MissionID: next},
			})
		}
	}

	s.gs.Character.Inventory = state.AddItem(s.gs.Character.Inventory, TrophyItem())

	missionName := completed
	if m, err := mission.Lookup(completed); err == nil {
		missionName = m.Name
	}
	s.emitter.Emit(events.Event{
		Type: events.CombatResult,
		Result: &events.ResultPayload{
			Outcome: "victory",
			Message: fmt.Sprintf("Mission %q completed! Gained %d experience!", missionName, victoryXP),
		},
	})
	s.emitCombatLocked()
}

// defeatLocked handles player death: the player entity leaves the
// arena, combat ends, and after the retry delay the same mission
// restarts with restored health and mana.
func (s *Session) defeatLocked() {
	s.phase = PhaseDefeat
	s.playerDown = true
	s.targetID = 0
	s.movement.Stop()
	s.log = append(s.log, "You have been defeated! Restarting this level...")

	s.emitter.Emit(events.Event{
		Type: events.CombatResult,
		Result: &events.ResultPayload{
			Outcome: "defeat",
			Message: "You have been defeated! Restarting this level...",
		},
	})
	s.emitCombatLocked()

	if s.RetryDelay <= 0 {
		s.retryLocked()
		return
	}
	time.AfterFunc(s.RetryDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.phase == PhaseDefeat {
			s.retryLocked()
		}
	})
}

// retryLocked restores the player to full and restarts the same
// mission. Defeat is a retry, not a game over.
func (s *Session) retryLocked() {
	st := &s.gs.Character.Stats
	st.Health = st.MaxHealth
	st.Mana = st.MaxMana

	if c, err := mission.Start(s.gs.Character, s.missionID); err == nil {
		s.gs.Character = c
	}
	s.startEncounterLocked()
}

// Flee exits combat unconditionally: the encounter is dropped, the
// movement tick stopped, the current target cleared.
func (s *Session) Flee() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc == nil {
		return
	}
	s.log = append(s.log, "You fled from combat!")
	s.endEncounterLocked()
}

// Close tears down the session's encounter state, stopping the movement
// ticker so no periodic callback outlives the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc != nil {
		s.endEncounterLocked()
	}
}

// endEncounterLocked clears all encounter-scoped state.
func (s *Session) endEncounterLocked() {
	s.movement.Stop()
	s.enc = nil
	s.phase = PhaseIdle
	s.targetID = 0
	s.playerDown = false
	s.emitCombatLocked()
}

// StartMission starts a mission by id outside the encounter flow.
func (s *Session) StartMission(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := mission.Start(s.gs.Character, id)
	if err != nil {
		return err
	}
	started := len(c.ActiveMissions) > len(s.gs.Character.ActiveMissions)
	s.gs.Character = c
	if started {
		s.emitter.Emit(events.Event{
			Type:    events.MissionStarted,
			Mission: &events.MissionPayload{MissionID: id},
		})
	}
	return nil
}

// CompleteMission completes an active mission by id and applies its
// rewards (idempotently), then runs progression on the reward XP.
func (s *Session) CompleteMission(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.gs.Character.CompletedMissions)
	c, err := mission.Complete(s.gs.Character, id)
	if err != nil {
		return err
	}
	s.gs.Character = c
	if len(c.CompletedMissions) > before {
		// Reward XP was added raw; run the level-up check over it.
		s.gs.Character.Stats = GainExperience(s.gs.Character.Stats, 0)
		s.emitter.Emit(events.Event{
			Type:    events.MissionCompleted,
			Mission: &events.MissionPayload{MissionID: id},
		})
	}
	return nil
}

// UseItem consumes one unit of an inventory item.
func (s *Session) UseItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := state.UseItem(s.gs.Character, id)
	if err != nil {
		return err
	}
	s.gs.Character = c
	return nil
}

// AddItem adds an item to the inventory with stacking.
func (s *Session) AddItem(item types.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gs.Character.Inventory = state.AddItem(s.gs.Character.Inventory, item)
}

// Save encodes a snapshot and writes it to the profile store. At most
// one save may be in flight; a second call fails fast with
// ErrSaveInFlight. A failed save never touches in-memory state.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return errors.New("no profile store configured")
	}
	if !s.saving.CompareAndSwap(false, true) {
		return ErrSaveInFlight
	}
	defer s.saving.Store(false)

	s.mu.Lock()
	snapshot := copyState(s.gs)
	wallet := s.wallet
	s.mu.Unlock()

	s.emitter.Emit(events.Event{Type: events.SaveStateChanged, Save: &events.SavePayload{InFlight: true}})
	err := s.store.Save(ctx, codec.Encode(&snapshot, wallet))
	s.emitter.Emit(events.Event{Type: events.SaveStateChanged, Save: &events.SavePayload{InFlight: false, Err: err}})
	return err
}

// Saving reports whether a save is currently in flight.
func (s *Session) Saving() bool { return s.saving.Load() }

// emitCombatLocked publishes the combat state snapshot.
func (s *Session) emitCombatLocked() {
	v := s.combatViewLocked()
	s.emitter.Emit(events.Event{
		Type: events.CombatStateChanged,
		Combat: &events.CombatPayload{
			InCombat:  v.InCombat,
			Enemies:   v.Enemies,
			PlayerPos: v.PlayerPos,
			Log:       v.Log,
			TargetID:  v.TargetID,
		},
	})
}

// copyState deep-copies the slices of a GameState so snapshots cannot
// alias live state.
func copyState(gs *types.GameState) types.GameState {
	out := *gs
	out.Character.Inventory = append([]types.InventoryItem(nil), gs.Character.Inventory...)
	out.Character.ActiveMissions = append([]types.Mission(nil), gs.Character.ActiveMissions...)
	out.Character.CompletedMissions = append([]string(nil), gs.Character.CompletedMissions...)
	out.Character.Achievements = append([]string(nil), gs.Character.Achievements...)
	out.World.DiscoveredAreas = append([]string(nil), gs.World.DiscoveredAreas...)
	out.World.UnlockedFeatures = append([]string(nil), gs.World.UnlockedFeatures...)
	if gs.Guild != nil {
		g := *gs.Guild
		out.Guild = &g
	}
	if gs.Profile != nil {
		p := *gs.Profile
		out.Profile = &p
	}
	return out
}
