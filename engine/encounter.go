package engine

import (
	"math"

	"github.com/etherealgames/nexuscore/types"
)

// Arena bounds: positions are clamped into [0.1,0.9] on both axes so
// characters never sit flush against the edge.
const (
	arenaMin = 0.1
	arenaMax = 0.9
)

// PlayerSpawn is the fixed player position at encounter start.
var PlayerSpawn = types.Vec{X: 0.2, Y: 0.4}

// EnemyStats is one row of the per-mission difficulty table.
type EnemyStats struct {
	Health     int
	Attack     int
	Defense    int
	Speed      int
	CritChance float64
}

// EnemyStatsForMission returns the enemy stat row for a mission id.
// Higher-numbered combat missions are strictly harder; anything outside
// the combat chain uses the default row.
func EnemyStatsForMission(missionID string) EnemyStats {
	switch missionID {
	case "combat-3":
		return EnemyStats{Health: 140, Attack: 28, Defense: 14, Speed: 18, CritChance: 0.25}
	case "combat-2":
		return EnemyStats{Health: 100, Attack: 18, Defense: 10, Speed: 14, CritChance: 0.18}
	case "combat-1":
		return EnemyStats{Health: 60, Attack: 12, Defense: 6, Speed: 10, CritChance: 0.12}
	default:
		return EnemyStats{Health: 40, Attack: 7, Defense: 3, Speed: 7, CritChance: 0.08}
	}
}

// enemyVariant selects the enemy name and kill reward for a player level.
func enemyVariant(playerLevel int) (name string, reward int) {
	switch {
	case playerLevel >= 3:
		return "Elite Shadow", 60
	case playerLevel >= 2:
		return "Shadow Creature", 40
	default:
		return "Shadow Creature", 25
	}
}

// enemyCount scales the roster with player level: 1/2/3 enemies at
// levels 1/2/3+.
func enemyCount(playerLevel int) int {
	switch {
	case playerLevel >= 3:
		return 3
	case playerLevel >= 2:
		return 2
	default:
		return 1
	}
}

// Encounter is one combat session: a generated enemy roster plus the
// player position, bounded by launch and exit.
type Encounter struct {
	MissionID string
	Enemies   []*types.EnemyInstance
	PlayerPos types.Vec
}

// NewEncounter builds the enemy roster for the given player level and
// mission. Enemies are spread around a circle centered on the arena with
// per-enemy increasing radius; the player is reset to the fixed spawn.
func NewEncounter(playerLevel int, missionID string) *Encounter {
	count := enemyCount(playerLevel)
	row := EnemyStatsForMission(missionID)
	name, reward := enemyVariant(playerLevel)

	enemies := make([]*types.EnemyInstance, 0, count)
	for i := 0; i < count; i++ {
		angle := float64(i) / float64(count) * 2 * math.Pi
		radius := 0.3 + 0.1*float64(i)

		enemies = append(enemies, &types.EnemyInstance{
			ID:         i + 1,
			Name:       name,
			Health:     row.Health,
			MaxHealth:  row.Health,
			Attack:     row.Attack,
			Defense:    row.Defense,
			CritChance: row.CritChance,
			Pos: types.Vec{
				X: clampArena(0.5 + math.Cos(angle)*radius),
				Y: clampArena(0.5 + math.Sin(angle)*radius),
			},
			ExperienceReward: reward,
		})
	}

	return &Encounter{
		MissionID: missionID,
		Enemies:   enemies,
		PlayerPos: PlayerSpawn,
	}
}

// Enemy returns the enemy with the given id, or nil.
func (e *Encounter) Enemy(id int) *types.EnemyInstance {
	for _, en := range e.Enemies {
		if en.ID == id {
			return en
		}
	}
	return nil
}

// LivingEnemies returns the enemies still in the fight.
func (e *Encounter) LivingEnemies() []*types.EnemyInstance {
	var out []*types.EnemyInstance
	for _, en := range e.Enemies {
		if en.Alive() {
			out = append(out, en)
		}
	}
	return out
}

// ClosestLivingEnemy returns the living enemy nearest to pos and its
// distance, or nil when the roster is cleared.
func (e *Encounter) ClosestLivingEnemy(pos types.Vec) (*types.EnemyInstance, float64) {
	var best *types.EnemyInstance
	bestDist := math.MaxFloat64
	for _, en := range e.Enemies {
		if !en.Alive() {
			continue
		}
		d := Distance(pos, en.Pos)
		if d < bestDist {
			best = en
			bestDist = d
		}
	}
	return best, bestDist
}

// Distance is the Euclidean distance between two arena positions.
func Distance(a, b types.Vec) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// clampArena clamps a coordinate into the playable arena bounds.
func clampArena(v float64) float64 {
	return math.Max(arenaMin, math.Min(arenaMax, v))
}
