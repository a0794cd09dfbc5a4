package engine

import (
	"fmt"
	"math"

	"github.com/etherealgames/nexuscore/types"
)

// Combat tuning. Defense is deliberately not part of either damage
// formula; enemy crit chance comes from the mission stat table.
const (
	EngageRange     = 0.15 // max distance for an attack to land
	playerCritRate  = 0.15
	missRate        = 0.10
	playerCritMult  = 2.2
	enemyCritMult   = 2.3
	playerDmgScale  = 0.8
	enemyDmgScale   = 0.9
	approachStep    = 0.03 // partial move toward the target per invocation
	victoryHealFrac = 0.1
)

// Phase is the combat resolver's state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEngaging
	PhaseResolving
	PhaseVictory
	PhaseDefeat
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseEngaging:
		return "engaging"
	case PhaseResolving:
		return "resolving"
	case PhaseVictory:
		return "victory"
	case PhaseDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Strike is one side's half of an exchange.
type Strike struct {
	Damage int
	Crit   bool
	Miss   bool
}

// Exchange is one simultaneous player<->enemy resolution.
type Exchange struct {
	Player Strike // player -> enemy
	Enemy  Strike // enemy -> player
}

// rollStrike computes one strike. Draw order is fixed (damage, crit,
// miss) so seeded runs reproduce. A miss forces the damage to zero; the
// crit multiplier applies after, so a missed crit stays zero.
func rollStrike(attack int, scale, critRate, critMult float64, src Source) Strike {
	var s Strike
	s.Damage = int(math.Floor(src.Float64()*float64(attack)*scale)) + 1
	s.Crit = src.Float64() < critRate
	s.Miss = src.Float64() < missRate
	if s.Miss {
		s.Damage = 0
	}
	if s.Crit {
		s.Damage = int(math.Floor(float64(s.Damage) * critMult))
	}
	return s
}

// PlayerStrike rolls the player->enemy half of an exchange.
func PlayerStrike(attack int, src Source) Strike {
	return rollStrike(attack, playerDmgScale, playerCritRate, playerCritMult, src)
}

// EnemyStrike rolls the enemy->player half of an exchange.
func EnemyStrike(attack int, critChance float64, src Source) Strike {
	return rollStrike(attack, enemyDmgScale, critChance, enemyCritMult, src)
}

// ResolveExchange rolls both halves of one exchange against the target
// enemy. Player side is drawn first.
func ResolveExchange(playerAttack int, enemy *types.EnemyInstance, src Source) Exchange {
	return Exchange{
		Player: PlayerStrike(playerAttack, src),
		Enemy:  EnemyStrike(enemy.Attack, enemy.CritChance, src),
	}
}

// ExchangeLog renders the two combat-log lines for an exchange.
func ExchangeLog(ex Exchange, enemyName string) []string {
	lines := make([]string, 0, 2)

	switch {
	case ex.Player.Miss:
		lines = append(lines, "You miss your attack!")
	case ex.Player.Crit:
		lines = append(lines, fmt.Sprintf("Critical hit! You deal %d damage to %s!", ex.Player.Damage, enemyName))
	default:
		lines = append(lines, fmt.Sprintf("You deal %d damage to %s!", ex.Player.Damage, enemyName))
	}

	switch {
	case ex.Enemy.Miss:
		lines = append(lines, fmt.Sprintf("%s misses their attack!", enemyName))
	case ex.Enemy.Crit:
		lines = append(lines, fmt.Sprintf("Critical hit! %s deals %d damage to you!", enemyName, ex.Enemy.Damage))
	default:
		lines = append(lines, fmt.Sprintf("%s deals %d damage to you!", enemyName, ex.Enemy.Damage))
	}

	return lines
}

// ApproachTarget moves a position one partial step toward the target and
// returns it clamped to the arena. The caller re-checks engagement range
// afterward; repeated invocations converge on the target.
func ApproachTarget(pos, target types.Vec) types.Vec {
	return types.Vec{
		X: clampArena(pos.X + (target.X-pos.X)*approachStep),
		Y: clampArena(pos.Y + (target.Y-pos.Y)*approachStep),
	}
}

// VictoryXP is the level-tiered experience bonus for clearing a roster.
func VictoryXP(playerLevel int) int {
	switch {
	case playerLevel >= 3:
		return 150
	case playerLevel >= 2:
		return 100
	default:
		return 75
	}
}

// VictoryHeal restores a tenth of max health, capped at max. A partial
// reward, not a full heal.
func VictoryHeal(stats types.CharacterStats) types.CharacterStats {
	healed := stats.Health + int(math.Floor(float64(stats.MaxHealth)*victoryHealFrac))
	if healed > stats.MaxHealth {
		healed = stats.MaxHealth
	}
	stats.Health = healed
	return stats
}

// TrophyItem is granted on every encounter victory.
func TrophyItem() types.InventoryItem {
	return types.InventoryItem{
		ID:          "victory-loot",
		Name:        "Combat Trophy",
		Description: "Proof of your victory",
		Type:        types.ItemMaterial,
		Rarity:      types.RarityRare,
		Quantity:    1,
	}
}
