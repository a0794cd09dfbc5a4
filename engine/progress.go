package engine

import "github.com/etherealgames/nexuscore/types"

// Per-level stat growth applied on every level-up.
const (
	growthMaxHealth = 10
	growthMaxMana   = 5
	growthAttack    = 2
	growthDefense   = 1
	growthSpeed     = 1
	growthMagic     = 1
)

// ExpNeeded returns the experience required to advance past the given level.
func ExpNeeded(level int) int {
	return level * 100
}

// GainExperience adds experience and applies level-ups. The threshold is
// re-evaluated after each level-up, so a single large grant can cross
// multiple levels. Health and mana are fully restored on every level-up.
func GainExperience(stats types.CharacterStats, amount int) types.CharacterStats {
	stats.Experience += amount

	for stats.Experience >= ExpNeeded(stats.Level) {
		stats.Experience -= ExpNeeded(stats.Level)
		stats.Level++
		stats.MaxHealth += growthMaxHealth
		stats.MaxMana += growthMaxMana
		stats.Attack += growthAttack
		stats.Defense += growthDefense
		stats.Speed += growthSpeed
		stats.Magic += growthMagic

		// Level-up reward: full restore.
		stats.Health = stats.MaxHealth
		stats.Mana = stats.MaxMana
	}

	return stats
}
