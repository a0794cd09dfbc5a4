// Package mission holds the fixed mission catalog and the lifecycle
// manager: start, complete, requirement checks, and the linear chain.
// Completion is idempotent: a mission id already in completedMissions
// is never rewarded twice.
package mission

import (
	"errors"
	"fmt"

	"github.com/etherealgames/nexuscore/engine/state"
	"github.com/etherealgames/nexuscore/types"
)

// ErrNotFound is returned for ids missing from the catalog or, on
// Complete, from the active list.
var ErrNotFound = errors.New("mission not found")

// ChainOrder is the fixed linear unlock order.
var ChainOrder = []string{"tutorial-1", "combat-1", "combat-2", "combat-3"}

// achievementFor maps mission completion to the achievement it unlocks.
var achievementFor = map[string]string{
	"tutorial-1": "first-steps",
	"combat-1":   "shadow-hunter",
	"combat-2":   "dual-challenger",
	"combat-3":   "elite-warrior",
}

// Catalog returns the full mission catalog. Missions are defined
// statically; the slice is freshly built so callers may not corrupt it.
func Catalog() []types.Mission {
	return []types.Mission{
		{
			ID:           "tutorial-1",
			Name:         "First Steps",
			Description:  "Complete your first adventure in the Ethereal Nexus",
			Type:         "exploration",
			Difficulty:   "easy",
			Requirements: types.MissionRequirements{Level: 1},
			Rewards: types.MissionRewards{
				Experience: 50,
				Items: []types.InventoryItem{{
					ID:          "basic-sword",
					Name:        "Training Sword",
					Description: "A basic sword for beginners",
					Type:        types.ItemWeapon,
					Rarity:      types.RarityCommon,
					Stats:       &types.StatDelta{Attack: intp(5)},
					Quantity:    1,
				}},
			},
		},
		{
			ID:           "combat-1",
			Name:         "Shadow Hunter",
			Description:  "Defeat 1 shadow creature in the Dark Forest",
			Type:         "combat",
			Difficulty:   "easy",
			Requirements: types.MissionRequirements{Level: 1},
			Rewards: types.MissionRewards{
				Experience: 75,
				Items: []types.InventoryItem{{
					ID:          "shadow-essence",
					Name:        "Shadow Essence",
					Description: "A mysterious dark material",
					Type:        types.ItemMaterial,
					Rarity:      types.RarityUncommon,
					Quantity:    2,
				}},
			},
		},
		{
			ID:           "combat-2",
			Name:         "Dual Challenge",
			Description:  "Defeat 2 shadow creatures in the Dark Forest",
			Type:         "combat",
			Difficulty:   "medium",
			Requirements: types.MissionRequirements{Level: 2},
			Rewards: types.MissionRewards{
				Experience: 120,
				Items: []types.InventoryItem{{
					ID:          "enhanced-sword",
					Name:        "Enhanced Sword",
					Description: "A stronger weapon for experienced fighters",
					Type:        types.ItemWeapon,
					Rarity:      types.RarityUncommon,
					Stats:       &types.StatDelta{Attack: intp(8)},
					Quantity:    1,
				}},
			},
		},
		{
			ID:           "combat-3",
			Name:         "Elite Hunter",
			Description:  "Defeat 3 elite shadow creatures",
			Type:         "combat",
			Difficulty:   "hard",
			Requirements: types.MissionRequirements{Level: 3},
			Rewards: types.MissionRewards{
				Experience: 200,
				Items: []types.InventoryItem{{
					ID:          "elite-armor",
					Name:        "Elite Armor",
					Description: "Protective armor for elite warriors",
					Type:        types.ItemArmor,
					Rarity:      types.RarityRare,
					Stats:       &types.StatDelta{Defense: intp(10)},
					Quantity:    1,
				}},
			},
		},
	}
}

// Lookup returns the catalog mission with the given id.
func Lookup(id string) (types.Mission, error) {
	for _, m := range Catalog() {
		if m.ID == id {
			return m, nil
		}
	}
	return types.Mission{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Next returns the mission after id in the fixed chain, or "" past the
// end (or for ids outside the chain).
func Next(id string) string {
	for i, mid := range ChainOrder {
		if mid == id && i+1 < len(ChainOrder) {
			return ChainOrder[i+1]
		}
	}
	return ""
}

// CanStart reports whether the character meets the mission requirements:
// minimum level and possession of every required item id (membership,
// not quantity).
func CanStart(m types.Mission, c types.Character) bool {
	if m.Requirements.Level > 0 && c.Stats.Level < m.Requirements.Level {
		return false
	}
	for _, itemID := range m.Requirements.Items {
		if !state.HasItem(c.Inventory, itemID) {
			return false
		}
	}
	return true
}

// Available lists catalog missions that are neither active nor completed.
func Available(c types.Character) []types.Mission {
	var out []types.Mission
	for _, m := range Catalog() {
		if isActive(c, m.ID) || state.Contains(c.CompletedMissions, m.ID) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Start instantiates the catalog mission into the active list. Starting
// an already-active mission is a no-op; starting an already-completed
// one is also a no-op (a completed id never re-enters the active list).
func Start(c types.Character, id string) (types.Character, error) {
	m, err := Lookup(id)
	if err != nil {
		return c, err
	}
	if isActive(c, id) || state.Contains(c.CompletedMissions, id) {
		return c, nil
	}

	m.IsActive = true
	active := make([]types.Mission, len(c.ActiveMissions))
	copy(active, c.ActiveMissions)
	c.ActiveMissions = append(active, m)
	return c, nil
}

// Complete marks the mission done and applies its rewards exactly once:
// experience (without level-up math; the caller runs progression),
// items, stat overlay, achievement, and the active->completed move.
// Completing an id already in completedMissions returns the character
// unchanged. Completing an id that is neither active nor completed
// fails with ErrNotFound and leaves the character unchanged.
func Complete(c types.Character, id string) (types.Character, error) {
	if state.Contains(c.CompletedMissions, id) {
		return c, nil
	}

	idx := -1
	for i := range c.ActiveMissions {
		if c.ActiveMissions[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return c, fmt.Errorf("%w: %s not active", ErrNotFound, id)
	}

	m := c.ActiveMissions[idx]
	m.IsCompleted = true
	m.IsActive = false

	c.Stats.Experience += m.Rewards.Experience
	for _, item := range m.Rewards.Items {
		c.Inventory = state.AddItem(c.Inventory, item)
	}
	if m.Rewards.Stats != nil {
		c.Stats = state.ApplyDelta(c.Stats, *m.Rewards.Stats)
	}

	active := make([]types.Mission, 0, len(c.ActiveMissions)-1)
	active = append(active, c.ActiveMissions[:idx]...)
	active = append(active, c.ActiveMissions[idx+1:]...)
	c.ActiveMissions = active

	completed := make([]string, len(c.CompletedMissions))
	copy(completed, c.CompletedMissions)
	c.CompletedMissions = append(completed, id)

	if ach, ok := achievementFor[id]; ok && !state.Contains(c.Achievements, ach) {
		achievements := make([]string, len(c.Achievements))
		copy(achievements, c.Achievements)
		c.Achievements = append(achievements, ach)
	}

	return c, nil
}

// CompletionReward is the encounter-victory reward table keyed by
// mission id: a flat XP bonus plus one named item.
type CompletionReward struct {
	XP   int
	Item string
}

// VictoryReward returns the encounter completion reward for a mission,
// or false for ids outside the table.
func VictoryReward(id string) (CompletionReward, bool) {
	switch id {
	case "tutorial-1":
		return CompletionReward{XP: 50, Item: "Training Sword"}, true
	case "combat-1":
		return CompletionReward{XP: 75, Item: "Shadow Essence"}, true
	case "combat-2":
		return CompletionReward{XP: 120, Item: "Enhanced Sword"}, true
	case "combat-3":
		return CompletionReward{XP: 200, Item: "Elite Armor"}, true
	default:
		return CompletionReward{}, false
	}
}

// RewardItem builds the inventory item granted for an encounter victory
// on the given mission.
func RewardItem(missionID, name string) types.InventoryItem {
	return types.InventoryItem{
		ID:          "mission-" + missionID,
		Name:        name,
		Description: "Reward for completing " + missionID,
		Type:        types.ItemMaterial,
		Rarity:      types.RarityUncommon,
		Quantity:    1,
	}
}

func isActive(c types.Character, id string) bool {
	for _, m := range c.ActiveMissions {
		if m.ID == id {
			return true
		}
	}
	return false
}

func intp(v int) *int { return &v }
