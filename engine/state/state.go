// Package state constructs game state and provides the pure transition
// helpers for inventory and stat mutation. Callers consume returned values;
// nothing here mutates its arguments.
package state

import (
	"errors"

	"github.com/etherealgames/nexuscore/types"
)

// ErrItemNotFound is returned when an item id is not present in inventory.
var ErrItemNotFound = errors.New("item not found")

// StartingRealm is where every new character begins.
const StartingRealm = "ethereal-nexus"

// DefaultStats are the starting stats for a fresh character and the
// fallback for any stat field that fails to decode from the profile store.
func DefaultStats() types.CharacterStats {
	return types.CharacterStats{
		Level:      1,
		Experience: 0,
		Health:     120,
		Mana:       60,
		Attack:     15,
		Defense:    12,
		Speed:      15,
		Magic:      8,
		MaxHealth:  120,
		MaxMana:    60,
	}
}

// NewGameState creates a fresh state for a new character.
func NewGameState() *types.GameState {
	return &types.GameState{
		Character: types.Character{
			Stats:             DefaultStats(),
			Inventory:         []types.InventoryItem{},
			ActiveMissions:    []types.Mission{},
			CompletedMissions: []string{},
			Achievements:      []string{},
		},
		World: types.World{
			CurrentRealm:     StartingRealm,
			DiscoveredAreas:  []string{StartingRealm},
			UnlockedFeatures: []string{"basic-combat"},
		},
	}
}

// HasItem reports whether the inventory contains the given item id.
// Membership is by id only, not quantity.
func HasItem(inv []types.InventoryItem, id string) bool {
	for _, item := range inv {
		if item.ID == id {
			return true
		}
	}
	return false
}

// AddItem returns the inventory with the item added. An item whose id is
// already present stacks: its quantity is incremented, no duplicate entry.
func AddItem(inv []types.InventoryItem, item types.InventoryItem) []types.InventoryItem {
	out := make([]types.InventoryItem, len(inv))
	copy(out, inv)
	for i := range out {
		if out[i].ID == item.ID {
			out[i].Quantity += item.Quantity
			return out
		}
	}
	return append(out, item)
}

// UseItem consumes one unit of the item and applies its stat overlay.
// The entry is removed when the last unit is consumed.
func UseItem(c types.Character, id string) (types.Character, error) {
	idx := -1
	for i := range c.Inventory {
		if c.Inventory[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return c, ErrItemNotFound
	}

	inv := make([]types.InventoryItem, len(c.Inventory))
	copy(inv, c.Inventory)

	item := inv[idx]
	if item.Quantity <= 1 {
		inv = append(inv[:idx], inv[idx+1:]...)
	} else {
		inv[idx].Quantity--
	}

	c.Inventory = inv
	if item.Stats != nil {
		c.Stats = ApplyDelta(c.Stats, *item.Stats)
	}
	return c, nil
}

// ApplyDelta overlays the non-nil fields of a StatDelta onto stats and
// returns the result.
func ApplyDelta(stats types.CharacterStats, d types.StatDelta) types.CharacterStats {
	if d.Level != nil {
		stats.Level = *d.Level
	}
	if d.Experience != nil {
		stats.Experience = *d.Experience
	}
	if d.Health != nil {
		stats.Health = *d.Health
	}
	if d.Mana != nil {
		stats.Mana = *d.Mana
	}
	if d.Attack != nil {
		stats.Attack = *d.Attack
	}
	if d.Defense != nil {
		stats.Defense = *d.Defense
	}
	if d.Speed != nil {
		stats.Speed = *d.Speed
	}
	if d.Magic != nil {
		stats.Magic = *d.Magic
	}
	if d.MaxHealth != nil {
		stats.MaxHealth = *d.MaxHealth
	}
	if d.MaxMana != nil {
		stats.MaxMana = *d.MaxMana
	}
	return stats
}

// Contains reports whether a string slice contains s.
func Contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
