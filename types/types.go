// Package types defines the shared data structures for the NexusCore engine.
// This package contains only type definitions, no logic beyond trivial
// accessors.
package types

// CharacterStats holds the player's (or an enemy template's) numeric stats.
// Invariants maintained by the engine: 0 <= Health <= MaxHealth,
// 0 <= Mana <= MaxMana, Experience >= 0.
type CharacterStats struct {
	Level      int `json:"level"`
	Experience int `json:"experience"`
	Health     int `json:"health"`
	Mana       int `json:"mana"`
	Attack     int `json:"attack"`
	Defense    int `json:"defense"`
	Speed      int `json:"speed"`
	Magic      int `json:"magic"`
	MaxHealth  int `json:"maxHealth"`
	MaxMana    int `json:"maxMana"`
}

// StatDelta is a partial overlay on CharacterStats. Nil fields are left
// untouched when applied.
type StatDelta struct {
	Level      *int `json:"level,omitempty"`
	Experience *int `json:"experience,omitempty"`
	Health     *int `json:"health,omitempty"`
	Mana       *int `json:"mana,omitempty"`
	Attack     *int `json:"attack,omitempty"`
	Defense    *int `json:"defense,omitempty"`
	Speed      *int `json:"speed,omitempty"`
	Magic      *int `json:"magic,omitempty"`
	MaxHealth  *int `json:"maxHealth,omitempty"`
	MaxMana    *int `json:"maxMana,omitempty"`
}

// ItemType classifies inventory items.
type ItemType string

const (
	ItemWeapon     ItemType = "weapon"
	ItemArmor      ItemType = "armor"
	ItemConsumable ItemType = "consumable"
	ItemMaterial   ItemType = "material"
	ItemQuest      ItemType = "quest"
)

// Rarity grades inventory items from common to legendary.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// InventoryItem is a stackable item owned by the character. Identity is ID;
// adding an item whose ID is already present increments Quantity.
type InventoryItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        ItemType   `json:"type"`
	Rarity      Rarity     `json:"rarity"`
	Stats       *StatDelta `json:"stats,omitempty"`
	Quantity    int        `json:"quantity"`
}

// MissionRequirements gate mission start on level and item possession.
type MissionRequirements struct {
	Level int      `json:"level,omitempty"`
	Items []string `json:"items,omitempty"`
}

// MissionRewards are applied exactly once on completion.
type MissionRewards struct {
	Experience int             `json:"experience"`
	Items      []InventoryItem `json:"items,omitempty"`
	Stats      *StatDelta      `json:"stats,omitempty"`
}

// Mission is a catalog entry instantiated into the active list on start.
type Mission struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Type         string              `json:"type"`
	Difficulty   string              `json:"difficulty"`
	Requirements MissionRequirements `json:"requirements"`
	Rewards      MissionRewards      `json:"rewards"`
	IsCompleted  bool                `json:"isCompleted"`
	IsActive     bool                `json:"isActive"`
}

// Vec is a position in the normalized [0,1]x[0,1] arena space.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EnemyInstance is a combat-runtime enemy, distinct from any static catalog
// entry. IDs are scoped to the current encounter.
type EnemyInstance struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Health           int     `json:"health"`
	MaxHealth        int     `json:"maxHealth"`
	Attack           int     `json:"attack"`
	Defense          int     `json:"defense"`
	CritChance       float64 `json:"critChance"`
	Pos              Vec     `json:"pos"`
	ExperienceReward int     `json:"experienceReward"`
}

// Alive reports whether the enemy is still part of the fight.
func (e *EnemyInstance) Alive() bool { return e.Health > 0 }

// Character is the persistent player-side state.
type Character struct {
	Stats             CharacterStats  `json:"stats"`
	Inventory         []InventoryItem `json:"inventory"`
	ActiveMissions    []Mission       `json:"activeMissions"`
	CompletedMissions []string        `json:"completedMissions"`
	Achievements      []string        `json:"achievements"`
}

// World tracks realm discovery and feature unlocks.
type World struct {
	CurrentRealm     string   `json:"currentRealm"`
	DiscoveredAreas  []string `json:"discoveredAreas"`
	UnlockedFeatures []string `json:"unlockedFeatures"`
}

// Guild is optional membership info carried through persistence.
type Guild struct {
	Name         string `json:"name"`
	Rank         string `json:"rank"`
	Contribution int    `json:"contribution"`
}

// ProfileInfo is display metadata owned by the remote profile store.
type ProfileInfo struct {
	Name   string `json:"name,omitempty"`
	Bio    string `json:"bio,omitempty"`
	Pfp    string `json:"pfp,omitempty"`
	Wallet string `json:"wallet,omitempty"`
}

// GameState is the aggregate root. The remote store holds a serialized
// snapshot of it, never a live reference; all mutation goes through the
// engine's transition functions.
type GameState struct {
	Character Character    `json:"character"`
	World     World        `json:"world"`
	Guild     *Guild       `json:"guild,omitempty"`
	Profile   *ProfileInfo `json:"profile,omitempty"`
}
