// Package codec converts game state to and from the flattened key-value
// form the remote profile store accepts. Encoding clamps every numeric
// value into [0,255] (a store constraint); decoding never fails. A
// corrupt or missing field degrades to its documented default instead
// of aborting the whole decode.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/etherealgames/nexuscore/engine/state"
	"github.com/etherealgames/nexuscore/types"
)

// Store-imposed bounds on every persisted numeric value.
const (
	clampMin = 0
	clampMax = 255
)

// KV is one flattened key-value pair of the persistence payload.
type KV struct {
	Key   string
	Value string
}

// clamp forces v into the store's numeric range.
func clamp(v int) int {
	if v < clampMin {
		return clampMin
	}
	if v > clampMax {
		return clampMax
	}
	return v
}

// ClampStats clamps every field of CharacterStats into [0,255].
func ClampStats(s types.CharacterStats) types.CharacterStats {
	return types.CharacterStats{
		Level:      clamp(s.Level),
		Experience: clamp(s.Experience),
		Health:     clamp(s.Health),
		Mana:       clamp(s.Mana),
		Attack:     clamp(s.Attack),
		Defense:    clamp(s.Defense),
		Speed:      clamp(s.Speed),
		Magic:      clamp(s.Magic),
		MaxHealth:  clamp(s.MaxHealth),
		MaxMana:    clamp(s.MaxMana),
	}
}

// deepClamp walks a JSON-shaped value and clamps every number into
// [0,255]. Non-numeric values pass through untouched.
func deepClamp(v any) any {
	switch t := v.(type) {
	case float64:
		if t < clampMin {
			return float64(clampMin)
		}
		if t > clampMax {
			return float64(clampMax)
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepClamp(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepClamp(e)
		}
		return out
	default:
		return v
	}
}

// encodeStructured JSON-encodes v with every number deep-clamped, then
// base64-encodes the result for safe transport through the store.
func encodeStructured(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return base64.StdEncoding.EncodeToString([]byte("[]"))
	}
	var shaped any
	if err := json.Unmarshal(raw, &shaped); err != nil {
		return base64.StdEncoding.EncodeToString([]byte("[]"))
	}
	clamped, err := json.Marshal(deepClamp(shaped))
	if err != nil {
		return base64.StdEncoding.EncodeToString([]byte("[]"))
	}
	return base64.StdEncoding.EncodeToString(clamped)
}

// Encode flattens the game state into the ordered key-value payload.
// Scalars become decimal strings, id lists comma-joined strings, and
// the structured inventory/activeMissions arrays base64-wrapped JSON.
func Encode(gs *types.GameState, wallet string) []KV {
	s := ClampStats(gs.Character.Stats)

	pairs := []KV{
		{"level", strconv.Itoa(s.Level)},
		{"experience", strconv.Itoa(s.Experience)},
		{"health", strconv.Itoa(s.Health)},
		{"mana", strconv.Itoa(s.Mana)},
		{"attack", strconv.Itoa(s.Attack)},
		{"defense", strconv.Itoa(s.Defense)},
		{"speed", strconv.Itoa(s.Speed)},
		{"magic", strconv.Itoa(s.Magic)},
		{"maxHealth", strconv.Itoa(s.MaxHealth)},
		{"maxMana", strconv.Itoa(s.MaxMana)},
		{"inventory", encodeStructured(gs.Character.Inventory)},
		{"activeMissions", encodeStructured(gs.Character.ActiveMissions)},
		{"completedMissions", strings.Join(gs.Character.CompletedMissions, ",")},
		{"achievements", strings.Join(gs.Character.Achievements, ",")},
		{"currentRealm", gs.World.CurrentRealm},
		{"discoveredAreas", strings.Join(gs.World.DiscoveredAreas, ",")},
		{"unlockedFeatures", strings.Join(gs.World.UnlockedFeatures, ",")},
		{"wallet", wallet},
	}

	if gs.Guild != nil {
		pairs = append(pairs,
			KV{"guildName", gs.Guild.Name},
			KV{"guildRank", gs.Guild.Rank},
			KV{"guildContribution", strconv.Itoa(clamp(gs.Guild.Contribution))},
		)
	}

	return pairs
}

// Bag is the loosely-typed key-value form the store hands back. Values
// may be a bare string or a one-element array wrapping one.
type Bag map[string]any

// BagFromPairs builds a Bag from the flattened pair list.
func BagFromPairs(pairs []KV) Bag {
	bag := make(Bag, len(pairs))
	for _, kv := range pairs {
		bag[kv.Key] = kv.Value
	}
	return bag
}

// unwrap reduces a bag value to a plain string: bare strings pass
// through, one-element arrays are unwrapped. Anything else is absent.
func unwrap(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []string:
		if len(t) > 0 {
			return t[0], true
		}
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// decodeInt parses a numeric field, falling back to def on any failure.
// NaN or garbage never propagates into live state.
func decodeInt(bag Bag, key string, def int) int {
	s, ok := unwrap(bag[key])
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// decodeString returns the field or def when absent.
func decodeString(bag Bag, key, def string) string {
	s, ok := unwrap(bag[key])
	if !ok || s == "" {
		return def
	}
	return s
}

// decodeList splits a comma-joined field, falling back to def.
func decodeList(bag Bag, key string, def []string) []string {
	s, ok := unwrap(bag[key])
	if !ok {
		return def
	}
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// decodeStructured runs the fallback chain for structured fields:
// unwrap array -> try base64 -> parse JSON -> default. dst must be a
// pointer to the slice being filled; it is left untouched on failure.
func decodeStructured(bag Bag, key string, dst any) bool {
	s, ok := unwrap(bag[key])
	if !ok || s == "" {
		return false
	}
	// Base64 first (the written format), then raw JSON (legacy payloads).
	if raw, err := base64.StdEncoding.DecodeString(s); err == nil {
		if json.Unmarshal(raw, dst) == nil {
			return true
		}
	}
	return json.Unmarshal([]byte(s), dst) == nil
}

// Decode reconstructs a GameState from a bag. It never returns an
// error: every field that fails to parse degrades to its default.
func Decode(bag Bag) *types.GameState {
	def := state.DefaultStats()

	stats := types.CharacterStats{
		Level:      decodeInt(bag, "level", def.Level),
		Experience: decodeInt(bag, "experience", def.Experience),
		Health:     decodeInt(bag, "health", def.Health),
		Mana:       decodeInt(bag, "mana", def.Mana),
		Attack:     decodeInt(bag, "attack", def.Attack),
		Defense:    decodeInt(bag, "defense", def.Defense),
		Speed:      decodeInt(bag, "speed", def.Speed),
		Magic:      decodeInt(bag, "magic", def.Magic),
		MaxHealth:  decodeInt(bag, "maxHealth", def.MaxHealth),
		MaxMana:    decodeInt(bag, "maxMana", def.MaxMana),
	}

	inventory := []types.InventoryItem{}
	decodeStructured(bag, "inventory", &inventory)

	activeMissions := []types.Mission{}
	decodeStructured(bag, "activeMissions", &activeMissions)

	gs := &types.GameState{
		Character: types.Character{
			Stats:             stats,
			Inventory:         inventory,
			ActiveMissions:    activeMissions,
			CompletedMissions: decodeList(bag, "completedMissions", []string{}),
			Achievements:      decodeList(bag, "achievements", []string{}),
		},
		World: types.World{
			CurrentRealm:     decodeString(bag, "currentRealm", state.StartingRealm),
			DiscoveredAreas:  decodeList(bag, "discoveredAreas", []string{state.StartingRealm}),
			UnlockedFeatures: decodeList(bag, "unlockedFeatures", []string{"basic-combat"}),
		},
	}

	if name, ok := unwrap(bag["guildName"]); ok && name != "" {
		gs.Guild = &types.Guild{
			Name:         name,
			Rank:         decodeString(bag, "guildRank", "Member"),
			Contribution: decodeInt(bag, "guildContribution", 0),
		}
	}

	return gs
}
