package codec

import (
	"reflect"
	"testing"

	"github.com/etherealgames/nexuscore/engine/state"
	"github.com/etherealgames/nexuscore/types"
)

func sampleState() *types.GameState {
	gs := state.NewGameState()
	gs.Character.Stats.Level = 3
	gs.Character.Stats.Experience = 140
	gs.Character.Inventory = []types.InventoryItem{
		{ID: "basic-sword", Name: "Training Sword", Type: types.ItemWeapon, Rarity: types.RarityCommon, Quantity: 1},
		{ID: "victory-loot", Name: "Combat Trophy", Type: types.ItemMaterial, Rarity: types.RarityRare, Quantity: 4},
	}
	gs.Character.CompletedMissions = []string{"tutorial-1", "combat-1"}
	gs.Character.Achievements = []string{"first-steps", "shadow-hunter"}
	gs.World.DiscoveredAreas = []string{"ethereal-nexus", "dark-forest"}
	return gs
}

func findPair(t *testing.T, pairs []KV, key string) string {
	t.Helper()
	for _, kv := range pairs {
		if kv.Key == key {
			return kv.Value
		}
	}
	t.Fatalf("missing pair %q", key)
	return ""
}

func TestEncode_ClampsScalars(t *testing.T) {
	gs := state.NewGameState()
	gs.Character.Stats.Health = 300
	gs.Character.Stats.Experience = -5

	pairs := Encode(gs, "w")
	if v := findPair(t, pairs, "health"); v != "255" {
		t.Errorf("health = %q, want \"255\"", v)
	}
	if v := findPair(t, pairs, "experience"); v != "0" {
		t.Errorf("experience = %q, want \"0\"", v)
	}
	// In-range values pass through untouched.
	if v := findPair(t, pairs, "attack"); v != "15" {
		t.Errorf("attack = %q, want \"15\"", v)
	}
}

func TestEncode_GuildOnlyWhenPresent(t *testing.T) {
	gs := state.NewGameState()
	bag := BagFromPairs(Encode(gs, "w"))
	if _, ok := bag["guildName"]; ok {
		t.Error("guild pairs written for guildless character")
	}

	gs.Guild = &types.Guild{Name: "Nexus Order", Rank: "Officer", Contribution: 400}
	bag = BagFromPairs(Encode(gs, "w"))
	if v, _ := bag["guildName"].(string); v != "Nexus Order" {
		t.Errorf("guildName = %q", v)
	}
	if v, _ := bag["guildContribution"].(string); v != "255" {
		t.Errorf("guildContribution = %q, want clamped \"255\"", v)
	}
}

func TestRoundTrip_InRangeState(t *testing.T) {
	gs := sampleState()
	got := Decode(BagFromPairs(Encode(gs, "w")))

	if got.Character.Stats != gs.Character.Stats {
		t.Errorf("stats: got %+v, want %+v", got.Character.Stats, gs.Character.Stats)
	}
	if !reflect.DeepEqual(got.Character.Inventory, gs.Character.Inventory) {
		t.Errorf("inventory: got %+v, want %+v", got.Character.Inventory, gs.Character.Inventory)
	}
	if !reflect.DeepEqual(got.Character.CompletedMissions, gs.Character.CompletedMissions) {
		t.Errorf("completed: got %v", got.Character.CompletedMissions)
	}
	if !reflect.DeepEqual(got.Character.Achievements, gs.Character.Achievements) {
		t.Errorf("achievements: got %v", got.Character.Achievements)
	}
	if !reflect.DeepEqual(got.World, gs.World) {
		t.Errorf("world: got %+v, want %+v", got.World, gs.World)
	}
}

func TestRoundTrip_ActiveMissions(t *testing.T) {
	gs := state.NewGameState()
	gs.Character.ActiveMissions = []types.Mission{{
		ID:           "combat-1",
		Name:         "Shadow Hunter",
		Type:         "combat",
		Difficulty:   "easy",
		IsActive:     true,
		Requirements: types.MissionRequirements{Level: 1},
	}}

	got := Decode(BagFromPairs(Encode(gs, "w")))
	if !reflect.DeepEqual(got.Character.ActiveMissions, gs.Character.ActiveMissions) {
		t.Errorf("got %+v, want %+v", got.Character.ActiveMissions, gs.Character.ActiveMissions)
	}
}

func TestEncode_DeepClampsStructured(t *testing.T) {
	gs := state.NewGameState()
	gs.Character.Inventory = []types.InventoryItem{{ID: "loot", Quantity: 999}}

	got := Decode(BagFromPairs(Encode(gs, "w")))
	if got.Character.Inventory[0].Quantity != 255 {
		t.Errorf("quantity = %d, want clamped 255", got.Character.Inventory[0].Quantity)
	}
}

func TestDecode_EmptyBagYieldsDefaults(t *testing.T) {
	got := Decode(Bag{})

	if got.Character.Stats != state.DefaultStats() {
		t.Errorf("stats = %+v, want defaults", got.Character.Stats)
	}
	if len(got.Character.Inventory) != 0 || len(got.Character.ActiveMissions) != 0 {
		t.Error("expected empty inventory and missions")
	}
	if got.World.CurrentRealm != state.StartingRealm {
		t.Errorf("realm = %s", got.World.CurrentRealm)
	}
	if !reflect.DeepEqual(got.World.UnlockedFeatures, []string{"basic-combat"}) {
		t.Errorf("features = %v", got.World.UnlockedFeatures)
	}
	if got.Guild != nil {
		t.Error("guild materialized from empty bag")
	}
}

func TestDecode_MalformedFieldsDegrade(t *testing.T) {
	bag := Bag{
		"level":          "NaN",
		"health":         "",
		"inventory":      "%%%not base64 or json%%%",
		"activeMissions": "also garbage",
	}

	got := Decode(bag)
	if got.Character.Stats.Level != 1 {
		t.Errorf("level = %d, want default 1", got.Character.Stats.Level)
	}
	if got.Character.Stats.Health != 120 {
		t.Errorf("health = %d, want default 120", got.Character.Stats.Health)
	}
	if len(got.Character.Inventory) != 0 {
		t.Errorf("inventory = %+v, want empty", got.Character.Inventory)
	}
	if len(got.Character.ActiveMissions) != 0 {
		t.Errorf("missions = %+v, want empty", got.Character.ActiveMissions)
	}
}

func TestDecode_UnwrapsArrayValues(t *testing.T) {
	// The store sometimes hands values back wrapped in one-element arrays.
	bag := Bag{
		"level":        []string{"4"},
		"currentRealm": []any{"dark-forest"},
	}
	got := Decode(bag)
	if got.Character.Stats.Level != 4 {
		t.Errorf("level = %d, want 4", got.Character.Stats.Level)
	}
	if got.World.CurrentRealm != "dark-forest" {
		t.Errorf("realm = %s", got.World.CurrentRealm)
	}
}

func TestDecode_GuildFromPairs(t *testing.T) {
	bag := Bag{
		"guildName":         "Nexus Order",
		"guildContribution": "120",
	}
	got := Decode(bag)
	if got.Guild == nil {
		t.Fatal("guild not decoded")
	}
	if got.Guild.Rank != "Member" {
		t.Errorf("rank = %s, want default Member", got.Guild.Rank)
	}
	if got.Guild.Contribution != 120 {
		t.Errorf("contribution = %d", got.Guild.Contribution)
	}
}

func TestEncode_PairOrderStable(t *testing.T) {
	a := Encode(sampleState(), "w")
	b := Encode(sampleState(), "w")
	if !reflect.DeepEqual(a, b) {
		t.Error("encoding the same state twice produced different pair lists")
	}
	if a[0].Key != "level" {
		t.Errorf("first pair = %s, want level", a[0].Key)
	}
}
