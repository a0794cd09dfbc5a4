package engine

import (
	"math"
	"testing"

	"github.com/etherealgames/nexuscore/types"
)

func TestEnemyCount_ScalesWithLevel(t *testing.T) {
	cases := []struct{ level, want int }{
		{1, 1},
		{2, 2},
		{3, 3},
		{7, 3},
	}
	for _, c := range cases {
		enc := NewEncounter(c.level, "combat-1")
		if len(enc.Enemies) != c.want {
			t.Errorf("level %d: %d enemies, want %d", c.level, len(enc.Enemies), c.want)
		}
	}
}

func TestEnemyVariant_ByLevel(t *testing.T) {
	cases := []struct {
		level  int
		name   string
		reward int
	}{
		{1, "Shadow Creature", 25},
		{2, "Shadow Creature", 40},
		{3, "Elite Shadow", 60},
		{9, "Elite Shadow", 60},
	}
	for _, c := range cases {
		enc := NewEncounter(c.level, "default")
		en := enc.Enemies[0]
		if en.Name != c.name || en.ExperienceReward != c.reward {
			t.Errorf("level %d: got %q/%d, want %q/%d",
				c.level, en.Name, en.ExperienceReward, c.name, c.reward)
		}
	}
}

func TestEnemyStatsForMission_DifficultyTable(t *testing.T) {
	cases := []struct {
		id   string
		want EnemyStats
	}{
		{"combat-1", EnemyStats{Health: 60, Attack: 12, Defense: 6, Speed: 10, CritChance: 0.12}},
		{"combat-2", EnemyStats{Health: 100, Attack: 18, Defense: 10, Speed: 14, CritChance: 0.18}},
		{"combat-3", EnemyStats{Health: 140, Attack: 28, Defense: 14, Speed: 18, CritChance: 0.25}},
		{"tutorial-1", EnemyStats{Health: 40, Attack: 7, Defense: 3, Speed: 7, CritChance: 0.08}},
		{"no-such", EnemyStats{Health: 40, Attack: 7, Defense: 3, Speed: 7, CritChance: 0.08}},
	}
	for _, c := range cases {
		if got := EnemyStatsForMission(c.id); got != c.want {
			t.Errorf("%s: got %+v, want %+v", c.id, got, c.want)
		}
	}
}

func TestNewEncounter_CirclePlacement(t *testing.T) {
	// Single enemy sits at angle 0, radius 0.3 from center.
	enc := NewEncounter(1, "combat-1")
	en := enc.Enemies[0]
	if math.Abs(en.Pos.X-0.8) > 1e-9 || math.Abs(en.Pos.Y-0.5) > 1e-9 {
		t.Errorf("enemy at (%v,%v), want (0.8,0.5)", en.Pos.X, en.Pos.Y)
	}
	if enc.PlayerPos != PlayerSpawn {
		t.Errorf("player at %+v, want %+v", enc.PlayerPos, PlayerSpawn)
	}
}

func TestNewEncounter_PositionsWithinArena(t *testing.T) {
	for level := 1; level <= 5; level++ {
		enc := NewEncounter(level, "combat-3")
		for _, en := range enc.Enemies {
			if en.Pos.X < arenaMin || en.Pos.X > arenaMax ||
				en.Pos.Y < arenaMin || en.Pos.Y > arenaMax {
				t.Errorf("level %d enemy %d outside arena: %+v", level, en.ID, en.Pos)
			}
		}
	}
}

func TestClosestLivingEnemy_SkipsDead(t *testing.T) {
	enc := NewEncounter(3, "combat-3")
	// Kill the nearest enemy to the player spawn.
	nearest, _ := enc.ClosestLivingEnemy(enc.PlayerPos)
	nearest.Health = 0

	next, dist := enc.ClosestLivingEnemy(enc.PlayerPos)
	if next == nil {
		t.Fatal("expected a living enemy")
	}
	if next.ID == nearest.ID {
		t.Error("dead enemy returned as closest")
	}
	if dist != Distance(enc.PlayerPos, next.Pos) {
		t.Errorf("distance %v does not match position", dist)
	}
}

func TestClosestLivingEnemy_EmptyRoster(t *testing.T) {
	enc := NewEncounter(1, "combat-1")
	enc.Enemies[0].Health = 0
	if en, _ := enc.ClosestLivingEnemy(types.Vec{X: 0.5, Y: 0.5}); en != nil {
		t.Errorf("expected nil, got enemy %d", en.ID)
	}
}
