package engine

import (
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/etherealgames/nexuscore/types"
)

// seqSource replays a fixed sequence of draws, cycling at the end.
// Mutex-guarded so session tests can share it with the movement tick.
type seqSource struct {
	mu    sync.Mutex
	draws []float64
	i     int
}

func (s *seqSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.draws[s.i%len(s.draws)]
	s.i++
	return v
}

func TestPlayerStrike_DamageFormula(t *testing.T) {
	// Max roll with attack 15: floor(0.99*15*0.8)+1 = 12.
	src := &seqSource{draws: []float64{0.99, 0.99, 0.99}}
	s := PlayerStrike(15, src)
	if s.Damage != 12 || s.Crit || s.Miss {
		t.Errorf("got %+v, want damage 12, no crit, no miss", s)
	}
}

func TestPlayerStrike_MinimumDamage(t *testing.T) {
	src := &seqSource{draws: []float64{0.0, 0.99, 0.99}}
	if s := PlayerStrike(15, src); s.Damage != 1 {
		t.Errorf("damage = %d, want floor of 1", s.Damage)
	}
}

func TestPlayerStrike_Crit(t *testing.T) {
	// Base floor(0.5*10*0.8)+1 = 5, crit floor(5*2.2) = 11.
	src := &seqSource{draws: []float64{0.5, 0.0, 0.99}}
	s := PlayerStrike(10, src)
	if !s.Crit || s.Damage != 11 {
		t.Errorf("got %+v, want crit for 11", s)
	}
}

func TestPlayerStrike_MissZeroesDamage(t *testing.T) {
	src := &seqSource{draws: []float64{0.5, 0.99, 0.0}}
	s := PlayerStrike(10, src)
	if !s.Miss || s.Damage != 0 {
		t.Errorf("got %+v, want miss for 0", s)
	}
}

func TestPlayerStrike_MissedCritStaysZero(t *testing.T) {
	// Miss zeroes before the crit multiplier, so a missed crit deals 0.
	src := &seqSource{draws: []float64{0.5, 0.0, 0.05}}
	s := PlayerStrike(10, src)
	if !s.Miss || !s.Crit || s.Damage != 0 {
		t.Errorf("got %+v, want missed crit for 0", s)
	}
}

func TestEnemyStrike_DamageFormula(t *testing.T) {
	// Max roll with attack 7: floor(0.99*7*0.9)+1 = 7.
	src := &seqSource{draws: []float64{0.99, 0.99, 0.99}}
	s := EnemyStrike(7, 0.08, src)
	if s.Damage != 7 || s.Crit || s.Miss {
		t.Errorf("got %+v, want damage 7, no crit, no miss", s)
	}
}

func TestEnemyStrike_CritUsesTableChance(t *testing.T) {
	// 0.20 crits at combat-3's 0.25 chance but not at combat-1's 0.12.
	src := &seqSource{draws: []float64{0.5, 0.20, 0.99}}
	if s := EnemyStrike(28, 0.25, src); !s.Crit {
		t.Errorf("got %+v, want crit at 0.25 chance", s)
	}
	src = &seqSource{draws: []float64{0.5, 0.20, 0.99}}
	if s := EnemyStrike(12, 0.12, src); s.Crit {
		t.Errorf("got %+v, want no crit at 0.12 chance", s)
	}
}

func TestResolveExchange_DrawOrder(t *testing.T) {
	// Player draws first: its three draws are the head of the sequence.
	src := &seqSource{draws: []float64{
		0.99, 0.99, 0.99, // player: full damage
		0.5, 0.99, 0.0, // enemy: miss
	}}
	en := &types.EnemyInstance{Attack: 7, CritChance: 0.08}
	ex := ResolveExchange(15, en, src)

	if ex.Player.Damage != 12 {
		t.Errorf("player damage = %d, want 12", ex.Player.Damage)
	}
	if !ex.Enemy.Miss || ex.Enemy.Damage != 0 {
		t.Errorf("enemy strike = %+v, want miss", ex.Enemy)
	}
}

func TestExchangeLog_Messages(t *testing.T) {
	cases := []struct {
		ex   Exchange
		want []string
	}{
		{
			Exchange{Player: Strike{Damage: 12}, Enemy: Strike{Damage: 5}},
			[]string{"You deal 12 damage to Shadow Creature!", "Shadow Creature deals 5 damage to you!"},
		},
		{
			Exchange{Player: Strike{Damage: 26, Crit: true}, Enemy: Strike{Miss: true}},
			[]string{"Critical hit! You deal 26 damage to Shadow Creature!", "Shadow Creature misses their attack!"},
		},
		{
			Exchange{Player: Strike{Miss: true}, Enemy: Strike{Damage: 16, Crit: true}},
			[]string{"You miss your attack!", "Critical hit! Shadow Creature deals 16 damage to you!"},
		},
	}
	for _, c := range cases {
		got := ExchangeLog(c.ex, "Shadow Creature")
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}

func TestApproachTarget_PartialStep(t *testing.T) {
	got := ApproachTarget(types.Vec{X: 0.2, Y: 0.4}, types.Vec{X: 0.8, Y: 0.5})
	if math.Abs(got.X-0.218) > 1e-9 || math.Abs(got.Y-0.403) > 1e-9 {
		t.Errorf("got (%v,%v), want (0.218,0.403)", got.X, got.Y)
	}
}

func TestApproachTarget_Converges(t *testing.T) {
	pos := types.Vec{X: 0.2, Y: 0.4}
	target := types.Vec{X: 0.8, Y: 0.5}
	prev := Distance(pos, target)
	for i := 0; i < 200; i++ {
		pos = ApproachTarget(pos, target)
		d := Distance(pos, target)
		if d >= prev {
			t.Fatalf("step %d: distance did not shrink (%v -> %v)", i, prev, d)
		}
		prev = d
	}
	if prev >= EngageRange {
		t.Errorf("still out of range after 200 steps: %v", prev)
	}
}

func TestVictoryXP_Tiers(t *testing.T) {
	cases := []struct{ level, want int }{
		{1, 75},
		{2, 100},
		{3, 150},
		{8, 150},
	}
	for _, c := range cases {
		if got := VictoryXP(c.level); got != c.want {
			t.Errorf("VictoryXP(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestVictoryHeal_TenthOfMaxCapped(t *testing.T) {
	s := types.CharacterStats{Health: 50, MaxHealth: 120}
	if got := VictoryHeal(s); got.Health != 62 {
		t.Errorf("health = %d, want 62", got.Health)
	}
	s.Health = 115
	if got := VictoryHeal(s); got.Health != 120 {
		t.Errorf("health = %d, want capped at 120", got.Health)
	}
}
