package engine

import (
	"math"
	"sync"
	"time"

	"github.com/etherealgames/nexuscore/types"
)

// MovementTick is the fixed interval between enemy movement steps.
const MovementTick = 50 * time.Millisecond

// Retargeting and step thresholds in normalized arena units.
const (
	retargetRange = 0.05 // pick a new target when this close to the old one
	settleRange   = 0.01 // no movement when this close (prevents jitter)
	orbitMin      = 0.1  // new targets land 0.1..0.3 away from the player
	orbitSpan     = 0.2
	speedMin      = 0.005 // per-tick speed, randomized once per enemy
	speedSpan     = 0.01
)

// mover is the per-enemy steering state, kept separate from combat stats.
type mover struct {
	target types.Vec
	speed  float64
}

// EnemyPosition is one entry of a movement snapshot.
type EnemyPosition struct {
	ID  int
	Pos types.Vec
}

// Movement steers the enemy roster on a fixed tick while an encounter is
// active. Each Advance produces a whole snapshot of new positions under
// the lock, so a concurrent reader never observes a half-updated enemy.
type Movement struct {
	mu     sync.Mutex
	movers map[int]*mover
	rng    Source
	stop   chan struct{}
}

// NewMovement creates a movement controller drawing speeds and targets
// from src.
func NewMovement(src Source) *Movement {
	return &Movement{
		movers: make(map[int]*mover),
		rng:    src,
	}
}

// Start begins ticking. advance is called once per tick; it must be safe
// to call from the controller goroutine. Start is a no-op if already
// running.
func (m *Movement) Start(advance func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})

	go func(stop chan struct{}) {
		ticker := time.NewTicker(MovementTick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				advance()
			}
		}
	}(m.stop)
}

// Stop signals the ticker to halt and clears all steering state. It
// does not wait for the controller goroutine: callers hold the session
// lock a tick may be blocked on, so joining here would deadlock. One
// in-flight tick may still fire after Stop; the session's phase check
// makes it a no-op.
func (m *Movement) Stop() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.movers = make(map[int]*mover)
	m.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// Running reports whether the tick goroutine is active.
func (m *Movement) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop != nil
}

// Advance computes one movement step for every living enemy in the
// encounter and returns the new positions. Dead enemies are skipped and
// their steering state dropped.
func (m *Movement) Advance(enc *Encounter, player types.Vec) []EnemyPosition {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []EnemyPosition
	for _, en := range enc.Enemies {
		if !en.Alive() {
			delete(m.movers, en.ID)
			continue
		}

		mv, ok := m.movers[en.ID]
		if !ok {
			mv = &mover{
				target: en.Pos,
				speed:  speedMin + m.rng.Float64()*speedSpan,
			}
			m.movers[en.ID] = mv
		}

		// Close to the current target: orbit a fresh point near the player.
		if Distance(en.Pos, mv.target) < retargetRange {
			angle := m.rng.Float64() * 2 * math.Pi
			radius := orbitMin + m.rng.Float64()*orbitSpan
			mv.target = types.Vec{
				X: clampArena(player.X + math.Cos(angle)*radius),
				Y: clampArena(player.Y + math.Sin(angle)*radius),
			}
		}

		pos := en.Pos
		dx := mv.target.X - pos.X
		dy := mv.target.Y - pos.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist > settleRange {
			pos.X += dx / dist * mv.speed
			pos.Y += dy / dist * mv.speed
		}

		out = append(out, EnemyPosition{ID: en.ID, Pos: pos})
	}
	return out
}

// Target returns the current steering target for an enemy id, for
// inspection. The second return is false when the enemy has no steering
// state yet.
func (m *Movement) Target(id int) (types.Vec, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.movers[id]
	if !ok {
		return types.Vec{}, false
	}
	return mv.target, true
}
