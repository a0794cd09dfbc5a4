// Package events implements the session-scoped, typed event emitter the
// front ends subscribe to. Dispatch is synchronous and single-pass:
// handlers run in subscription order on the emitting goroutine and must
// not re-enter the session.
package events

import (
	"sync"

	"github.com/etherealgames/nexuscore/types"
)

// Type identifies an event.
type Type string

const (
	EncounterStarted   Type = "encounter_started"
	CombatStateChanged Type = "combat_state_changed"
	CombatResult       Type = "combat_result"
	MissionStarted     Type = "mission_started"
	MissionCompleted   Type = "mission_completed"
	SaveStateChanged   Type = "save_state_changed"
)

// EncounterPayload accompanies EncounterStarted.
type EncounterPayload struct {
	MissionID  string
	EnemyCount int
}

// CombatPayload accompanies CombatStateChanged: the full combat view the
// display layer needs, snapshotted at emit time.
type CombatPayload struct {
	InCombat  bool
	Enemies   []types.EnemyInstance
	PlayerPos types.Vec
	Log       []string
	TargetID  int // 0 when no target is selected
}

// ResultPayload accompanies CombatResult.
type ResultPayload struct {
	Outcome string // "victory" or "defeat"
	Message string
}

// MissionPayload accompanies MissionStarted and MissionCompleted.
type MissionPayload struct {
	MissionID string
}

// SavePayload accompanies SaveStateChanged.
type SavePayload struct {
	InFlight bool
	Err      error
}

// Event is a typed notification with exactly one non-nil payload.
type Event struct {
	Type      Type
	Encounter *EncounterPayload
	Combat    *CombatPayload
	Result    *ResultPayload
	Mission   *MissionPayload
	Save      *SavePayload
}

// Handler receives dispatched events.
type Handler func(Event)

// Emitter is a session-scoped publish/subscribe hub. The zero value is
// not usable; call NewEmitter.
type Emitter struct {
	mu       sync.Mutex
	nextID   int
	handlers map[Type][]subscription
}

type subscription struct {
	id int
	h  Handler
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[Type][]subscription)}
}

// Subscribe registers a handler for one event type and returns an
// unsubscribe func.
func (e *Emitter) Subscribe(t Type, h Handler) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.handlers[t] = append(e.handlers[t], subscription{id: id, h: h})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		subs := e.handlers[t]
		for i := range subs {
			if subs[i].id == id {
				e.handlers[t] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit dispatches the event to all handlers subscribed to its type.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	subs := make([]subscription, len(e.handlers[ev.Type]))
	copy(subs, e.handlers[ev.Type])
	e.mu.Unlock()

	for _, s := range subs {
		s.h(ev)
	}
}
