package sim

import (
	"github.com/tomz197/flak/internal/config"
	"github.com/tomz197/flak/internal/world"
)

// CommandKind identifies an external command.
type CommandKind int

const (
	CommandSetHeading CommandKind = iota
	CommandFire
	CommandStop
)

// Command is an input from the player, queued with Submit.
type Command struct {
	Kind    CommandKind
	Heading world.Heading // For CommandSetHeading
}

// EventType identifies a session event.
type EventType int

const (
	EventFired   EventType = iota // A rocket was launched
	EventNoAmmo                   // Fire requested with every slot empty
	EventOutcome                  // The session outcome was decided
)

// Event is sent from the session to its front end.
type Event struct {
	Type         EventType
	Slot         int   // Slot consumed, for EventFired
	ProjectileID int64 // For EventFired
	Outcome      Outcome
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	world.Snapshot
	Slots         []bool
	Heading       world.Heading
	Profile       config.Profile
	Field         config.Field
	SpawnComplete bool
	Outcome       Outcome
}

// Snapshot copies the current state. Entity locks are taken first and
// released before the battery lock, so the two are never held together.
func (s *Session) Snapshot() Snapshot {
	ws := s.world.Snapshot()
	return Snapshot{
		Snapshot:      ws,
		Slots:         s.battery.Slots(),
		Heading:       s.Heading(),
		Profile:       s.profile,
		Field:         s.field,
		SpawnComplete: s.spawnComplete.Load(),
		Outcome:       s.Outcome(),
	}
}

// SetHeading changes the aim used by subsequent Fire calls. Invalid headings
// are ignored.
func (s *Session) SetHeading(h world.Heading) {
	if !h.Valid() {
		return
	}
	s.heading.Store(int32(h))
}

// Heading returns the current aim.
func (s *Session) Heading() world.Heading {
	return world.Heading(s.heading.Load())
}

// Fire consumes one loaded slot and launches a projectile along the current
// heading. It returns false when no slot is loaded or the session is
// stopping.
func (s *Session) Fire() bool {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()

	if s.stopped.Load() {
		return false
	}

	slot, ok := s.battery.TryConsume()
	if !ok {
		s.emit(Event{Type: EventNoAmmo})
		return false
	}

	heading := s.Heading()
	x, y := s.field.LaunchPoint()
	p := s.world.AddProjectile(x, y, heading)
	s.startLocked(func() { s.runProjectile(p) })
	s.emit(Event{Type: EventFired, Slot: slot, ProjectileID: p.ID})
	s.log.Debug("rocket fired", "slot", slot, "heading", heading, "projectile", p.ID)
	return true
}

// Submit queues a command for the command task without blocking. It returns
// false if the command was dropped because the queue is full or the session
// is stopping.
func (s *Session) Submit(cmd Command) bool {
	if s.stopped.Load() {
		return false
	}
	select {
	case s.commands <- cmd:
		return true
	default:
		return false
	}
}

// Events returns the session event stream. It is closed after Run has shut
// every task down.
func (s *Session) Events() <-chan Event {
	return s.events
}

// runCommands is the command intake task.
func (s *Session) runCommands() {
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.commands:
			if s.stopped.Load() {
				return
			}
			s.apply(cmd)
		}
	}
}

func (s *Session) apply(cmd Command) {
	switch cmd.Kind {
	case CommandSetHeading:
		s.SetHeading(cmd.Heading)
	case CommandFire:
		s.Fire()
	case CommandStop:
		s.RequestStop()
	}
}
