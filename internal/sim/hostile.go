package sim

import "github.com/tomz197/flak/internal/world"

// runHostile descends one row per step interval until the hostile is
// grounded or found destroyed by a projectile.
func (s *Session) runHostile(h *world.Hostile) {
	defer s.world.HostileExited(h)

	ground := s.field.GroundRow()
	for !s.stopped.Load() {
		if !s.clock.Sleep(s.profile.StepInterval, s.done) {
			return
		}
		if s.stopped.Load() {
			return
		}

		fate, done := s.world.StepHostile(h, ground)
		if !done {
			continue
		}
		if fate == world.FateGrounded {
			s.log.Debug("hostile grounded", "id", h.ID)
		}
		return
	}
}
