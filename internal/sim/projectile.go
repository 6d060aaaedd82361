package sim

import "github.com/tomz197/flak/internal/world"

// runProjectile moves a projectile every projectile interval until it hits a
// hostile or leaves the field. Either way the refill worker is re-notified
// on exit.
func (s *Session) runProjectile(p *world.Projectile) {
	defer func() {
		s.world.ProjectileExited(p)
		s.battery.Notify()
	}()

	for !s.stopped.Load() {
		result, victim := s.world.StepProjectile(p, s.field)
		switch result {
		case world.ProjectileHit:
			s.log.Debug("hostile destroyed", "id", victim.ID, "projectile", p.ID)
			return
		case world.ProjectileExited:
			return
		}

		if !s.clock.Sleep(s.projectileInterval, s.done) {
			return
		}
	}
}
