package sim

// runSpawner creates the hostile quota one at a time, spacing creations by
// the spawn interval. Spawn-complete is only set when the whole quota was
// created.
func (s *Session) runSpawner() {
	lo, hi := s.field.SpawnColumns()
	row := s.field.SpawnRow()

	for i := 0; i < s.profile.Quota; i++ {
		if s.stopped.Load() {
			return
		}
		x := lo + s.rng.Intn(hi-lo+1)
		if !s.spawnHostile(x, row) {
			return
		}
		if !s.clock.Sleep(s.profile.SpawnInterval, s.done) {
			return
		}
	}

	s.spawnComplete.Store(true)
	s.log.Debug("spawn complete", "quota", s.profile.Quota)
}

// spawnHostile registers a hostile and starts its motion task, unless the
// session is stopping.
func (s *Session) spawnHostile(x, y int) bool {
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()

	if s.stopped.Load() {
		return false
	}
	h := s.world.AddHostile(x, y)
	s.startLocked(func() { s.runHostile(h) })
	s.log.Debug("hostile spawned", "id", h.ID, "x", x)
	return true
}
