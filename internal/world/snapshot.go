package world

// HostileView is a copy of a hostile's state at snapshot time.
type HostileView struct {
	ID    int64
	X, Y  int
	Fate  Fate
	Alive bool
}

// ProjectileView is a copy of a projectile's state at snapshot time.
type ProjectileView struct {
	ID      int64
	X, Y    int
	Heading Heading
	Active  bool
}

// Snapshot is an immutable copy of the registry for rendering.
type Snapshot struct {
	Hostiles    []HostileView
	Projectiles []ProjectileView
	Counts      Counts
}

// Snapshot copies every entry under both locks, hostiles first.
func (r *Registry) Snapshot() Snapshot {
	r.hostileMu.Lock()
	defer r.hostileMu.Unlock()
	r.projectileMu.Lock()
	defer r.projectileMu.Unlock()

	snap := Snapshot{
		Hostiles:    make([]HostileView, 0, len(r.hostiles)),
		Projectiles: make([]ProjectileView, 0, len(r.projectiles)),
	}
	for _, h := range r.hostiles {
		snap.Hostiles = append(snap.Hostiles, HostileView{
			ID:    h.ID,
			X:     h.X,
			Y:     h.Y,
			Fate:  h.Fate,
			Alive: h.Alive(),
		})
	}
	for _, p := range r.projectiles {
		snap.Projectiles = append(snap.Projectiles, ProjectileView{
			ID:      p.ID,
			X:       p.X,
			Y:       p.Y,
			Heading: p.Heading,
			Active:  p.Active,
		})
	}
	snap.Counts = r.counters.Load()
	return snap
}

// LiveHostiles returns the hostiles still descending.
func (s Snapshot) LiveHostiles() []HostileView {
	var live []HostileView
	for _, h := range s.Hostiles {
		if h.Alive {
			live = append(live, h)
		}
	}
	return live
}

// ActiveProjectiles returns the projectiles still travelling.
func (s Snapshot) ActiveProjectiles() []ProjectileView {
	var active []ProjectileView
	for _, p := range s.Projectiles {
		if p.Active {
			active = append(active, p)
		}
	}
	return active
}
