package world

import (
	"sync"
	"sync/atomic"

	"github.com/tomz197/flak/internal/config"
)

// Counters are the monotonically increasing aggregate counts. They are read
// without locks.
type Counters struct {
	destroyed atomic.Int64
	grounded  atomic.Int64
	spawned   atomic.Int64
	fired     atomic.Int64
}

// Counts is a point-in-time copy of Counters.
type Counts struct {
	Destroyed int
	Grounded  int
	Spawned   int
	Fired     int
}

// Load reads the counters. Spawned is read last so that an observer always
// sees Destroyed+Grounded <= Spawned.
func (c *Counters) Load() Counts {
	destroyed := c.destroyed.Load()
	grounded := c.grounded.Load()
	fired := c.fired.Load()
	spawned := c.spawned.Load()
	return Counts{
		Destroyed: int(destroyed),
		Grounded:  int(grounded),
		Spawned:   int(spawned),
		Fired:     int(fired),
	}
}

// Registry holds every hostile and projectile of a session. Hostiles and
// projectiles have separate locks; when both are needed the hostile lock is
// always taken first.
//
// Entries are addressed by pointer, which stays stable for the entry's
// lifetime. Retirement only flips state; entries are physically removed by
// Sweep once their motion task has exited.
type Registry struct {
	hostileMu sync.Mutex
	hostiles  []*Hostile // Insertion order, which is also collision scan order

	projectileMu sync.Mutex
	projectiles  []*Projectile

	nextHostileID    atomic.Int64
	nextProjectileID atomic.Int64

	counters Counters
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		hostiles:    []*Hostile{},
		projectiles: []*Projectile{},
	}
}

// Counters returns the session counters.
func (r *Registry) Counters() *Counters {
	return &r.counters
}

// AddHostile registers a live hostile at (x, y) and counts it as spawned.
// The spawn count is bumped inside the hostile critical section, so no
// retirement of this hostile can be observed before its spawn.
func (r *Registry) AddHostile(x, y int) *Hostile {
	h := &Hostile{
		ID: r.nextHostileID.Add(1),
		X:  x,
		Y:  y,
	}

	r.hostileMu.Lock()
	r.hostiles = append(r.hostiles, h)
	r.counters.spawned.Add(1)
	r.hostileMu.Unlock()

	return h
}

// StepHostile advances a hostile one row down and grounds it when it reaches
// groundRow. The liveness check, the move and the grounding write happen in
// one critical section, so a concurrent hit and a grounding can never both
// succeed. done is true when the motion task must stop.
func (r *Registry) StepHostile(h *Hostile, groundRow int) (fate Fate, done bool) {
	r.hostileMu.Lock()
	defer r.hostileMu.Unlock()

	if !h.Alive() {
		// Destroyed by a projectile since our last tick.
		return h.Fate, true
	}

	h.Y++
	if h.Y >= groundRow {
		h.retire(FateGrounded)
		r.counters.grounded.Add(1)
		return FateGrounded, true
	}
	return FateDescending, false
}

// HostileExited marks a hostile's motion task as finished.
func (r *Registry) HostileExited(h *Hostile) {
	r.hostileMu.Lock()
	h.exited = true
	r.hostileMu.Unlock()
}

// AddProjectile registers an active projectile and counts the shot.
func (r *Registry) AddProjectile(x, y int, heading Heading) *Projectile {
	p := &Projectile{
		ID:      r.nextProjectileID.Add(1),
		X:       x,
		Y:       y,
		Heading: heading,
		Active:  true,
	}

	r.projectileMu.Lock()
	r.projectiles = append(r.projectiles, p)
	r.projectileMu.Unlock()

	r.counters.fired.Add(1)
	return p
}

// StepProjectile moves a projectile one step along its heading, then checks
// for a live hostile at the new position and finally for leaving the field.
// On a hit the first matching hostile in registry order is destroyed and
// counted. A terminal result retires the projectile. The returned hostile is
// the one destroyed, if any.
func (r *Registry) StepProjectile(p *Projectile, field config.Field) (ProjectileResult, *Hostile) {
	r.hostileMu.Lock()
	defer r.hostileMu.Unlock()

	dx, dy := p.Heading.Delta()
	x, y := p.X+dx, p.Y+dy

	var victim *Hostile
	for _, h := range r.hostiles {
		if h.Alive() && h.X == x && h.Y == y {
			h.retire(FateDestroyed)
			r.counters.destroyed.Add(1)
			victim = h
			break
		}
	}

	result := ProjectileTraveling
	switch {
	case victim != nil:
		result = ProjectileHit
	case !field.Contains(x, y):
		result = ProjectileExited
	}

	r.projectileMu.Lock()
	p.X, p.Y = x, y
	if result.Done() {
		p.Active = false
	}
	r.projectileMu.Unlock()

	return result, victim
}

// ProjectileExited marks a projectile's motion task as finished. It also
// retires the projectile if the task stopped early on shutdown.
func (r *Registry) ProjectileExited(p *Projectile) {
	r.projectileMu.Lock()
	p.Active = false
	p.exited = true
	r.projectileMu.Unlock()
}

// AnyHostileAlive reports whether any registered hostile is still descending.
func (r *Registry) AnyHostileAlive() bool {
	r.hostileMu.Lock()
	defer r.hostileMu.Unlock()
	for _, h := range r.hostiles {
		if h.Alive() {
			return true
		}
	}
	return false
}

// Sweep removes retired entries whose motion task has exited and returns
// how many of each were removed.
func (r *Registry) Sweep() (hostiles, projectiles int) {
	r.hostileMu.Lock()
	kept := r.hostiles[:0]
	for _, h := range r.hostiles {
		if !h.Alive() && h.exited {
			hostiles++
			continue
		}
		kept = append(kept, h)
	}
	clear(r.hostiles[len(kept):])
	r.hostiles = kept
	r.hostileMu.Unlock()

	r.projectileMu.Lock()
	keptP := r.projectiles[:0]
	for _, p := range r.projectiles {
		if !p.Active && p.exited {
			projectiles++
			continue
		}
		keptP = append(keptP, p)
	}
	clear(r.projectiles[len(keptP):])
	r.projectiles = keptP
	r.projectileMu.Unlock()

	return hostiles, projectiles
}

// Len returns the number of registered hostiles and projectiles, including
// retired entries not yet swept.
func (r *Registry) Len() (hostiles, projectiles int) {
	r.hostileMu.Lock()
	hostiles = len(r.hostiles)
	r.hostileMu.Unlock()

	r.projectileMu.Lock()
	projectiles = len(r.projectiles)
	r.projectileMu.Unlock()
	return hostiles, projectiles
}
