// Package world holds the shared entity registry: hostiles, projectiles and
// the aggregate counters read by the outcome evaluator and the renderer.
package world

import (
	"fmt"
	"strings"
)

// Heading is one of the five fixed launch directions.
type Heading int

const (
	HeadingUp      Heading = iota // 90 degrees, straight up
	HeadingUpLeft                 // 45 degrees to the left
	HeadingUpRight                // 45 degrees to the right
	HeadingLeft                   // horizontal left
	HeadingRight                  // horizontal right
)

// Headings lists every valid heading.
var Headings = []Heading{HeadingUp, HeadingUpLeft, HeadingUpRight, HeadingLeft, HeadingRight}

// Delta returns the per-tick step for the heading. Negative dy is up.
func (h Heading) Delta() (dx, dy int) {
	switch h {
	case HeadingUpLeft:
		return -1, -1
	case HeadingUpRight:
		return 1, -1
	case HeadingLeft:
		return -1, 0
	case HeadingRight:
		return 1, 0
	default:
		return 0, -1
	}
}

// Valid reports whether h is one of the five headings.
func (h Heading) Valid() bool {
	return h >= HeadingUp && h <= HeadingRight
}

func (h Heading) String() string {
	switch h {
	case HeadingUp:
		return "up"
	case HeadingUpLeft:
		return "up-left"
	case HeadingUpRight:
		return "up-right"
	case HeadingLeft:
		return "left"
	case HeadingRight:
		return "right"
	default:
		return fmt.Sprintf("Heading(%d)", int(h))
	}
}

// Label is the aim text shown in the HUD.
func (h Heading) Label() string {
	switch h {
	case HeadingUpLeft:
		return `45° (\)`
	case HeadingUpRight:
		return "45° (/)"
	case HeadingLeft:
		return "180° left (--)"
	case HeadingRight:
		return "180° right (--)"
	default:
		return "90° (|)"
	}
}

// ParseHeading parses a heading name as produced by String.
func ParseHeading(s string) (Heading, error) {
	for _, h := range Headings {
		if strings.EqualFold(s, h.String()) {
			return h, nil
		}
	}
	return HeadingUp, fmt.Errorf("unknown heading %q", s)
}

// Fate is the lifecycle state of a hostile. Descending is the only
// non-terminal state; exactly one of Destroyed or Grounded is ever entered.
type Fate int

const (
	FateDescending Fate = iota
	FateDestroyed
	FateGrounded
)

func (f Fate) String() string {
	switch f {
	case FateDescending:
		return "descending"
	case FateDestroyed:
		return "destroyed"
	case FateGrounded:
		return "grounded"
	default:
		return fmt.Sprintf("Fate(%d)", int(f))
	}
}

// Hostile is a descending enemy. Its fields are guarded by the registry's
// hostile lock; only its own motion task moves it, while a colliding
// projectile task may retire it.
type Hostile struct {
	ID     int64
	X, Y   int
	Fate   Fate
	exited bool // Motion task has returned; entry may be swept
}

// Alive reports whether the hostile is still descending.
func (h *Hostile) Alive() bool {
	return h.Fate == FateDescending
}

// retire moves a live hostile to a terminal fate. Retiring twice means two
// tasks both believed they won the hostile, which is a locking bug.
func (h *Hostile) retire(f Fate) {
	if h.Fate != FateDescending {
		panic(fmt.Sprintf("world: hostile %d retired as %s after already %s", h.ID, f, h.Fate))
	}
	h.Fate = f
}

// Projectile is a rocket travelling along a fixed heading. Its fields are
// guarded by the registry's projectile lock and written only by its own task.
type Projectile struct {
	ID      int64
	X, Y    int
	Heading Heading
	Active  bool
	exited  bool
}

// ProjectileResult is the outcome of one projectile step.
type ProjectileResult int

const (
	ProjectileTraveling ProjectileResult = iota
	ProjectileHit
	ProjectileExited
)

func (r ProjectileResult) String() string {
	switch r {
	case ProjectileTraveling:
		return "traveling"
	case ProjectileHit:
		return "hit"
	case ProjectileExited:
		return "exited"
	default:
		return fmt.Sprintf("ProjectileResult(%d)", int(r))
	}
}

// Done reports whether the projectile reached a terminal state.
func (r ProjectileResult) Done() bool {
	return r != ProjectileTraveling
}
