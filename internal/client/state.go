package client

import (
	"time"

	"github.com/tomz197/flak/internal/input"
	"github.com/tomz197/flak/internal/sim"
)

// Screen is the phase the client is in.
type Screen int

const (
	ScreenMenu    Screen = iota // Difficulty selection
	ScreenPlaying               // Session running
	ScreenResult                // Session decided, waiting for a key
)

// State is the per-connection client state. It is only touched by the
// client loop goroutine.
type State struct {
	Screen     Screen
	prevScreen Screen
	Keys       input.Keys
	Running    bool          // Client loop running
	NoAmmo     float64       // Seconds left on the "no rockets" notice
	Result     *sim.Result   // Set once the session has shut down
	delta      time.Duration // Frame delta time
}

// NewState creates the initial client state.
func NewState() *State {
	return &State{
		Screen:     ScreenMenu,
		prevScreen: -1,
		Running:    true,
	}
}
