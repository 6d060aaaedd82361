package config

import "time"

// Default field size in terminal cells. The client derives the real size from
// the terminal, never going below the minimum.
const (
	DefaultFieldWidth  = 80
	DefaultFieldHeight = 24
	MinFieldWidth      = 60
	MinFieldHeight     = 20
)

// Simulation timing that does not depend on difficulty.
const (
	ProjectileInterval = 70 * time.Millisecond  // Rocket step cadence
	EvalInterval       = 120 * time.Millisecond // Outcome evaluation cadence
	CommandBuffer      = 64                     // Pending commands before drops
	EventBuffer        = 32                     // Pending session events before drops
)

// Client rendering
const (
	ClientTargetFPS       = 30
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	NoAmmoNoticeSeconds   = 0.3 // How long "No rockets available!" stays up
)

// Shutdown
const (
	ShutdownGrace = 5 * time.Second // Max wait for sessions to drain on server stop
)

// Field is the playable grid. Rows grow downward; row 0 and the last column
// are border cells.
type Field struct {
	Width  int
	Height int
}

// DefaultField returns the 80x24 field.
func DefaultField() Field {
	return Field{Width: DefaultFieldWidth, Height: DefaultFieldHeight}
}

// FieldForTerminal builds a field from terminal dimensions, clamped to the
// minimum playable size.
func FieldForTerminal(width, height int) Field {
	if width < MinFieldWidth {
		width = MinFieldWidth
	}
	if height < MinFieldHeight {
		height = MinFieldHeight
	}
	return Field{Width: width, Height: height}
}

// GroundRow is the row at which a descending hostile is grounded.
func (f Field) GroundRow() int {
	return f.Height - 2
}

// SpawnColumns returns the inclusive column range hostiles spawn in.
func (f Field) SpawnColumns() (lo, hi int) {
	return 2, f.Width - 4
}

// SpawnRow is the row new hostiles appear on.
func (f Field) SpawnRow() int {
	return 1
}

// LaunchPoint is where every projectile starts: bottom centre, just above
// the ground line.
func (f Field) LaunchPoint() (x, y int) {
	return f.Width / 2, f.Height - 3
}

// Contains reports whether (x, y) is inside the area projectiles may travel.
func (f Field) Contains(x, y int) bool {
	return x >= 1 && x < f.Width-1 && y >= 1 && y < f.GroundRow()
}
