package client

import (
	"fmt"

	"github.com/tomz197/flak/internal/draw"
	"github.com/tomz197/flak/internal/sim"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On screen transitions do a full terminal clear so text from the
	// previous screen doesn't persist.
	if c.state.Screen != c.state.prevScreen {
		draw.ClearScreen(c.chunkWriter)
		c.canvas.ForceRedraw()
		c.state.prevScreen = c.state.Screen
	}

	c.canvas.Clear()

	switch c.state.Screen {
	case ScreenMenu:
		renderMenu(c.canvas)
	case ScreenPlaying:
		renderPlaying(c.canvas, c.session.Snapshot(), c.state.NoAmmo > 0)
	case ScreenResult:
		renderPlaying(c.canvas, c.session.Snapshot(), false)
		renderResult(c.canvas, *c.state.Result)
	}

	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)
	return c.chunkWriter.Flush()
}

var menuLines = []string{
	"Choose difficulty:",
	"",
	"  1 - Easy",
	"  2 - Medium",
	"  3 - Hard",
	"",
	"Use keys 1/2/3 or Enter",
}

// renderMenu draws the difficulty menu box.
func renderMenu(cv *draw.Canvas) {
	const boxW, boxH = 36, 10
	left := (cv.Width() - boxW) / 2
	top := (cv.Height() - boxH) / 2

	for x := left; x < left+boxW; x++ {
		cv.Set(x, top, '─')
		cv.Set(x, top+boxH-1, '─')
	}
	for y := top; y < top+boxH; y++ {
		cv.Set(left, y, '│')
		cv.Set(left+boxW-1, y, '│')
	}
	cv.Set(left, top, '┌')
	cv.Set(left+boxW-1, top, '┐')
	cv.Set(left, top+boxH-1, '└')
	cv.Set(left+boxW-1, top+boxH-1, '┘')

	for i, line := range menuLines {
		cv.Text(left+2, top+1+i, line)
	}
	cv.TextCentered(top+boxH+1, "Q to quit")
}

// renderPlaying draws the field, entities and HUD from a snapshot.
func renderPlaying(cv *draw.Canvas, snap sim.Snapshot, noAmmo bool) {
	w, h := snap.Field.Width, snap.Field.Height
	cv.Box()

	cv.Text(1, 0, " FLAK - hold the sky!  Press Q to quit ")
	cv.Text(1, 1, fmt.Sprintf("Destroyed: %d    Ground hits: %d    Spawned: %d/%d",
		snap.Counts.Destroyed, snap.Counts.Grounded, snap.Counts.Spawned, snap.Profile.Quota))

	// Battery, top right
	bx := w - 28
	cv.Text(bx, 2, fmt.Sprintf("Battery (k=%d):", len(snap.Slots)))
	for i, loaded := range snap.Slots {
		glyph := draw.GlyphEmpty
		if loaded {
			glyph = draw.GlyphLoaded
		}
		cv.Set(bx+(i%8)*3, 3+i/8, glyph)
	}
	cv.Text(bx, 6, "Aim: "+snap.Heading.Label())

	ground := snap.Field.GroundRow()
	for x := 0; x < w-1; x++ {
		cv.Set(x, ground, draw.GlyphGround)
	}

	for _, hv := range snap.LiveHostiles() {
		if hv.Y >= 0 && hv.Y < ground && hv.X >= 0 && hv.X < w-1 {
			cv.Set(hv.X, hv.Y, draw.GlyphHostile)
		}
	}
	for _, pv := range snap.ActiveProjectiles() {
		if pv.Y >= 0 && pv.Y < ground && pv.X >= 0 && pv.X < w-1 {
			cv.Set(pv.X, pv.Y, draw.GlyphProjectile)
		}
	}

	if noAmmo {
		cv.Text(bx, 7, "No rockets available!")
	}

	cv.Text(1, h-1, "Objective: shoot at least 50% of enemies to win.")
}

// renderResult overlays the outcome banner.
func renderResult(cv *draw.Canvas, res sim.Result) {
	banner := ResultBanner(res)
	cx, cy := cv.Width()/2, cv.Height()/2
	cv.Text(cx-8, cy, banner)
	cv.Text(cx-10, cy+2, "Press any key to exit")
}

// ResultBanner is the end-of-game line: kills for a win, ground hits for a
// loss.
func ResultBanner(res sim.Result) string {
	switch res.Outcome {
	case sim.OutcomeWin:
		return fmt.Sprintf("YOU WIN! (%d/%d)", res.Counts.Destroyed, res.Profile.Quota)
	case sim.OutcomeLose:
		return fmt.Sprintf("YOU LOSE! (%d/%d)", res.Counts.Grounded, res.Profile.Quota)
	default:
		return "GAME ABORTED"
	}
}
