package draw

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Glyphs used by the game.
const (
	GlyphHostile    = 'V'
	GlyphProjectile = '*'
	GlyphGround     = '='
	GlyphLoaded     = 'O'
	GlyphEmpty      = '.'
)

// Canvas is a grid of character cells. Render only emits cells that changed
// since the previous frame.
type Canvas struct {
	width  int
	height int
	cells  []rune // Flat slice: [y * width + x], 0 means blank
	prev   []rune // What the terminal currently shows
	force  bool   // Next render repaints every cell

	// Offset for centering the canvas when the terminal is larger than the
	// field. These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
}

// NewCanvas creates a canvas of width x height cells.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		cells:  make([]rune, width*height),
		prev:   make([]rune, width*height),
		force:  true,
	}
}

// Resize changes the canvas dimensions. A size change forces a full redraw.
func (c *Canvas) Resize(width, height int) {
	if width == c.width && height == c.height {
		return
	}
	c.width = width
	c.height = height
	c.cells = make([]rune, width*height)
	c.prev = make([]rune, width*height)
	c.force = true
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// Width returns the canvas column count.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the canvas row count.
func (c *Canvas) Height() int {
	return c.height
}

// ForceRedraw makes the next Render repaint every cell, e.g. after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.force = true
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	clear(c.cells)
}

// Set puts r at (x, y), 0-based. Out-of-range cells are ignored.
func (c *Canvas) Set(x, y int, r rune) {
	if x >= 0 && x < c.width && y >= 0 && y < c.height {
		c.cells[y*c.width+x] = r
	}
}

// At returns the rune at (x, y), or 0 if blank or out of range.
func (c *Canvas) At(x, y int) rune {
	if x >= 0 && x < c.width && y >= 0 && y < c.height {
		return c.cells[y*c.width+x]
	}
	return 0
}

// Text writes s starting at (x, y), clipped to the canvas.
func (c *Canvas) Text(x, y int, s string) {
	for _, r := range s {
		c.Set(x, y, r)
		x++
	}
}

// TextCentered writes s centered on row y.
func (c *Canvas) TextCentered(y int, s string) {
	c.Text((c.width-utf8.RuneCountInString(s))/2, y, s)
}

// HLine fills row y with r.
func (c *Canvas) HLine(y int, r rune) {
	for x := 0; x < c.width; x++ {
		c.Set(x, y, r)
	}
}

// Box draws a frame around the outermost cells.
func (c *Canvas) Box() {
	if c.width < 2 || c.height < 2 {
		return
	}
	for x := 1; x < c.width-1; x++ {
		c.Set(x, 0, '─')
		c.Set(x, c.height-1, '─')
	}
	for y := 1; y < c.height-1; y++ {
		c.Set(0, y, '│')
		c.Set(c.width-1, y, '│')
	}
	c.Set(0, 0, '┌')
	c.Set(c.width-1, 0, '┐')
	c.Set(0, c.height-1, '└')
	c.Set(c.width-1, c.height-1, '┘')
}

// String returns the canvas as newline-separated rows, blanks as spaces.
func (c *Canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		row := c.cells[y*c.width : (y+1)*c.width]
		for _, r := range row {
			if r == 0 {
				r = ' '
			}
			b.WriteRune(r)
		}
		if y < c.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// Render writes every changed cell to w. Runs of adjacent changed cells on a
// row share one cursor move.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	for row := 0; row < c.height; row++ {
		off := row * c.width
		next := -1 // Column the cursor sits at after the last write on this row
		for col := 0; col < c.width; col++ {
			cur := c.cells[off+col]
			if !c.force && cur == c.prev[off+col] {
				continue
			}
			c.prev[off+col] = cur
			if cur == 0 {
				cur = ' '
			}
			if col != next {
				fmt.Fprintf(&c.renderBuf, "\033[%d;%dH", row+1+c.offsetRow, col+1+c.offsetCol)
			}
			c.renderBuf.WriteRune(cur)
			next = col + 1
		}
	}
	c.force = false

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// RenderBorder draws a box border around the canvas area when the terminal
// is larger than the canvas on either axis.
// Draws horizontal borders when there is vertical offset, vertical borders
// when there is horizontal offset, and corners when both are present.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.width + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.height + 1

	var buf strings.Builder

	if hasV {
		if hasH {
			fmt.Fprintf(&buf, "\033[%d;%dH┌%s┐", top, left, strings.Repeat("─", c.width))
			fmt.Fprintf(&buf, "\033[%d;%dH└%s┘", bottom, left, strings.Repeat("─", c.width))
		} else {
			fmt.Fprintf(&buf, "\033[%d;%dH%s", top, c.offsetCol+1, strings.Repeat("─", c.width))
			fmt.Fprintf(&buf, "\033[%d;%dH%s", bottom, c.offsetCol+1, strings.Repeat("─", c.width))
		}
	}

	if hasH {
		startRow := top + 1
		endRow := bottom
		if !hasV {
			// No horizontal borders, side bars span full canvas height
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.height + 1
		}
		for row := startRow; row < endRow; row++ {
			fmt.Fprintf(&buf, "\033[%d;%dH│\033[%d;%dH│", row, left, row, right)
		}
	}

	io.WriteString(w, buf.String())
}

// CenterOffset returns the 0-based offset that centers a canvas of the given
// size in a terminal, never negative.
func CenterOffset(termWidth, termHeight, width, height int) (col, row int) {
	col = (termWidth - width) / 2
	row = (termHeight - height) / 2
	if col < 0 {
		col = 0
	}
	if row < 0 {
		row = 0
	}
	return col, row
}
