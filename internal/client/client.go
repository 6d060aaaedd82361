// Package client is the terminal front end of one game: difficulty menu,
// playing HUD and result screen. It drives a sim.Session through its command
// queue and renders session snapshots.
package client

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/flak/internal/config"
	"github.com/tomz197/flak/internal/draw"
	"github.com/tomz197/flak/internal/input"
	"github.com/tomz197/flak/internal/sim"
)

// Options configures the client.
type Options struct {
	Profiles     config.Profiles
	Difficulty   string // Skips the menu when set
	TermSizeFunc draw.TermSizeFunc
	Logger       *log.Logger
	Seed         int64
}

// Client handles rendering and input for a single terminal.
type Client struct {
	opts         Options
	state        *State
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	log          *log.Logger

	session *sim.Session
	results chan sim.Result
}

// New creates a client reading keys from r and drawing to w.
func New(r io.Reader, w io.Writer, opts Options) *Client {
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = draw.DefaultTermSizeFunc
	}
	if opts.Profiles == nil {
		opts.Profiles = config.DefaultProfiles()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	field := config.DefaultField()
	if tw, th, err := opts.TermSizeFunc(); err == nil {
		field = config.FieldForTerminal(tw, th)
	}

	return &Client{
		opts:         opts,
		state:        NewState(),
		canvas:       draw.NewCanvas(field.Width, field.Height),
		chunkWriter:  draw.NewChunkWriter(w),
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: opts.TermSizeFunc,
		log:          opts.Logger,
		results:      make(chan sim.Result, 1),
	}
}

// Run drives the client until the player quits, the input closes or ctx is
// cancelled. It returns the session result, or nil if no game was started.
func (c *Client) Run(ctx context.Context) (*sim.Result, error) {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	if c.opts.Difficulty != "" {
		p, err := c.opts.Profiles.Lookup(c.opts.Difficulty)
		if err != nil {
			return nil, err
		}
		c.startGame(ctx, p)
	}

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		if ctx.Err() != nil {
			c.state.Running = false
			break
		}

		c.processInput()
		c.processSessionEvents()
		c.updateScreen()

		switch c.state.Screen {
		case ScreenMenu:
			c.updateMenu(ctx)
		case ScreenPlaying:
			c.updatePlaying()
		case ScreenResult:
			c.updateResult()
		}

		if err := c.drawFrame(); err != nil {
			c.stopSession()
			return c.state.Result, err
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.stopSession()
	draw.ClearScreen(c.writer)
	return c.state.Result, nil
}

// processInput reads keys; a closed input ends the client.
func (c *Client) processInput() {
	c.state.Keys = c.inputStream.Read()
	if c.state.Keys.Closed {
		c.state.Running = false
	}
}

// processSessionEvents drains session events without blocking.
func (c *Client) processSessionEvents() {
	if c.session == nil {
		return
	}
	for {
		select {
		case e, ok := <-c.session.Events():
			if !ok {
				return
			}
			switch e.Type {
			case sim.EventNoAmmo:
				c.state.NoAmmo = config.NoAmmoNoticeSeconds
			case sim.EventOutcome:
				c.log.Debug("outcome received", "outcome", e.Outcome)
			}
		default:
			return
		}
	}
}

// updateScreen recenters the canvas on terminal resize and clears residue
// left outside the new canvas area.
func (c *Client) updateScreen() {
	tw, th, err := c.termSizeFunc()
	if err != nil {
		return
	}
	if c.session == nil {
		field := config.FieldForTerminal(tw, th)
		c.canvas.Resize(field.Width, field.Height)
	}
	col, row := draw.CenterOffset(tw, th, c.canvas.Width(), c.canvas.Height())
	if col != c.canvas.OffsetCol() || row != c.canvas.OffsetRow() {
		draw.ClearScreen(c.chunkWriter)
		c.canvas.ForceRedraw()
	}
	c.canvas.SetOffset(col, row)
}

// updateMenu handles difficulty selection: 1, 2 or 3, Enter for medium.
func (c *Client) updateMenu(ctx context.Context) {
	keys := c.state.Keys
	if keys.Quit {
		c.state.Running = false
		return
	}

	choice := ""
	switch {
	case keys.Number >= 1 && keys.Number <= 3:
		choice = strconv.Itoa(keys.Number)
	case keys.Enter:
		choice = config.Medium.Name
	}
	if choice == "" {
		return
	}
	p, err := c.opts.Profiles.Lookup(choice)
	if err != nil {
		c.log.Warn("menu selection", "err", err)
		return
	}
	c.startGame(ctx, p)
}

// startGame creates the session sized to the canvas and runs it in the
// background.
func (c *Client) startGame(ctx context.Context, p config.Profile) {
	field := config.Field{Width: c.canvas.Width(), Height: c.canvas.Height()}
	c.session = sim.New(sim.Options{
		Profile: p,
		Field:   field,
		Logger:  c.log,
		Seed:    c.opts.Seed,
	})
	session := c.session
	go func() {
		c.results <- session.Run(ctx)
	}()
	c.state.Screen = ScreenPlaying
}

// updatePlaying forwards keys as session commands and moves to the result
// screen once the session has shut down.
func (c *Client) updatePlaying() {
	if c.state.NoAmmo > 0 {
		c.state.NoAmmo -= c.state.delta.Seconds()
	}

	for _, cmd := range Commands(c.state.Keys) {
		if cmd.Kind == sim.CommandStop {
			c.session.RequestStop()
			continue
		}
		if !c.session.Submit(cmd) {
			c.log.Debug("command dropped", "kind", cmd.Kind)
		}
	}

	select {
	case res := <-c.results:
		c.state.Result = &res
		if res.Outcome == sim.OutcomeAborted {
			c.state.Running = false
			return
		}
		c.state.Screen = ScreenResult
	default:
	}
}

// updateResult waits for any key.
func (c *Client) updateResult() {
	if c.state.Keys.Any() {
		c.state.Running = false
	}
}

// stopSession stops a running session and waits for its result.
func (c *Client) stopSession() {
	if c.session == nil || c.state.Result != nil {
		return
	}
	c.session.RequestStop()
	res := <-c.results
	c.state.Result = &res
}

// Commands maps one batch of keys to session commands: aim first, then one
// fire per press, then stop.
func Commands(keys input.Keys) []sim.Command {
	var cmds []sim.Command
	if keys.Aimed {
		cmds = append(cmds, sim.Command{Kind: sim.CommandSetHeading, Heading: keys.Aim})
	}
	for i := 0; i < keys.Fire; i++ {
		cmds = append(cmds, sim.Command{Kind: sim.CommandFire})
	}
	if keys.Quit {
		cmds = append(cmds, sim.Command{Kind: sim.CommandStop})
	}
	return cmds
}
