// Package report prints the end-of-session summary.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/tomz197/flak/internal/sim"
)

// Summary is the printable digest of a finished session.
type Summary struct {
	SessionID  uuid.UUID
	Difficulty string
	Outcome    sim.Outcome
	Quota      int
	Spawned    int
	Destroyed  int
	Grounded   int
	Fired      int
	Needed     int // Kills required to win
	Duration   time.Duration
}

// FromResult builds a summary from a session result.
func FromResult(res sim.Result) Summary {
	return Summary{
		SessionID:  res.ID,
		Difficulty: res.Profile.Name,
		Outcome:    res.Outcome,
		Quota:      res.Profile.Quota,
		Spawned:    res.Counts.Spawned,
		Destroyed:  res.Counts.Destroyed,
		Grounded:   res.Counts.Grounded,
		Fired:      res.Counts.Fired,
		Needed:     sim.WinThreshold(res.Profile.Quota),
		Duration:   res.Duration,
	}
}

// HitRate is the share of fired rockets that destroyed a hostile, in percent.
func (s Summary) HitRate() float64 {
	if s.Fired == 0 {
		return 0
	}
	return 100 * float64(s.Destroyed) / float64(s.Fired)
}

// Printer writes summaries, colored unless disabled.
type Printer struct {
	w       io.Writer
	title   *color.Color
	win     *color.Color
	lose    *color.Color
	aborted *color.Color
	label   *color.Color
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	newColor := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
		return c
	}
	return &Printer{
		w:       w,
		title:   newColor(color.FgCyan, color.Bold),
		win:     newColor(color.FgGreen, color.Bold),
		lose:    newColor(color.FgRed, color.Bold),
		aborted: newColor(color.FgYellow),
		label:   newColor(color.FgHiBlack),
	}
}

// Print writes the summary block.
func (p *Printer) Print(s Summary) error {
	var outcome string
	switch s.Outcome {
	case sim.OutcomeWin:
		outcome = p.win.Sprint(s.Outcome)
	case sim.OutcomeLose:
		outcome = p.lose.Sprint(s.Outcome)
	default:
		outcome = p.aborted.Sprint(s.Outcome)
	}

	lines := []struct {
		label string
		value string
	}{
		{"Outcome", outcome},
		{"Difficulty", s.Difficulty},
		{"Destroyed", fmt.Sprintf("%d (needed %d of %d)", s.Destroyed, s.Needed, s.Quota)},
		{"Ground hits", fmt.Sprintf("%d", s.Grounded)},
		{"Spawned", fmt.Sprintf("%d/%d", s.Spawned, s.Quota)},
		{"Rockets fired", fmt.Sprintf("%d (%.0f%% hit)", s.Fired, s.HitRate())},
		{"Duration", s.Duration.Round(100 * time.Millisecond).String()},
	}

	if _, err := fmt.Fprintf(p.w, "%s %s\n", p.title.Sprint("Session"), s.SessionID); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(p.w, "  %s %s\n", p.label.Sprintf("%-14s", l.label+":"), l.value); err != nil {
			return err
		}
	}
	return nil
}
