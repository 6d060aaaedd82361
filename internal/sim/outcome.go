package sim

import "fmt"

// Outcome is the state of a session as decided by Evaluate.
type Outcome int

const (
	OutcomeOngoing Outcome = iota
	OutcomeWin
	OutcomeLose
	OutcomeAborted // Stopped before a decision (quit, cancelled context)
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOngoing:
		return "ONGOING"
	case OutcomeWin:
		return "WIN"
	case OutcomeLose:
		return "LOSE"
	case OutcomeAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Decided reports whether the outcome ends the session.
func (o Outcome) Decided() bool {
	return o != OutcomeOngoing
}

// Inputs is everything the outcome rule looks at.
type Inputs struct {
	Destroyed     int
	Grounded      int
	Quota         int
	SpawnComplete bool
	AnyAlive      bool
}

// WinThreshold is ceil(quota/2): destroying this many hostiles wins.
func WinThreshold(quota int) int {
	return (quota + 1) / 2
}

// LoseThreshold is floor(quota/2): more ground hits than this loses.
// Together with WinThreshold, an exact half-half split resolves as a loss.
func LoseThreshold(quota int) int {
	return quota / 2
}

// Evaluate applies the majority rule in order: early win, early loss, final
// resolution once every hostile has spawned and none is alive, otherwise
// ongoing.
func Evaluate(in Inputs) Outcome {
	if in.Destroyed >= WinThreshold(in.Quota) {
		return OutcomeWin
	}
	if in.Grounded > LoseThreshold(in.Quota) {
		return OutcomeLose
	}
	if in.SpawnComplete && !in.AnyAlive {
		if in.Destroyed >= WinThreshold(in.Quota) {
			return OutcomeWin
		}
		return OutcomeLose
	}
	return OutcomeOngoing
}
