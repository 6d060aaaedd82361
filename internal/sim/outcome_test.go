package sim

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want Outcome
	}{
		{"quota 12 win at 6", Inputs{Destroyed: 6, Grounded: 0, Quota: 12}, OutcomeWin},
		{"quota 12 five kills ongoing", Inputs{Destroyed: 5, Grounded: 0, Quota: 12}, OutcomeOngoing},
		{"quota 12 lose at 7 ground", Inputs{Destroyed: 0, Grounded: 7, Quota: 12}, OutcomeLose},
		{"quota 12 six ground ongoing", Inputs{Destroyed: 0, Grounded: 6, Quota: 12}, OutcomeOngoing},
		{"quota 13 win at 7", Inputs{Destroyed: 7, Quota: 13}, OutcomeWin},
		{"quota 13 six-six ongoing", Inputs{Destroyed: 6, Grounded: 6, Quota: 13}, OutcomeOngoing},
		{"quota 13 six-six resolved loses", Inputs{Destroyed: 6, Grounded: 6, Quota: 13, SpawnComplete: true}, OutcomeLose},
		{"quota 12 six-six win takes precedence", Inputs{Destroyed: 6, Grounded: 6, Quota: 12}, OutcomeWin},
		{"spawn complete but hostiles alive", Inputs{Destroyed: 3, Grounded: 3, Quota: 12, SpawnComplete: true, AnyAlive: true}, OutcomeOngoing},
		{"spawn complete none alive short of win", Inputs{Destroyed: 5, Grounded: 4, Quota: 12, SpawnComplete: true}, OutcomeLose},
		{"alive flag ignored before spawn complete", Inputs{Destroyed: 1, Quota: 12}, OutcomeOngoing},
		{"quota 1 single kill wins", Inputs{Destroyed: 1, Quota: 1}, OutcomeWin},
		{"quota 1 single ground loses", Inputs{Grounded: 1, Quota: 1}, OutcomeLose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.in); got != tt.want {
				t.Errorf("Evaluate(%+v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestWinIffMajorityDestroyed(t *testing.T) {
	for quota := 1; quota <= 30; quota++ {
		for destroyed := 0; destroyed <= quota; destroyed++ {
			for grounded := 0; destroyed+grounded <= quota; grounded++ {
				for _, complete := range []bool{false, true} {
					in := Inputs{
						Destroyed:     destroyed,
						Grounded:      grounded,
						Quota:         quota,
						SpawnComplete: complete,
					}
					got := Evaluate(in)
					if (got == OutcomeWin) != (destroyed >= WinThreshold(quota)) {
						t.Fatalf("Evaluate(%+v) = %s", in, got)
					}
				}
			}
		}
	}
}

func TestThresholds(t *testing.T) {
	if WinThreshold(12) != 6 || LoseThreshold(12) != 6 {
		t.Errorf("quota 12: win %d lose %d", WinThreshold(12), LoseThreshold(12))
	}
	if WinThreshold(13) != 7 || LoseThreshold(13) != 6 {
		t.Errorf("quota 13: win %d lose %d", WinThreshold(13), LoseThreshold(13))
	}
}
