package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPresets(t *testing.T) {
	tests := []struct {
		p                   Profile
		k, m                int
		step, refill, spawn time.Duration
	}{
		{Easy, 3, 12, 700 * time.Millisecond, 1200 * time.Millisecond, 900 * time.Millisecond},
		{Medium, 5, 18, 450 * time.Millisecond, 800 * time.Millisecond, 600 * time.Millisecond},
		{Hard, 8, 25, 250 * time.Millisecond, 350 * time.Millisecond, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.p.Name, func(t *testing.T) {
			if err := tt.p.Validate(); err != nil {
				t.Fatalf("preset invalid: %v", err)
			}
			if tt.p.Launchers != tt.k || tt.p.Quota != tt.m {
				t.Errorf("expected k=%d m=%d, got k=%d m=%d", tt.k, tt.m, tt.p.Launchers, tt.p.Quota)
			}
			if tt.p.StepInterval != tt.step || tt.p.RefillDelay != tt.refill || tt.p.SpawnInterval != tt.spawn {
				t.Errorf("unexpected timings: %+v", tt.p)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	ps := DefaultProfiles()

	for _, name := range []string{"easy", "EASY", " Easy ", "1"} {
		p, err := ps.Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		if p.Name != "easy" {
			t.Errorf("Lookup(%q) = %s, want easy", name, p.Name)
		}
	}

	if p, _ := ps.Lookup("3"); p.Name != "hard" {
		t.Errorf("expected digit 3 to select hard, got %s", p.Name)
	}

	_, err := ps.Lookup("impossible")
	if !errors.Is(err, ErrUnknownDifficulty) {
		t.Errorf("expected ErrUnknownDifficulty, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	bad := Medium
	bad.Launchers = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile for zero launchers, got %v", err)
	}

	bad = Medium
	bad.RefillDelay = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile for zero refill delay, got %v", err)
	}

	bad = Medium
	bad.Name = ""
	if err := bad.Validate(); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile for empty name, got %v", err)
	}
}

func TestParseProfiles(t *testing.T) {
	data := []byte(`
profiles:
  - name: Nightmare
    launchers: 2
    quota: 40
    step_interval: 150ms
    refill_delay: 1.5s
    spawn_interval: 200ms
  - name: easy
    launchers: 4
    quota: 10
    step_interval: 1s
    refill_delay: 1s
    spawn_interval: 1s
`)
	ps, err := ParseProfiles(data)
	if err != nil {
		t.Fatalf("ParseProfiles: %v", err)
	}

	n, err := ps.Lookup("nightmare")
	if err != nil {
		t.Fatalf("custom profile missing: %v", err)
	}
	if n.Launchers != 2 || n.Quota != 40 {
		t.Errorf("unexpected counts: %+v", n)
	}
	if n.RefillDelay != 1500*time.Millisecond {
		t.Errorf("expected refill delay 1.5s, got %v", n.RefillDelay)
	}

	e, _ := ps.Lookup("easy")
	if e.Launchers != 4 {
		t.Errorf("expected easy to be overridden, got %+v", e)
	}
	if _, err := ps.Lookup("hard"); err != nil {
		t.Errorf("presets must survive a merge: %v", err)
	}
}

func TestParseProfilesRejectsInvalid(t *testing.T) {
	data := []byte(`
profiles:
  - name: broken
    launchers: 0
    quota: 5
    step_interval: 1s
    refill_delay: 1s
    spawn_interval: 1s
`)
	if _, err := ParseProfiles(data); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}

	if _, err := ParseProfiles([]byte("profiles: [")); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := "profiles:\n  - name: drill\n    launchers: 1\n    quota: 3\n    step_interval: 10ms\n    refill_delay: 10ms\n    spawn_interval: 10ms\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ps, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	if _, err := ps.Lookup("drill"); err != nil {
		t.Errorf("drill profile missing: %v", err)
	}

	if _, err := LoadProfiles(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestField(t *testing.T) {
	f := DefaultField()
	if f.GroundRow() != 22 {
		t.Errorf("expected ground row 22, got %d", f.GroundRow())
	}
	if x, y := f.LaunchPoint(); x != 40 || y != 21 {
		t.Errorf("expected launch point (40,21), got (%d,%d)", x, y)
	}
	if lo, hi := f.SpawnColumns(); lo != 2 || hi != 76 {
		t.Errorf("expected spawn columns [2,76], got [%d,%d]", lo, hi)
	}

	inside := [][2]int{{1, 1}, {78, 21}, {40, 10}}
	for _, p := range inside {
		if !f.Contains(p[0], p[1]) {
			t.Errorf("expected (%d,%d) inside", p[0], p[1])
		}
	}
	outside := [][2]int{{0, 5}, {79, 5}, {40, 0}, {40, 22}}
	for _, p := range outside {
		if f.Contains(p[0], p[1]) {
			t.Errorf("expected (%d,%d) outside", p[0], p[1])
		}
	}

	small := FieldForTerminal(10, 5)
	if small.Width != MinFieldWidth || small.Height != MinFieldHeight {
		t.Errorf("expected clamp to minimum, got %+v", small)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("FLAK_TEST_INT", "42")
	if got := GetEnvInt("FLAK_TEST_INT", 1); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	t.Setenv("FLAK_TEST_INT", "nope")
	if got := GetEnvInt("FLAK_TEST_INT", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
	if got := GetEnv("FLAK_TEST_UNSET_KEY", "x"); got != "x" {
		t.Errorf("expected fallback, got %q", got)
	}
}
