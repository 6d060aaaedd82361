package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrUnknownDifficulty is returned when a profile name is not registered.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	// ErrInvalidProfile is returned when a profile fails validation.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Profile is the immutable parameter bundle selected once per session.
type Profile struct {
	Name          string        `yaml:"name"`
	Launchers     int           `yaml:"launchers"`      // k: launcher slots
	Quota         int           `yaml:"quota"`          // m: hostiles spawned per session
	StepInterval  time.Duration `yaml:"step_interval"`  // hostile descent cadence
	RefillDelay   time.Duration `yaml:"refill_delay"`   // per-slot reload time
	SpawnInterval time.Duration `yaml:"spawn_interval"` // gap between spawns
}

// Presets
var (
	Easy = Profile{
		Name:          "easy",
		Launchers:     3,
		Quota:         12,
		StepInterval:  700 * time.Millisecond,
		RefillDelay:   1200 * time.Millisecond,
		SpawnInterval: 900 * time.Millisecond,
	}
	Medium = Profile{
		Name:          "medium",
		Launchers:     5,
		Quota:         18,
		StepInterval:  450 * time.Millisecond,
		RefillDelay:   800 * time.Millisecond,
		SpawnInterval: 600 * time.Millisecond,
	}
	Hard = Profile{
		Name:          "hard",
		Launchers:     8,
		Quota:         25,
		StepInterval:  250 * time.Millisecond,
		RefillDelay:   350 * time.Millisecond,
		SpawnInterval: 300 * time.Millisecond,
	}
)

// Validate checks that every count and interval is positive.
func (p Profile) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	case p.Launchers <= 0:
		return fmt.Errorf("%w: %s: launchers must be positive, got %d", ErrInvalidProfile, p.Name, p.Launchers)
	case p.Quota <= 0:
		return fmt.Errorf("%w: %s: quota must be positive, got %d", ErrInvalidProfile, p.Name, p.Quota)
	case p.StepInterval <= 0:
		return fmt.Errorf("%w: %s: step_interval must be positive", ErrInvalidProfile, p.Name)
	case p.RefillDelay <= 0:
		return fmt.Errorf("%w: %s: refill_delay must be positive", ErrInvalidProfile, p.Name)
	case p.SpawnInterval <= 0:
		return fmt.Errorf("%w: %s: spawn_interval must be positive", ErrInvalidProfile, p.Name)
	}
	return nil
}

// Profiles is a set of named difficulty profiles.
type Profiles map[string]Profile

// DefaultProfiles returns the three presets keyed by name.
func DefaultProfiles() Profiles {
	return Profiles{
		Easy.Name:   Easy,
		Medium.Name: Medium,
		Hard.Name:   Hard,
	}
}

// Lookup finds a profile by case-insensitive name. The menu digits 1, 2 and 3
// are accepted as aliases for easy, medium and hard.
func (ps Profiles) Lookup(name string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "1":
		key = Easy.Name
	case "2":
		key = Medium.Name
	case "3":
		key = Hard.Name
	}
	p, ok := ps[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (have %s)", ErrUnknownDifficulty, name, strings.Join(ps.Names(), ", "))
	}
	return p, nil
}

// Names returns the registered profile names, sorted.
func (ps Profiles) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
