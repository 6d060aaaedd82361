package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// profileFile is the on-disk layout of a custom profile file:
//
//	profiles:
//	  - name: nightmare
//	    launchers: 2
//	    quota: 40
//	    step_interval: 150ms
//	    refill_delay: 1500ms
//	    spawn_interval: 200ms
type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads profiles from a YAML file and merges them over the
// presets. Entries with a preset name replace that preset.
func LoadProfiles(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading profile file: %w", err)
	}
	return ParseProfiles(data)
}

// ParseProfiles decodes YAML profile data and merges it over the presets.
func ParseProfiles(data []byte) (Profiles, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing profile file: %w", err)
	}

	profiles := DefaultProfiles()
	for _, p := range file.Profiles {
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if err := p.Validate(); err != nil {
			return nil, err
		}
		profiles[p.Name] = p
	}
	return profiles, nil
}
