package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Set is a collection of named profiles, one per supported game/version.
type Set struct {
	Profiles []*Profile `yaml:"profiles"`
}

type rawSet struct {
	Profiles []yaml.Node `yaml:"profiles"`
}

// LoadSet reads a profile set from a YAML file with a top-level "profiles" list.
func LoadSet(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile set: %w", err)
	}

	return ParseSet(data)
}

// ParseSet decodes and validates a profile set. Each profile starts from
// Default, and names must be unique.
func ParseSet(data []byte) (*Set, error) {
	var raw rawSet
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse profile set: %w", err)
	}

	set := &Set{Profiles: make([]*Profile, 0, len(raw.Profiles))}
	seen := make(map[string]struct{}, len(raw.Profiles))

	var errs []error
	for i := range raw.Profiles {
		p := Default()
		p.Name = ""
		if err := raw.Profiles[i].Decode(p); err != nil {
			return nil, fmt.Errorf("parse profile set: profiles[%d]: %w", i, err)
		}
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[p.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate profile name %q", p.Name))
			continue
		}
		seen[p.Name] = struct{}{}
		set.Profiles = append(set.Profiles, p)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return set, nil
}

// Get returns the profile named name.
func (s *Set) Get(name string) (*Profile, bool) {
	i := slices.IndexFunc(s.Profiles, func(p *Profile) bool { return p.Name == name })
	if i < 0 {
		return nil, false
	}

	return s.Profiles[i], true
}

// Names returns the profile names in file order.
func (s *Set) Names() []string {
	names := make([]string, len(s.Profiles))
	for i, p := range s.Profiles {
		names[i] = p.Name
	}

	return names
}
