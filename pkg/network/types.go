package network

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Role classifies a commodity. Roles come from model declarations; the trace
// engine only consumes the source and demand memberships.
type Role string

const (
	RoleSource   Role = "s"
	RolePhysical Role = "p"
	RoleDemand   Role = "d"
	RoleEmission Role = "e"
)

// ParseRole converts a commodity flag into a Role.
func ParseRole(flag string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(flag))); r {
	case RoleSource, RolePhysical, RoleDemand, RoleEmission:
		return r, nil
	default:
		return "", fmt.Errorf("unknown commodity flag %q", flag)
	}
}

// Tech is one vintage of a technology converting Input into Output within a
// region. Several Techs may collapse onto the same arc in the trace graph.
type Tech struct {
	Region  string `yaml:"region" json:"region"`
	Input   string `yaml:"input" json:"input"`
	Name    string `yaml:"tech" json:"tech"`
	Vintage int    `yaml:"vintage" json:"vintage"`
	Output  string `yaml:"output" json:"output"`
}

func (t Tech) String() string {
	return fmt.Sprintf("(%s, %s, %s, %d, %s)", t.Region, t.Input, t.Name, t.Vintage, t.Output)
}

// Less orders techs by region, name, vintage, input and output.
func (t Tech) Less(o Tech) bool {
	if t.Region != o.Region {
		return t.Region < o.Region
	}
	if t.Name != o.Name {
		return t.Name < o.Name
	}
	if t.Vintage != o.Vintage {
		return t.Vintage < o.Vintage
	}
	if t.Input != o.Input {
		return t.Input < o.Input
	}
	return t.Output < o.Output
}

// LinkedTech declares that Driven may only operate alongside Driver, coupled
// through the Emission commodity the driver produces.
type LinkedTech struct {
	Region   string `yaml:"region" json:"region"`
	Driver   string `yaml:"driver" json:"driver"`
	Emission string `yaml:"emission" json:"emission"`
	Driven   string `yaml:"driven" json:"driven"`
}

// RegionPeriod keys all per-(region, period) data.
type RegionPeriod struct {
	Region string
	Period int
}

func (k RegionPeriod) String() string {
	return fmt.Sprintf("%s/%d", k.Region, k.Period)
}

// TechSet is a set of vintage-bearing techs.
type TechSet map[Tech]struct{}

// NewTechSet builds a set from the given techs.
func NewTechSet(techs ...Tech) TechSet {
	s := make(TechSet, len(techs))
	for _, t := range techs {
		s[t] = struct{}{}
	}
	return s
}

func (s TechSet) Add(t Tech) { s[t] = struct{}{} }

func (s TechSet) Has(t Tech) bool {
	_, ok := s[t]
	return ok
}

// RemoveAll deletes every member of other from s and reports how many were present.
func (s TechSet) RemoveAll(other TechSet) int {
	n := 0
	for t := range other {
		if _, ok := s[t]; ok {
			delete(s, t)
			n++
		}
	}
	return n
}

// Union adds every member of other to s.
func (s TechSet) Union(other TechSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

func (s TechSet) Clone() TechSet {
	return maps.Clone(s)
}

// Sorted returns the members ordered by Tech.Less.
func (s TechSet) Sorted() []Tech {
	out := slices.Collect(maps.Keys(s))
	slices.SortFunc(out, func(a, b Tech) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	return out
}

// StringSet is a set of commodity or technology identifiers.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given identifiers.
func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, i := range items {
		s[i] = struct{}{}
	}
	return s
}

func (s StringSet) Add(item string) { s[item] = struct{}{} }

func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the members in lexical order.
func (s StringSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}
