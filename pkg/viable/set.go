// Package viable holds the read-only membership filters produced once the
// network analysis has converged.
package viable

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// GlobalRegion is the region-group label standing for every region.
const GlobalRegion = "global"

// sep joins tuple elements into a map key; it cannot occur in identifiers
// read from model data.
const sep = "\x1f"

var (
	groupPattern  = regexp.MustCompile(`\+`)
	globalPattern = regexp.MustCompile(`^` + GlobalRegion + `$`)
)

// Exception marks position Loc of an element as a region-group label when
// Pattern matches it.
type Exception struct {
	Loc     int
	Pattern *regexp.Regexp
}

// DefaultRegionGroupRules returns the exceptions for "R1+R2" style groups and
// the global label at position loc.
func DefaultRegionGroupRules(loc int) []Exception {
	return []Exception{
		{Loc: loc, Pattern: groupPattern},
		{Loc: loc, Pattern: globalPattern},
	}
}

// Set is a set of fixed-arity string tuples with optional region-group
// exceptions. It is safe for concurrent reads once populated.
type Set struct {
	arity      int
	members    map[string]struct{}
	exceptions []Exception
	// wild indexes members with the exception position blanked out, per Loc
	wild map[int]map[string]struct{}
}

// NewSet creates an empty set of tuples of the given arity.
func NewSet(arity int, exceptions ...Exception) *Set {
	if arity < 1 {
		panic(fmt.Sprintf("viable: arity must be positive, got %d", arity))
	}
	s := &Set{
		arity:      arity,
		members:    make(map[string]struct{}),
		exceptions: exceptions,
		wild:       make(map[int]map[string]struct{}),
	}
	for _, e := range exceptions {
		if e.Loc < 0 || e.Loc >= arity {
			panic(fmt.Sprintf("viable: exception position %d out of range for arity %d", e.Loc, arity))
		}
		s.wild[e.Loc] = make(map[string]struct{})
	}
	return s
}

// Arity returns the tuple length of the set.
func (s *Set) Arity() int { return s.arity }

// Len returns the number of exact members.
func (s *Set) Len() int { return len(s.members) }

// Add inserts elem. It panics when len(elem) differs from the set's arity.
func (s *Set) Add(elem ...string) {
	if len(elem) != s.arity {
		panic(fmt.Sprintf("viable: adding %d-tuple to set of arity %d", len(elem), s.arity))
	}
	s.members[strings.Join(elem, sep)] = struct{}{}
	for loc, idx := range s.wild {
		idx[blank(elem, loc)] = struct{}{}
	}
}

// Contains reports whether elem is an exact member or, through an exception
// rule, names a region group with a member among its constituents.
func (s *Set) Contains(elem ...string) bool {
	if len(elem) != s.arity {
		return false
	}
	if _, ok := s.members[strings.Join(elem, sep)]; ok {
		return true
	}
	for _, e := range s.exceptions {
		label := elem[e.Loc]
		if !e.Pattern.MatchString(label) {
			continue
		}
		if label == GlobalRegion {
			if _, ok := s.wild[e.Loc][blank(elem, e.Loc)]; ok {
				return true
			}
			continue
		}
		probe := slices.Clone(elem)
		for _, part := range strings.Split(label, "+") {
			if part == "" {
				continue
			}
			probe[e.Loc] = part
			if _, ok := s.members[strings.Join(probe, sep)]; ok {
				return true
			}
		}
	}
	return false
}

// Members returns the exact members in lexical order.
func (s *Set) Members() [][]string {
	keys := make([]string, 0, len(s.members))
	for k := range s.members {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([][]string, len(keys))
	for i, k := range keys {
		out[i] = strings.Split(k, sep)
	}
	return out
}

// MarshalYAML writes the exact members; single-element tuples are flattened.
func (s *Set) MarshalYAML() (any, error) {
	members := s.Members()
	if s.arity == 1 {
		flat := make([]string, len(members))
		for i, m := range members {
			flat[i] = m[0]
		}
		return flat, nil
	}
	return members, nil
}

func blank(elem []string, loc int) string {
	probe := slices.Clone(elem)
	probe[loc] = ""
	return strings.Join(probe, sep)
}
