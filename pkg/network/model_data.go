package network

import (
	"fmt"
	"maps"
	"slices"
)

// ModelData is everything the trace engine needs from the model: commodity
// roles, the techs available in each (region, period), and the declared
// linked-tech couplings. The manager mutates a clone of it between passes.
type ModelData struct {
	// SourceCommodities need no upstream producer.
	SourceCommodities StringSet
	// DemandCommodities are the exogenous requirements per (region, period).
	DemandCommodities map[RegionPeriod]StringSet
	// Roles maps every declared commodity to its flag.
	Roles map[string]Role
	// LinkedTechs are the declared driver/driven couplings.
	LinkedTechs []LinkedTech

	availableTechs map[RegionPeriod]TechSet
}

// NewModelData creates empty model data ready to be filled by a loader.
func NewModelData() *ModelData {
	return &ModelData{
		SourceCommodities: make(StringSet),
		DemandCommodities: make(map[RegionPeriod]StringSet),
		Roles:             make(map[string]Role),
		availableTechs:    make(map[RegionPeriod]TechSet),
	}
}

// AvailableTechs exposes the per-(region, period) tech sets. Callers that
// replace the whole map must go through SetAvailableTechs.
func (d *ModelData) AvailableTechs() map[RegionPeriod]TechSet {
	return d.availableTechs
}

// SetAvailableTechs replaces the tech map after checking every tech is filed
// under its own region.
func (d *ModelData) SetAvailableTechs(techs map[RegionPeriod]TechSet) error {
	for key, set := range techs {
		for t := range set {
			if t.Region != key.Region {
				return fmt.Errorf("%w: key %s, tech %s", ErrRegionMismatch, key, t)
			}
		}
	}
	d.availableTechs = techs
	return nil
}

// AddTech files t as available in period p of its region.
func (d *ModelData) AddTech(period int, t Tech) {
	key := RegionPeriod{Region: t.Region, Period: period}
	set, ok := d.availableTechs[key]
	if !ok {
		set = make(TechSet)
		d.availableTechs[key] = set
	}
	set.Add(t)
}

// AddDemand declares commodity as a demand in (region, period).
func (d *ModelData) AddDemand(region string, period int, commodity string) {
	key := RegionPeriod{Region: region, Period: period}
	set, ok := d.DemandCommodities[key]
	if !ok {
		set = make(StringSet)
		d.DemandCommodities[key] = set
	}
	set.Add(commodity)
}

// Techs returns the techs available in (region, period); never nil.
func (d *ModelData) Techs(region string, period int) TechSet {
	if set, ok := d.availableTechs[RegionPeriod{Region: region, Period: period}]; ok {
		return set
	}
	return TechSet{}
}

// Demands returns the demand commodities of (region, period); never nil.
func (d *ModelData) Demands(region string, period int) StringSet {
	if set, ok := d.DemandCommodities[RegionPeriod{Region: region, Period: period}]; ok {
		return set
	}
	return StringSet{}
}

// Regions lists every region that has available techs, sorted.
func (d *ModelData) Regions() []string {
	seen := make(StringSet)
	for key := range d.availableTechs {
		seen.Add(key.Region)
	}
	return seen.Sorted()
}

// RegionTechCount counts the techs live in any period of region.
func (d *ModelData) RegionTechCount(region string) int {
	n := 0
	for key, set := range d.availableTechs {
		if key.Region == region {
			n += len(set)
		}
	}
	return n
}

// RemoveFromRegion drops every tech in orphans from all periods of region.
func (d *ModelData) RemoveFromRegion(region string, orphans TechSet) int {
	removed := 0
	for key, set := range d.availableTechs {
		if key.Region == region {
			removed += set.RemoveAll(orphans)
		}
	}
	return removed
}

// RegionInputs collects the distinct input commodities of tech across every
// period of region.
func (d *ModelData) RegionInputs(region, tech string) StringSet {
	inputs := make(StringSet)
	for key, set := range d.availableTechs {
		if key.Region != region {
			continue
		}
		for t := range set {
			if t.Name == tech {
				inputs.Add(t.Input)
			}
		}
	}
	return inputs
}

// DrivenTechs returns the techs of (region, period) that are the driven side
// of a declared link.
func (d *ModelData) DrivenTechs(region string, period int) []Tech {
	driven := make(StringSet)
	for _, lt := range d.LinkedTechs {
		if lt.Region == region {
			driven.Add(lt.Driven)
		}
	}
	var out []Tech
	for _, t := range d.Techs(region, period).Sorted() {
		if driven.Has(t.Name) {
			out = append(out, t)
		}
	}
	return out
}

// DropStrandedDriven removes, period by period, every vintage of a driven
// linked tech whose driver is no longer available in that period of region.
// A tech that is itself a driver can strand its own driven tech, so removal
// repeats until nothing changes. The removed techs are returned per key.
func (d *ModelData) DropStrandedDriven(region string) map[RegionPeriod]TechSet {
	dropped := make(map[RegionPeriod]TechSet)
	for changed := true; changed; {
		changed = false
		for key, set := range d.availableTechs {
			if key.Region != region {
				continue
			}
			active := make(StringSet)
			for t := range set {
				active.Add(t.Name)
			}
			for _, lt := range d.LinkedTechs {
				if lt.Region != region || active.Has(lt.Driver) || !active.Has(lt.Driven) {
					continue
				}
				for t := range set {
					if t.Name != lt.Driven {
						continue
					}
					delete(set, t)
					if dropped[key] == nil {
						dropped[key] = make(TechSet)
					}
					dropped[key].Add(t)
				}
				delete(active, lt.Driven)
				changed = true
			}
		}
	}
	return dropped
}

// Clone deep-copies the tech and demand maps. Slices and role maps are copied
// too so the clone can be mutated freely.
func (d *ModelData) Clone() *ModelData {
	c := &ModelData{
		SourceCommodities: maps.Clone(d.SourceCommodities),
		DemandCommodities: make(map[RegionPeriod]StringSet, len(d.DemandCommodities)),
		Roles:             maps.Clone(d.Roles),
		LinkedTechs:       slices.Clone(d.LinkedTechs),
		availableTechs:    make(map[RegionPeriod]TechSet, len(d.availableTechs)),
	}
	for k, v := range d.DemandCommodities {
		c.DemandCommodities[k] = maps.Clone(v)
	}
	for k, v := range d.availableTechs {
		c.availableTechs[k] = v.Clone()
	}
	if c.SourceCommodities == nil {
		c.SourceCommodities = make(StringSet)
	}
	if c.Roles == nil {
		c.Roles = make(map[string]Role)
	}
	return c
}

func (d *ModelData) String() string {
	techs := 0
	for _, set := range d.availableTechs {
		techs += len(set)
	}
	return fmt.Sprintf(
		"all commodities: %d, demand keys: %d, source commodities: %d, available techs: %d, linked techs: %d",
		len(d.Roles), len(d.DemandCommodities), len(d.SourceCommodities), techs, len(d.LinkedTechs),
	)
}
