package viable

import (
	"strconv"

	"github.com/dd0wney/cluso-netcheck/pkg/network"
)

// Filters are the projections of the surviving techs handed to the data
// loading stage. Region-bearing sets accept region-group labels.
type Filters struct {
	RITVO *Set `yaml:"ritvo"` // region, input, tech, vintage, output
	RTV   *Set `yaml:"rtv"`   // region, tech, vintage
	RT    *Set `yaml:"rt"`    // region, tech
	RPIT  *Set `yaml:"rpit"`  // region, period, input, tech
	RPTO  *Set `yaml:"rpto"`  // region, period, tech, output

	Techs       *Set `yaml:"t"`
	Vintages    *Set `yaml:"v"`
	Inputs      *Set `yaml:"ic"`
	Outputs     *Set `yaml:"oc"`
	Commodities *Set `yaml:"c"`
}

// NewFilters returns empty filters with region-group rules on position 0 of
// every region-bearing set.
func NewFilters() *Filters {
	return &Filters{
		RITVO:       NewSet(5, DefaultRegionGroupRules(0)...),
		RTV:         NewSet(3, DefaultRegionGroupRules(0)...),
		RT:          NewSet(2, DefaultRegionGroupRules(0)...),
		RPIT:        NewSet(4, DefaultRegionGroupRules(0)...),
		RPTO:        NewSet(4, DefaultRegionGroupRules(0)...),
		Techs:       NewSet(1),
		Vintages:    NewSet(1),
		Inputs:      NewSet(1),
		Outputs:     NewSet(1),
		Commodities: NewSet(1),
	}
}

// AddTech records t as live in period.
func (f *Filters) AddTech(period int, t network.Tech) {
	v := strconv.Itoa(t.Vintage)
	p := strconv.Itoa(period)

	f.RITVO.Add(t.Region, t.Input, t.Name, v, t.Output)
	f.RTV.Add(t.Region, t.Name, v)
	f.RT.Add(t.Region, t.Name)
	f.RPIT.Add(t.Region, p, t.Input, t.Name)
	f.RPTO.Add(t.Region, p, t.Name, t.Output)

	f.Techs.Add(t.Name)
	f.Vintages.Add(v)
	f.Inputs.Add(t.Input)
	f.Outputs.Add(t.Output)
	f.Commodities.Add(t.Input)
	f.Commodities.Add(t.Output)
}

// ContainsProcess reports whether the vintage-bearing process survived.
func (f *Filters) ContainsProcess(t network.Tech) bool {
	return f.RITVO.Contains(t.Region, t.Input, t.Name, strconv.Itoa(t.Vintage), t.Output)
}

func (f *Filters) ContainsRTV(region, tech string, vintage int) bool {
	return f.RTV.Contains(region, tech, strconv.Itoa(vintage))
}

func (f *Filters) ContainsRT(region, tech string) bool {
	return f.RT.Contains(region, tech)
}

func (f *Filters) ContainsRPIT(region string, period int, input, tech string) bool {
	return f.RPIT.Contains(region, strconv.Itoa(period), input, tech)
}

func (f *Filters) ContainsRPTO(region string, period int, tech, output string) bool {
	return f.RPTO.Contains(region, strconv.Itoa(period), tech, output)
}

// ContainsTech reports whether any vintage of tech survived in any region.
func (f *Filters) ContainsTech(tech string) bool {
	return f.Techs.Contains(tech)
}

// ContainsCommodity reports whether c is an input or output of a live tech.
func (f *Filters) ContainsCommodity(c string) bool {
	return f.Commodities.Contains(c)
}
