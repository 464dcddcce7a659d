package loader

import (
	"cmp"
	"slices"

	"github.com/dd0wney/cluso-netcheck/pkg/logging"
	"github.com/dd0wney/cluso-netcheck/pkg/network"
	"github.com/dd0wney/cluso-netcheck/pkg/viable"
)

// DefaultLifetime applies to processes with neither a process nor a tech
// lifetime.
const DefaultLifetime = 40

type lifeKey struct {
	region, tech string
	vintage      int
}

// Build turns a dataset into network data. A process is available in period
// p when its vintage is a model period and v <= p < v+lifetime. Linked techs
// are kept only when both members are alive somewhere.
func Build(ds *Dataset, logger logging.Logger) (*network.ModelData, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	logger = logger.With(logging.Component("loader"))

	d := network.NewModelData()
	for _, c := range ds.Commodities {
		role, err := network.ParseRole(c.Flag)
		if err != nil {
			return nil, err
		}
		d.Roles[c.Name] = role
		if role == network.RoleSource {
			d.SourceCommodities.Add(c.Name)
		}
	}
	for _, dem := range ds.Demands {
		d.AddDemand(dem.Region, dem.Period, dem.Commodity)
	}

	periods := make(map[int]struct{}, len(ds.Periods))
	for _, p := range ds.Periods {
		periods[p.Year] = struct{}{}
	}

	techLife := make(map[[2]string]int, len(ds.LifetimeTech))
	for _, lt := range ds.LifetimeTech {
		techLife[[2]string{lt.Region, lt.Tech}] = lt.Life
	}
	processLife := make(map[lifeKey]int, len(ds.LifetimeProcess))
	for _, lp := range ds.LifetimeProcess {
		processLife[lifeKey{lp.Region, lp.Tech, lp.Vintage}] = lp.Life
	}

	living := make(network.StringSet)
	skipped := 0
	for _, e := range ds.Efficiency {
		if _, ok := periods[e.Vintage]; !ok {
			skipped++
			continue
		}
		life := lifetime(processLife, techLife, e)
		t := network.Tech{Region: e.Region, Input: e.Input, Name: e.Tech, Vintage: e.Vintage, Output: e.Output}
		for p := range periods {
			if e.Vintage <= p && p < e.Vintage+life {
				d.AddTech(p, t)
				living.Add(e.Tech)
			}
		}
	}
	if skipped > 0 {
		logger.Debug("skipped efficiency rows whose vintage is not a model period", logging.Count(skipped))
	}

	for _, lt := range ds.LinkedTechs {
		if !living.Has(lt.Driver) || !living.Has(lt.Driven) {
			logger.Debug("dropping linked tech with a member that is never alive",
				logging.Region(lt.Region), logging.String("driver", lt.Driver), logging.String("driven", lt.Driven))
			continue
		}
		d.LinkedTechs = append(d.LinkedTechs, network.LinkedTech{
			Region: lt.Region, Driver: lt.Driver, Emission: lt.Emission, Driven: lt.Driven,
		})
	}

	logger.Debug("built network data", logging.String("summary", d.String()))
	return d, nil
}

func lifetime(process map[lifeKey]int, tech map[[2]string]int, e EfficiencyRow) int {
	if life, ok := process[lifeKey{e.Region, e.Tech, e.Vintage}]; ok {
		return life
	}
	if life, ok := tech[[2]string{e.Region, e.Tech}]; ok {
		return life
	}
	return DefaultLifetime
}

// AnalysisPeriods returns the future periods in ascending order without the
// last one, which only marks the end of the horizon and carries no demand.
func AnalysisPeriods(ds *Dataset) []int {
	var future []int
	for _, p := range ds.Periods {
		if p.Future {
			future = append(future, p.Year)
		}
	}
	slices.Sort(future)
	future = slices.Compact(future)
	if len(future) == 0 {
		return nil
	}
	return future[:len(future)-1]
}

// FilterEfficiency keeps the efficiency rows whose process survived the
// network analysis, ordered by region, tech, vintage, input, output.
func FilterEfficiency(rows []EfficiencyRow, f *viable.Filters) []EfficiencyRow {
	var kept []EfficiencyRow
	for _, e := range rows {
		t := network.Tech{Region: e.Region, Input: e.Input, Name: e.Tech, Vintage: e.Vintage, Output: e.Output}
		if f.ContainsProcess(t) {
			kept = append(kept, e)
		}
	}
	slices.SortFunc(kept, func(a, b EfficiencyRow) int {
		return cmp.Or(
			cmp.Compare(a.Region, b.Region),
			cmp.Compare(a.Tech, b.Tech),
			cmp.Compare(a.Vintage, b.Vintage),
			cmp.Compare(a.Input, b.Input),
			cmp.Compare(a.Output, b.Output),
		)
	})
	return kept
}
