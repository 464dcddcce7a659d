// Package loader reads Temoa-style model tables and turns them into the
// network data the trace engine consumes.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netcheck/pkg/network"
	"github.com/dd0wney/cluso-netcheck/pkg/validation"
)

// Dataset is the raw model tables. Field order in the row types matches the
// column order of the database queries.
type Dataset struct {
	Commodities     []CommodityRow       `yaml:"commodities" validate:"required,min=1,dive"`
	Periods         []PeriodRow          `yaml:"periods" validate:"required,min=1,dive"`
	Demands         []DemandRow          `yaml:"demands" validate:"dive"`
	Efficiency      []EfficiencyRow      `yaml:"efficiency" validate:"dive"`
	LifetimeTech    []LifetimeTechRow    `yaml:"lifetime_tech" validate:"dive"`
	LifetimeProcess []LifetimeProcessRow `yaml:"lifetime_process" validate:"dive"`
	LinkedTechs     []LinkedTechRow      `yaml:"linked_techs" validate:"dive"`
}

type CommodityRow struct {
	Name string `yaml:"name" validate:"required,ident"`
	Flag string `yaml:"flag" validate:"required,oneof=s p d e"`
}

type PeriodRow struct {
	Year   int  `yaml:"year" validate:"gt=0"`
	Future bool `yaml:"future"`
}

type DemandRow struct {
	Region    string `yaml:"region" validate:"required,ident"`
	Period    int    `yaml:"period" validate:"gt=0"`
	Commodity string `yaml:"commodity" validate:"required,ident"`
}

type EfficiencyRow struct {
	Region  string `yaml:"region" validate:"required,ident"`
	Input   string `yaml:"input" validate:"required,ident"`
	Tech    string `yaml:"tech" validate:"required,ident"`
	Vintage int    `yaml:"vintage" validate:"gt=0"`
	Output  string `yaml:"output" validate:"required,ident"`
}

type LifetimeTechRow struct {
	Region string `yaml:"region" validate:"required,ident"`
	Tech   string `yaml:"tech" validate:"required,ident"`
	Life   int    `yaml:"life" validate:"gt=0"`
}

type LifetimeProcessRow struct {
	Region  string `yaml:"region" validate:"required,ident"`
	Tech    string `yaml:"tech" validate:"required,ident"`
	Vintage int    `yaml:"vintage" validate:"gt=0"`
	Life    int    `yaml:"life" validate:"gt=0"`
}

type LinkedTechRow struct {
	Region   string `yaml:"region" validate:"required,ident"`
	Driver   string `yaml:"driver" validate:"required,ident"`
	Emission string `yaml:"emission" validate:"required,ident"`
	Driven   string `yaml:"driven" validate:"required,ident,nefield=Driver"`
}

// Source produces a dataset.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// FileSource reads a YAML dataset from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

// LoadFile reads and validates a YAML dataset.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes and validates a YAML dataset. Unknown keys are errors.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty dataset")
		}
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks field constraints and that every commodity referenced by
// an efficiency, demand or linked-tech row is declared.
func (ds *Dataset) Validate() error {
	if err := validation.ValidateStruct(ds); err != nil {
		return err
	}

	declared := make(network.StringSet, len(ds.Commodities))
	for _, c := range ds.Commodities {
		declared.Add(c.Name)
	}
	cv := validation.NewConfigValidator("Dataset")
	for i, e := range ds.Efficiency {
		cv.When(!declared.Has(e.Input), func(v *validation.ConfigValidator) {
			v.Custom(fmt.Sprintf("efficiency[%d].input", i), undeclared(e.Input))
		})
		cv.When(!declared.Has(e.Output), func(v *validation.ConfigValidator) {
			v.Custom(fmt.Sprintf("efficiency[%d].output", i), undeclared(e.Output))
		})
	}
	for i, d := range ds.Demands {
		cv.When(!declared.Has(d.Commodity), func(v *validation.ConfigValidator) {
			v.Custom(fmt.Sprintf("demands[%d].commodity", i), undeclared(d.Commodity))
		})
	}
	for i, lt := range ds.LinkedTechs {
		cv.When(!declared.Has(lt.Emission), func(v *validation.ConfigValidator) {
			v.Custom(fmt.Sprintf("linked_techs[%d].emission", i), undeclared(lt.Emission))
		})
	}
	return cv.Validate()
}

func undeclared(name string) func() error {
	return func() error {
		return fmt.Errorf("commodity %q is not declared", name)
	}
}
