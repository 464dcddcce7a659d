package validation

import (
	"strings"
	"testing"
)

type row struct {
	Region   string `yaml:"region" validate:"required,ident"`
	Tech     string `yaml:"tech" validate:"required,ident"`
	Vintage  int    `yaml:"vintage" validate:"gt=0"`
	Flag     string `yaml:"flag" validate:"omitempty,oneof=s p d e"`
	Lifetime int    `yaml:"lifetime,omitempty" validate:"gte=0"`
}

type table struct {
	Rows []row `yaml:"rows" validate:"required,min=1,dive"`
}

func TestValidateStruct(t *testing.T) {
	valid := row{Region: "R1", Tech: "coal_plant", Vintage: 2020, Flag: "p"}

	tests := []struct {
		name      string
		value     any
		errSubstr string
	}{
		{"valid row", valid, ""},
		{"missing tech", row{Region: "R1", Vintage: 2020}, "row.tech: field is required"},
		{"zero vintage", row{Region: "R1", Tech: "t", Vintage: 0}, "row.vintage: must be greater than 0"},
		{"bad flag", row{Region: "R1", Tech: "t", Vintage: 1, Flag: "x"}, "row.flag: must be one of [s p d e]"},
		{"whitespace identifier", row{Region: "R 1", Tech: "t", Vintage: 1}, `row.region: invalid identifier "R 1"`},
		{"negative lifetime", row{Region: "R1", Tech: "t", Vintage: 1, Lifetime: -1}, "row.lifetime: must be at least 0"},
		{"empty table", table{}, "table.rows: field is required"},
		{"nested row", table{Rows: []row{valid, {Region: "R1", Vintage: 1}}}, "table.rows[1].tech: field is required"},
		{"nil", nil, "cannot be nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.value)
			if tt.errSubstr == "" {
				if err != nil {
					t.Errorf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateStruct() = nil, want error containing %q", tt.errSubstr)
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("ValidateStruct() = %q, want it to contain %q", err, tt.errSubstr)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"ELC", false},
		{"R1+R2", false},
		{"R1-R2", false},
		{"<<linked tech>>", true},
		{"", true},
		{"tab\there", true},
		{strings.Repeat("x", MaxIdentifierLength+1), true},
	}

	for _, tt := range tests {
		if err := ValidateIdentifier(tt.id); (err != nil) != tt.wantErr {
			t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}
