package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Required("Name", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.Required("Name", "value")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_ExactlyOne(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]string
		expectErr bool
	}{
		{"one set", map[string]string{"dataset": "a.yaml", "database_url": ""}, false},
		{"none set", map[string]string{"dataset": "", "database_url": ""}, true},
		{"both set", map[string]string{"dataset": "a.yaml", "database_url": "postgres://x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("input")
			cv.ExactlyOne(tt.fields)
			if cv.HasErrors() != tt.expectErr {
				t.Errorf("HasErrors() = %v, want %v", cv.HasErrors(), tt.expectErr)
			}
		})
	}
}

func TestConfigValidator_MinInt(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.MinInt("Workers", 0, 1)

	if !cv.HasErrors() {
		t.Error("Expected error for value below minimum")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.MinInt("Workers", 5, 1)

	if cv2.HasErrors() {
		t.Error("Expected no error for value at or above minimum")
	}
}

func TestConfigValidator_RangeInt(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		min       int
		max       int
		expectErr bool
	}{
		{"below range", 0, 1, 64, true},
		{"at min", 1, 1, 64, false},
		{"in range", 8, 1, 64, false},
		{"at max", 64, 1, 64, false},
		{"above range", 65, 1, 64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("TestConfig")
			cv.RangeInt("ParallelRegions", tt.value, tt.min, tt.max)

			if cv.HasErrors() != tt.expectErr {
				t.Errorf("RangeInt(%d, %d, %d) hasErrors = %v, want %v",
					tt.value, tt.min, tt.max, cv.HasErrors(), tt.expectErr)
			}
		})
	}
}

func TestConfigValidator_Positive(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Positive("Lifetime", 0)
	if !cv.HasErrors() {
		t.Error("Expected error for zero value")
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.OneOf("Level", "TRACE", []string{"DEBUG", "INFO"})
	if !cv.HasErrors() {
		t.Error("Expected error for value outside the allowed set")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.OneOf("Level", "INFO", []string{"DEBUG", "INFO"})
	if cv2.HasErrors() {
		t.Error("Expected no error for allowed value")
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("bad separator")

	cv := NewConfigValidator("TestConfig")
	cv.Custom("Separator", func() error { return sentinel })

	if !errors.Is(cv.Validate(), sentinel) {
		t.Errorf("Validate() = %v, want wrapped sentinel", cv.Validate())
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.When(false, func(v *ConfigValidator) {
		v.Required("Skipped", "")
	})
	if cv.HasErrors() {
		t.Error("When(false) should not apply validations")
	}

	cv.When(true, func(v *ConfigValidator) {
		v.Required("Applied", "")
	})
	if !cv.HasErrors() {
		t.Error("When(true) should apply validations")
	}
}

func TestConfigValidator_ValidateCombinesErrors(t *testing.T) {
	cv := NewConfigValidator("Config")
	if err := cv.Validate(); err != nil {
		t.Errorf("Validate() on clean validator = %v, want nil", err)
	}

	cv.Required("A", "").Required("B", "")
	if len(cv.Errors()) != 2 {
		t.Fatalf("Errors() = %d, want 2", len(cv.Errors()))
	}

	err := cv.Validate()
	if err == nil {
		t.Fatal("Validate() returned nil")
	}
	for _, want := range []string{"2 errors", "Config.A", "Config.B"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %q, missing %q", err, want)
		}
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "-"); got != "-" {
		t.Errorf("DefaultOr(\"\", \"-\") = %q", got)
	}
	if got := DefaultOr(4, 1); got != 4 {
		t.Errorf("DefaultOr(4, 1) = %d", got)
	}
}
