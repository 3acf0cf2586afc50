package validation

import (
	"errors"
	"reflect"
	"testing"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
)

func TestNormalizeDefaults(t *testing.T) {
	steps, err := Normalize([]RawStep{
		{"field": "username", "method": "validateUsername"},
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("Normalize() returned %d steps, want 1", len(steps))
	}

	step := steps[0]
	if step.Field != "username" || step.Method != "validateUsername" {
		t.Errorf("step = %+v", step)
	}
	if !reflect.DeepEqual(step.Fields, []string{"username"}) {
		t.Errorf("Fields = %v, want [username]", step.Fields)
	}
	if step.Args == nil || len(step.Args) != 0 {
		t.Errorf("Args = %#v, want empty non-nil", step.Args)
	}
	if step.Required {
		t.Error("Required defaults to true")
	}
	if step.RequiredMsg != DefaultRequiredMsg {
		t.Errorf("RequiredMsg = %q", step.RequiredMsg)
	}
	if step.Composite() {
		t.Error("single-field step reported as composite")
	}
}

func TestNormalizeExplicitValues(t *testing.T) {
	steps, err := Normalize([]RawStep{
		{
			"field":       "dates",
			"fields":      []any{"dates_start", "dates_end"},
			"method":      "validateDateRange",
			"args":        []int{30},
			"required":    true,
			"requiredMsg": "Both dates are required",
		},
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	step := steps[0]
	if !reflect.DeepEqual(step.Fields, []string{"dates_start", "dates_end"}) {
		t.Errorf("Fields = %v", step.Fields)
	}
	if !reflect.DeepEqual(step.Args, []any{30}) {
		t.Errorf("Args = %#v, want [30]", step.Args)
	}
	if !step.Required || step.RequiredMsg != "Both dates are required" {
		t.Errorf("required = %v, %q", step.Required, step.RequiredMsg)
	}
	if !step.Composite() {
		t.Error("multi-field step not reported as composite")
	}
}

func TestNormalizeKeepsOrder(t *testing.T) {
	steps, err := Normalize([]RawStep{
		{"field": "a", "method": "m"},
		{"field": "b", "method": "m"},
		{"field": "c", "method": "m"},
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if steps[i].Field != want {
			t.Errorf("steps[%d].Field = %q, want %q", i, steps[i].Field, want)
		}
	}
}

func TestNormalizeRejectsMalformedSteps(t *testing.T) {
	tests := []struct {
		name string
		step RawStep
		key  string
	}{
		{"missing field", RawStep{"method": "m"}, "field"},
		{"missing method", RawStep{"field": "f"}, "method"},
		{"empty field", RawStep{"field": "", "method": "m"}, "field"},
		{"field not string", RawStep{"field": 7, "method": "m"}, "field"},
		{"method not string", RawStep{"field": "f", "method": true}, "method"},
		{"fields not sequence", RawStep{"field": "f", "method": "m", "fields": "f"}, "fields"},
		{"fields empty", RawStep{"field": "f", "method": "m", "fields": []string{}}, "fields"},
		{"fields element not string", RawStep{"field": "f", "method": "m", "fields": []any{"a", 1}}, "fields"},
		{"args mapping", RawStep{"field": "f", "method": "m", "args": map[string]any{"min": 1}}, "args"},
		{"args scalar", RawStep{"field": "f", "method": "m", "args": 5}, "args"},
		{"required not bool", RawStep{"field": "f", "method": "m", "required": "yes"}, "required"},
		{"requiredMsg not string", RawStep{"field": "f", "method": "m", "requiredMsg": 1}, "requiredMsg"},
		{"unknown key", RawStep{"field": "f", "method": "m", "requierd": true}, "requierd"},
		{"nil step", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, err := Normalize([]RawStep{{"field": "ok", "method": "m"}, tt.step})
			if steps != nil {
				t.Errorf("Normalize() returned steps %v on error", steps)
			}
			if !mdwerror.HasCode(err, mdwerror.CodePlanInvalid) {
				t.Fatalf("Normalize() error = %v, want PLAN_INVALID", err)
			}

			var mdwErr *mdwerror.Error
			if !errors.As(err, &mdwErr) {
				t.Fatalf("error %T is not *mdwerror.Error", err)
			}
			if step, _ := mdwErr.Detail("step"); step != 1 {
				t.Errorf("step detail = %v, want 1", step)
			}
			if key, _ := mdwErr.Detail("key"); key != tt.key {
				t.Errorf("key detail = %v, want %q", key, tt.key)
			}
		})
	}
}

func TestNormalizeNilOptionalKeysUseDefaults(t *testing.T) {
	steps, err := Normalize([]RawStep{
		{"field": "f", "method": "m", "fields": nil, "args": nil, "required": nil, "requiredMsg": nil},
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !reflect.DeepEqual(steps[0].Fields, []string{"f"}) || len(steps[0].Args) != 0 {
		t.Errorf("step = %+v", steps[0])
	}
}

func TestNormalizeCopiesArgs(t *testing.T) {
	args := []any{1, 2}
	steps, err := Normalize([]RawStep{{"field": "f", "method": "m", "args": args}})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	args[0] = 99
	if !reflect.DeepEqual(steps[0].Args, []any{1, 2}) {
		t.Errorf("Args = %v, want [1 2]", steps[0].Args)
	}
}
