package validation

import (
	"context"
	"reflect"
	"testing"
)

func TestRequireField(t *testing.T) {
	t.Run("present value is stored regardless of required", func(t *testing.T) {
		res := NewResult()
		RequireField(res, "x", false, "a", "msg")
		if v, ok := res.Value("a"); !ok || v != "x" {
			t.Errorf("Value(a) = %v, %v, want x, true", v, ok)
		}
		if res.HasErrors() {
			t.Errorf("unexpected errors: %v", res.AllErrors())
		}
	})

	t.Run("absent required records message", func(t *testing.T) {
		res := NewResult()
		RequireField(res, nil, true, "a", "needed")
		if res.HasFieldValue("a") {
			t.Error("absent value was stored")
		}
		if got := res.Messages("a"); !reflect.DeepEqual(got, []string{"needed"}) {
			t.Errorf("Messages(a) = %v, want [needed]", got)
		}
	})

	t.Run("absent optional records nothing", func(t *testing.T) {
		res := NewResult()
		RequireField(res, nil, false, "a", "needed")
		if res.HasFieldValue("a") || res.HasErrors() {
			t.Errorf("optional absent field left state: values=%v errors=%v", res.Values(), res.AllErrors())
		}
	})
}

func TestRequiredFieldCapability(t *testing.T) {
	res := NewResult()
	RequiredFieldCapability(context.Background(), res, Call{Values: []any{nil}, Field: "a", Args: []any{true, "custom"}})
	RequiredFieldCapability(context.Background(), res, Call{Values: []any{nil}, Field: "b", Args: []any{true}})
	RequiredFieldCapability(context.Background(), res, Call{Values: []any{"v"}, Field: "c"})

	if got := res.Messages("a"); !reflect.DeepEqual(got, []string{"custom"}) {
		t.Errorf("Messages(a) = %v, want [custom]", got)
	}
	if got := res.Messages("b"); !reflect.DeepEqual(got, []string{DefaultRequiredMsg}) {
		t.Errorf("Messages(b) = %v, want default message", got)
	}
	if !res.HasFieldValue("c") {
		t.Error("present value c was not stored")
	}
}

func TestGate(t *testing.T) {
	composite := Step{
		Field:       "dates",
		Fields:      []string{"dates_start", "dates_end"},
		Required:    true,
		RequiredMsg: "required",
	}
	single := Step{Field: "a", Fields: []string{"a"}, Required: true, RequiredMsg: "r"}

	t.Run("all present", func(t *testing.T) {
		res := NewResult()
		if Gate(res, composite, map[string]any{"dates_start": "2026-01-01", "dates_end": "2026-01-02"}) {
			t.Error("Gate() skipped a complete step")
		}
		if !res.HasFieldValue("dates_start") || !res.HasFieldValue("dates_end") {
			t.Errorf("present inputs not stored: %v", res.Values())
		}
	})

	t.Run("one missing", func(t *testing.T) {
		res := NewResult()
		if !Gate(res, composite, map[string]any{"dates_start": "2026-01-01"}) {
			t.Error("Gate() did not skip")
		}
		if !res.HasFieldValue("dates_start") {
			t.Error("present input not stored")
		}
		if got := res.Messages("dates_end"); !reflect.DeepEqual(got, []string{"required"}) {
			t.Errorf("Messages(dates_end) = %v", got)
		}
		if got := res.Messages("dates_start"); got != nil {
			t.Errorf("Messages(dates_start) = %v, want none", got)
		}
	})

	t.Run("all missing records one message per key", func(t *testing.T) {
		res := NewResult()
		if !Gate(res, composite, map[string]any{}) {
			t.Error("Gate() did not skip")
		}
		if got, want := res.ErrorFields(), []string{"dates_start", "dates_end"}; !reflect.DeepEqual(got, want) {
			t.Errorf("ErrorFields() = %v, want %v", got, want)
		}
		for _, key := range composite.Fields {
			if n := len(res.Messages(key)); n != 1 {
				t.Errorf("%s has %d messages, want 1", key, n)
			}
		}
	})

	t.Run("optional never skips", func(t *testing.T) {
		res := NewResult()
		optional := composite
		optional.Required = false
		if Gate(res, optional, nil) {
			t.Error("Gate() skipped an optional step")
		}
		if res.HasErrors() {
			t.Errorf("unexpected errors: %v", res.AllErrors())
		}
	})

	t.Run("nil counts as absent", func(t *testing.T) {
		if !Gate(NewResult(), single, map[string]any{"a": nil}) {
			t.Error("Gate() treated nil as present")
		}
	})

	t.Run("blank is present without blankIsMissing", func(t *testing.T) {
		if Gate(NewResult(), single, map[string]any{"a": "  "}) {
			t.Error("Gate() treated blank as absent")
		}
	})

	t.Run("blank is absent with blankIsMissing", func(t *testing.T) {
		if !gate(NewResult(), single, inputReader{input: map[string]any{"a": "  "}, blankIsMissing: true}) {
			t.Error("gate() treated blank as present")
		}
	})
}

func TestBuildCall(t *testing.T) {
	step := Step{
		Field:  "dates",
		Fields: []string{"dates_start", "dates_end"},
		Args:   []any{30},
	}

	call := BuildCall(step, map[string]any{"dates_end": "2026-02-01"})
	if want := []any{nil, "2026-02-01"}; !reflect.DeepEqual(call.Values, want) {
		t.Errorf("Values = %v, want %v", call.Values, want)
	}
	if call.Field != "dates" {
		t.Errorf("Field = %q", call.Field)
	}
	if !reflect.DeepEqual(call.Args, []any{30}) {
		t.Errorf("Args = %v", call.Args)
	}
	if call.Value() != nil {
		t.Errorf("Value() = %v, want nil", call.Value())
	}

	if arg, ok := call.Arg(0); !ok || arg != 30 {
		t.Errorf("Arg(0) = %v, %v", arg, ok)
	}
	if _, ok := call.Arg(1); ok {
		t.Error("Arg(1) reported a value")
	}
}

func TestLookup(t *testing.T) {
	input := map[string]any{
		"flat.key": "flat",
		"address": map[string]any{
			"street": "Main St",
			"geo":    map[string]string{"lat": "52.5"},
		},
		"nothing": nil,
	}

	tests := []struct {
		key   string
		want  any
		found bool
	}{
		{"flat.key", "flat", true},
		{"address.street", "Main St", true},
		{"address.geo.lat", "52.5", true},
		{"address.zip", nil, false},
		{"address.street.name", nil, false},
		{"nothing", nil, false},
		{"missing", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, found := Lookup(input, tt.key)
			if found != tt.found || got != tt.want {
				t.Errorf("Lookup(%q) = %v, %v, want %v, %v", tt.key, got, found, tt.want, tt.found)
			}
		})
	}
}
