// File: step.go
// Title: Plan Steps and Normalization
// Description: Converts loosely typed step declarations (Go literals or
//              decoded YAML, TOML and JSON) into strict, fully defaulted
//              steps. Malformed declarations are programmer errors.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.2.0: Initial implementation

package validation

import (
	"fmt"
	"reflect"
	"sort"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
)

// DefaultRequiredMsg is recorded for absent required fields when a step
// declares no message of its own
const DefaultRequiredMsg = "This field is required"

// Step declaration keys
const (
	KeyField       = "field"
	KeyFields      = "fields"
	KeyMethod      = "method"
	KeyArgs        = "args"
	KeyRequired    = "required"
	KeyRequiredMsg = "requiredMsg"
)

var knownKeys = map[string]bool{
	KeyField:       true,
	KeyFields:      true,
	KeyMethod:      true,
	KeyArgs:        true,
	KeyRequired:    true,
	KeyRequiredMsg: true,
}

// RawStep is a step declaration before normalization
type RawStep map[string]any

// Step is a normalized plan entry
type Step struct {
	Field       string       // output and error key
	Fields      []string     // raw input keys read by the step
	Method      CapabilityID // capability to invoke
	Args        []any        // extra arguments after the field key
	Required    bool
	RequiredMsg string
}

// Composite reports whether the step reads input keys other than its own
// field key
func (s Step) Composite() bool {
	return len(s.Fields) != 1 || s.Fields[0] != s.Field
}

// Normalize validates raw step declarations and fills in defaults
func Normalize(raw []RawStep) ([]Step, error) {
	return normalize(raw, DefaultRequiredMsg)
}

func normalize(raw []RawStep, defaultMsg string) ([]Step, error) {
	steps := make([]Step, 0, len(raw))
	for i, decl := range raw {
		step, err := normalizeStep(i, decl, defaultMsg)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func normalizeStep(index int, decl RawStep, defaultMsg string) (Step, error) {
	if decl == nil {
		return Step{}, planError(index, "", "step declaration is empty")
	}

	unknown := make([]string, 0)
	for key := range decl {
		if !knownKeys[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Step{}, planError(index, unknown[0], "is not a step key")
	}

	field, err := requiredString(index, decl, KeyField)
	if err != nil {
		return Step{}, err
	}
	method, err := requiredString(index, decl, KeyMethod)
	if err != nil {
		return Step{}, err
	}

	step := Step{
		Field:       field,
		Fields:      []string{field},
		Method:      CapabilityID(method),
		Args:        []any{},
		RequiredMsg: defaultMsg,
	}

	if v, ok := decl[KeyFields]; ok && v != nil {
		seq, isSeq := toSequence(v)
		if !isSeq {
			return Step{}, planError(index, KeyFields, fmt.Sprintf("must be a sequence, got %T", v))
		}
		if len(seq) == 0 {
			return Step{}, planError(index, KeyFields, "must not be empty")
		}
		fields := make([]string, 0, len(seq))
		for j, elem := range seq {
			s, isString := elem.(string)
			if !isString || s == "" {
				return Step{}, planError(index, KeyFields, fmt.Sprintf("element %d must be a non-empty string, got %T", j, elem))
			}
			fields = append(fields, s)
		}
		step.Fields = fields
	}

	if v, ok := decl[KeyArgs]; ok && v != nil {
		seq, isSeq := toSequence(v)
		if !isSeq {
			return Step{}, planError(index, KeyArgs, fmt.Sprintf("must be a sequence, got %T", v))
		}
		step.Args = seq
	}

	if v, ok := decl[KeyRequired]; ok && v != nil {
		b, isBool := v.(bool)
		if !isBool {
			return Step{}, planError(index, KeyRequired, fmt.Sprintf("must be a bool, got %T", v))
		}
		step.Required = b
	}

	if v, ok := decl[KeyRequiredMsg]; ok && v != nil {
		s, isString := v.(string)
		if !isString {
			return Step{}, planError(index, KeyRequiredMsg, fmt.Sprintf("must be a string, got %T", v))
		}
		if s != "" {
			step.RequiredMsg = s
		}
	}

	return step, nil
}

func requiredString(index int, decl RawStep, key string) (string, error) {
	v, ok := decl[key]
	if !ok || v == nil {
		return "", planError(index, key, "is missing")
	}
	s, isString := v.(string)
	if !isString {
		return "", planError(index, key, fmt.Sprintf("must be a string, got %T", v))
	}
	if s == "" {
		return "", planError(index, key, "must not be empty")
	}
	return s, nil
}

// toSequence converts any slice or array into []any. Strings and maps are
// not sequences.
func toSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return append([]any{}, s...), true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func planError(index int, key, problem string) *mdwerror.Error {
	msg := fmt.Sprintf("plan step %d: %s", index, problem)
	if key != "" {
		msg = fmt.Sprintf("plan step %d: %q %s", index, key, problem)
	}
	return mdwerror.New(msg).
		WithCode(mdwerror.CodePlanInvalid).
		WithOperation("validation.Normalize").
		WithDetail("step", index).
		WithDetail("key", key)
}
