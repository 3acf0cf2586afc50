// File: gate.go
// Title: Required-Field Gate and Argument Builder
// Description: Presence checks that decide whether a step is dispatched,
//              and assembly of the positional call handed to a capability.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.2.0: Initial implementation

package validation

import (
	"context"
	"strings"
)

// CapRequiredField is the id under which RequiredFieldCapability is
// usually registered
const CapRequiredField CapabilityID = "validateRequiredField"

// RequireField stores a present value under field. An absent (nil) value
// records requiredMsg when required is set and stores nothing.
func RequireField(res *Result, value any, required bool, field, requiredMsg string) {
	if value != nil {
		res.SetValue(field, value)
		return
	}
	if required {
		res.AddError(field, requiredMsg)
	}
}

// RequiredFieldCapability exposes RequireField to plans. Args: required
// (bool), message (string).
func RequiredFieldCapability(_ context.Context, res *Result, call Call) {
	required := false
	if v, ok := call.Arg(0); ok {
		required, _ = v.(bool)
	}
	msg := DefaultRequiredMsg
	if v, ok := call.Arg(1); ok {
		if s, isString := v.(string); isString && s != "" {
			msg = s
		}
	}
	RequireField(res, call.Value(), required, call.Field, msg)
}

// Gate runs the presence check of step against input and reports whether
// dispatch must be skipped. Only nil and missing keys count as absent.
func Gate(res *Result, step Step, input map[string]any) bool {
	return gate(res, step, inputReader{input: input})
}

// BuildCall assembles the call for step from input
func BuildCall(step Step, input map[string]any) Call {
	return buildCall(step, inputReader{input: input})
}

func gate(res *Result, step Step, r inputReader) bool {
	for _, key := range step.Fields {
		RequireField(res, r.value(key), step.Required, key, step.RequiredMsg)
	}
	if !step.Required {
		return false
	}
	for _, key := range step.Fields {
		if !res.HasFieldValue(key) {
			return true
		}
	}
	return false
}

func buildCall(step Step, r inputReader) Call {
	values := make([]any, len(step.Fields))
	for i, key := range step.Fields {
		values[i] = r.value(key)
	}
	return Call{
		Values: values,
		Field:  step.Field,
		Args:   step.Args,
	}
}

// inputReader resolves raw input values. A missing key and a nil value are
// both absent; with blankIsMissing a whitespace-only string is too.
type inputReader struct {
	input          map[string]any
	blankIsMissing bool
}

func (r inputReader) value(key string) any {
	v, ok := Lookup(r.input, key)
	if !ok {
		return nil
	}
	if r.blankIsMissing {
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return nil
		}
	}
	return v
}

// Lookup returns the input value for key. A literal key wins; otherwise a
// dotted key such as "address.street" walks nested maps.
func Lookup(input map[string]any, key string) (any, bool) {
	if input == nil {
		return nil, false
	}
	if v, ok := input[key]; ok {
		return v, v != nil
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}

	var current any = input
	for _, part := range strings.Split(key, ".") {
		switch m := current.(type) {
		case map[string]any:
			next, ok := m[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := m[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, current != nil
}
