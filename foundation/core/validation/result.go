// File: result.go
// Title: Validation Result Accumulator
// Description: Per-call accumulator of validated field values and ordered
//              per-field error messages. Capabilities and the required-field
//              gate write into it; the orchestrator reads it once all steps
//              have run.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial validation result implementation
// - 2026-10-17 v0.2.0: Field keyed accumulator for plan execution

package validation

import "strings"

// CompositeSeparator joins the messages of a composite field
const CompositeSeparator = "; "

// Result accumulates values and errors for one ValidateData call. It is
// not safe for concurrent use.
type Result struct {
	values map[string]any
	errors map[string][]string
	order  []string // error keys in first-seen order
}

// NewResult creates an empty result
func NewResult() *Result {
	return &Result{
		values: make(map[string]any),
		errors: make(map[string][]string),
	}
}

// SetValue records or overwrites the value for field
func (r *Result) SetValue(field string, value any) {
	r.values[field] = value
}

// Value returns the value recorded for field
func (r *Result) Value(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

// HasFieldValue reports whether a value has been recorded for field
func (r *Result) HasFieldValue(field string) bool {
	_, ok := r.values[field]
	return ok
}

// AddError appends message to the error list of field. Messages are never
// deduplicated.
func (r *Result) AddError(field, message string) {
	if _, seen := r.errors[field]; !seen {
		r.order = append(r.order, field)
	}
	r.errors[field] = append(r.errors[field], message)
}

// HasErrors reports whether any field has an error
func (r *Result) HasErrors() bool {
	return len(r.order) > 0
}

// HasFieldErrors reports whether field has at least one error
func (r *Result) HasFieldErrors(field string) bool {
	return len(r.errors[field]) > 0
}

// Messages returns a copy of the messages recorded for field
func (r *Result) Messages(field string) []string {
	msgs := r.errors[field]
	if len(msgs) == 0 {
		return nil
	}
	return append([]string(nil), msgs...)
}

// ErrorFields returns the fields with errors in the order their first
// error was recorded
func (r *Result) ErrorFields() []string {
	return append([]string(nil), r.order...)
}

// AllErrors returns a snapshot of all errors
func (r *Result) AllErrors() map[string][]string {
	snapshot := make(map[string][]string, len(r.errors))
	for field, msgs := range r.errors {
		snapshot[field] = append([]string(nil), msgs...)
	}
	return snapshot
}

// Values returns a snapshot of all recorded values
func (r *Result) Values() map[string]any {
	snapshot := make(map[string]any, len(r.values))
	for field, v := range r.values {
		snapshot[field] = v
	}
	return snapshot
}

// Reset clears values and errors
func (r *Result) Reset() {
	clear(r.values)
	clear(r.errors)
	r.order = r.order[:0]
}

// CollectCompositeFieldErrors joins, in first-seen field order, every
// message recorded under a field starting with prefix
func (r *Result) CollectCompositeFieldErrors(prefix string) string {
	var msgs []string
	for _, field := range r.order {
		if strings.HasPrefix(field, prefix) {
			msgs = append(msgs, r.errors[field]...)
		}
	}
	return strings.Join(msgs, CompositeSeparator)
}
