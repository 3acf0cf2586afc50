// File: report.go
// Title: Validation Report and Outcome
// Description: Field addressable error report built once per failed call,
//              and the Ok/Err outcome returned by ValidateData.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.2.0: Initial implementation

package validation

import (
	"encoding/json"
	"strings"
)

// Report maps field keys, or composite prefixes, to their messages
type Report struct {
	fields   []string
	messages map[string][]string
}

// NewReport builds a report from the errors in res. Error keys starting
// with one of composites collapse into a single entry for that prefix,
// holding the joined message; the longest matching prefix wins.
func NewReport(res *Result, composites []string) *Report {
	r := &Report{messages: make(map[string][]string)}

	for _, field := range res.ErrorFields() {
		key := field
		prefix := longestPrefix(field, composites)
		if prefix != "" {
			key = prefix
		}
		if _, done := r.messages[key]; done {
			continue
		}

		r.fields = append(r.fields, key)
		if prefix != "" {
			r.messages[key] = []string{res.CollectCompositeFieldErrors(prefix)}
		} else {
			r.messages[key] = res.Messages(field)
		}
	}
	return r
}

func longestPrefix(field string, prefixes []string) string {
	best := ""
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(field, p) && len(p) > len(best) {
			best = p
		}
	}
	return best
}

// Fields returns the report keys in first-seen order
func (r *Report) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Messages returns the messages for key
func (r *Report) Messages(key string) []string {
	return append([]string(nil), r.messages[key]...)
}

// Len returns the number of report entries
func (r *Report) Len() int {
	return len(r.fields)
}

// Payload returns a copy of the report as a plain map
func (r *Report) Payload() map[string][]string {
	out := make(map[string][]string, len(r.messages))
	for key, msgs := range r.messages {
		out[key] = append([]string(nil), msgs...)
	}
	return out
}

// Error renders one "field: msg; msg" line per entry
func (r *Report) Error() string {
	lines := make([]string, 0, len(r.fields))
	for _, key := range r.fields {
		lines = append(lines, key+": "+strings.Join(r.messages[key], CompositeSeparator))
	}
	return strings.Join(lines, "\n")
}

// MarshalJSON encodes the payload
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.messages)
}

// Outcome is either Ok with clean values or Err with a report
type Outcome struct {
	values map[string]any
	report *Report
}

// Ok creates a successful outcome
func Ok(values map[string]any) *Outcome {
	if values == nil {
		values = make(map[string]any)
	}
	return &Outcome{values: values}
}

// Err creates a failed outcome
func Err(report *Report) *Outcome {
	return &Outcome{report: report}
}

// Ok reports whether validation succeeded
func (o *Outcome) Ok() bool {
	return o.report == nil
}

// Values returns the clean values, or nil for a failed outcome
func (o *Outcome) Values() map[string]any {
	return o.values
}

// Report returns the error report, or nil for a successful outcome
func (o *Outcome) Report() *Report {
	return o.report
}

// Err returns the report as an error, or nil for a successful outcome
func (o *Outcome) Err() error {
	if o.report == nil {
		return nil
	}
	return o.report
}
