// File: doc.go
// Title: Validation Engine Package Documentation
// Description: Declarative validation plans: a plan lists steps, each step
//              names the input keys it reads and the capability that checks
//              them. The engine gates, dispatches and aggregates.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial validation framework implementation
// - 2026-10-17 v0.2.0: Replaced validator chains with the plan engine

/*
Package validation executes declarative validation plans against untyped
form input.

A plan is an ordered list of steps. Each step names a field (the output and
error key), the raw input keys it reads, a capability from the Registry and
optional extra arguments:

	plan := validation.Static(
		validation.RawStep{"field": "username", "method": "validateUsername", "required": true},
		validation.RawStep{"field": "uid", "method": "validateNumberInRange", "args": []any{1, 20000}, "required": true},
		validation.RawStep{"field": "dates", "fields": []string{"dates_start", "dates_end"}, "method": "validateDateRange", "required": true},
	)
	v := validation.New(registry, plan, validation.Options{Name: "booking", CompositeFields: []string{"dates"}})

	outcome, err := v.ValidateData(ctx, input, refs)
	switch {
	case err != nil:
		// defect in the plan or the registry setup
	case !outcome.Ok():
		render(outcome.Report().Payload())
	default:
		store(outcome.Values())
	}

# Execution

For every call ValidateData builds the raw plan, normalizes it (Normalize)
and binds every step to its capability (Registry.Bind) before anything
runs. An unknown capability therefore fails the call without dispatching a
single step. Each call owns a fresh Result.

Steps run in declaration order. The required-field gate looks up every input
key of the step: present values are stored in the result, absent keys of a
required step record the step's required message. A required step with any
absent key is skipped; optional steps are always dispatched and their
capabilities receive nil for absent keys.

# Errors

User input problems are collected per field and returned once, as an Err
Outcome holding a Report. Programmer errors are returned as *mdwerror.Error
with one of the codes PLAN_INVALID, UNKNOWN_CAPABILITY or CAPABILITY_FAILED
(a capability panicked). Context cancellation between steps aborts with
CANCELED or TIMEOUT.

# Composite fields

A step whose fields differ from its field reads several input keys, for
example dates_start and dates_end for "dates". Errors recorded under keys
sharing a prefix listed in Options.CompositeFields collapse into one report
entry whose message joins the individual messages with "; ", see
Result.CollectCompositeFieldErrors.
*/
package validation
