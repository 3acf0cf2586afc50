// Package error provides structured error handling for formplan.
//
// Package: error
// Title: Structured Error Handling
// Description: This package implements errors that carry a code, a severity,
//              details and the stack where they were raised. The validation
//              engine uses the plan and capability codes to signal defects in
//              plan definitions; user input failures never become *Error values,
//              they are collected into validation reports instead.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-17 v0.2.0: Plan engine codes, errors.As based helpers
//
// Usage:
//
//	import mdwerror "github.com/msto63/formplan/foundation/core/error"
//
//	err := mdwerror.New("step 2: field must be a string").
//		WithCode(mdwerror.CodePlanInvalid).
//		WithOperation("validation.Normalize").
//		WithDetail("step", 2)
//
//	if mdwerror.HasCode(err, mdwerror.CodePlanInvalid) {
//		// plan definition bug
//	}
package error
