// Package validationx implements the value checks and the built-in
// capabilities of formplan.
//
// Package: validationx
// Title: Built-in Validation Capabilities
// Description: Value level predicates and parsers (email, URL, UUID, phone,
//              card numbers, numbers, dates, booleans, patterns, sets) and
//              the Standard capability table built on top of them.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with comprehensive validation utilities
// - 2025-01-26 v0.2.0: Refactored to use core validation framework with standardized error codes
// - 2026-10-17 v0.3.0: Capabilities for declarative plans
//
// # Capabilities
//
//	id                     values  args              stores
//	validateRequiredField  1       required, msg     raw value when present
//	validateString         1       [min, max]        trimmed string
//	validateUsername       1       -                 string
//	validateEmail          1       -                 lower cased address
//	validateURL            1       -                 string
//	validateUUID           1       -                 canonical UUID
//	validateNumberInRange  1       min, max          int or float64
//	validateInSet          1       allowed...        value
//	validatePattern        1       regexp            string
//	validateDate           1       [layout]          time.Time
//	validateDateRange      2       [maxDays, layout] DateRange
//	validateMatch          2       -                 first value
//	validateBool           1       -                 bool (absent is false)
//	validatePhone          1       -                 string
//	validateCreditCard     1       -                 digits
//	validateOptional       n       -                 first value as is
//
// Every capability ignores nil values except validateBool and
// validateOptional; the required-field gate reports missing input. Missing
// or malformed arguments (a range without bounds, an invalid pattern) are
// plan defects and panic, which the engine reports as CAPABILITY_FAILED.
//
// Messages are catalog keys (validation.email.invalid, ...) resolved
// through the validation.Messages passed to Standard, with English
// fallbacks.
//
// Usage:
//
//	registry := validation.NewRegistry(logger)
//	if err := validationx.Register(registry, i18n.Default()); err != nil {
//		return err
//	}
//	registry.Freeze()
package validationx
