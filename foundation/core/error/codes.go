// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used by formplan to classify failures.
//              Plan and registry codes mark programmer errors, the validation
//              codes mark user input problems that are reported per field.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-17 v0.2.0: Reduced to the codes used by the plan engine

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"
	CodeCanceled     Code = "CANCELED"

	// Plan and capability contract violations (programmer errors)
	CodePlanInvalid         Code = "PLAN_INVALID"
	CodeUnknownCapability   Code = "UNKNOWN_CAPABILITY"
	CodeDuplicateCapability Code = "DUPLICATE_CAPABILITY"
	CodeCapabilityFailed    Code = "CAPABILITY_FAILED"
	CodeRegistryFrozen      Code = "REGISTRY_FROZEN"

	// User input validation
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeRequiredField    Code = "REQUIRED_FIELD"

	// Infrastructure
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeStorageError  Code = "STORAGE_ERROR"
	CodeServiceError  Code = "SERVICE_ERROR"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsProgrammerError reports whether the code marks a defect in a plan
// definition or registry setup rather than bad user input.
func (c Code) IsProgrammerError() bool {
	switch c {
	case CodePlanInvalid, CodeUnknownCapability, CodeDuplicateCapability,
		CodeCapabilityFailed, CodeRegistryFrozen:
		return true
	default:
		return false
	}
}

// IsUserError reports whether the code marks a user input problem
func (c Code) IsUserError() bool {
	switch c {
	case CodeValidationFailed, CodeRequiredField, CodeInvalidInput:
		return true
	default:
		return false
	}
}
