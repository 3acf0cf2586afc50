// File: severity.go
// Title: Error Severity Levels
// Description: Severity classification for errors. Severity drives the log
//              level chosen by the logger when an error is logged.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial severity levels
// - 2026-10-17 v0.2.0: Severity table for plan engine codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow marks user input problems
	SeverityLow Severity = iota

	// SeverityMedium marks recoverable infrastructure problems
	SeverityMedium

	// SeverityHigh marks broken plans and misconfigured registries
	SeverityHigh

	// SeverityCritical marks failures that make the process unusable
	SeverityCritical
)

var severityNames = [...]string{"low", "medium", "high", "critical"}

func (s Severity) String() string {
	if s < SeverityLow || s > SeverityCritical {
		return "unknown"
	}
	return severityNames[s]
}

// codeSeverity lists every code that is not medium
var codeSeverity = map[Code]Severity{
	CodeInternal: SeverityCritical,

	CodePlanInvalid:         SeverityHigh,
	CodeUnknownCapability:   SeverityHigh,
	CodeDuplicateCapability: SeverityHigh,
	CodeCapabilityFailed:    SeverityHigh,
	CodeRegistryFrozen:      SeverityHigh,
	CodeConfigError:         SeverityHigh,

	CodeValidationFailed: SeverityLow,
	CodeRequiredField:    SeverityLow,
	CodeInvalidInput:     SeverityLow,
	CodeNotFound:         SeverityLow,
}

// GetSeverityFromCode determines the severity level for an error code.
// Storage, service, timeout and unknown codes are medium.
func GetSeverityFromCode(code Code) Severity {
	if s, ok := codeSeverity[code]; ok {
		return s
	}
	return SeverityMedium
}
