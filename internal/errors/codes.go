// Package errors provides structured error handling for patchbay.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Credential errors
//   - 3XX: Upstream API errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryCredential indicates missing or rejected connector credentials.
	CategoryCredential Category = "CREDENTIAL"
	// CategoryUpstream indicates errors from third-party service APIs.
	CategoryUpstream Category = "UPSTREAM"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigWrite    = "ERR_103_CONFIG_WRITE"

	// Credential errors (200-299)
	ErrCodeCredentialMissing  = "ERR_201_CREDENTIAL_MISSING"
	ErrCodeCredentialRejected = "ERR_202_CREDENTIAL_REJECTED"

	// Upstream errors (300-399)
	ErrCodeUpstreamStatus      = "ERR_301_UPSTREAM_STATUS"
	ErrCodeUpstreamUnreachable = "ERR_302_UPSTREAM_UNREACHABLE"
	ErrCodeUpstreamDecode      = "ERR_303_UPSTREAM_DECODE"

	// Validation errors (400-499)
	ErrCodeInvalidInput     = "ERR_401_INVALID_INPUT"
	ErrCodeUnknownConnector = "ERR_402_UNKNOWN_CONNECTOR"
	ErrCodeUnknownResource  = "ERR_403_UNKNOWN_RESOURCE"

	// Internal errors (500-599)
	ErrCodeInternal       = "ERR_501_INTERNAL"
	ErrCodeToolFailed     = "ERR_502_TOOL_FAILED"
	ErrCodeResourceFailed = "ERR_503_RESOURCE_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	numStr := code[4:7]
	if len(numStr) < 1 {
		return CategoryInternal
	}

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryCredential
	case '3':
		return CategoryUpstream
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeConfigInvalid:
		// Serving with a broken config would misadvertise tools.
		return SeverityFatal
	case ErrCodeCredentialMissing:
		// The connector is skipped; the rest of the catalog still serves.
		return SeverityWarning
	default:
		return SeverityError
	}
}
