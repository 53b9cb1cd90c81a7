package cnx

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	coll, err := collection.FromBuffer(ctx, r, opts)
//	if errors.Is(err, cnx.ErrMissingLicense) {
//	    // The document carries no <md:license url="..."/> element
//	}
var (
	// ErrMalformedDocument indicates the collection document could not be parsed
	// or lacks one of the required metadata fields.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrMissingLicense indicates the document has no license URL.
	ErrMissingLicense = errors.New("missing license metadata")

	// ErrLicenseNotFound indicates the license URL is not known to the registry.
	ErrLicenseNotFound = errors.New("license not found")

	// ErrInvalidValue indicates a value of the wrong type was assigned to a metadata key.
	ErrInvalidValue = errors.New("invalid metadata value")

	// ErrUnknownKey indicates a metadata key outside the declared key set.
	ErrUnknownKey = errors.New("unknown metadata key")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrApprovalDenied indicates the user denied approval for the operation.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrAlreadyArchived indicates the collection version is already stored in the archive.
	ErrAlreadyArchived = errors.New("collection version already archived")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrMissingLicense):
		return ExitMissingLicense
	case errors.Is(err, ErrLicenseNotFound):
		return ExitUnknownLicense
	case errors.Is(err, ErrMalformedDocument):
		return ExitMalformedDocument
	case errors.Is(err, ErrAlreadyArchived):
		return ExitAlreadyArchived
	}

	errStr := err.Error()

	// Flag and argument errors reported by cobra
	for _, pattern := range usagePatterns {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}

	// Connection failures raised by pgx before our wrapping applies
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"missing required argument",
	"required flag",
	"invalid argument",
}
