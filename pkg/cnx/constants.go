package cnx

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Command completed successfully
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration or parameters
	ExitConnectionError   = 11 // Failed to connect to the archive database
	ExitApprovalDenied    = 12 // User denied replacing an archived collection
	ExitMalformedDocument = 20 // Collection document is not valid or lacks a required field
	ExitMissingLicense    = 21 // Collection document has no license reference
	ExitUnknownLicense    = 22 // License URL is not known to the registry
	ExitAlreadyArchived   = 23 // Collection version already present in the archive
)

const (
	// DefaultForceApprovalCountdown is the countdown duration before force approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultTimeout bounds a whole populate run.
	DefaultTimeout = 3 * time.Minute
)
