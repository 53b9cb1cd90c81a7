package cnx_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, cnx.ExitSuccess},
		{"general error", errors.New("something went wrong"), cnx.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag: --foo"), cnx.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), cnx.ExitUsageError},
		{"required flag", errors.New("required flag(s) \"connection\" not set"), cnx.ExitUsageError},
		{"invalid config", fmt.Errorf("bad: %w", cnx.ErrInvalidConfig), cnx.ExitConfigError},
		{"unsupported auth", cnx.ErrUnsupportedAuthMethod, cnx.ExitConfigError},
		{"connection failed", cnx.ErrConnectionFailed, cnx.ExitConnectionError},
		{"connection refused text", errors.New("dial tcp: connection refused"), cnx.ExitConnectionError},
		{"approval denied", cnx.ErrApprovalDenied, cnx.ExitApprovalDenied},
		{"malformed", fmt.Errorf("title: %w", cnx.ErrMalformedDocument), cnx.ExitMalformedDocument},
		{"missing license", fmt.Errorf("x: %w", cnx.ErrMissingLicense), cnx.ExitMissingLicense},
		{"unknown license", fmt.Errorf("x: %w", cnx.ErrLicenseNotFound), cnx.ExitUnknownLicense},
		{"already archived", cnx.ErrAlreadyArchived, cnx.ExitAlreadyArchived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cnx.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForError_MissingLicenseWinsOverMalformed(t *testing.T) {
	err := errors.Join(cnx.ErrMalformedDocument, cnx.ErrMissingLicense)
	if got := cnx.ExitCodeForError(err); got != cnx.ExitMissingLicense {
		t.Errorf("got %d, want %d", got, cnx.ExitMissingLicense)
	}
}
