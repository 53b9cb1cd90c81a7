package ui

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vvka-141/cnxpopulate/internal/tui"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

//go:embed assets/replace_warning.txt
var replaceWarning string

// ForcedApprover approves replacement after a countdown, giving the user a
// last chance to press Ctrl+C. Used with --force.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) cnx.Approver {
	return &ForcedApprover{verbose: verbose, output: os.Stderr, sleepFn: time.Sleep}
}

// RequestApproval shows the warning for target, counts down and approves.
func (a *ForcedApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	banner := strings.ReplaceAll(replaceWarning, "${target}", target)
	fmt.Fprintln(a.output)
	fmt.Fprint(a.output, tui.WarningStyle.Render(banner))
	fmt.Fprintln(a.output)

	seconds := int(cnx.DefaultForceApprovalCountdown.Seconds())
	for i := seconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.output)
			return false, ctx.Err()
		default:
		}
		fmt.Fprintf(a.output, "\rReplacing in: %d seconds... (Press Ctrl+C to cancel)", i)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r%s Proceeding with replacement of %s...                    \n", tui.SymbolCheck, target)
	return true, nil
}

var _ cnx.Approver = (*ForcedApprover)(nil)
