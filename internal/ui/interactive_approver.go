package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/cnxpopulate/internal/tui"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// InteractiveApprover asks the user to type the collection version being
// replaced, e.g. "col10154@1.20".
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates an InteractiveApprover on stdin and stderr.
func NewInteractiveApprover(verbose bool) cnx.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

// RequestApproval prompts for target and approves only on an exact match.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	fmt.Fprintf(a.output, "\n%s\n", tui.WarningStyle.Render(
		fmt.Sprintf("WARNING: %s is already archived and will be replaced", target)))
	fmt.Fprintln(a.output, "This will permanently delete the archived module row and its file links!")
	fmt.Fprintf(a.output, "\nTo confirm, type '%s' and press Enter: ", target)

	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		input, err := bufio.NewReader(a.input).ReadString('\n')
		if err != nil && input == "" {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == target {
			fmt.Fprintf(a.output, "%s Confirmed. Replacing %s...\n", tui.SymbolCheck, target)
			return true, nil
		}
		fmt.Fprintf(a.output, "%s Input '%s' does not match '%s'. Operation cancelled.\n", tui.SymbolCross, input, target)
		return false, nil
	}
}

var _ cnx.Approver = (*InteractiveApprover)(nil)
