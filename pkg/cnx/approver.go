package cnx

import "context"

// Approver handles user interaction for approval workflows,
// used before an archived collection version is replaced.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the collection id for confirmation
type Approver interface {
	// RequestApproval prompts for confirmation before replacing target.
	// target is the human-readable identifier the user must confirm,
	// e.g. "col10154@1.20".
	RequestApproval(ctx context.Context, target string) (bool, error)
}
