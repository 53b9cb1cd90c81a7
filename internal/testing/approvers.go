package testing

import (
	"context"
	"sync"
)

// StaticApprover answers every approval request with Approve and records
// the targets it was asked about.
type StaticApprover struct {
	Approve bool
	Err     error

	mu      sync.Mutex
	targets []string
}

// RequestApproval records target and returns the configured answer.
func (a *StaticApprover) RequestApproval(_ context.Context, target string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.targets = append(a.targets, target)
	return a.Approve, a.Err
}

// Targets returns the requested targets in order.
func (a *StaticApprover) Targets() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.targets...)
}
