package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode is the interaction mode of a run.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// NonInteractiveEnv forces ModeNonInteractive when set to "1".
const NonInteractiveEnv = "CNX_NON_INTERACTIVE"

// DetectMode reports ModeNonInteractive when CNX_NON_INTERACTIVE=1, CI or
// NO_COLOR is set, or when stdin or stdout is not a terminal.
func DetectMode() Mode {
	if os.Getenv(NonInteractiveEnv) == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ModeNonInteractive
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive reports whether DetectMode returns ModeInteractive.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
