// Package cli provides shared utilities for the ns command-line tools.
package cli

// Exit codes shared by the ns tools.
const (
	// ExitOK indicates success.
	ExitOK = 0

	// ExitError indicates a fatal error: bad flags, unreadable input, a
	// failed build.
	ExitError = 1

	// ExitWarning indicates the tool ran but found problems, such as
	// specifiers nsresolve could not resolve or a glob nsfind matched
	// nothing with.
	ExitWarning = 2
)
