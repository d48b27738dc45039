// Package types defines shared application data types.
package types

// ExitCode represents the application's exit codes.
//
// The bootstrap contract is deliberately narrow: 0 means the run completed
// and both configuration documents were persisted, 1 means anything fatal
// (missing required dependencies the operator declined to install, zero
// hosts configured, persistence failure, or an operator interrupt).
type ExitCode int

const (
	// ExitSuccess - Execution completed successfully.
	ExitSuccess ExitCode = 0

	// ExitFailure - Fatal error or operator abort.
	ExitFailure ExitCode = 1
)

// String returns a human-readable description of the exit code.
func (e ExitCode) String() string {
	switch e {
	case ExitSuccess:
		return "success"
	case ExitFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Int returns the exit code as an integer.
func (e ExitCode) Int() int {
	return int(e)
}
