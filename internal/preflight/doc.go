// Package preflight checks that the host can hold the rotating log directory
// before the writer starts using it.
//
// The package validates:
//   - The log directory exists or can be created
//   - Write permissions in the log directory
//   - Free disk space for the configured total size
//   - File descriptor limits
//   - Current directory usage against the configured limits
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, cfg)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
