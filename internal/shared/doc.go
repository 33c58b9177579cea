// Package shared holds helpers used by more than one confgate package.
//
// The testutil subpackage provides an in-memory slog handler for asserting
// on log output and fixture environments for building configuration
// services without touching the process environment.
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    svc := testutil.NewTestService(testutil.ValidEnvironment())
//	    ...
//	}
package shared
