// Package backend dispatches a prepared model invocation.
//
// Process runs the model's Python entry point as a child process with its
// working directory set to the model root and streams its output live while
// retaining a short tail for diagnostics. InProcess calls a registered Go
// entry point after switching the process working directory, restoring it on
// every exit path.
package backend
