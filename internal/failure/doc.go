// Package failure tags generation errors with sentinel markers and turns them
// into user-facing diagnoses.
//
// Stages wrap errors with Wrap or Missing; the dispatcher attaches the trailing
// output of a failed model process via OutputError. Classify inspects both and
// picks the remedy: install guidance for import failures, size and clip-length
// suggestions for out-of-memory errors, and the traceback tail for anything else.
package failure
