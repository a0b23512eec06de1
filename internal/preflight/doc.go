// Package preflight provides readiness checks for the model installations
// and filesystem paths that Atenea depends on.
//
// The "atenea doctor" command runs RunAll plus the binary and Python module
// checks and renders the results as a table. Generation itself does not call
// these; the orchestrator validates only what a single run needs.
package preflight
