// Package deps checks the external binaries and Python modules that model
// dispatch needs, for the doctor report.
package deps
