// Package modelargs builds the argument shapes each talking-head model expects.
//
// SadTalker takes a flat set of command-line flags whose values are fixed
// defaults except for the request inputs; Hallo2 takes a YAML config that
// starts from the model's shipped default. Both are explicit structs so the
// defaults are visible in one place and stay identical across runs.
package modelargs
