package backend

import (
	"context"
	"io"
)

// Backend runs one model inference call to completion.
type Backend interface {
	Name() string
	Run(ctx context.Context, inv Invocation) error
}

// Invocation is everything a backend needs to start a model.
type Invocation struct {
	// Model and Variant name the target; InProcess uses them to find an entry point.
	Model   string
	Variant string
	// WorkDir is the model installation root; relative paths in Args resolve against it.
	WorkDir string
	// Entry is the script run by the interpreter.
	Entry string
	Args  []string
	// Env holds KEY=VALUE defaults applied when the inherited environment lacks the key.
	Env []string
	// Config is the typed argument struct for in-process entry points.
	Config any

	Stdout io.Writer
	Stderr io.Writer
}

func (inv Invocation) stdout() io.Writer {
	if inv.Stdout == nil {
		return io.Discard
	}
	return inv.Stdout
}

func (inv Invocation) stderr() io.Writer {
	if inv.Stderr == nil {
		return io.Discard
	}
	return inv.Stderr
}
