package backend

import (
	"errors"
	"fmt"
	"os"
)

// EnterDir changes the process working directory to dir and returns a function
// that restores the previous one.
func EnterDir(dir string) (restore func() error, err error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("enter %s: %w", dir, err)
	}
	return func() error {
		if err := os.Chdir(prev); err != nil {
			return fmt.Errorf("restore working directory %s: %w", prev, err)
		}
		return nil
	}, nil
}

// WithinDir runs fn with dir as the working directory. The previous directory
// is restored whether fn returns an error or panics.
func WithinDir(dir string, fn func() error) (err error) {
	restore, err := EnterDir(dir)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := restore(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn()
}
