package remap

import "fmt"

// ValidationError reports a proposed path that does not exist. It is
// recoverable at the object granularity.
type ValidationError struct {
	Identity string
	Path     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: proposed path does not exist: %s", e.Identity, e.Path)
}

// CommitError reports a failed persistence of a mutated object.
type CommitError struct {
	Identity string
	Err      error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: committing update: %v", e.Identity, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// DecodeError reports an installer-content document that could not be
// parsed. It counts as a commit-class failure for the owning object.
type DecodeError struct {
	Identity string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decoding installer-content document: %v", e.Identity, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
