package remap

import "os"

// TargetValidator checks that a proposed content path exists before any
// mutation is committed.
type TargetValidator interface {
	Exists(path string) bool
}

// FilesystemValidator probes the filesystem/UNC namespace directly. Any
// error during the probe reads as "not found"; the caller decides whether
// that is fatal.
type FilesystemValidator struct{}

func (FilesystemValidator) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
