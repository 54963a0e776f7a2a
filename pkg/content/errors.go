package content

import "errors"

// These errors are returned by New when the configured root cannot serve
// files. Callers wrap them with the offending path:
//
//	return fmt.Errorf("content root %s: %w", dir, content.ErrRootNotFound)
var (
	// ErrRootNotFound indicates the root directory does not exist.
	ErrRootNotFound = errors.New("root directory not found")

	// ErrRootNotDirectory indicates the root path exists but is not a directory.
	ErrRootNotDirectory = errors.New("root is not a directory")

	// ErrRootNotAbsolute indicates the root path is relative.
	ErrRootNotAbsolute = errors.New("root must be an absolute path")
)
