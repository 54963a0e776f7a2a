// Package content provides the filesystem that static files are served from.
//
// A Root pairs an afero.Fs with the string prefix that request paths are
// appended to. The file transfer layer never normalizes paths itself: it asks
// the Root for prefix+path and lets the filesystem decide.
//
// Two flavours exist:
//
//   - Uncontained (default): read-only OS filesystem, prefix = root directory.
//     A request path with ".." segments reaches the OS unmodified and may
//     resolve outside the root.
//   - Contained: afero.BasePathFs rooted at the directory, empty prefix.
//     Paths escaping the root fail to stat, so the client gets a 404.
package content

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Root is the directory static files are served from. Safe for concurrent use.
type Root struct {
	fs        afero.Fs
	prefix    string
	dir       string
	contained bool
}

// New validates dir and builds a Root over the OS filesystem.
//
// Returns ErrRootNotAbsolute, ErrRootNotFound or ErrRootNotDirectory (wrapped)
// when dir is unusable.
func New(dir string, contain bool) (*Root, error) {
	if !filepath.IsAbs(dir) {
		return nil, fmt.Errorf("content root %q: %w", dir, ErrRootNotAbsolute)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content root %s: %w", dir, ErrRootNotFound)
		}
		return nil, fmt.Errorf("content root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s: %w", dir, ErrRootNotDirectory)
	}

	osFs := afero.NewReadOnlyFs(afero.NewOsFs())
	if contain {
		return &Root{
			fs:        afero.NewBasePathFs(osFs, dir),
			prefix:    "",
			dir:       dir,
			contained: true,
		}, nil
	}

	return &Root{fs: osFs, prefix: dir, dir: dir}, nil
}

// NewFromFs wraps an arbitrary filesystem. prefix is prepended verbatim to
// every request path. Used by tests to inject in-memory or failing filesystems.
func NewFromFs(fs afero.Fs, prefix string) *Root {
	return &Root{fs: fs, prefix: prefix, dir: prefix}
}

// FullPath returns the filesystem path for a resolved request path: the
// prefix and the path concatenated, with no cleaning.
func (r *Root) FullPath(path string) string {
	return r.prefix + path
}

// Stat returns file info for the resolved request path.
func (r *Root) Stat(path string) (os.FileInfo, error) {
	return r.fs.Stat(r.FullPath(path))
}

// Open opens the resolved request path read-only.
//
// On the OS filesystem the returned file is an *os.File, which lets
// io.Copy into a *net.TCPConn use sendfile.
func (r *Root) Open(path string) (afero.File, error) {
	return r.fs.Open(r.FullPath(path))
}

// Dir returns the configured root directory.
func (r *Root) Dir() string {
	return r.dir
}

// Contained reports whether path containment is enforced.
func (r *Root) Contained() bool {
	return r.contained
}
