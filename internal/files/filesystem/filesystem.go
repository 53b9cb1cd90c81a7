package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// FileInfo is an alias for fs.FileInfo.
type FileInfo = fs.FileInfo

// File is an individual file discovered while walking a directory.
type File interface {
	// Path returns the path of the file as known to its provider
	Path() string

	// RelativePath returns the slash-separated path relative to the walked directory
	RelativePath() string

	// Info returns file metadata
	Info() FileInfo

	// ReadContent returns the file's content
	ReadContent() ([]byte, error)
}

// Directory is a directory that can be traversed to discover files.
type Directory interface {
	// Path returns the path of the directory
	Path() string

	// Walk calls fn for every file and directory below this one, in lexical order.
	// Walking stops at the first error returned by fn.
	Walk(fn func(File, error) error) error
}

// FileSystemProvider opens directories and reads files.
type FileSystemProvider interface {
	Open(path string) (Directory, error)
	ReadFile(path string) ([]byte, error)
	Stat(path string) (FileInfo, error)
}

// resolve maps p onto a slash-separated, cleaned path below root.
// Absolute paths are taken as is.
func resolve(root, p string) string {
	p = filepath.ToSlash(p)
	switch {
	case p == "" || p == ".":
		return root
	case strings.HasPrefix(p, "/"):
		return path.Clean(p)
	default:
		return path.Join(root, p)
	}
}

// relativeTo returns p relative to base, both slash-separated.
func relativeTo(base, p string) string {
	if p == base {
		return "."
	}
	if base == "/" {
		return strings.TrimPrefix(p, "/")
	}
	if base == "." {
		return p
	}
	return strings.TrimPrefix(p, base+"/")
}

// safeCall runs fn and turns a panic into an error.
func safeCall(at string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("walk callback panicked at %s: %v", at, r)
		}
	}()
	return fn()
}
