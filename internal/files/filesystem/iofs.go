package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

type fsFile struct {
	fsys    fs.FS
	absPath string
	relPath string
	info    fs.FileInfo
}

func (f *fsFile) Path() string                 { return f.absPath }
func (f *fsFile) RelativePath() string         { return f.relPath }
func (f *fsFile) Info() FileInfo               { return f.info }
func (f *fsFile) ReadContent() ([]byte, error) { return fs.ReadFile(f.fsys, f.absPath) }

type fsDirectory struct {
	fsys    fs.FS
	absPath string
}

func (d *fsDirectory) Path() string { return d.absPath }

func (d *fsDirectory) Walk(fn func(File, error) error) error {
	return fs.WalkDir(d.fsys, d.absPath, func(p string, entry fs.DirEntry, walkErr error) error {
		return safeCall(p, func() error {
			if walkErr != nil {
				return fn(nil, walkErr)
			}
			info, err := entry.Info()
			if err != nil {
				return fn(nil, fmt.Errorf("failed to stat %s: %w", p, err))
			}
			return fn(&fsFile{
				fsys:    d.fsys,
				absPath: p,
				relPath: relativeTo(d.absPath, p),
				info:    info,
			}, nil)
		})
	})
}

// FSProvider implements FileSystemProvider over an fs.FS such as embed.FS.
// Paths are slash-separated and interpreted relative to root.
type FSProvider struct {
	fsys fs.FS
	root string
}

// NewFSProvider wraps fsys, treating root as the top directory.
func NewFSProvider(fsys fs.FS, root string) *FSProvider {
	if root == "" {
		root = "."
	}
	return &FSProvider{fsys: fsys, root: path.Clean(root)}
}

// name converts p into an fs.FS name, which must be unrooted.
func (p *FSProvider) name(rel string) string {
	name := strings.TrimPrefix(resolve(p.root, rel), "/")
	if name == "" {
		return "."
	}
	return name
}

func (p *FSProvider) Open(dir string) (Directory, error) {
	name := p.name(dir)
	info, err := fs.Stat(p.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}
	return &fsDirectory{fsys: p.fsys, absPath: name}, nil
}

func (p *FSProvider) ReadFile(file string) ([]byte, error) {
	content, err := fs.ReadFile(p.fsys, p.name(file))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", file, err)
	}
	return content, nil
}

func (p *FSProvider) Stat(file string) (FileInfo, error) {
	info, err := fs.Stat(p.fsys, p.name(file))
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %s: %w", file, err)
	}
	return info, nil
}

var _ FileSystemProvider = (*FSProvider)(nil)
