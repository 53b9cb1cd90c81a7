package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryFile struct {
	absPath string
	relPath string
	content []byte
	info    *memoryFileInfo
}

func (f *memoryFile) Path() string         { return f.absPath }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.info }

func (f *memoryFile) ReadContent() ([]byte, error) {
	out := make([]byte, len(f.content))
	copy(out, f.content)
	return out, nil
}

type memoryDirectory struct {
	absPath string
	fs      *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.absPath }

func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	for _, entry := range d.fs.entriesUnder(d.absPath) {
		view := &memoryFile{
			absPath: entry.absPath,
			relPath: relativeTo(d.absPath, entry.absPath),
			content: entry.content,
			info:    entry.info,
		}
		if err := safeCall(entry.absPath, func() error { return fn(view, nil) }); err != nil {
			return err
		}
	}
	return nil
}

// MemoryFileSystem implements FileSystemProvider in memory, for tests.
// Parent directories are created implicitly. Safe for concurrent use.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
	root  string
}

// NewMemoryFileSystem creates an in-memory filesystem rooted at root.
// Relative paths passed to other methods are resolved against root.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = resolve("/", root)
	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  root,
	}
	mfs.addDir(root)
	return mfs
}

// AddFile adds a text file.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.AddBytes(filePath, []byte(content))
}

// AddBytes adds a file with binary content.
func (mfs *MemoryFileSystem) AddBytes(filePath string, content []byte) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := resolve(mfs.root, filePath)
	mfs.files[absPath] = &memoryFile{
		absPath: absPath,
		content: content,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(content)),
			mode:    0644,
			modTime: time.Now(),
		},
	}
	for dir := path.Dir(absPath); ; dir = path.Dir(dir) {
		mfs.addDir(dir)
		if dir == "/" || dir == "." || dir == mfs.root {
			break
		}
	}
}

func (mfs *MemoryFileSystem) addDir(dir string) {
	if _, ok := mfs.files[dir]; ok {
		return
	}
	mfs.files[dir] = &memoryFile{
		absPath: dir,
		info: &memoryFileInfo{
			name:    path.Base(dir),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
		},
	}
}

// entriesUnder returns base and everything below it, sorted by path.
func (mfs *MemoryFileSystem) entriesUnder(base string) []*memoryFile {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	prefix := base + "/"
	if base == "/" {
		prefix = "/"
	}
	var entries []*memoryFile
	for p, f := range mfs.files {
		if p == base || strings.HasPrefix(p, prefix) {
			entries = append(entries, f)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].absPath < entries[j].absPath
	})
	return entries
}

func (mfs *MemoryFileSystem) lookup(p string) (*memoryFile, bool) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	f, ok := mfs.files[resolve(mfs.root, p)]
	return f, ok
}

func (mfs *MemoryFileSystem) Open(dirPath string) (Directory, error) {
	f, ok := mfs.lookup(dirPath)
	if !ok {
		return nil, fmt.Errorf("directory not found: %s", dirPath)
	}
	if !f.info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}
	return &memoryDirectory{absPath: f.absPath, fs: mfs}, nil
}

func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	f, ok := mfs.lookup(filePath)
	if !ok {
		return nil, fmt.Errorf("file not found: %s: %w", filePath, fs.ErrNotExist)
	}
	if f.info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	return f.ReadContent()
}

func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	f, ok := mfs.lookup(statPath)
	if !ok {
		return nil, fmt.Errorf("path not found: %s: %w", statPath, fs.ErrNotExist)
	}
	return f.info, nil
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)
