// Package filesystem provides filesystem abstraction interfaces and implementations.
//
// Collections are read from a directory holding collection.xml and its
// resource files. Reading through this abstraction lets the same code load
// collections from disk, from an in-memory tree in tests, or from any io/fs
// filesystem such as an embedded one.
//
// Implementations:
//   - OSFileSystem: the operating system filesystem
//   - MemoryFileSystem: an in-memory tree for tests
//   - FSProvider: any fs.FS (embed.FS, os.DirFS, fstest.MapFS)
package filesystem
