// Package scanner discovers the resource files of a collection directory.
//
// A collection directory holds the collection document (collection.xml or
// collection.html) next to the resources it references: images, module
// documents, stylesheets. The scanner walks the directory, skips the
// collection document and hidden entries, and turns every other regular
// file into a cnx.File with its payload attached, its media type and
// encoding sniffed, its digests computed and a deterministic ID derived
// from its sha1 digest.
//
// The scanner is filesystem-agnostic through filesystem.FileSystemProvider,
// so tests run against an in-memory filesystem.
package scanner
