// Package files groups the file handling of a collection directory.
//
//   - filesystem: filesystem abstraction (OS, io/fs and in-memory) for testability
//   - scanner: resource discovery with digests, media types and archive identities
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/cnxpopulate/internal/files/filesystem"
//	    "github.com/vvka-141/cnxpopulate/internal/files/scanner"
//	)
//
//	s := scanner.NewScanner(checksum.New(), sniff.New())
//	result, err := s.ScanDirectory("./col10154", "collection.xml")
package files
