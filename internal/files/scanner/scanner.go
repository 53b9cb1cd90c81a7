package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vvka-141/cnxpopulate/internal/checksum"
	"github.com/vvka-141/cnxpopulate/internal/files/filesystem"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// Scanner discovers resource files in a collection directory.
// Scanner is safe for concurrent use by multiple goroutines as long as
// the provided calculator, sniffer and fsProvider are also thread-safe.
type Scanner struct {
	calculator checksum.Calculator
	sniffer    cnx.ContentSniffer
	fsProvider filesystem.FileSystemProvider
}

// Result holds the files found by ScanDirectory.
type Result struct {
	// Resources are every regular, non-hidden file except the document,
	// in lexical path order. Filenames are slash-separated relative paths.
	Resources []*cnx.File
}

// NewScanner creates a scanner over the OS filesystem.
// A nil sniffer leaves media types and encodings empty.
// Panics if calculator is nil.
func NewScanner(calculator checksum.Calculator, sniffer cnx.ContentSniffer) *Scanner {
	return NewScannerWithFS(calculator, sniffer, filesystem.NewOSFileSystem())
}

// NewScannerWithFS creates a scanner over a custom filesystem provider.
// Panics if calculator or fsProvider is nil.
func NewScannerWithFS(calculator checksum.Calculator, sniffer cnx.ContentSniffer, fsProvider filesystem.FileSystemProvider) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		sniffer:    sniffer,
		fsProvider: fsProvider,
	}
}

// FileSystem returns the provider the scanner reads from.
func (s *Scanner) FileSystem() filesystem.FileSystemProvider {
	return s.fsProvider
}

// ScanDirectory walks dir and returns its resources. documentName is the
// collection document at the top of dir; it is excluded (case-insensitive).
func (s *Scanner) ScanDirectory(dir, documentName string) (Result, error) {
	d, err := s.fsProvider.Open(dir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open directory: %w", err)
	}

	var resources []*cnx.File
	err = d.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}
		if file.Info().IsDir() || !file.Info().Mode().IsRegular() {
			return nil
		}

		rel := file.RelativePath()
		if isHidden(rel) || strings.EqualFold(rel, documentName) {
			return nil
		}

		f, err := s.processFile(file)
		if err != nil {
			return fmt.Errorf("failed to process file %s: %w", rel, err)
		}
		resources = append(resources, f)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Resources: resources}, nil
}

func (s *Scanner) processFile(file filesystem.File) (*cnx.File, error) {
	content, err := file.ReadContent()
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f := cnx.NewFile(file.RelativePath(), "", "")
	f.AttachBytes(content, s.sniffer)
	if s.sniffer != nil {
		f.MimeType = s.sniffer.GuessType(content)
	}
	checksum.Apply(s.calculator, f)

	id := ResourceID(f.SHA1)
	f.ID = &id
	return f, nil
}

// isHidden reports whether any segment of a relative path starts with a dot.
func isHidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}

// ValidateDocument checks that dir holds the collection document name.
func (s *Scanner) ValidateDocument(dir, name string) error {
	docPath := filepath.Join(dir, name)
	info, err := s.fsProvider.Stat(docPath)
	if err != nil {
		return fmt.Errorf("%s not found in collection directory %s: %w", name, dir, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file: %s", name, docPath)
	}
	return nil
}

// ReadDocument reads the collection document name from dir.
func (s *Scanner) ReadDocument(dir, name string) ([]byte, error) {
	content, err := s.fsProvider.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return content, nil
}
