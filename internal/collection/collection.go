package collection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/vvka-141/cnxpopulate/internal/checksum"
	"github.com/vvka-141/cnxpopulate/internal/files/filesystem"
	"github.com/vvka-141/cnxpopulate/internal/files/scanner"
	"github.com/vvka-141/cnxpopulate/internal/logging"
	"github.com/vvka-141/cnxpopulate/internal/metadata"
	"github.com/vvka-141/cnxpopulate/internal/sniff"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// Collection is an extracted collection: its metadata record and its files.
type Collection struct {
	Files    *cnx.FileList
	Metadata *cnx.Metadata

	sourceName string
}

// SourceFile returns the registered collection document, or nil when the
// source buffer was not retained.
func (c *Collection) SourceFile() *cnx.File {
	if c.Files == nil {
		return nil
	}
	return c.Files.RetrieveByFilename(c.sourceName)
}

// Options controls how a collection is built.
type Options struct {
	// Filename of the registered document. Defaults to Type.Filename.
	Filename string

	// MimeType of the registered document. Defaults to Type.MimeType.
	MimeType string

	// Type supplies the filename and media type defaults. Zero means
	// picked by extension in FromFile, collxml elsewhere.
	Type cnx.DocumentType

	// RetainSourceBuffer registers the document as a File of the collection
	// and parses it from the stored payload. When false the document is
	// parsed directly and not kept.
	RetainSourceBuffer bool

	// AllowUnknownLicense keeps an unregistered license URL from failing
	// the extraction; the record then carries a nil License.
	AllowUnknownLicense bool

	// Registry resolves license URLs. A nil Registry treats every URL as
	// unregistered.
	Registry metadata.LicenseResolver

	// Sniffer guesses encodings of the document and media types of resources.
	Sniffer cnx.ContentSniffer

	// Calculator computes file digests. Nil skips digests.
	Calculator checksum.Calculator

	// Logger receives diagnostics. Nil discards them.
	Logger cnx.Logger
}

// DefaultOptions returns options for a retained document. Type is left
// unset: FromFile picks it from the file extension and every other path
// falls back to collxml. Registry is left nil and must be set by the caller.
func DefaultOptions() Options {
	return Options{
		RetainSourceBuffer: true,
		Sniffer:            sniff.New(),
		Calculator:         checksum.New(),
		Logger:             logging.NewNullLogger(),
	}
}

func (o Options) withDefaults() Options {
	if o.Type == (cnx.DocumentType{}) {
		o.Type = cnx.CollectionXML
	}
	if o.Filename == "" {
		o.Filename = o.Type.Filename
	}
	if o.MimeType == "" {
		o.MimeType = o.Type.MimeType
	}
	o.Logger = logging.OrNull(o.Logger)
	return o
}

// FromBuffer builds a collection from the document read from r.
// Readers that implement io.Seeker are read from the start.
// On failure no partial collection is returned.
func FromBuffer(ctx context.Context, r io.Reader, opts Options) (*Collection, error) {
	opts = opts.withDefaults()

	c := &Collection{
		Files:      cnx.NewFileList(),
		sourceName: opts.Filename,
	}

	var data []byte
	if opts.RetainSourceBuffer {
		f, err := cnx.NewFileFromBuffer(r, opts.Filename, opts.MimeType, "", opts.Sniffer)
		if err != nil {
			return nil, err
		}
		if opts.Calculator != nil {
			checksum.Apply(opts.Calculator, f)
		}
		c.Files.Append(f)
		data = f.Bytes()
	} else {
		if s, ok := r.(io.Seeker); ok {
			if _, err := s.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("rewind %s: %w", opts.Filename, err)
			}
		}
		var err error
		if data, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("read %s: %w", opts.Filename, err)
		}
	}

	extractor := metadata.NewExtractor(opts.Registry,
		metadata.WithAllowUnknownLicense(opts.AllowUnknownLicense),
		metadata.WithLogger(opts.Logger),
	)
	md, err := extractor.Extract(ctx, opts.Filename, data)
	if err != nil {
		return nil, err
	}
	c.Metadata = md

	opts.Logger.Verbose("Extracted %s@%s from %s", md.ModuleID, md.Version, opts.Filename)
	return c, nil
}

// FromFile builds a collection from the document at path.
func FromFile(ctx context.Context, fsProvider filesystem.FileSystemProvider, path string, opts Options) (*Collection, error) {
	data, err := fsProvider.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection document: %w", err)
	}
	if opts.Filename == "" && opts.Type == (cnx.DocumentType{}) {
		opts.Type = typeFor(filepath.Base(path))
	}
	return FromBuffer(ctx, bytes.NewReader(data), opts)
}

// FromDirectory builds a collection from the document in dir and attaches
// every other regular file below dir as a resource, in lexical order after
// the document.
func FromDirectory(ctx context.Context, fsProvider filesystem.FileSystemProvider, dir string, opts Options) (*Collection, error) {
	opts = opts.withDefaults()

	calc := opts.Calculator
	if calc == nil {
		calc = checksum.New()
	}
	s := scanner.NewScannerWithFS(calc, opts.Sniffer, fsProvider)

	if err := s.ValidateDocument(dir, opts.Filename); err != nil {
		return nil, err
	}
	data, err := s.ReadDocument(dir, opts.Filename)
	if err != nil {
		return nil, err
	}

	c, err := FromBuffer(ctx, bytes.NewReader(data), opts)
	if err != nil {
		return nil, err
	}

	result, err := s.ScanDirectory(dir, opts.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection directory: %w", err)
	}
	for _, f := range result.Resources {
		c.Files.Append(f)
	}

	opts.Logger.Verbose("Attached %d resources from %s", len(result.Resources), dir)
	return c, nil
}

// Load builds a collection from path, which is either a collection document
// or a directory holding one.
func Load(ctx context.Context, fsProvider filesystem.FileSystemProvider, path string, opts Options) (*Collection, error) {
	info, err := fsProvider.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}
	if info.IsDir() {
		return FromDirectory(ctx, fsProvider, path, opts)
	}
	return FromFile(ctx, fsProvider, path, opts)
}

// typeFor picks the document type matching a file name by extension.
func typeFor(name string) cnx.DocumentType {
	switch filepath.Ext(name) {
	case ".html", ".htm":
		return cnx.CollectionHTML
	default:
		return cnx.CollectionXML
	}
}
