package licenses

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/cnxpopulate/internal/files/filesystem"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

//go:embed data/licenses.json
var bundled embed.FS

// FileSource reads the license list from a JSON or YAML file.
// The format is chosen by extension: .yaml and .yml are YAML, anything else JSON.
type FileSource struct {
	fs   filesystem.FileSystemProvider
	path string
}

// NewFileSource reads file from the OS filesystem.
func NewFileSource(file string) *FileSource {
	return NewFileSourceFS(filesystem.NewOSFileSystem(), file)
}

// NewFileSourceFS reads file through fsys.
func NewFileSourceFS(fsys filesystem.FileSystemProvider, file string) *FileSource {
	return &FileSource{fs: fsys, path: file}
}

// DefaultSource returns the license list compiled into the binary.
func DefaultSource() *FileSource {
	return NewFileSourceFS(filesystem.NewFSProvider(bundled, "data"), "licenses.json")
}

// Path returns the file the source reads.
func (s *FileSource) Path() string {
	return s.path
}

// Licenses reads and decodes the whole file.
func (s *FileSource) Licenses(ctx context.Context) ([]cnx.License, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read license list: %w", err)
	}
	return Decode(data, s.path)
}

// Decode parses a license list. name selects the format by its extension.
// Every entry must carry a URL.
func Decode(data []byte, name string) ([]cnx.License, error) {
	var list []cnx.License

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("invalid YAML license list %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("invalid JSON license list %s: %w", name, err)
		}
	}

	for i, l := range list {
		if strings.TrimSpace(l.URL) == "" {
			return nil, fmt.Errorf("license list %s: entry %d (id %d) has no url: %w", name, i, l.ID, cnx.ErrInvalidConfig)
		}
	}
	return list, nil
}

// StaticSource returns a source that always yields licenses.
func StaticSource(licenses ...cnx.License) cnx.LicenseSource {
	return cnx.LicenseSourceFunc(func(ctx context.Context) ([]cnx.License, error) {
		out := make([]cnx.License, len(licenses))
		copy(out, licenses)
		return out, nil
	})
}

var _ cnx.LicenseSource = (*FileSource)(nil)
