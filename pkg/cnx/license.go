package cnx

import "context"

// License is an entry of the license master list. Values are immutable once
// loaded; a registry hands out shared pointers so every record citing the
// same URL references the same License.
type License struct {
	ID      int64  `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Code    string `json:"code" yaml:"code"`
	Version string `json:"version" yaml:"version"`
	URL     string `json:"url" yaml:"url"`
}

// String returns the license code and version, e.g. "by 3.0".
func (l *License) String() string {
	if l == nil {
		return "<none>"
	}
	return l.Code + " " + l.Version
}

// LicenseSource supplies the full license master list on demand.
// Implementations must return every known license or an error; partial
// results are not allowed.
type LicenseSource interface {
	Licenses(ctx context.Context) ([]License, error)
}

// LicenseSourceFunc adapts an ordinary function to the LicenseSource interface.
type LicenseSourceFunc func(ctx context.Context) ([]License, error)

// Licenses calls f(ctx).
func (f LicenseSourceFunc) Licenses(ctx context.Context) ([]License, error) {
	return f(ctx)
}
