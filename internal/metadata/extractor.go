package metadata

import (
	"context"
	"fmt"

	"github.com/antchfx/xpath"

	"github.com/vvka-141/cnxpopulate/internal/logging"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// Role types recognized in md:roles.
const (
	RoleAuthor     = "author"
	RoleMaintainer = "maintainer"
	RoleLicensor   = "licensor"
)

// Query paths evaluated against every document.
const (
	AbstractQuery   = `//md:abstract/text()`
	LicenseURLQuery = `//md:license/@url`
	ContentIDQuery  = `//md:content-id/text()`
	VersionQuery    = `//md:version/text()`
	TitleQuery      = `//md:title/text()`
	LanguageQuery   = `//md:language/text()`
)

// RoleQuery returns the query selecting role entries of the given type.
func RoleQuery(roleType string) string {
	return fmt.Sprintf(`//md:roles/md:role[@type=%q]/text()`, roleType)
}

// LicenseResolver resolves a license URL into a registered license.
// *licenses.Registry satisfies it.
type LicenseResolver interface {
	RetrieveByURL(ctx context.Context, url string) (*cnx.License, bool, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithAllowUnknownLicense makes an unregistered license URL non-fatal;
// the record is returned with a nil License.
func WithAllowUnknownLicense(allow bool) Option {
	return func(e *Extractor) {
		e.allowUnknownLicense = allow
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger cnx.Logger) Option {
	return func(e *Extractor) {
		e.logger = logging.OrNull(logger)
	}
}

// Extractor builds metadata records from collection documents.
// Safe for concurrent use if the resolver is.
type Extractor struct {
	resolver            LicenseResolver
	allowUnknownLicense bool
	logger              cnx.Logger
}

// NewExtractor creates an Extractor resolving licenses through resolver.
// A nil resolver treats every license URL as unregistered.
func NewExtractor(resolver LicenseResolver, opts ...Option) *Extractor {
	e := &Extractor{
		resolver: resolver,
		logger:   logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses data and builds its metadata record.
// source names the document in errors and logs.
func (e *Extractor) Extract(ctx context.Context, source string, data []byte) (*cnx.Metadata, error) {
	doc, err := Parse(data, source)
	if err != nil {
		return nil, err
	}
	return e.ExtractDocument(ctx, source, doc)
}

// compiledQueries holds the queries of one document.
type compiledQueries struct {
	abstract, license                   *xpath.Expr
	contentID, version, title, language *xpath.Expr
	authors, maintainers, licensors     *xpath.Expr
}

func compileQueries(doc *Document) (*compiledQueries, error) {
	q := &compiledQueries{}
	targets := []struct {
		dst  **xpath.Expr
		expr string
	}{
		{&q.abstract, AbstractQuery},
		{&q.license, LicenseURLQuery},
		{&q.contentID, ContentIDQuery},
		{&q.version, VersionQuery},
		{&q.title, TitleQuery},
		{&q.language, LanguageQuery},
		{&q.authors, RoleQuery(RoleAuthor)},
		{&q.maintainers, RoleQuery(RoleMaintainer)},
		{&q.licensors, RoleQuery(RoleLicensor)},
	}
	for _, t := range targets {
		compiled, err := doc.Compile(t.expr)
		if err != nil {
			return nil, err
		}
		*t.dst = compiled
	}
	return q, nil
}

// ExtractDocument builds the metadata record of an already parsed document.
func (e *Extractor) ExtractDocument(ctx context.Context, source string, doc *Document) (*cnx.Metadata, error) {
	q, err := compileQueries(doc)
	if err != nil {
		return nil, err
	}
	e.logger.Verbose("%s: namespaces%s", source, describeNamespaces(doc.namespaces))

	abstractText, _ := doc.First(q.abstract)
	abstract := cnx.NewAbstract(abstractText)

	license, err := e.resolveLicense(ctx, source, doc, q.license)
	if err != nil {
		return nil, err
	}

	md := &cnx.Metadata{
		Abstract: abstract,
		License:  license,
	}

	required := []struct {
		field string
		expr  *xpath.Expr
		dst   *string
	}{
		{cnx.KeyModuleID, q.contentID, &md.ModuleID},
		{cnx.KeyVersion, q.version, &md.Version},
		{cnx.KeyName, q.title, &md.Name},
		{cnx.KeyLanguage, q.language, &md.Language},
	}
	for _, r := range required {
		value, ok := doc.First(r.expr)
		if !ok {
			return nil, missingFieldError(source, r.field)
		}
		*r.dst = value
	}

	md.Authors = doc.Values(q.authors)
	md.Maintainers = doc.Values(q.maintainers)
	md.Licensors = doc.Values(q.licensors)

	e.logger.Verbose("%s: extracted %s@%s (%d authors, %d maintainers, %d licensors)",
		source, md.ModuleID, md.Version, len(md.Authors), len(md.Maintainers), len(md.Licensors))

	return md, nil
}

func (e *Extractor) resolveLicense(ctx context.Context, source string, doc *Document, expr *xpath.Expr) (*cnx.License, error) {
	url, ok := doc.First(expr)
	if !ok {
		return nil, missingLicenseError(source)
	}

	var (
		license *cnx.License
		found   bool
	)
	if e.resolver != nil {
		var err error
		license, found, err = e.resolver.RetrieveByURL(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%s: resolve license %q: %w", source, url, err)
		}
	}

	if !found {
		if !e.allowUnknownLicense {
			return nil, unknownLicenseError(source, url)
		}
		e.logger.Info("Warning: %s: license %q is not registered, continuing without a license", source, url)
		return nil, nil
	}

	e.logger.Verbose("%s: license %s resolved to id %d", source, url, license.ID)
	return license, nil
}
