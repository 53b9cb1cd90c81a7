package metadata

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// ExtractionError is a structured extraction failure with location and a hint.
// It unwraps to the sentinel in Kind and to the underlying Cause, if any.
type ExtractionError struct {
	Source  string // Document name, e.g. "collection.xml"
	Line    int    // Line number (0 if unknown)
	Field   string // Metadata field, e.g. "title" or "license"
	Message string // Primary error message
	Hint    string // Actionable suggestion for fixing
	Kind    error  // cnx.ErrMalformedDocument, cnx.ErrMissingLicense or cnx.ErrLicenseNotFound
	Cause   error  // Underlying error, e.g. an XML syntax error
}

// Error implements the error interface with rich formatting.
func (e *ExtractionError) Error() string {
	location := e.Source
	if location == "" {
		location = "document"
	}
	if e.Line > 0 {
		location = fmt.Sprintf("%s (line %d)", location, e.Line)
	}

	msg := fmt.Sprintf("metadata error in %s: %s", location, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("metadata error in %s [field: %s]: %s", location, e.Field, e.Message)
	}

	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}

	return msg
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *ExtractionError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// elementNames maps record fields to the mdml element that carries them.
var elementNames = map[string]string{
	"moduleid": "md:content-id",
	"version":  "md:version",
	"name":     "md:title",
	"language": "md:language",
}

func missingFieldError(source, field string) error {
	element := elementNames[field]
	return &ExtractionError{
		Source:  source,
		Field:   field,
		Message: fmt.Sprintf("required element <%s> is missing or empty", element),
		Hint:    fmt.Sprintf("Add <%s> to the metadata block of the collection.", element),
		Kind:    cnx.ErrMalformedDocument,
	}
}

func missingLicenseError(source string) error {
	return &ExtractionError{
		Source:  source,
		Field:   "license",
		Message: "missing license metadata",
		Hint:    `Every collection must declare its license, e.g. <md:license url="http://creativecommons.org/licenses/by/4.0/"/>`,
		Kind:    cnx.ErrMissingLicense,
	}
}

func unknownLicenseError(source, url string) error {
	return &ExtractionError{
		Source:  source,
		Field:   "license",
		Message: fmt.Sprintf("license %q is not registered", url),
		Hint: "Check the license URL for typos (a trailing slash matters), " +
			"add the license to the license list, or pass --allow-unknown-license.",
		Kind: cnx.ErrLicenseNotFound,
	}
}

// parseError converts XML parser errors into an ExtractionError with a line number.
func parseError(err error, source string) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ExtractionError{
			Source:  source,
			Line:    syntaxErr.Line,
			Message: syntaxErr.Msg,
			Hint:    "Check that all XML tags are properly closed and attributes are quoted.",
			Kind:    cnx.ErrMalformedDocument,
			Cause:   err,
		}
	}

	return &ExtractionError{
		Source:  source,
		Message: err.Error(),
		Hint:    "Verify that the file is a well-formed collxml document.",
		Kind:    cnx.ErrMalformedDocument,
		Cause:   err,
	}
}
