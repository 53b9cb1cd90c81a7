package metadata

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cnxpopulate/internal/licenses"
	"github.com/vvka-141/cnxpopulate/internal/logging"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

const testAbstract = "An introduction to reasoning with propositional and first-order logic, " +
	"with applications to computer science.\n\nPart of the TeachLogic Project (www.teachlogic.org).\n"

func testRegistry() *licenses.Registry {
	return licenses.NewStaticRegistry(
		cnx.License{ID: 1, Name: "Creative Commons Attribution License", Code: "by", Version: "1.0", URL: "http://creativecommons.org/licenses/by/1.0"},
		cnx.License{ID: 2, Name: "Creative Commons Attribution License", Code: "by", Version: "2.0", URL: "http://creativecommons.org/licenses/by/2.0/"},
		cnx.License{ID: 7, Name: "Creative Commons Attribution License", Code: "by", Version: "3.0", URL: "http://creativecommons.org/licenses/by/3.0/"},
	)
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

// doc wraps an mdml metadata block in a collxml root.
func doc(metadata string) []byte {
	return []byte(`<?xml version="1.0"?>
<col:collection xmlns="http://cnx.rice.edu/collxml" xmlns:col="http://cnx.rice.edu/collxml" xmlns:md="http://cnx.rice.edu/mdml">
  <col:metadata>` + metadata + `</col:metadata>
</col:collection>`)
}

const requiredFields = `
    <md:content-id>col1</md:content-id>
    <md:title>T</md:title>
    <md:version>1.1</md:version>
    <md:language>en</md:language>`

const byLicense = `<md:license url="http://creativecommons.org/licenses/by/1.0"/>`

func TestExtract_Collection(t *testing.T) {
	ex := NewExtractor(testRegistry())

	md, err := ex.Extract(context.Background(), "collection.xml", readFixture(t, "collection.xml"))
	require.NoError(t, err)

	assert.Equal(t, "col10154", md.ModuleID)
	assert.Equal(t, "1.20", md.Version)
	assert.Equal(t, "Intro to Logic", md.Name)
	assert.Equal(t, "en", md.Language)
	assert.Equal(t, []string{}, md.Authors)
	assert.Equal(t, []string{}, md.Maintainers)
	assert.Equal(t, []string{}, md.Licensors)
	assert.Empty(t, md.DocType)
	assert.Empty(t, md.Submitter)
	assert.Empty(t, md.SubmitLog)
	assert.Equal(t, testAbstract, md.Abstract.String())
	assert.Nil(t, md.Abstract.ID)
	require.NotNil(t, md.License)
	assert.Equal(t, int64(1), md.License.ID)
}

func TestExtract_FromLicenseFile(t *testing.T) {
	registry := licenses.NewRegistry(licenses.NewFileSource("../licenses/testdata/licenses.json"))
	ex := NewExtractor(registry)

	md, err := ex.Extract(context.Background(), "collection.xml", readFixture(t, "collection.xml"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), md.License.ID)
}

func TestExtract_LegacyMDML04(t *testing.T) {
	ex := NewExtractor(testRegistry())

	md, err := ex.Extract(context.Background(), "collection.xml", readFixture(t, "collection-mdml04.xml"))
	require.NoError(t, err)

	assert.Equal(t, "col10001", md.ModuleID)
	assert.Equal(t, "Legacy Collection", md.Name)
	assert.Equal(t, []string{"jdoe"}, md.Authors)
	assert.Equal(t, []string{"jdoe"}, md.Maintainers)
	assert.Equal(t, []string{"rice"}, md.Licensors)
	assert.Equal(t, int64(2), md.License.ID)
	assert.Equal(t, "", md.Abstract.String())
}

func TestExtract_DeclaredEncoding(t *testing.T) {
	ex := NewExtractor(testRegistry())

	md, err := ex.Extract(context.Background(), "collection.xml", readFixture(t, "collection-latin1.xml"))
	require.NoError(t, err)
	assert.Equal(t, "Teoría de conjuntos", md.Name)
	assert.Equal(t, "es", md.Language)
}

func TestExtract_RolesKeepDocumentOrder(t *testing.T) {
	data := doc(requiredFields + byLicense + `
    <md:roles>
      <md:role type="author">B</md:role>
      <md:role type="maintainer">M</md:role>
      <md:role type="author">A</md:role>
      <md:role type="author">B</md:role>
      <md:role type="editor">E</md:role>
    </md:roles>`)

	md, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "B"}, md.Authors)
	assert.Equal(t, []string{"M"}, md.Maintainers)
	assert.Equal(t, []string{}, md.Licensors)
}

func TestExtract_FirstMatchWins(t *testing.T) {
	data := doc(byLicense + `
    <md:content-id>col1</md:content-id>
    <md:content-id>col2</md:content-id>
    <md:title>First</md:title>
    <md:title>Second</md:title>
    <md:version>1.1</md:version>
    <md:language>en</md:language>
    <md:abstract>one</md:abstract>
    <md:abstract>two</md:abstract>`)

	md, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", data)
	require.NoError(t, err)
	assert.Equal(t, "col1", md.ModuleID)
	assert.Equal(t, "First", md.Name)
	assert.Equal(t, "one", md.Abstract.Text)
}

func TestExtract_MissingRequiredField(t *testing.T) {
	tests := []struct {
		field   string
		element string
	}{
		{"moduleid", "content-id"},
		{"version", "version"},
		{"name", "title"},
		{"language", "language"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			fields := strings.Replace(requiredFields, "<md:"+tt.element+">", "<md:"+tt.element+"-removed>", 1)
			fields = strings.Replace(fields, "</md:"+tt.element+">", "</md:"+tt.element+"-removed>", 1)

			md, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", doc(fields+byLicense))
			require.Error(t, err)
			assert.Nil(t, md)
			assert.ErrorIs(t, err, cnx.ErrMalformedDocument)

			var extErr *ExtractionError
			require.True(t, errors.As(err, &extErr))
			assert.Equal(t, tt.field, extErr.Field)
			assert.Contains(t, extErr.Error(), "md:"+tt.element)
		})
	}
}

func TestExtract_EmptyRequiredElement(t *testing.T) {
	fields := strings.Replace(requiredFields, "<md:title>T</md:title>", "<md:title/>", 1)

	_, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", doc(fields+byLicense))
	assert.ErrorIs(t, err, cnx.ErrMalformedDocument)
}

func TestExtract_MissingLicense(t *testing.T) {
	_, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", doc(requiredFields))
	require.Error(t, err)
	assert.ErrorIs(t, err, cnx.ErrMissingLicense)
	assert.NotErrorIs(t, err, cnx.ErrMalformedDocument)
	assert.Contains(t, err.Error(), "missing license metadata")
}

func TestExtract_MissingLicenseReportedBeforeMissingFields(t *testing.T) {
	_, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", doc(""))
	assert.ErrorIs(t, err, cnx.ErrMissingLicense)
}

func TestExtract_UnknownLicense(t *testing.T) {
	unknown := `<md:license url="http://example.org/licenses/custom"/>`

	_, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", doc(requiredFields+unknown))
	require.Error(t, err)
	assert.ErrorIs(t, err, cnx.ErrLicenseNotFound)

	logger := logging.NewRecordingLogger()
	md, err := NewExtractor(testRegistry(), WithAllowUnknownLicense(true), WithLogger(logger)).
		Extract(context.Background(), "c.xml", doc(requiredFields+unknown))
	require.NoError(t, err)
	assert.Nil(t, md.License)
	assert.Equal(t, "col1", md.ModuleID)
	require.Len(t, logger.Messages("info"), 1)
	assert.Contains(t, logger.Messages("info")[0], "http://example.org/licenses/custom")
}

func TestExtract_NilResolver(t *testing.T) {
	_, err := NewExtractor(nil).Extract(context.Background(), "c.xml", doc(requiredFields+byLicense))
	assert.ErrorIs(t, err, cnx.ErrLicenseNotFound)

	md, err := NewExtractor(nil, WithAllowUnknownLicense(true)).Extract(context.Background(), "c.xml", doc(requiredFields+byLicense))
	require.NoError(t, err)
	assert.Nil(t, md.License)
}

func TestExtract_ResolverFailure(t *testing.T) {
	boom := errors.New("archive unavailable")
	registry := licenses.NewRegistry(cnx.LicenseSourceFunc(func(ctx context.Context) ([]cnx.License, error) {
		return nil, boom
	}))

	_, err := NewExtractor(registry).Extract(context.Background(), "c.xml", doc(requiredFields+byLicense))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, cnx.ErrLicenseNotFound)
}

func TestExtract_SharedLicense(t *testing.T) {
	registry := testRegistry()
	ex := NewExtractor(registry)

	a, err := ex.Extract(context.Background(), "a.xml", doc(requiredFields+byLicense))
	require.NoError(t, err)
	b, err := ex.Extract(context.Background(), "b.xml", readFixture(t, "collection.xml"))
	require.NoError(t, err)

	assert.Same(t, a.License, b.License)
	assert.NotSame(t, a.Abstract, b.Abstract)
}

func TestExtract_MalformedXML(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unclosed tag", "<col:collection xmlns:col=\"http://cnx.rice.edu/collxml\">\n<md:title>"},
		{"empty", ""},
		{"not xml", "this is not a collection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", []byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, md)
			assert.ErrorIs(t, err, cnx.ErrMalformedDocument)
		})
	}
}

func TestExtract_SyntaxErrorCarriesLine(t *testing.T) {
	data := "<col:collection xmlns:col=\"http://cnx.rice.edu/collxml\">\n<a>\n</b>\n</col:collection>"

	_, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", []byte(data))
	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, 3, extErr.Line)
	assert.Contains(t, err.Error(), "c.xml (line 3)")
}

func TestExtract_UndeclaredMDPrefixDefaultsToCurrentNamespace(t *testing.T) {
	data := []byte(`<collection xmlns="http://cnx.rice.edu/collxml">
  <metadata xmlns:md="http://cnx.rice.edu/mdml">` + requiredFields + byLicense + `
  </metadata>
</collection>`)

	md, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", data)
	require.NoError(t, err)
	assert.Equal(t, "col1", md.ModuleID)
}

func TestExtract_DocumentBindingOfMDWins(t *testing.T) {
	data := []byte(`<col:collection xmlns:col="http://cnx.rice.edu/collxml" xmlns:md="http://example.org/other">
  <col:metadata>` + requiredFields + byLicense + `</col:metadata>
</col:collection>`)

	md, err := NewExtractor(testRegistry()).Extract(context.Background(), "c.xml", data)
	require.NoError(t, err)
	assert.Equal(t, "col1", md.ModuleID)
}

func TestExtractionError_Format(t *testing.T) {
	err := &ExtractionError{
		Source:  "collection.xml",
		Line:    12,
		Field:   "title",
		Message: "required element <md:title> is missing or empty",
		Hint:    "Add it.",
		Kind:    cnx.ErrMalformedDocument,
	}
	assert.Equal(t,
		"metadata error in collection.xml (line 12) [field: title]: required element <md:title> is missing or empty\n\nHint: Add it.",
		err.Error())
	assert.ErrorIs(t, err, cnx.ErrMalformedDocument)

	bare := &ExtractionError{Message: "boom"}
	assert.Equal(t, "metadata error in document: boom", bare.Error())
	assert.Empty(t, bare.Unwrap())
}
