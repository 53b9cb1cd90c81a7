package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootNamespaces(t *testing.T) {
	data := []byte(`<?xml version="1.0"?>
<!-- leading comment -->
<col:collection xmlns="http://cnx.rice.edu/collxml" xmlns:col="http://cnx.rice.edu/collxml" xmlns:md="http://cnx.rice.edu/mdml">
  <metadata xmlns:cnxorg="http://cnx.rice.edu/system-info"/>
</col:collection>`)

	declared, err := RootNamespaces(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"":    "http://cnx.rice.edu/collxml",
		"col": "http://cnx.rice.edu/collxml",
		"md":  "http://cnx.rice.edu/mdml",
	}, declared)
}

func TestRootNamespaces_NoRoot(t *testing.T) {
	_, err := RootNamespaces([]byte(`<?xml version="1.0"?>`))
	assert.ErrorIs(t, err, errNoRoot)
}

func TestNamespaceMap(t *testing.T) {
	tests := []struct {
		name     string
		declared map[string]string
		want     map[string]string
	}{
		{
			name:     "default namespace becomes base",
			declared: map[string]string{"": "http://cnx.rice.edu/collxml", "md": MDMLNamespace},
			want:     map[string]string{"base": "http://cnx.rice.edu/collxml", "md": MDMLNamespace},
		},
		{
			name:     "legacy namespace rebinds md",
			declared: map[string]string{"md": MDML04Namespace},
			want:     map[string]string{"md": MDMLNamespace, "md4": MDML04Namespace},
		},
		{
			name:     "legacy namespace under another prefix",
			declared: map[string]string{"old": MDML04Namespace, "md": "http://example.org/md"},
			want:     map[string]string{"old": MDML04Namespace, "md": MDMLNamespace, "md4": MDML04Namespace},
		},
		{
			name:     "undeclared md",
			declared: map[string]string{},
			want:     map[string]string{"md": MDMLNamespace},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NamespaceMap(tt.declared))
		})
	}
}

func TestDocument_Query(t *testing.T) {
	doc, err := Parse([]byte(`<r xmlns="urn:root" xmlns:md="http://cnx.rice.edu/mdml"><md:a>1</md:a><md:a>2</md:a><b>x</b></r>`), "r.xml")
	require.NoError(t, err)

	values, err := doc.Query(`//md:a/text()`)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, values)

	values, err = doc.Query(`//base:b/text()`)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, values)

	values, err = doc.Query(`//md:missing`)
	require.NoError(t, err)
	assert.NotNil(t, values)
	assert.Empty(t, values)

	_, err = doc.Query(`//md:a[`)
	assert.Error(t, err)

	assert.Equal(t, "Document{base=urn:root md=http://cnx.rice.edu/mdml}", doc.String())
	ns := doc.Namespaces()
	ns["md"] = "changed"
	assert.Equal(t, MDMLNamespace, doc.Namespaces()["md"])
}
