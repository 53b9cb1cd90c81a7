package cnx_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

func sampleMetadata() *cnx.Metadata {
	return &cnx.Metadata{
		ModuleID:    "col10154",
		Version:     "1.20",
		Name:        "Intro to Logic",
		Language:    "en",
		Authors:     []string{"kaminski"},
		Maintainers: []string{},
		Licensors:   []string{},
		Abstract:    cnx.NewAbstract("An introduction to reasoning."),
		License: &cnx.License{
			ID: 1, Name: "Attribution", Code: "by", Version: "1.0",
			URL: "http://creativecommons.org/licenses/by/1.0",
		},
	}
}

func TestMetadata_KeysOrder(t *testing.T) {
	m := &cnx.Metadata{}
	assert.Equal(t, []string{
		"moduleid", "version", "name", "doctype", "submitter", "submitlog",
		"language", "authors", "maintainers", "licensors", "abstract", "license",
	}, m.Keys())
	assert.Equal(t, 12, m.Len())
}

func TestMetadata_KeysReturnsCopy(t *testing.T) {
	keys := cnx.MetadataKeys()
	keys[0] = "mutated"
	assert.Equal(t, "moduleid", cnx.MetadataKeys()[0])
}

func TestMetadata_Get(t *testing.T) {
	m := sampleMetadata()

	v, err := m.Get("moduleid")
	require.NoError(t, err)
	assert.Equal(t, "col10154", v)

	v, err = m.Get("authors")
	require.NoError(t, err)
	assert.Equal(t, []string{"kaminski"}, v)

	v, err = m.Get("license")
	require.NoError(t, err)
	assert.Same(t, m.License, v)

	_, err = m.Get("title")
	assert.ErrorIs(t, err, cnx.ErrUnknownKey)
}

func TestMetadata_Set(t *testing.T) {
	m := &cnx.Metadata{}

	require.NoError(t, m.Set("name", "Intro to Logic"))
	assert.Equal(t, "Intro to Logic", m.Name)

	require.NoError(t, m.Set("maintainers", []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, m.Maintainers)

	abstract := cnx.NewAbstract("text")
	require.NoError(t, m.Set("abstract", abstract))
	assert.Same(t, abstract, m.Abstract)

	license := &cnx.License{ID: 3}
	require.NoError(t, m.Set("license", license))
	assert.Same(t, license, m.License)

	require.NoError(t, m.Set("license", nil))
	assert.Nil(t, m.License)
}

func TestMetadata_SetRejectsWrongTypes(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"abstract", "just a string"},
		{"license", cnx.License{ID: 1}},
		{"license", 7},
		{"moduleid", 10154},
		{"authors", "kaminski"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := sampleMetadata()
			err := m.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, cnx.ErrInvalidValue)
		})
	}

	m := &cnx.Metadata{}
	err := m.Set("title", "x")
	assert.True(t, errors.Is(err, cnx.ErrUnknownKey))
}

func TestMetadata_Delete(t *testing.T) {
	m := sampleMetadata()

	require.NoError(t, m.Delete("abstract"))
	assert.Nil(t, m.Abstract)

	require.NoError(t, m.Delete("license"))
	assert.Nil(t, m.License)

	require.NoError(t, m.Delete("version"))
	assert.Empty(t, m.Version)

	require.NoError(t, m.Delete("authors"))
	assert.Nil(t, m.Authors)

	assert.Equal(t, 12, m.Len())
	assert.ErrorIs(t, m.Delete("bogus"), cnx.ErrUnknownKey)
}

func TestMetadata_AsMap(t *testing.T) {
	m := sampleMetadata()
	got := m.AsMap()
	assert.Len(t, got, 12)
	assert.Equal(t, "en", got["language"])
	assert.Equal(t, "", got["doctype"])
	assert.Same(t, m.Abstract, got["abstract"])
}

func TestMetadata_MarshalJSON(t *testing.T) {
	m := sampleMetadata()
	m.Maintainers = nil

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "An introduction to reasoning.", decoded["abstract"])
	assert.Equal(t, []any{}, decoded["maintainers"])
	license, ok := decoded["license"].(map[string]any)
	require.True(t, ok, "license should be an object")
	assert.Equal(t, float64(1), license["id"])
	assert.Equal(t, "by", license["code"])
}

func TestMetadata_MarshalJSONWithoutLicense(t *testing.T) {
	m := sampleMetadata()
	m.License = nil
	m.Abstract = nil

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"license":null`)
	assert.Contains(t, string(data), `"abstract":""`)
}

func TestMetadata_MarshalYAML(t *testing.T) {
	data, err := yaml.Marshal(sampleMetadata())
	require.NoError(t, err)
	assert.Contains(t, string(data), "moduleid: col10154")
	assert.Contains(t, string(data), "code: by")
}

func TestAbstract(t *testing.T) {
	a := cnx.NewAbstract("An introduction to reasoning")
	assert.Nil(t, a.ID)
	assert.Equal(t, "An introduction to reasoning", a.String())
	assert.True(t, a.Equal(cnx.NewAbstract("An introduction to reasoning")))
	assert.False(t, a.Equal(cnx.NewAbstract("other")))
	assert.Equal(t, "<Abstract - [unsaved] 'An introdu...'>", a.GoString())

	id := int64(7)
	a.ID = &id
	assert.Equal(t, "<Abstract - [7] 'An introdu...'>", a.GoString())

	var nilAbstract *cnx.Abstract
	assert.Equal(t, "", nilAbstract.String())
	assert.True(t, nilAbstract.Equal(cnx.NewAbstract("")))
}

func TestLicense_String(t *testing.T) {
	l := &cnx.License{Code: "by", Version: "3.0"}
	assert.Equal(t, "by 3.0", l.String())

	var none *cnx.License
	assert.Equal(t, "<none>", none.String())
}
