package cnx

import (
	"encoding/json"
	"fmt"
)

// Metadata keys in their canonical order. Abstract and license are the two
// object-valued keys; every other key holds a string or a string slice.
const (
	KeyModuleID    = "moduleid"
	KeyVersion     = "version"
	KeyName        = "name"
	KeyDocType     = "doctype"
	KeySubmitter   = "submitter"
	KeySubmitLog   = "submitlog"
	KeyLanguage    = "language"
	KeyAuthors     = "authors"
	KeyMaintainers = "maintainers"
	KeyLicensors   = "licensors"
	KeyAbstract    = "abstract"
	KeyLicense     = "license"
)

var metadataKeys = []string{
	KeyModuleID, KeyVersion, KeyName, KeyDocType, KeySubmitter, KeySubmitLog,
	KeyLanguage, KeyAuthors, KeyMaintainers, KeyLicensors, KeyAbstract, KeyLicense,
}

// Metadata is the normalized metadata record of a collection document.
//
// ModuleID, Version, Name and Language are always set after a successful
// extraction. DocType, Submitter and SubmitLog are reserved and stay empty.
// Abstract is owned by the record; License is shared with the registry that
// resolved it and must not be modified.
type Metadata struct {
	ModuleID    string
	Version     string
	Name        string
	DocType     string
	Submitter   string
	SubmitLog   string
	Language    string
	Authors     []string
	Maintainers []string
	Licensors   []string
	Abstract    *Abstract
	License     *License
}

// MetadataKeys returns the declared keys in canonical order.
func MetadataKeys() []string {
	keys := make([]string, len(metadataKeys))
	copy(keys, metadataKeys)
	return keys
}

// Len returns the number of declared keys.
func (m *Metadata) Len() int {
	return len(metadataKeys)
}

// Get returns the value stored under key.
// Strings are returned as string, role lists as []string, abstract as
// *Abstract and license as *License.
func (m *Metadata) Get(key string) (any, error) {
	switch key {
	case KeyModuleID:
		return m.ModuleID, nil
	case KeyVersion:
		return m.Version, nil
	case KeyName:
		return m.Name, nil
	case KeyDocType:
		return m.DocType, nil
	case KeySubmitter:
		return m.Submitter, nil
	case KeySubmitLog:
		return m.SubmitLog, nil
	case KeyLanguage:
		return m.Language, nil
	case KeyAuthors:
		return m.Authors, nil
	case KeyMaintainers:
		return m.Maintainers, nil
	case KeyLicensors:
		return m.Licensors, nil
	case KeyAbstract:
		return m.Abstract, nil
	case KeyLicense:
		return m.License, nil
	}
	return nil, fmt.Errorf("%q: %w", key, ErrUnknownKey)
}

// Set stores value under key after checking its type.
func (m *Metadata) Set(key string, value any) error {
	if p := m.stringField(key); p != nil {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s expects string, %T was given: %w", key, value, ErrInvalidValue)
		}
		*p = s
		return nil
	}
	if p := m.listField(key); p != nil {
		l, ok := value.([]string)
		if !ok {
			return fmt.Errorf("%s expects []string, %T was given: %w", key, value, ErrInvalidValue)
		}
		*p = l
		return nil
	}

	switch key {
	case KeyAbstract:
		switch v := value.(type) {
		case nil:
			m.Abstract = nil
		case *Abstract:
			m.Abstract = v
		default:
			return fmt.Errorf("abstract expects *cnx.Abstract, %T was given: %w", value, ErrInvalidValue)
		}
		return nil
	case KeyLicense:
		switch v := value.(type) {
		case nil:
			m.License = nil
		case *License:
			m.License = v
		default:
			return fmt.Errorf("license expects *cnx.License, %T was given: %w", value, ErrInvalidValue)
		}
		return nil
	}
	return fmt.Errorf("%q: %w", key, ErrUnknownKey)
}

// Delete resets key to its zero value. The key itself stays declared.
func (m *Metadata) Delete(key string) error {
	if p := m.stringField(key); p != nil {
		*p = ""
		return nil
	}
	if p := m.listField(key); p != nil {
		*p = nil
		return nil
	}
	switch key {
	case KeyAbstract:
		m.Abstract = nil
		return nil
	case KeyLicense:
		m.License = nil
		return nil
	}
	return fmt.Errorf("%q: %w", key, ErrUnknownKey)
}

// AsMap returns a map view of the record keyed by the declared keys.
func (m *Metadata) AsMap() map[string]any {
	out := make(map[string]any, len(metadataKeys))
	for _, k := range metadataKeys {
		v, _ := m.Get(k)
		out[k] = v
	}
	return out
}

func (m *Metadata) stringField(key string) *string {
	switch key {
	case KeyModuleID:
		return &m.ModuleID
	case KeyVersion:
		return &m.Version
	case KeyName:
		return &m.Name
	case KeyDocType:
		return &m.DocType
	case KeySubmitter:
		return &m.Submitter
	case KeySubmitLog:
		return &m.SubmitLog
	case KeyLanguage:
		return &m.Language
	}
	return nil
}

func (m *Metadata) listField(key string) *[]string {
	switch key {
	case KeyAuthors:
		return &m.Authors
	case KeyMaintainers:
		return &m.Maintainers
	case KeyLicensors:
		return &m.Licensors
	}
	return nil
}

// metadataView is the serialized shape of a record.
type metadataView struct {
	ModuleID    string   `json:"moduleid" yaml:"moduleid"`
	Version     string   `json:"version" yaml:"version"`
	Name        string   `json:"name" yaml:"name"`
	DocType     string   `json:"doctype" yaml:"doctype"`
	Submitter   string   `json:"submitter" yaml:"submitter"`
	SubmitLog   string   `json:"submitlog" yaml:"submitlog"`
	Language    string   `json:"language" yaml:"language"`
	Authors     []string `json:"authors" yaml:"authors"`
	Maintainers []string `json:"maintainers" yaml:"maintainers"`
	Licensors   []string `json:"licensors" yaml:"licensors"`
	Abstract    string   `json:"abstract" yaml:"abstract"`
	License     *License `json:"license" yaml:"license"`
}

func (m *Metadata) view() metadataView {
	return metadataView{
		ModuleID:    m.ModuleID,
		Version:     m.Version,
		Name:        m.Name,
		DocType:     m.DocType,
		Submitter:   m.Submitter,
		SubmitLog:   m.SubmitLog,
		Language:    m.Language,
		Authors:     nonNil(m.Authors),
		Maintainers: nonNil(m.Maintainers),
		Licensors:   nonNil(m.Licensors),
		Abstract:    m.Abstract.String(),
		License:     m.License,
	}
}

// MarshalJSON renders the record with the declared keys; the abstract is
// rendered as its text and the license as an object or null.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.view())
}

// MarshalYAML renders the same shape as MarshalJSON.
func (m *Metadata) MarshalYAML() (interface{}, error) {
	return m.view(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Keys returns the declared keys in canonical order.
func (m *Metadata) Keys() []string {
	return MetadataKeys()
}
