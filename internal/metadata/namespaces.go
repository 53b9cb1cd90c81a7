package metadata

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

const (
	// MDMLNamespace is the current mdml metadata namespace.
	MDMLNamespace = "http://cnx.rice.edu/mdml"

	// MDML04Namespace is the legacy mdml 0.4 namespace.
	MDML04Namespace = "http://cnx.rice.edu/mdml/0.4"

	// DefaultNamespacePrefix is the prefix bound to the root's default namespace.
	DefaultNamespacePrefix = "base"
)

// errNoRoot is returned for input that holds no element at all.
var errNoRoot = errors.New("document has no root element")

// RootNamespaces returns the namespace declarations of the root element,
// keyed by prefix. A default namespace is keyed by the empty string.
func RootNamespaces(data []byte) (map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			return nil, errNoRoot
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		declared := make(map[string]string)
		for _, attr := range start.Attr {
			switch {
			case attr.Name.Space == "xmlns":
				declared[attr.Name.Local] = attr.Value
			case attr.Name.Space == "" && attr.Name.Local == "xmlns":
				declared[""] = attr.Value
			}
		}
		return declared, nil
	}
}

// NamespaceMap turns root declarations into the prefix map used by queries.
//
// The default namespace moves to DefaultNamespacePrefix. If the legacy
// mdml 0.4 namespace is declared under any prefix, md4 is bound to it and
// md to the current mdml namespace. An undeclared md is bound to the
// current mdml namespace as well.
func NamespaceMap(declared map[string]string) map[string]string {
	ns := make(map[string]string, len(declared)+2)
	for prefix, uri := range declared {
		if prefix == "" {
			ns[DefaultNamespacePrefix] = uri
			continue
		}
		ns[prefix] = uri
	}

	for _, uri := range declared {
		if uri == MDML04Namespace {
			ns["md4"] = MDML04Namespace
			ns["md"] = MDMLNamespace
			break
		}
	}

	if _, ok := ns["md"]; !ok {
		ns["md"] = MDMLNamespace
	}
	return ns
}

func describeNamespaces(ns map[string]string) string {
	var buf bytes.Buffer
	for _, prefix := range []string{DefaultNamespacePrefix, "md", "md4"} {
		if uri, ok := ns[prefix]; ok {
			fmt.Fprintf(&buf, " %s=%s", prefix, uri)
		}
	}
	return buf.String()
}
