package metadata

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document is a parsed collection document with its namespace map.
type Document struct {
	root       *xmlquery.Node
	namespaces map[string]string
}

// Parse parses data and collects the namespace declarations of its root element.
// source names the document in error messages.
func Parse(data []byte, source string) (*Document, error) {
	declared, err := RootNamespaces(data)
	if err != nil {
		return nil, parseError(err, source)
	}

	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, parseError(err, source)
	}

	return &Document{
		root:       root,
		namespaces: NamespaceMap(declared),
	}, nil
}

// Namespaces returns a copy of the prefix map queries are compiled with.
func (d *Document) Namespaces() map[string]string {
	out := make(map[string]string, len(d.namespaces))
	for k, v := range d.namespaces {
		out[k] = v
	}
	return out
}

// Compile compiles expr against the document's namespace map.
func (d *Document) Compile(expr string) (*xpath.Expr, error) {
	compiled, err := xpath.CompileWithNS(expr, d.namespaces)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", expr, err)
	}
	return compiled, nil
}

// Values evaluates a compiled query and returns the text of every match
// in document order.
func (d *Document) Values(expr *xpath.Expr) []string {
	nodes := xmlquery.QuerySelectorAll(d.root, expr)
	values := make([]string, 0, len(nodes))
	for _, n := range nodes {
		values = append(values, n.InnerText())
	}
	return values
}

// First returns the text of the first match and whether there was one.
func (d *Document) First(expr *xpath.Expr) (string, bool) {
	n := xmlquery.QuerySelector(d.root, expr)
	if n == nil {
		return "", false
	}
	return n.InnerText(), true
}

// Query compiles and evaluates expr in one step.
func (d *Document) Query(expr string) ([]string, error) {
	compiled, err := d.Compile(expr)
	if err != nil {
		return nil, err
	}
	return d.Values(compiled), nil
}

func (d *Document) String() string {
	return "Document{" + strings.TrimSpace(describeNamespaces(d.namespaces)) + "}"
}
