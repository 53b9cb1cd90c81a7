// Package licenses holds the license master list used to resolve the
// license URL of a collection into a License record.
//
// A Registry is constructed by the caller with a cnx.LicenseSource and is
// populated on first use. Lookups return pointers owned by the registry, so
// every record citing the same URL shares one License value.
//
// Sources shipped here read JSON or YAML files (FileSource) or the list
// compiled into the binary (DefaultSource). The archive package supplies a
// PostgreSQL-backed source.
package licenses
