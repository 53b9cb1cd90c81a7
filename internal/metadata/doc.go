// Package metadata extracts the metadata record of a collection document.
//
// # Document Format
//
// A collection document is collxml with an embedded mdml metadata block:
//
//	<col:collection xmlns="http://cnx.rice.edu/collxml"
//	                xmlns:col="http://cnx.rice.edu/collxml"
//	                xmlns:md="http://cnx.rice.edu/mdml">
//	  <metadata mdml-version="0.5">
//	    <md:content-id>col10154</md:content-id>
//	    <md:title>Intro to Logic</md:title>
//	    <md:version>1.20</md:version>
//	    <md:language>en</md:language>
//	    <md:license url="http://creativecommons.org/licenses/by/1.0"/>
//	    <md:roles>
//	      <md:role type="author">kaminski</md:role>
//	    </md:roles>
//	    <md:abstract>An introduction to reasoning...</md:abstract>
//	  </metadata>
//	</col:collection>
//
// # Namespaces
//
// Prefixes are taken from the declarations on the root element. The default
// namespace is reachable as "base". Documents that declare the legacy
// mdml 0.4 namespace get "md4" bound to it while "md" is rebound to the
// current mdml namespace. When "md" is not declared at all it is bound to
// the current mdml namespace.
//
// # Extraction Rules
//
//   - abstract: first text node of md:abstract, empty when absent
//   - license: url attribute of md:license, required, resolved through a LicenseResolver
//   - content-id, version, title, language: first text node, required
//   - roles: text of md:roles/md:role filtered by the type attribute, document order
//
// Failures are reported as *ExtractionError values that match
// cnx.ErrMalformedDocument, cnx.ErrMissingLicense or cnx.ErrLicenseNotFound
// with errors.Is. No partial record is ever returned.
//
// # Usage
//
//	ex := metadata.NewExtractor(registry)
//	md, err := ex.Extract(ctx, "collection.xml", data)
//	if errors.Is(err, cnx.ErrMissingLicense) {
//	    ...
//	}
package metadata
