// Package cnx holds the public data model of cnx-populate: the metadata
// record extracted from a collection document, the license and abstract
// values it references, and the file containers attached to a collection.
//
// It also declares the collaborator interfaces the core depends on
// (LicenseSource, ContentSniffer, Logger, Connector, Approver) together with
// the sentinel errors and exit codes shared by every command.
//
// Concrete implementations live under internal/:
//
//	internal/licenses   License registry and file-backed license sources
//	internal/metadata   XPath-driven metadata extraction
//	internal/sniff      Mimetype and encoding detection
//	internal/collection Collection orchestration
//	internal/archive    PostgreSQL persistence
package cnx
