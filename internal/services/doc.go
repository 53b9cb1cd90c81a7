// Package services wires extraction and archiving into the workflows used
// by the CLI: PopulateService archives one collection and
// LicenseImportService loads a license list into the archive.
package services
