// Package archive stores extracted collections in a cnx-archive database.
//
// A Writer inserts the abstract, the module row and every file of a
// collection in one transaction. PostgresLicenseSource reads the archive's
// license master list so a licenses.Registry can resolve URLs against it.
//
// EnsureSchema creates the subset of the cnx-archive schema the writer
// touches when it is missing; existing archives are left as they are.
package archive
