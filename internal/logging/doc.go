// Package logging provides concrete implementations of the cnx.Logger interface.
//
// ConsoleLogger writes to stderr (or any io.Writer) and gates Verbose output
// on a flag. NullLogger discards everything and is the default for library
// callers that pass no logger.
package logging
