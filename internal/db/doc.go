// Package db connects cnx-populate to the PostgreSQL archive.
//
// It parses connection strings (PostgreSQL URI and ADO.NET formats),
// resolves connection parameters from flags, environment and
// cnxpopulate.yaml with libpq precedence, and creates connectors for
// standard password authentication, AWS RDS IAM, Azure Entra ID and
// Google Cloud SQL IAM. Every connector retries transient failures.
package db
