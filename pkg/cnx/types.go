package cnx

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DocumentType names the registered source document of a collection.
type DocumentType struct {
	Filename string
	MimeType string
}

var (
	// CollectionXML is the collxml collection descriptor.
	CollectionXML = DocumentType{Filename: "collection.xml", MimeType: "text/xml"}

	// CollectionHTML is the HTML rendition of a collection descriptor.
	CollectionHTML = DocumentType{Filename: "collection.html", MimeType: "text/html"}
)

// PopulateConfig contains all parameters needed to archive a collection.
type PopulateConfig struct {
	// SourcePath is a collection.xml file or a directory containing one
	SourcePath string

	// ConnectionString is the PostgreSQL connection string of the archive (URI or ADO.NET format)
	ConnectionString string

	// LicensesPath points at a JSON or YAML license list. When empty the
	// licenses table of the archive is used.
	LicensesPath string

	// Replace removes an archived module with the same id and version before writing
	Replace bool

	// Force bypasses interactive approval when used with Replace
	Force bool

	// AllowUnknownLicense keeps going when the license URL is not registered
	AllowUnknownLicense bool

	// RetainSource stores the collection document as a file of the collection
	RetainSource bool

	// Authentication settings applied on top of the parsed connection string
	AuthMethod        AuthMethod
	AWSRegion         string
	GoogleInstance    string
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// Timeout is the global timeout for the whole populate run
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the PopulateConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *PopulateConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.Force && !c.Replace {
		errs = append(errs, fmt.Errorf("force flag requires replace to be enabled: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters.
	// If all three are provided, Service Principal authentication is used.
	// Otherwise the DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AWS IAM authentication
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance)
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod converts a flag or config value into an AuthMethod.
// Accepted values: standard, aws, google, azure (case-insensitive).
// An empty string yields AuthMethodStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "gcp", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	}
	return AuthMethodStandard, fmt.Errorf("auth method %q (expected standard, aws, google or azure): %w", s, ErrUnsupportedAuthMethod)
}
