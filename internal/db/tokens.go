package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
)

// TokenProvider acquires a short-lived token used as the database password.
type TokenProvider interface {
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for logs. It must not contain secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope of Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// rdsTokenLifetime is how long an RDS IAM token is accepted.
const rdsTokenLifetime = 15 * time.Minute

// AWSIAMTokenProvider builds RDS IAM tokens with the default AWS credential chain.
type AWSIAMTokenProvider struct {
	endpoint string // host:port
	region   string
	username string
}

// NewAWSIAMTokenProvider creates a provider for the RDS endpoint host:port.
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	switch {
	case endpoint == "":
		return nil, fmt.Errorf("AWS IAM auth requires endpoint (host:port)")
	case region == "":
		return nil, fmt.Errorf("AWS IAM auth requires region (use --aws-region or $AWS_REGION)")
	case username == "":
		return nil, fmt.Errorf("AWS IAM auth requires database username")
	}
	return &AWSIAMTokenProvider{endpoint: endpoint, region: region, username: username}, nil
}

func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}
	return token, time.Now().Add(rdsTokenLifetime), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAM(endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}

// AzureTokenProvider acquires Entra ID tokens for Azure Database for PostgreSQL.
type AzureTokenProvider struct {
	credential  azcore.TokenCredential
	description string
}

// NewAzureServicePrincipalProvider authenticates as a service principal.
// All three values are required.
func NewAzureServicePrincipalProvider(tenantID, clientID, clientSecret string) (*AzureTokenProvider, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("azure service principal requires tenantID, clientID, and clientSecret")
	}
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return &AzureTokenProvider{
		credential:  cred,
		description: fmt.Sprintf("AzureServicePrincipal(tenant=%s, client=%s)", tenantID, clientID),
	}, nil
}

// NewAzureDefaultCredentialProvider uses the DefaultAzureCredential chain
// (environment, workload identity, managed identity, Azure CLI).
func NewAzureDefaultCredentialProvider() (*AzureTokenProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return &AzureTokenProvider{credential: cred, description: "AzureDefaultCredential"}, nil
}

func (p *AzureTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzurePostgreSQLScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *AzureTokenProvider) String() string {
	return p.description
}
