package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/cnxpopulate/internal/logging"
	"github.com/vvka-141/cnxpopulate/internal/retry"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// Pool settings. A populate run needs one connection for its transaction
// and one for license lookups.
const (
	DefaultMaxConns        = 4
	DefaultMinConns        = 1
	DefaultMaxConnIdleTime = 5 * time.Minute
	DefaultAppName         = "cnx-populate"
)

// ConnectorOption configures a connector.
type ConnectorOption func(*connectorOptions)

type connectorOptions struct {
	logger   cnx.Logger
	executor *retry.Executor
}

// WithLogger sets the logger for retries, server notices and token warnings.
func WithLogger(logger cnx.Logger) ConnectorOption {
	return func(o *connectorOptions) { o.logger = logging.OrNull(logger) }
}

// WithRetryExecutor replaces the default retry policy.
func WithRetryExecutor(executor *retry.Executor) ConnectorOption {
	return func(o *connectorOptions) { o.executor = executor }
}

func buildOptions(opts []ConnectorOption) connectorOptions {
	o := connectorOptions{logger: logging.NewNullLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.executor == nil {
		o.executor = DefaultRetryExecutor()
	}
	o.executor = o.executor.WithOnRetry(retry.LogRetries(o.logger, "Connecting to the archive"))
	return o
}

// DefaultRetryExecutor retries transient connection failures with the
// default attempts and delays.
func DefaultRetryExecutor() *retry.Executor {
	return retry.NewExecutor(
		retry.NewPostgreSQLErrorClassifier(),
		retry.NewExponentialBackoff(cnx.DefaultRetryMaxAttempts,
			retry.WithInitialDelay(cnx.DefaultRetryInitialDelay),
			retry.WithMaxDelay(cnx.DefaultRetryMaxDelay),
		),
	)
}

// NewConnector creates the connector matching cfg.AuthMethod.
func NewConnector(cfg *cnx.ConnectionConfig, opts ...ConnectorOption) (cnx.Connector, error) {
	switch cfg.AuthMethod {
	case cnx.AuthMethodStandard:
		return NewStandardConnector(cfg, opts...), nil
	case cnx.AuthMethodAWSIAM:
		provider, err := NewAWSIAMTokenProvider(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), cfg.AWSRegion, cfg.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
		}
		return NewTokenConnector(cfg, provider, "AWS IAM", opts...), nil
	case cnx.AuthMethodAzureEntraID:
		provider, err := newAzureTokenProvider(cfg)
		if err != nil {
			return nil, err
		}
		return NewTokenConnector(cfg, provider, "Azure", opts...), nil
	case cnx.AuthMethodGoogleIAM:
		if cfg.GoogleInstance == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", cnx.ErrInvalidConfig)
		}
		if cfg.Username == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", cnx.ErrInvalidConfig)
		}
		return NewGoogleCloudSQLConnector(cfg, opts...), nil
	}
	return nil, fmt.Errorf("unsupported auth method %v: %w", cfg.AuthMethod, cnx.ErrUnsupportedAuthMethod)
}

func newAzureTokenProvider(cfg *cnx.ConnectionConfig) (TokenProvider, error) {
	if cfg.AzureTenantID != "" && cfg.AzureClientID != "" && cfg.AzureClientSecret != "" {
		p, err := NewAzureServicePrincipalProvider(cfg.AzureTenantID, cfg.AzureClientID, cfg.AzureClientSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
		return p, nil
	}
	p, err := NewAzureDefaultCredentialProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
	}
	return p, nil
}

func configurePool(poolConfig *pgxpool.Config, logger cnx.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	if poolConfig.ConnConfig.RuntimeParams["application_name"] == "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = DefaultAppName
	}
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("archive: %s", notice.Message)
	}
}

// openPool opens and pings a pool for cfg.
func openPool(ctx context.Context, cfg *cnx.ConnectionConfig, logger cnx.Logger, configure func(*pgxpool.Config)) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	configurePool(poolConfig, logger)
	if configure != nil {
		configure(poolConfig)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, cfg.Host, cfg.Port, cfg.Database)
	}
	return pool, nil
}

// StandardConnector connects with username and password.
type StandardConnector struct {
	config *cnx.ConnectionConfig
	opts   connectorOptions
}

// NewStandardConnector creates a connector for password authentication.
func NewStandardConnector(cfg *cnx.ConnectionConfig, opts ...ConnectorOption) *StandardConnector {
	return &StandardConnector{config: cfg, opts: buildOptions(opts)}
}

// Connect opens a pool, retrying transient failures.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := c.opts.executor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, c.config, c.opts.logger, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// TokenConnector connects with a short-lived cloud token as the password.
// A fresh token is acquired for every attempt.
type TokenConnector struct {
	config       *cnx.ConnectionConfig
	provider     TokenProvider
	providerName string
	opts         connectorOptions
}

// NewTokenConnector creates a connector authenticating through provider.
// providerName appears in messages, e.g. "AWS IAM".
func NewTokenConnector(cfg *cnx.ConnectionConfig, provider TokenProvider, providerName string, opts ...ConnectorOption) *TokenConnector {
	return &TokenConnector{
		config:       cfg,
		provider:     provider,
		providerName: providerName,
		opts:         buildOptions(opts),
	}
}

// Connect acquires a token and opens a pool, retrying transient failures.
func (c *TokenConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := c.opts.executor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.provider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		if remaining := time.Until(expiresOn); remaining < 5*time.Minute {
			c.opts.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}
		c.opts.logger.Verbose("Acquired token from %s", c.provider)

		withToken := *c.config
		withToken.Password = token
		pool, err = openPool(ctx, &withToken, c.opts.logger, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// wrapConnectionError adds guidance to common pgx connection failures.
// The original error stays in the chain.
func wrapConnectionError(err error, host string, port int, database string) error {
	msg := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "actively refused"):
		hint = fmt.Sprintf("connection refused to %s\n\nPossible causes:\n"+
			"  - PostgreSQL is not running (check: pg_isready -h %s -p %d)\n"+
			"  - Wrong host or port", addr, host, port)
	case strings.Contains(msg, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q\n\nCheck the hostname and your DNS settings", host)
	case strings.Contains(msg, "password authentication failed"):
		hint = fmt.Sprintf("password authentication failed for archive database %q\n\n"+
			"Check $PGPASSWORD, ~/.pgpass or the connection string", database)
	case strings.Contains(msg, "does not exist"):
		hint = fmt.Sprintf("archive database %q does not exist\n\n"+
			"Create it first, e.g.: createdb %s", database, database)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		hint = fmt.Sprintf("connection timed out to %s\n\n"+
			"The server may be overloaded, or a firewall may drop packets", addr)
	case strings.Contains(msg, "ssl") || strings.Contains(msg, "tls"):
		hint = "SSL/TLS connection error\n\nCheck --sslmode (the server may require or reject SSL)"
	case strings.Contains(msg, "too many connections"):
		hint = fmt.Sprintf("too many connections to archive database %q", database)
	default:
		return fmt.Errorf("failed to connect to archive: %w: %w", cnx.ErrConnectionFailed, err)
	}
	return fmt.Errorf("%s\n\nOriginal error: %w: %w", hint, cnx.ErrConnectionFailed, err)
}

var (
	_ cnx.Connector = (*StandardConnector)(nil)
	_ cnx.Connector = (*TokenConnector)(nil)
)
