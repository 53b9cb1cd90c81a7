package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// GoogleCloudSQLConnector connects to Cloud SQL with IAM database
// authentication through the Cloud SQL Go Connector.
// Close releases the dialer once the pool returned by Connect is closed.
type GoogleCloudSQLConnector struct {
	config *cnx.ConnectionConfig
	opts   connectorOptions
	dialer *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector creates a connector for cfg.GoogleInstance
// (project:region:instance).
func NewGoogleCloudSQLConnector(cfg *cnx.ConnectionConfig, opts ...ConnectorOption) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{config: cfg, opts: buildOptions(opts)}
}

// Connect opens a pool dialing through Cloud SQL, retrying transient failures.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	if c.dialer == nil {
		dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
		if err != nil {
			return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
		}
		c.dialer = dialer
	}

	instance := c.config.GoogleInstance
	cfg := *c.config
	cfg.Host = "localhost"
	cfg.Password = ""
	cfg.SSLMode = "disable"

	var pool *pgxpool.Pool
	err := c.opts.executor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, &cfg, c.opts.logger, func(pc *pgxpool.Config) {
			pc.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
				return c.dialer.Dial(ctx, instance)
			}
		})
		return err
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		err := c.dialer.Close()
		c.dialer = nil
		return err
	}
	return nil
}

var _ cnx.Connector = (*GoogleCloudSQLConnector)(nil)
