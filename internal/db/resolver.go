package db

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/cnxpopulate/internal/config"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// ErrConflictingFlags is returned when --connection and granular flags are combined.
var ErrConflictingFlags = errors.New("cannot specify both --connection and granular flags (-h, -p, -U)")

// GranularConnFlags are the libpq-style connection flags (-h, -p, -U, -d).
// There is no password flag; use $PGPASSWORD, ~/.pgpass or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-selecting flag was given.
// Database is excluded since it may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g == nil || (g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == "")
}

// CloudFlags select and configure cloud IAM authentication.
// The Azure client secret is read from $AZURE_CLIENT_SECRET only.
type CloudFlags struct {
	AuthMethod     string
	AWSRegion      string
	GoogleInstance string
	AzureTenantID  string
	AzureClientID  string
}

// EnvVars are the environment variables that take part in resolution.
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	AWS_REGION          string
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams resolves the archive connection with libpq precedence:
//
//  1. --connection, parsed as is (-d still overrides its database)
//  2. DATABASE_URL, when no granular flag is given
//  3. per parameter: granular flag, PG* variable, cnxpopulate.yaml, default
//
// The auth method comes from --auth-method, then cnxpopulate.yaml; without
// either, Azure credentials in flags or environment select Azure Entra ID.
func ResolveConnectionParams(
	connStringFlag string,
	granular *GranularConnFlags,
	cloud *CloudFlags,
	env *EnvVars,
	project *config.ProjectConfig,
) (*cnx.ConnectionConfig, error) {
	if granular == nil {
		granular = &GranularConnFlags{}
	}
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if project != nil {
		pc = project.Connection
	}

	if connStringFlag != "" && !granular.IsEmpty() {
		return nil, fmt.Errorf("%w\n"+
			"Choose one approach:\n"+
			"  1. Connection string: --connection \"postgresql://user@localhost:5432/repository\"\n"+
			"  2. Granular flags: -h localhost -p 5432 -U myuser -d repository\n"+
			"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser",
			ErrConflictingFlags)
	}

	var (
		cfg *cnx.ConnectionConfig
		err error
	)
	switch {
	case connStringFlag != "":
		cfg, err = fromConnectionString(connStringFlag, env)
	case granular.IsEmpty() && env.DATABASE_URL != "":
		cfg, err = fromConnectionString(env.DATABASE_URL, env)
	default:
		cfg, err = fromGranular(granular, env, pc)
	}
	if err != nil {
		return nil, err
	}
	if granular.Database != "" {
		cfg.Database = granular.Database
	}

	if err := applyAuth(cfg, cloud, env, pc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromConnectionString(connStr string, env *EnvVars) (*cnx.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}
	if cfg.Password == "" {
		cfg.Password = env.PGPASSWORD
	}
	return cfg, nil
}

func fromGranular(flags *GranularConnFlags, env *EnvVars, pc config.ConnectionConfig) (*cnx.ConnectionConfig, error) {
	cfg := newConnectionConfig()
	cfg.Host = firstNonEmpty(flags.Host, env.PGHOST, pc.Host, DefaultHost)
	cfg.Username = firstNonEmpty(flags.Username, env.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = env.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, env.PGDATABASE, pc.Database, DefaultDatabase)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, pc.SSLMode, DefaultSSLMode)

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", env.PGPORT, cnx.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	}
	return cfg, nil
}

func applyAuth(cfg *cnx.ConnectionConfig, cloud *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	cfg.AWSRegion = firstNonEmpty(cloud.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	cfg.GoogleInstance = firstNonEmpty(cloud.GoogleInstance, pc.GoogleInstance)
	tenantID := firstNonEmpty(cloud.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
	clientID := firstNonEmpty(cloud.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)

	if name := firstNonEmpty(cloud.AuthMethod, pc.AuthMethod); name != "" {
		method, err := cnx.ParseAuthMethod(name)
		if err != nil {
			return err
		}
		cfg.AuthMethod = method
	} else if tenantID != "" || clientID != "" {
		cfg.AuthMethod = cnx.AuthMethodAzureEntraID
	}

	if cfg.AuthMethod == cnx.AuthMethodAzureEntraID {
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
