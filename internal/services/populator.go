package services

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/cnxpopulate/internal/archive"
	"github.com/vvka-141/cnxpopulate/internal/collection"
	"github.com/vvka-141/cnxpopulate/internal/db"
	"github.com/vvka-141/cnxpopulate/internal/files/filesystem"
	"github.com/vvka-141/cnxpopulate/internal/licenses"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// Stage names reported to the progress callback.
const (
	StageConnecting = "Connecting to archive"
	StageExtracting = "Extracting metadata"
	StageWriting    = "Writing to archive"
)

// archiveStore is the part of archive.Writer the workflow needs.
type archiveStore interface {
	EnsureSchema(ctx context.Context) error
	Exists(ctx context.Context, moduleID, version string) (bool, error)
	Write(ctx context.Context, coll *collection.Collection, opts archive.WriteOptions) (*archive.Result, error)
}

type archiveConnFunc func(ctx context.Context, connConfig *cnx.ConnectionConfig) (cnx.DBConnection, func(), error)

// Report describes a completed populate run.
type Report struct {
	Collection *collection.Collection
	Result     *archive.Result
}

// PopulateService extracts a collection and stores it in the archive.
// Thread-Safety: NOT safe for concurrent Populate() calls on the same instance.
type PopulateService struct {
	connectorFactory func(*cnx.ConnectionConfig) (cnx.Connector, error)
	approver         cnx.Approver
	logger           cnx.Logger
	fsProvider       filesystem.FileSystemProvider
	progress         func(stage string)

	openArchive archiveConnFunc
	newStore    func(conn cnx.DBConnection) archiveStore
}

// NewPopulateService creates a PopulateService with all dependencies injected.
// Panics on nil dependencies.
func NewPopulateService(
	connectorFactory func(*cnx.ConnectionConfig) (cnx.Connector, error),
	approver cnx.Approver,
	logger cnx.Logger,
	fsProvider filesystem.FileSystemProvider,
) *PopulateService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}

	svc := &PopulateService{
		connectorFactory: connectorFactory,
		approver:         approver,
		logger:           logger,
		fsProvider:       fsProvider,
		progress:         func(string) {},
	}
	svc.openArchive = connectArchive(connectorFactory)
	svc.newStore = func(conn cnx.DBConnection) archiveStore {
		return archive.NewWriter(conn, archive.WithLogger(logger))
	}
	return svc
}

// OnProgress registers a callback receiving the Stage* constants as the
// run advances.
func (s *PopulateService) OnProgress(fn func(stage string)) {
	if fn == nil {
		fn = func(string) {}
	}
	s.progress = fn
}

// connectArchive returns an archiveConnFunc opening a pool through factory.
// The cleanup closes the pool and, when it holds resources, the connector.
func connectArchive(factory func(*cnx.ConnectionConfig) (cnx.Connector, error)) archiveConnFunc {
	return func(ctx context.Context, connConfig *cnx.ConnectionConfig) (cnx.DBConnection, func(), error) {
		connector, err := factory(connConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create connector: %w", err)
		}

		pool, err := connector.Connect(ctx)
		if err != nil {
			if c, ok := connector.(io.Closer); ok {
				c.Close()
			}
			return nil, nil, err
		}

		cleanup := func() {
			pool.Close()
			if c, ok := connector.(io.Closer); ok {
				c.Close()
			}
		}
		return pool, cleanup, nil
	}
}

// Populate extracts the collection at config.SourcePath and archives it.
//
// An archived version is only replaced with config.Replace set and the
// approver's consent; otherwise cnx.ErrAlreadyArchived is returned.
func (s *PopulateService) Populate(ctx context.Context, config cnx.PopulateConfig) (*Report, error) {
	connConfig, err := s.validateAndParseConfig(config)
	if err != nil {
		return nil, err
	}

	s.progress(StageConnecting)
	s.logger.Verbose("Connecting to archive %s", db.Redacted(connConfig))
	conn, cleanup, err := s.openArchive(ctx, connConfig)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	store := s.newStore(conn)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	s.progress(StageExtracting)
	coll, err := s.loadCollection(ctx, conn, config)
	if err != nil {
		return nil, err
	}
	md := coll.Metadata
	target := fmt.Sprintf("%s@%s", md.ModuleID, md.Version)
	s.logger.Verbose("Extracted %s (%q) with %d file(s)", target, md.Name, coll.Files.Len())

	replace, err := s.resolveReplace(ctx, store, config, md)
	if err != nil {
		return nil, err
	}

	s.progress(StageWriting)
	result, err := store.Write(ctx, coll, archive.WriteOptions{Replace: replace})
	if err != nil {
		return nil, err
	}

	s.logger.Info("✓ Archived %s as module %d", target, result.ModuleIdent)
	return &Report{Collection: coll, Result: result}, nil
}

// validateAndParseConfig validates config and builds the archive connection.
func (s *PopulateService) validateAndParseConfig(config cnx.PopulateConfig) (*cnx.ConnectionConfig, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	connConfig, err := db.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if connConfig.AppName == "" {
		connConfig.AppName = db.DefaultAppName
	}
	connConfig.AuthMethod = config.AuthMethod
	connConfig.AWSRegion = config.AWSRegion
	connConfig.GoogleInstance = config.GoogleInstance
	connConfig.AzureTenantID = config.AzureTenantID
	connConfig.AzureClientID = config.AzureClientID
	connConfig.AzureClientSecret = config.AzureClientSecret
	return connConfig, nil
}

// loadCollection extracts the collection, resolving licenses from the
// configured file or else from the archive.
func (s *PopulateService) loadCollection(ctx context.Context, conn cnx.DBConnection, config cnx.PopulateConfig) (*collection.Collection, error) {
	var source cnx.LicenseSource
	if config.LicensesPath != "" {
		s.logger.Verbose("Reading licenses from %s", config.LicensesPath)
		source = licenses.NewFileSource(config.LicensesPath)
	} else {
		s.logger.Verbose("Reading licenses from the archive")
		source = archive.NewPostgresLicenseSource(conn)
	}

	opts := collection.DefaultOptions()
	opts.Registry = licenses.NewRegistry(source)
	opts.RetainSourceBuffer = config.RetainSource
	opts.AllowUnknownLicense = config.AllowUnknownLicense
	opts.Logger = s.logger

	coll, err := collection.Load(ctx, s.fsProvider, config.SourcePath, opts)
	if err != nil {
		return nil, err
	}
	return coll, nil
}

// resolveReplace decides whether the write replaces an archived version.
func (s *PopulateService) resolveReplace(ctx context.Context, store archiveStore, config cnx.PopulateConfig, md *cnx.Metadata) (bool, error) {
	exists, err := store.Exists(ctx, md.ModuleID, md.Version)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	target := fmt.Sprintf("%s@%s", md.ModuleID, md.Version)
	if !config.Replace {
		return false, fmt.Errorf("%s (use --replace to overwrite it): %w", target, cnx.ErrAlreadyArchived)
	}

	s.logger.Verbose("%s is archived. Requesting approval to replace it.", target)
	approved, err := s.approver.RequestApproval(ctx, target)
	if err != nil {
		return false, fmt.Errorf("approval request failed: %w", err)
	}
	if !approved {
		return false, cnx.ErrApprovalDenied
	}
	return true, nil
}
