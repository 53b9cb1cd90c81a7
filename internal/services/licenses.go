package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/cnxpopulate/internal/archive"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// LicenseImportService loads a license list into the archive's licenses table.
type LicenseImportService struct {
	logger      cnx.Logger
	openArchive archiveConnFunc
}

// NewLicenseImportService creates a LicenseImportService.
// Panics on nil dependencies.
func NewLicenseImportService(
	connectorFactory func(*cnx.ConnectionConfig) (cnx.Connector, error),
	logger cnx.Logger,
) *LicenseImportService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LicenseImportService{
		logger:      logger,
		openArchive: connectArchive(connectorFactory),
	}
}

// Import reads every license of source and upserts them in one transaction.
// It returns the number of licenses written.
func (s *LicenseImportService) Import(ctx context.Context, connConfig *cnx.ConnectionConfig, source cnx.LicenseSource) (int, error) {
	list, err := source.Licenses(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read licenses: %w", err)
	}
	if len(list) == 0 {
		return 0, fmt.Errorf("license list is empty: %w", cnx.ErrInvalidConfig)
	}

	conn, cleanup, err := s.openArchive(ctx, connConfig)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	if err := archive.EnsureSchema(ctx, conn); err != nil {
		return 0, err
	}
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		return archive.ImportLicenses(ctx, tx, list)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("✓ Imported %d license(s)", len(list))
	return len(list), nil
}
