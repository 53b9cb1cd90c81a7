package archive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// PostgresLicenseSource reads the license master list from the archive's
// licenses table.
type PostgresLicenseSource struct {
	q cnx.Querier
}

// NewPostgresLicenseSource creates a source querying q.
func NewPostgresLicenseSource(q cnx.Querier) *PostgresLicenseSource {
	return &PostgresLicenseSource{q: q}
}

// Licenses returns every archived license ordered by id.
func (s *PostgresLicenseSource) Licenses(ctx context.Context) ([]cnx.License, error) {
	rows, err := s.q.Query(ctx, queryLicenses)
	if err != nil {
		return nil, fmt.Errorf("failed to query licenses: %w", err)
	}
	licenses, err := pgx.CollectRows(rows, pgx.RowToStructByPos[cnx.License])
	if err != nil {
		return nil, fmt.Errorf("failed to read licenses: %w", err)
	}
	return licenses, nil
}

// ImportLicenses upserts licenses into the archive's licenses table.
// Existing rows are updated by id.
func ImportLicenses(ctx context.Context, q cnx.Querier, licenses []cnx.License) error {
	const upsert = `
		INSERT INTO licenses (licenseid, name, code, version, url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (licenseid) DO UPDATE
		SET name = EXCLUDED.name, code = EXCLUDED.code,
		    version = EXCLUDED.version, url = EXCLUDED.url
	`
	for _, l := range licenses {
		if _, err := q.Exec(ctx, upsert, l.ID, l.Name, l.Code, l.Version, l.URL); err != nil {
			return fmt.Errorf("failed to import license %d (%s): %w", l.ID, l.URL, err)
		}
	}
	return nil
}

var _ cnx.LicenseSource = (*PostgresLicenseSource)(nil)
