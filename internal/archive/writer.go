package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vvka-141/cnxpopulate/internal/checksum"
	"github.com/vvka-141/cnxpopulate/internal/collection"
	"github.com/vvka-141/cnxpopulate/internal/files/scanner"
	"github.com/vvka-141/cnxpopulate/internal/logging"
	"github.com/vvka-141/cnxpopulate/internal/retry"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// EnsureSchema creates the archive tables that are missing.
func EnsureSchema(ctx context.Context, q cnx.Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create archive schema: %w", err)
	}
	return nil
}

// WriteOptions controls a single Write.
type WriteOptions struct {
	// Replace deletes an archived module with the same id and version
	// before inserting. Approval is the caller's responsibility.
	Replace bool
}

// Result describes a stored collection.
type Result struct {
	ModuleIdent int64
	AbstractID  int64
	Files       int
	Replaced    bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the writer's logger.
func WithLogger(logger cnx.Logger) Option {
	return func(w *Writer) { w.logger = logging.OrNull(logger) }
}

// WithCalculator sets the checksum calculator used for files stored
// without digests.
func WithCalculator(calc checksum.Calculator) Option {
	return func(w *Writer) { w.calculator = calc }
}

// WithRetryExecutor replaces the policy for retrying serialization
// failures and deadlocks.
func WithRetryExecutor(executor *retry.Executor) Option {
	return func(w *Writer) { w.executor = executor }
}

// Writer stores collections in the archive.
type Writer struct {
	conn       cnx.DBConnection
	logger     cnx.Logger
	calculator checksum.Calculator
	executor   *retry.Executor
}

// NewWriter creates a Writer over conn. Panics if conn is nil.
func NewWriter(conn cnx.DBConnection, opts ...Option) *Writer {
	if conn == nil {
		panic("conn cannot be nil")
	}
	w := &Writer{
		conn:       conn,
		logger:     logging.NewNullLogger(),
		calculator: checksum.New(),
		executor: retry.NewExecutor(
			retry.NewPostgreSQLErrorClassifier(),
			retry.NewExponentialBackoff(cnx.DefaultRetryMaxAttempts,
				retry.WithInitialDelay(cnx.DefaultRetryInitialDelay),
				retry.WithMaxDelay(cnx.DefaultRetryMaxDelay),
			),
		),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.executor = w.executor.WithOnRetry(retry.LogRetries(w.logger, "Archive write"))
	return w
}

// Exists reports whether moduleID at version is archived.
func (w *Writer) Exists(ctx context.Context, moduleID, version string) (bool, error) {
	var exists bool
	if err := w.conn.QueryRow(ctx, queryModuleExists, moduleID, version).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to look up %s@%s: %w", moduleID, version, err)
	}
	return exists, nil
}

// Write stores coll in one transaction. An archived module with the same
// id and version yields cnx.ErrAlreadyArchived unless opts.Replace is set.
//
// On success the abstract and file IDs of coll are set to their archive
// values; on failure coll is left unchanged.
func (w *Writer) Write(ctx context.Context, coll *collection.Collection, opts WriteOptions) (*Result, error) {
	if coll == nil || coll.Metadata == nil {
		return nil, fmt.Errorf("collection has no metadata: %w", cnx.ErrInvalidConfig)
	}
	md := coll.Metadata

	var files []*cnx.File
	if coll.Files != nil {
		files = coll.Files.All()
	}
	for _, f := range files {
		if !f.HasData() {
			return nil, fmt.Errorf("file %s has no payload attached: %w", f.Filename, cnx.ErrInvalidConfig)
		}
		if f.SHA1 == "" {
			checksum.Apply(w.calculator, f)
		}
	}

	var (
		result  *Result
		fileIDs []uuid.UUID
	)
	err := w.executor.Execute(ctx, func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, w.conn, func(tx pgx.Tx) error {
			var err error
			result, fileIDs, err = w.write(ctx, tx, md, files, opts)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, cnx.ErrAlreadyArchived) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to archive %s@%s: %w", md.ModuleID, md.Version, err)
	}

	if md.Abstract != nil {
		id := result.AbstractID
		md.Abstract.ID = &id
	}
	for i, f := range files {
		id := fileIDs[i]
		f.ID = &id
	}

	verb := "Archived"
	if result.Replaced {
		verb = "Replaced"
	}
	w.logger.Verbose("%s %s@%s as module %d with %d file(s)", verb, md.ModuleID, md.Version, result.ModuleIdent, result.Files)
	return result, nil
}

func (w *Writer) write(ctx context.Context, tx pgx.Tx, md *cnx.Metadata, files []*cnx.File, opts WriteOptions) (*Result, []uuid.UUID, error) {
	result := &Result{Files: len(files)}

	if opts.Replace {
		tag, err := tx.Exec(ctx, deleteModule, md.ModuleID, md.Version)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to remove archived version: %w", err)
		}
		result.Replaced = tag.RowsAffected() > 0
	} else {
		var exists bool
		if err := tx.QueryRow(ctx, queryModuleExists, md.ModuleID, md.Version).Scan(&exists); err != nil {
			return nil, nil, err
		}
		if exists {
			return nil, nil, fmt.Errorf("%s@%s: %w", md.ModuleID, md.Version, cnx.ErrAlreadyArchived)
		}
	}

	if err := tx.QueryRow(ctx, insertAbstract, md.Abstract.String()).Scan(&result.AbstractID); err != nil {
		return nil, nil, fmt.Errorf("failed to insert abstract: %w", err)
	}

	var licenseID *int64
	if l := md.License; l != nil {
		id, err := registerLicense(ctx, tx, l)
		if err != nil {
			return nil, nil, err
		}
		licenseID = &id
	}

	err := tx.QueryRow(ctx, insertModule,
		md.ModuleID, md.Version, md.Name, result.AbstractID, licenseID,
		md.DocType, md.Submitter, md.SubmitLog, md.Language,
		nonNil(md.Authors), nonNil(md.Maintainers), nonNil(md.Licensors),
	).Scan(&result.ModuleIdent)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert module: %w", err)
	}

	ids := make([]uuid.UUID, len(files))
	for i, f := range files {
		id, err := storeFile(ctx, tx, f)
		if err != nil {
			return nil, nil, err
		}
		if _, err := tx.Exec(ctx, insertModuleFile, result.ModuleIdent, id, f.Filename, f.MimeType); err != nil {
			return nil, nil, fmt.Errorf("failed to link file %s: %w", f.Filename, err)
		}
		ids[i] = id
	}
	return result, ids, nil
}

// registerLicense makes sure l is in the licenses table and returns the
// archive's id for its URL. An id already taken by another URL is a
// configuration error.
func registerLicense(ctx context.Context, tx pgx.Tx, l *cnx.License) (int64, error) {
	if _, err := tx.Exec(ctx, insertLicense, l.ID, l.Name, l.Code, l.Version, l.URL); err != nil {
		return 0, fmt.Errorf("failed to register license %s: %w", l.URL, err)
	}

	var id int64
	err := tx.QueryRow(ctx, queryLicenseIDByURL, l.URL).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		var archivedURL string
		if err := tx.QueryRow(ctx, queryLicenseURLByID, l.ID).Scan(&archivedURL); err != nil {
			return 0, fmt.Errorf("failed to look up license %d: %w", l.ID, err)
		}
		return 0, fmt.Errorf("license %d is archived with url %q, not %q: %w",
			l.ID, archivedURL, l.URL, cnx.ErrInvalidConfig)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up license %s: %w", l.URL, err)
	}
	return id, nil
}

// storeFile inserts the payload of f unless an identical one is archived,
// and returns the archive's ID for it.
func storeFile(ctx context.Context, tx pgx.Tx, f *cnx.File) (uuid.UUID, error) {
	id := scanner.ResourceID(f.SHA1)
	if f.ID != nil {
		id = *f.ID
	}
	if _, err := tx.Exec(ctx, insertFile, id, f.MD5, f.SHA1, f.SHA256, f.MimeType, f.Bytes()); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert file %s: %w", f.Filename, err)
	}
	var stored uuid.UUID
	if err := tx.QueryRow(ctx, queryFileIDBySHA1, f.SHA1).Scan(&stored); err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up file %s: %w", f.Filename, err)
	}
	return stored, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// EnsureSchema creates the archive tables that are missing on the
// writer's connection.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	return EnsureSchema(ctx, w.conn)
}
