package archive

// schemaSQL creates the archive tables used by the writer. Every statement
// is idempotent.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS licenses (
	licenseid integer PRIMARY KEY,
	name      text    NOT NULL DEFAULT '',
	code      text    NOT NULL DEFAULT '',
	version   text    NOT NULL DEFAULT '',
	url       text    NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS abstracts (
	abstractid serial PRIMARY KEY,
	abstract   text   NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS modules (
	module_ident serial  PRIMARY KEY,
	portal_type  text    NOT NULL,
	moduleid     text    NOT NULL,
	version      text    NOT NULL,
	name         text    NOT NULL,
	created      timestamptz NOT NULL DEFAULT CURRENT_TIMESTAMP,
	revised      timestamptz NOT NULL DEFAULT CURRENT_TIMESTAMP,
	abstractid   integer REFERENCES abstracts,
	licenseid    integer REFERENCES licenses,
	doctype      text    NOT NULL DEFAULT '',
	submitter    text    NOT NULL DEFAULT '',
	submitlog    text    NOT NULL DEFAULT '',
	language     text    NOT NULL,
	authors      text[]  NOT NULL DEFAULT '{}',
	maintainers  text[]  NOT NULL DEFAULT '{}',
	licensors    text[]  NOT NULL DEFAULT '{}',
	UNIQUE (moduleid, version)
);

CREATE TABLE IF NOT EXISTS files (
	fileid     uuid  PRIMARY KEY,
	md5        text  NOT NULL,
	sha1       text  NOT NULL UNIQUE,
	sha256     text  NOT NULL,
	media_type text  NOT NULL DEFAULT '',
	file       bytea NOT NULL
);

CREATE TABLE IF NOT EXISTS module_files (
	module_ident integer NOT NULL REFERENCES modules ON DELETE CASCADE,
	fileid       uuid    NOT NULL REFERENCES files,
	filename     text    NOT NULL,
	mimetype     text    NOT NULL DEFAULT '',
	PRIMARY KEY (module_ident, filename)
);
`

const (
	queryLicenses = `
		SELECT licenseid, name, code, version, url
		FROM licenses
		ORDER BY licenseid
	`

	// Parameters: $1 moduleid, $2 version
	queryModuleExists = `
		SELECT EXISTS (SELECT 1 FROM modules WHERE moduleid = $1 AND version = $2)
	`

	// Parameters: $1 moduleid, $2 version
	deleteModule = `
		DELETE FROM modules WHERE moduleid = $1 AND version = $2
	`

	// Parameters: $1 licenseid, $2 name, $3 code, $4 version, $5 url
	insertLicense = `
		INSERT INTO licenses (licenseid, name, code, version, url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`

	// The archive's id wins when the URL is registered under another id.
	// Parameters: $1 url
	queryLicenseIDByURL = `
		SELECT licenseid FROM licenses WHERE url = $1
	`

	// Parameters: $1 licenseid
	queryLicenseURLByID = `
		SELECT url FROM licenses WHERE licenseid = $1
	`

	// Parameters: $1 abstract text
	insertAbstract = `
		INSERT INTO abstracts (abstract) VALUES ($1)
		RETURNING abstractid
	`

	insertModule = `
		INSERT INTO modules (
			portal_type, moduleid, version, name, abstractid, licenseid,
			doctype, submitter, submitlog, language,
			authors, maintainers, licensors
		) VALUES ('Collection', $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING module_ident
	`

	// Files are content addressed; an identical payload is stored once.
	insertFile = `
		INSERT INTO files (fileid, md5, sha1, sha256, media_type, file)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`

	// Parameters: $1 sha1
	queryFileIDBySHA1 = `
		SELECT fileid FROM files WHERE sha1 = $1
	`

	insertModuleFile = `
		INSERT INTO module_files (module_ident, fileid, filename, mimetype)
		VALUES ($1, $2, $3, $4)
	`
)
