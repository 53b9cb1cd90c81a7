package scanner

import (
	"strings"

	"github.com/google/uuid"
)

// NamespaceFileIdentity is the UUID v5 namespace resource IDs are derived in.
// It is generated from the string "cnx.org/file-identity/v1" within the
// standard URL namespace.
var NamespaceFileIdentity = uuid.NewSHA1(uuid.NameSpaceURL, []byte("cnx.org/file-identity/v1"))

// ResourceID returns the deterministic ID of a payload with the given
// hex sha1 digest. Identical payloads share one ID regardless of filename,
// which lets the archive store each payload once.
func ResourceID(sha1 string) uuid.UUID {
	return uuid.NewSHA1(NamespaceFileIdentity, []byte(strings.ToLower(sha1)))
}
