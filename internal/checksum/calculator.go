package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// Calculator computes the digests of a payload.
type Calculator interface {
	Digest(content []byte) Digests
}

// Digests holds hex-encoded digests of one payload.
type Digests struct {
	MD5    string
	SHA1   string
	SHA256 string
}

// Multi computes md5, sha1 and sha256 in a single pass over the content.
type Multi struct{}

// New creates a calculator.
func New() Multi {
	return Multi{}
}

// Digest hashes content with every supported algorithm.
func (Multi) Digest(content []byte) Digests {
	m := md5.New()
	s1 := sha1.New()
	s256 := sha256.New()
	w := io.MultiWriter(m, s1, s256)
	_, _ = w.Write(content)

	return Digests{
		MD5:    hex.EncodeToString(m.Sum(nil)),
		SHA1:   hex.EncodeToString(s1.Sum(nil)),
		SHA256: hex.EncodeToString(s256.Sum(nil)),
	}
}

// Apply computes the digests of f's payload and stores them on f.
// Files without a payload are left unchanged.
func Apply(calc Calculator, f *cnx.File) {
	if !f.HasData() {
		return
	}
	d := calc.Digest(f.Bytes())
	f.MD5 = d.MD5
	f.SHA1 = d.SHA1
	f.SHA256 = d.SHA256
}
