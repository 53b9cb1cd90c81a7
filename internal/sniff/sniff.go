// Package sniff guesses media types and character encodings of file payloads.
//
// Detection is done by github.com/gabriel-vasile/mimetype. Encodings are
// reported the way libmagic's mime-encoding mode reports them: the charset
// of textual content ("us-ascii", "utf-8", "iso-8859-1", ...) or "binary"
// when the payload is not text.
package sniff

import (
	"mime"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// DefaultReadLimit is the number of leading bytes inspected per payload.
const DefaultReadLimit = 64 * 1024

// Binary is the encoding reported for non-textual payloads.
const Binary = "binary"

// Detector implements cnx.ContentSniffer.
// The zero value is usable and inspects DefaultReadLimit bytes.
type Detector struct {
	ReadLimit uint32
}

// New returns a Detector with the default read limit.
func New() *Detector {
	return &Detector{ReadLimit: DefaultReadLimit}
}

var configureOnce sync.Once

// configure applies the read limit to the process-wide mimetype settings.
// The first Detector used wins.
func (d *Detector) configure() {
	configureOnce.Do(func() {
		limit := d.ReadLimit
		if limit == 0 {
			limit = DefaultReadLimit
		}
		mimetype.SetLimit(limit)
	})
}

// GuessType returns the bare media type of data, e.g. "text/xml".
func (d *Detector) GuessType(data []byte) string {
	mediaType, _ := d.detect(data)
	return mediaType
}

// GuessEncoding returns the character encoding of data, or "binary".
func (d *Detector) GuessEncoding(data []byte) string {
	_, cs := d.detect(data)
	if cs == "" {
		return Binary
	}
	if cs == "utf-8" && isASCII(data) {
		return "us-ascii"
	}
	return cs
}

func (d *Detector) detect(data []byte) (mediaType, charset string) {
	d.configure()
	detected := mimetype.Detect(data).String()
	mediaType, params, err := mime.ParseMediaType(detected)
	if err != nil {
		return detected, ""
	}
	return mediaType, strings.ToLower(params["charset"])
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

var _ cnx.ContentSniffer = (*Detector)(nil)
