// Package checksum computes the content digests stored with archived files.
//
// The archive keeps an md5 and a sha1 per file, matching the columns of the
// files table; sha256 is computed alongside for the resource scanner, which
// uses it to derive deterministic file identifiers.
//
// # Example Usage
//
//	calc := checksum.New()
//	d := calc.Digest(content)
//	fmt.Println(d.MD5, d.SHA1)
//
// # Thread Safety
//
// Multi is a zero-size value type and is safe for concurrent use.
package checksum
