package cnx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// ContentSniffer guesses the media type and character encoding of a payload.
type ContentSniffer interface {
	GuessType(data []byte) string
	GuessEncoding(data []byte) string
}

// File is a named binary payload belonging to a collection.
// ID stays nil until the file is persisted.
type File struct {
	ID       *uuid.UUID
	Filename string
	MimeType string
	Encoding string

	// Content checksums, filled in when the file is scanned from disk or persisted.
	MD5    string
	SHA1   string
	SHA256 string

	data     []byte
	attached bool
}

// NewFile creates a file record without a payload.
func NewFile(filename, mimeType, encoding string) *File {
	return &File{
		Filename: filename,
		MimeType: mimeType,
		Encoding: encoding,
	}
}

// NewFileFromBuffer creates a file and attaches the payload read from r.
// When encoding is empty and a sniffer is given, the encoding is guessed
// from the payload. The media type is kept as given.
func NewFileFromBuffer(r io.Reader, filename, mimeType, encoding string, sniffer ContentSniffer) (*File, error) {
	f := NewFile(filename, mimeType, encoding)
	if err := f.AttachBuffer(r, sniffer); err != nil {
		return nil, err
	}
	return f, nil
}

// AttachBuffer reads r completely and stores the bytes as the payload.
// Readers that implement io.Seeker are rewound first.
func (f *File) AttachBuffer(r io.Reader, sniffer ContentSniffer) error {
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind %s: %w", f.Filename, err)
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.Filename, err)
	}
	f.AttachBytes(data, sniffer)
	return nil
}

// AttachBytes stores data as the payload. The file takes ownership of data.
func (f *File) AttachBytes(data []byte, sniffer ContentSniffer) {
	if data == nil {
		data = []byte{}
	}
	f.data = data
	f.attached = true
	if f.Encoding == "" && sniffer != nil {
		f.Encoding = sniffer.GuessEncoding(data)
	}
}

// Data returns a reader over the payload positioned at the start.
// Each call returns an independent reader. Returns nil when no payload is attached.
func (f *File) Data() *bytes.Reader {
	if !f.attached {
		return nil
	}
	return bytes.NewReader(f.data)
}

// Bytes returns the payload. The slice must not be modified.
func (f *File) Bytes() []byte {
	return f.data
}

// HasData reports whether a payload is attached.
func (f *File) HasData() bool {
	return f.attached
}

// Size returns the payload length in bytes.
func (f *File) Size() int {
	return len(f.data)
}

// FileList is an ordered list of files. Insertion order is preserved.
// The zero value is an empty list ready to use.
type FileList struct {
	files []*File
}

// NewFileList returns a list holding files in the given order.
func NewFileList(files ...*File) *FileList {
	l := &FileList{}
	for _, f := range files {
		l.Append(f)
	}
	return l
}

// Append adds f at the end of the list.
func (l *FileList) Append(f *File) {
	l.files = append(l.files, f)
}

// Insert places f at index i. Indexes outside the list are clamped.
func (l *FileList) Insert(i int, f *File) {
	if i < 0 {
		i = 0
	}
	if i > len(l.files) {
		i = len(l.files)
	}
	l.files = append(l.files, nil)
	copy(l.files[i+1:], l.files[i:])
	l.files[i] = f
}

// At returns the file at index i, or nil when i is out of range.
func (l *FileList) At(i int) *File {
	if i < 0 || i >= len(l.files) {
		return nil
	}
	return l.files[i]
}

// Remove deletes and returns the file at index i, or nil when i is out of range.
func (l *FileList) Remove(i int) *File {
	if i < 0 || i >= len(l.files) {
		return nil
	}
	f := l.files[i]
	l.files = append(l.files[:i], l.files[i+1:]...)
	return f
}

// Len returns the number of files.
func (l *FileList) Len() int {
	return len(l.files)
}

// All returns a copy of the files in order.
func (l *FileList) All() []*File {
	out := make([]*File, len(l.files))
	copy(out, l.files)
	return out
}

// RetrieveByFilename returns the first file named filename, or nil.
func (l *FileList) RetrieveByFilename(filename string) *File {
	for _, f := range l.files {
		if f.Filename == filename {
			return f
		}
	}
	return nil
}

// RetrieveDataByFilename returns a fresh reader over the payload of the first
// file named filename. It returns nil when no such file exists or it has no payload.
func (l *FileList) RetrieveDataByFilename(filename string) *bytes.Reader {
	f := l.RetrieveByFilename(filename)
	if f == nil {
		return nil
	}
	return f.Data()
}

// Contains reports whether this exact file is in the list.
func (l *FileList) Contains(f *File) bool {
	for _, item := range l.files {
		if item == f {
			return true
		}
	}
	return false
}

// ContainsFilename reports whether any file in the list is named filename.
func (l *FileList) ContainsFilename(filename string) bool {
	return l.RetrieveByFilename(filename) != nil
}
