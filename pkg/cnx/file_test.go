package cnx_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

type fakeSniffer struct {
	calls int
}

func (s *fakeSniffer) GuessType([]byte) string { return "text/plain" }

func (s *fakeSniffer) GuessEncoding([]byte) string {
	s.calls++
	return "us-ascii"
}

func TestNewFileFromBuffer_GuessesEncoding(t *testing.T) {
	sniffer := &fakeSniffer{}
	f, err := cnx.NewFileFromBuffer(strings.NewReader("hello"), "a.txt", "", "", sniffer)
	require.NoError(t, err)

	assert.Equal(t, "a.txt", f.Filename)
	assert.Empty(t, f.MimeType)
	assert.Equal(t, "us-ascii", f.Encoding)
	assert.Equal(t, 1, sniffer.calls)
	assert.Nil(t, f.ID)
	assert.Equal(t, 5, f.Size())
}

func TestNewFileFromBuffer_KeepsGivenEncoding(t *testing.T) {
	sniffer := &fakeSniffer{}
	f, err := cnx.NewFileFromBuffer(strings.NewReader("hello"), "a.txt", "text/plain", "utf-8", sniffer)
	require.NoError(t, err)

	assert.Equal(t, "utf-8", f.Encoding)
	assert.Equal(t, "text/plain", f.MimeType)
	assert.Zero(t, sniffer.calls)
}

func TestNewFileFromBuffer_NilSniffer(t *testing.T) {
	f, err := cnx.NewFileFromBuffer(strings.NewReader("x"), "a.txt", "", "", nil)
	require.NoError(t, err)
	assert.Empty(t, f.Encoding)
}

func TestFile_AttachBufferRewinds(t *testing.T) {
	r := strings.NewReader("collection")
	_, err := r.Seek(4, io.SeekStart)
	require.NoError(t, err)

	f := cnx.NewFile("collection.xml", "text/xml", "utf-8")
	require.NoError(t, f.AttachBuffer(r, nil))
	assert.Equal(t, []byte("collection"), f.Bytes())
}

func TestFile_DataIsIdempotent(t *testing.T) {
	f, err := cnx.NewFileFromBuffer(bytes.NewReader([]byte("payload")), "p.bin", "", "binary", nil)
	require.NoError(t, err)

	first, err := io.ReadAll(f.Data())
	require.NoError(t, err)
	second, err := io.ReadAll(f.Data())
	require.NoError(t, err)

	assert.Equal(t, "payload", string(first))
	assert.Equal(t, first, second)
}

func TestFile_WithoutPayload(t *testing.T) {
	f := cnx.NewFile("empty.txt", "", "")
	assert.False(t, f.HasData())
	assert.Nil(t, f.Data())

	require.NoError(t, f.AttachBuffer(strings.NewReader(""), nil))
	assert.True(t, f.HasData())
	assert.NotNil(t, f.Data())
}

func TestFileList_Ordering(t *testing.T) {
	a := cnx.NewFile("a", "", "")
	b := cnx.NewFile("b", "", "")
	c := cnx.NewFile("c", "", "")

	list := cnx.NewFileList(a, c)
	list.Insert(1, b)
	require.Equal(t, 3, list.Len())
	assert.Same(t, a, list.At(0))
	assert.Same(t, b, list.At(1))
	assert.Same(t, c, list.At(2))
	assert.Nil(t, list.At(3))

	list.Insert(-5, c)
	assert.Same(t, c, list.At(0))
	list.Insert(99, a)
	assert.Same(t, a, list.At(list.Len()-1))

	removed := list.Remove(0)
	assert.Same(t, c, removed)
	assert.Nil(t, list.Remove(42))
	assert.Equal(t, 4, list.Len())
}

func TestFileList_Lookup(t *testing.T) {
	first, err := cnx.NewFileFromBuffer(strings.NewReader("one"), "dup.txt", "", "", nil)
	require.NoError(t, err)
	second, err := cnx.NewFileFromBuffer(strings.NewReader("two"), "dup.txt", "", "", nil)
	require.NoError(t, err)
	bare := cnx.NewFile("bare.txt", "", "")

	var list cnx.FileList
	list.Append(first)
	list.Append(second)
	list.Append(bare)

	assert.Same(t, first, list.RetrieveByFilename("dup.txt"))
	assert.Nil(t, list.RetrieveByFilename("missing.txt"))

	data, err := io.ReadAll(list.RetrieveDataByFilename("dup.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	assert.Nil(t, list.RetrieveDataByFilename("missing.txt"))
	assert.Nil(t, list.RetrieveDataByFilename("bare.txt"))

	assert.True(t, list.Contains(second))
	assert.False(t, list.Contains(cnx.NewFile("dup.txt", "", "")))
	assert.True(t, list.ContainsFilename("bare.txt"))
	assert.False(t, list.ContainsFilename("nope"))
}

func TestFileList_AllReturnsCopy(t *testing.T) {
	list := cnx.NewFileList(cnx.NewFile("a", "", ""))
	all := list.All()
	all[0] = nil
	assert.NotNil(t, list.At(0))
}
