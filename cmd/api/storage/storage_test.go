package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storedNamePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}-cat\.png$`)

func TestAllowed(t *testing.T) {
	testCases := []struct {
		contentType string
		want        bool
	}{
		{"image/png", true},
		{"image/jpg", true},
		{"image/jpeg", true},
		{"IMAGE/PNG", true},
		{"image/png; charset=utf-8", true},
		{"image/gif", false},
		{"application/pdf", false},
		{"text/html", false},
		{"", false},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.want, Allowed(testCase.contentType), "content type %q", testCase.contentType)
	}
}

func TestFileNameIsUniquePerCall(t *testing.T) {
	first := FileName("cat.png")
	second := FileName("cat.png")

	assert.Regexp(t, storedNamePattern, first)
	assert.NotEqual(t, first, second)
}

func TestFileNameStripsClientDirectories(t *testing.T) {
	name := FileName("../../etc/cat.png")
	assert.Regexp(t, storedNamePattern, name)
}

func newTestFileHeader(t *testing.T, field, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("PUT", "/post-image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	files := req.MultipartForm.File[field]
	require.Len(t, files, 1)
	return files[0]
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(filepath.Join(dir, "images"))
	require.NoError(t, err)

	content := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}
	fh := newTestFileHeader(t, "image", "cat.png", "image/png", content)

	stored, err := store.Save(fh)
	require.NoError(t, err)
	assert.Equal(t, "cat.png", stored.OriginalName)
	assert.Equal(t, "image/png", stored.ContentType)
	assert.Regexp(t, storedNamePattern, stored.Name)

	got, err := os.ReadFile(filepath.Join(store.Dir(), stored.Name))
	require.NoError(t, err)
	assert.Equal(t, content, got, "stored bytes must be identical to the upload")
}

func TestRemoveDeletesStoredFile(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)

	fh := newTestFileHeader(t, "image", "cat.png", "image/png", []byte("png-bytes"))
	stored, err := store.Save(fh)
	require.NoError(t, err)

	require.NoError(t, store.Remove(stored.Path))
	_, err = os.Stat(filepath.Join(store.Dir(), stored.Name))
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveRejectsPathsOutsideStore(t *testing.T) {
	base := t.TempDir()
	store, err := New(filepath.Join(base, "images"))
	require.NoError(t, err)

	victim := filepath.Join(base, "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("keep me"), 0o644))

	err = store.Remove(filepath.Join(store.Dir(), "..", "victim.txt"))
	assert.Error(t, err)

	_, statErr := os.Stat(victim)
	assert.NoError(t, statErr, "file outside the store must survive")
}

func TestRemoveMissingFileReturnsError(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)

	err = store.Remove(filepath.Join(store.Dir(), "no-such-file.png"))
	assert.Error(t, err)
}

func TestNewRequiresDirectory(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
