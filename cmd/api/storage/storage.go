// Package storage holds the upload policy for post images: which content
// types are accepted, how stored files are named and where they land.
package storage

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedImageTypes is the exact set of accepted upload content types.
var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpg":  {},
	"image/jpeg": {},
}

// Allowed reports whether the declared content type of a file part is an
// accepted image type. Parameters (charset etc.) are ignored.
func Allowed(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	_, ok := allowedImageTypes[strings.ToLower(mediaType)]
	return ok
}

// FileName generates the storage name for an uploaded file. The random
// UUID prefix makes repeated uploads of identically named files
// practically collision-free within one directory.
func FileName(original string) string {
	return uuid.NewString() + "-" + filepath.Base(original)
}

// StoredFile describes one accepted, persisted upload.
type StoredFile struct {
	// Path is the storage path handed back to the client, e.g.
	// "images/<uuid>-cat.png". It doubles as the static route suffix.
	Path         string
	Name         string
	OriginalName string
	ContentType  string
}

// Store writes accepted uploads into a single fixed directory.
type Store struct {
	dir string
}

// New creates the upload directory if needed and returns a store for it.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string { return s.dir }

// Save streams one multipart file into the store under a generated name.
func (s *Store) Save(fh *multipart.FileHeader) (*StoredFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	name := FileName(fh.Filename)
	dstPath := filepath.Join(s.dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("write %s: %w", dstPath, err)
	}

	return &StoredFile{
		Path:         filepath.ToSlash(dstPath),
		Name:         name,
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
	}, nil
}

// Remove deletes a previously stored file. The path is caller-supplied
// (the client echoes back the filePath of an earlier upload), so it must
// resolve inside the store directory.
func (s *Store) Remove(path string) error {
	rel, err := filepath.Rel(s.dir, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the upload directory", path)
	}
	return os.Remove(filepath.Join(s.dir, rel))
}
