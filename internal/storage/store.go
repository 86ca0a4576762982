package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when an object is missing or its name is not acceptable.
var ErrNotFound = errors.New("object not found")

// ObjectInfo 描述存储中的一个文件。
type ObjectInfo struct {
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Store is a flat namespace of named files.
type Store interface {
	// Save writes the whole reader under name. Readers never observe a partial object.
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (ObjectInfo, error)
	Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error)
	// Delete is idempotent.
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]ObjectInfo, error)
	// Path is the location reported to clients, e.g. "generated/resume_Jane_Doe.pdf".
	Path(name string) string
}

// ValidName reports whether name is a plain file name that stays inside the store.
func ValidName(name string) bool {
	if name == "" || name != strings.TrimSpace(name) {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}

// ContentTypeFor guesses the content type from the file extension.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
