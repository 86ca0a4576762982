package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStore keeps objects as files in one flat directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %q: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Path(name string) string {
	return filepath.ToSlash(filepath.Join(s.dir, name))
}

func (s *LocalStore) resolve(name string) (string, error) {
	if !ValidName(name) {
		return "", ErrNotFound
	}
	full := filepath.Join(s.dir, name)
	rel, err := filepath.Rel(s.dir, full)
	if err != nil || rel != name {
		return "", ErrNotFound
	}
	return full, nil
}

// Save writes to a temp file in the same directory and renames it into place.
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	full, err := s.resolve(name)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("invalid object name %q", name)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return ObjectInfo{}, fmt.Errorf("write %q: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return ObjectInfo{}, fmt.Errorf("sync %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("close %q: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return ObjectInfo{}, fmt.Errorf("chmod %q: %w", name, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return ObjectInfo{}, fmt.Errorf("rename %q: %w", name, err)
	}
	committed = true

	if contentType == "" {
		contentType = ContentTypeFor(name)
	}
	info := ObjectInfo{Name: name, Size: written, ContentType: contentType}
	if st, err := os.Stat(full); err == nil {
		info.ModTime = st.ModTime()
	}
	return info, nil
}

func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}
	full, err := s.resolve(name)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("open %q: %w", name, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat %q: %w", name, err)
	}
	if !st.Mode().IsRegular() {
		_ = f.Close()
		return nil, ObjectInfo{}, ErrNotFound
	}
	return f, ObjectInfo{
		Name:        name,
		Size:        st.Size(),
		ModTime:     st.ModTime(),
		ContentType: ContentTypeFor(name),
	}, nil
}

func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(name)
	if err != nil {
		return nil
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	return nil
}

// List returns regular files sorted by name. Temp files from in-flight writes are skipped.
func (s *LocalStore) List(ctx context.Context) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", s.dir, err)
	}
	out := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		st, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, ObjectInfo{
			Name:        e.Name(),
			Size:        st.Size(),
			ModTime:     st.ModTime(),
			ContentType: ContentTypeFor(e.Name()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
