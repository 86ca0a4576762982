package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "generated"))
	require.NoError(t, err)
	return store
}

func TestLocalStore_SaveOpenRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	data := []byte("%PDF-1.4 hello")

	info, err := store.Save(ctx, "resume_Jane_Doe.pdf", bytes.NewReader(data), int64(len(data)), "")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)

	rc, opened, err := store.Open(ctx, "resume_Jane_Doe.pdf")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, int64(len(data)), opened.Size)
}

func TestLocalStore_PathIsRelativeToConfiguredDir(t *testing.T) {
	t.Chdir(t.TempDir())
	store, err := NewLocalStore("generated")
	require.NoError(t, err)
	assert.Equal(t, "generated/resume_Jane_Doe.pdf", store.Path("resume_Jane_Doe.pdf"))
}

func TestLocalStore_OpenMissing(t *testing.T) {
	store := newTestStore(t)
	_, _, err := store.Open(context.Background(), "nope.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_RejectsEscapingNames(t *testing.T) {
	store := newTestStore(t)
	outside := filepath.Join(filepath.Dir(store.Dir()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	for _, name := range []string{"../secret.txt", "..", ".", "", "a/b.pdf", `a\b.pdf`, ".hidden", "x..pdf"} {
		_, _, err := store.Open(context.Background(), name)
		assert.ErrorIs(t, err, ErrNotFound, "name=%q", name)

		_, err = store.Save(context.Background(), name, bytes.NewReader([]byte("x")), 1, "")
		assert.Error(t, err, "name=%q", name)
	}
}

type failingReader struct{ after int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.after <= 0 {
		return 0, errors.New("render aborted")
	}
	n := r.after
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		p[i] = 'x'
	}
	r.after -= n
	return n, nil
}

func TestLocalStore_FailedWriteLeavesNothing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Save(context.Background(), "broken.pdf", &failingReader{after: 100}, -1, "")
	require.Error(t, err)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_ConcurrentSameNameLastWriterWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := bytes.Repeat([]byte(fmt.Sprintf("%d", i)), 4096)
			_, err := store.Save(ctx, "same.pdf", bytes.NewReader(payload), int64(len(payload)), "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rc, info, err := store.Open(ctx, "same.pdf")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Len(t, got, 4096)
	assert.Equal(t, int64(4096), info.Size)
	assert.Equal(t, bytes.Repeat(got[:1], 4096), got)
}

func TestLocalStore_ListAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"b.docx", "a.pdf"} {
		_, err := store.Save(ctx, name, bytes.NewReader([]byte(name)), 0, "")
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a.pdf", list[0].Name)
	assert.Equal(t, "b.docx", list[1].Name)

	require.NoError(t, store.Delete(ctx, "a.pdf"))
	require.NoError(t, store.Delete(ctx, "a.pdf"))
	require.NoError(t, store.Delete(ctx, "../a.pdf"))

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b.docx", list[0].Name)
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("resume_Jane_Doe.pdf"))
	assert.True(t, ValidName("cover_letter_José.docx"))
	for _, name := range []string{"", " a.pdf", "../a", "a/b", `a\b`, ".env", "a..b", "a\x00b"} {
		assert.False(t, ValidName(name), "name=%q", name)
	}
}

func TestIsNoSuchKey(t *testing.T) {
	assert.True(t, IsNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, IsNoSuchKey(fmt.Errorf("wrapped: %w", minio.ErrorResponse{Code: "NotFound"})))
	assert.False(t, IsNoSuchKey(minio.ErrorResponse{Code: "AccessDenied", Message: "denied"}))
	assert.False(t, IsNoSuchKey(nil))
}

func TestObjectError(t *testing.T) {
	assert.ErrorIs(t, objectError("get", "a.pdf", minio.ErrorResponse{Code: "NoSuchKey"}), ErrNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied", Message: "denied"}
	err := objectError("stat", "a.pdf", denied)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorAs(t, err, &denied)
	assert.Contains(t, err.Error(), `stat object "a.pdf"`)
}
