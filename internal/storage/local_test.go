package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayAlluri/Toyota-Financing/internal/config"
)

var (
	pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngContent = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
)

func newTestStore(t *testing.T, maxBytes int64) *Local {
	t.Helper()
	store, err := NewLocal(config.StorageConfig{
		UploadDir:        filepath.Join(t.TempDir(), "uploads"),
		MaxUploadBytes:   maxBytes,
		AllowedMIMETypes: config.DefaultAllowedMIMETypes,
	})
	require.NoError(t, err)
	return store
}

// TestLocalSaveOpenDelete проверяет полный цикл работы с файлом.
func TestLocalSaveOpenDelete(t *testing.T) {
	store := newTestStore(t, 1<<20)
	owner := uuid.New()

	stored, err := store.Save(owner, bytes.NewReader(pdfContent))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", stored.MIMEType)
	assert.Equal(t, int64(len(pdfContent)), stored.Size)
	assert.True(t, strings.HasPrefix(stored.Key, owner.String()+"/"))
	assert.True(t, strings.HasSuffix(stored.Key, ".pdf"))

	file, err := store.Open(stored.Key)
	require.NoError(t, err)
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, pdfContent, content)

	require.NoError(t, store.Delete(stored.Key))
	_, err = store.Open(stored.Key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(stored.Key))
}

func TestLocalSaveDetectsByContent(t *testing.T) {
	store := newTestStore(t, 1<<20)

	stored, err := store.Save(uuid.New(), bytes.NewReader(pngContent))
	require.NoError(t, err)
	assert.Equal(t, "image/png", stored.MIMEType)

	stored, err = store.Save(uuid.New(), strings.NewReader("pay stub for march\nnet: 4200\n"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", stored.MIMEType)
}

// TestLocalSaveRejects проверяет ограничения размера и типа файла.
func TestLocalSaveRejects(t *testing.T) {
	store := newTestStore(t, 32)

	_, err := store.Save(uuid.New(), bytes.NewReader(bytes.Repeat([]byte("a"), 33)))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = store.Save(uuid.New(), bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = store.Save(uuid.New(), bytes.NewReader([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	entries, err := os.ReadDir(store.root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalRejectsUnsafeKeys(t *testing.T) {
	store := newTestStore(t, 1<<20)

	for _, key := range []string{"", "../secret", "/etc/passwd", "a/../../b", `a\b`} {
		_, err := store.Open(key)
		assert.ErrorIs(t, err, ErrNotFound, key)
		assert.ErrorIs(t, store.Delete(key), ErrNotFound, key)
	}
}
