package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var documentColumnNames = []string{"id", "user_id", "original_name", "storage_key", "file_size", "mime_type", "uploaded_at"}

func TestDocumentRepositoryListByUser(t *testing.T) {
	mock := newMock(t)
	repo := NewDocumentRepository(mock)

	userID := uuid.New()
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs(userID, 50, 0).
		WillReturnRows(pgxmock.NewRows(documentColumnNames).
			AddRow(uuid.New(), userID, "paystub.pdf", "a/b.pdf", int64(2048), "application/pdf", now).
			AddRow(uuid.New(), userID, "license.png", "a/c.png", int64(4096), "image/png", now.Add(-time.Hour)))

	docs, err := repo.ListByUser(context.Background(), userID, 0, -5)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "paystub.pdf", docs[0].OriginalName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDocumentRepositoryDelete проверяет удаление и отсутствие документа.
func TestDocumentRepositoryDelete(t *testing.T) {
	mock := newMock(t)
	repo := NewDocumentRepository(mock)

	id := uuid.New()
	mock.ExpectExec("DELETE FROM documents").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(context.Background(), id))

	mock.ExpectExec("DELETE FROM documents").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, repo.Delete(context.Background(), id), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
