package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/AjayAlluri/Toyota-Financing/internal/models"
)

const documentColumns = `id, user_id, original_name, storage_key, file_size, mime_type, uploaded_at`

type DocumentRepository struct {
	db DB
}

// NewDocumentRepository создает репозиторий загруженных документов.
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create сохраняет метаданные документа.
func (r *DocumentRepository) Create(ctx context.Context, doc models.Document) (models.Document, error) {
	created, err := scanDocument(r.db.QueryRow(ctx,
		`INSERT INTO documents (id, user_id, original_name, storage_key, file_size, mime_type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+documentColumns,
		doc.ID, doc.UserID, doc.OriginalName, doc.StorageKey, doc.FileSize, doc.MIMEType,
	))
	if err != nil {
		return created, eris.Wrap(err, "repository: create document")
	}
	return created, nil
}

// ListByUser возвращает документы пользователя, новые первыми.
func (r *DocumentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Document, error) {
	limit, offset = normalizePagination(limit, offset)

	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+`
		 FROM documents
		 WHERE user_id = $1
		 ORDER BY uploaded_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "repository: list documents")
	}
	defer rows.Close()

	docs := make([]models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, eris.Wrap(err, "repository: scan document")
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "repository: list documents")
	}

	return docs, nil
}

// GetByID возвращает документ по идентификатору.
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Document, error) {
	doc, err := scanDocument(r.db.QueryRow(ctx,
		`SELECT `+documentColumns+`
		 FROM documents
		 WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return doc, ErrNotFound
		}
		return doc, eris.Wrap(err, "repository: get document")
	}
	return doc, nil
}

// Delete удаляет метаданные документа.
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return eris.Wrap(err, "repository: delete document")
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanDocument(row pgx.Row) (models.Document, error) {
	var doc models.Document
	err := row.Scan(&doc.ID, &doc.UserID, &doc.OriginalName, &doc.StorageKey, &doc.FileSize, &doc.MIMEType, &doc.UploadedAt)
	return doc, err
}
