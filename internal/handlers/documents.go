package handlers

import (
	"mime"
	"net/http"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/models"
	"github.com/AjayAlluri/Toyota-Financing/internal/notifications"
	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
	"github.com/AjayAlluri/Toyota-Financing/internal/storage"
)

const (
	documentFormField = "file"
	maxNameBytes      = 255
)

type DocumentHandler struct {
	Documents *repository.DocumentRepository
	Store     *storage.Local
	Notifier  *notifications.Hub
}

// NewDocumentHandler создает обработчик загрузки документов.
func NewDocumentHandler(documents *repository.DocumentRepository, store *storage.Local, notifier *notifications.Hub) *DocumentHandler {
	return &DocumentHandler{Documents: documents, Store: store, Notifier: notifier}
}

type DocumentListResponse struct {
	Documents []models.Document `json:"documents"`
}

// Upload принимает файл из multipart поля file и сохраняет его за текущим пользователем.
func (h *DocumentHandler) Upload(c echo.Context) error {
	principal, ok := access.PrincipalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	header, err := c.FormFile(documentFormField)
	if err != nil {
		return badRequest(c, "file is required")
	}
	if header.Size > h.Store.MaxBytes() {
		return respondError(c, storage.ErrTooLarge, "")
	}

	file, err := header.Open()
	if err != nil {
		return badRequest(c, "invalid file")
	}
	defer file.Close()

	stored, err := h.Store.Save(principal.ID, file)
	if err != nil {
		return respondError(c, err, "")
	}

	doc, err := h.Documents.Create(c.Request().Context(), models.Document{
		ID:           uuid.New(),
		UserID:       principal.ID,
		OriginalName: originalName(header.Filename),
		StorageKey:   stored.Key,
		FileSize:     stored.Size,
		MIMEType:     stored.MIMEType,
	})
	if err != nil {
		if removeErr := h.Store.Delete(stored.Key); removeErr != nil {
			zap.L().Warn("orphaned upload", zap.String("key", stored.Key), zap.Error(removeErr))
		}
		return respondError(c, err, "")
	}

	h.Notifier.Publish(notifications.UserTopic(principal.ID), notifications.Event{
		Type: notifications.EventDocumentUploaded,
		Data: map[string]interface{}{
			"document_id": doc.ID.String(),
			"name":        doc.OriginalName,
		},
	})
	publishLeadUpdate(h.Notifier, principal.ID, "document", doc.ID)

	return c.JSON(http.StatusCreated, doc)
}

// List возвращает документы текущего пользователя.
func (h *DocumentHandler) List(c echo.Context) error {
	principal, ok := access.PrincipalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	docs, err := h.Documents.ListByUser(c.Request().Context(), principal.ID, limit, offset)
	if err != nil {
		return respondError(c, err, "")
	}

	return c.JSON(http.StatusOK, DocumentListResponse{Documents: docs})
}

// Download отдает содержимое файла владельцу или сотруднику продаж.
func (h *DocumentHandler) Download(c echo.Context) error {
	principal, ok := access.PrincipalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return notFound(c, "document not found")
	}

	doc, err := h.Documents.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "document not found")
	}
	if err := access.Authorize(principal, doc.UserID); err != nil {
		return respondError(c, err, "")
	}

	file, err := h.Store.Open(doc.StorageKey)
	if err != nil {
		return respondError(c, err, "document not found")
	}
	defer file.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.OriginalName})
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return c.Stream(http.StatusOK, doc.MIMEType, file)
}

// Delete удаляет документ. Доступно только владельцу.
func (h *DocumentHandler) Delete(c echo.Context) error {
	principal, ok := access.PrincipalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return notFound(c, "document not found")
	}

	ctx := c.Request().Context()
	doc, err := h.Documents.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err, "document not found")
	}
	if err := access.AuthorizeOwner(principal, doc.UserID); err != nil {
		return respondError(c, err, "")
	}

	if err := h.Documents.Delete(ctx, id); err != nil {
		return respondError(c, err, "document not found")
	}
	if err := h.Store.Delete(doc.StorageKey); err != nil {
		zap.L().Warn("document file not removed", zap.String("key", doc.StorageKey), zap.Error(err))
	}

	return c.NoContent(http.StatusNoContent)
}

func originalName(filename string) string {
	name := strings.TrimSpace(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	if len(name) > maxNameBytes {
		cut := maxNameBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	return name
}
