// handlers_documents.go - Stored document handlers
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ragchat/widget/internal/models"
	"github.com/ragchat/widget/internal/storage"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// MIMEApplicationMsgpack is the msgpack content type.
const MIMEApplicationMsgpack = "application/msgpack"

// DocumentHandlerImpl implements the DocumentHandler interface
type DocumentHandlerImpl struct {
	store  storage.Store
	index  ChunkIndex
	logger *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(store storage.Store, index ChunkIndex, logger *zap.Logger) DocumentHandler {
	return &DocumentHandlerImpl{store: store, index: index, logger: logger}
}

// HandleListDocuments returns recently uploaded documents, as msgpack when
// the client accepts it and JSON otherwise
func (h *DocumentHandlerImpl) HandleListDocuments(c echo.Context) error {
	files, err := h.store.List(100)
	if err != nil {
		return NewInternalError("failed to list documents", err)
	}
	if files == nil {
		files = []*models.FileInfo{}
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEApplicationMsgpack) {
		data, err := msgpack.Marshal(files)
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
	}

	return c.JSON(http.StatusOK, files)
}

// HandleDeleteDocument removes a document and its indexed chunks
func (h *DocumentHandlerImpl) HandleDeleteDocument(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.store.Get(id); err != nil {
		return NewNotFoundError("document", id)
	}

	if err := h.index.DeleteFile(c.Request().Context(), id); err != nil {
		return NewInternalError("failed to delete chunks", err)
	}
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("document", id)
		}
		return NewInternalError("failed to delete document", err)
	}

	h.logger.Info("document deleted", zap.String("id", id))
	return c.NoContent(http.StatusNoContent)
}
