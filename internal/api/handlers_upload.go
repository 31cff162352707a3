// handlers_upload.go - Document upload handlers
package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ragchat/widget/internal/ingest"
	"github.com/ragchat/widget/internal/models"
	"go.uber.org/zap"
)

// UploadField is the multipart field carrying uploaded files.
const UploadField = "files"

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	ingester Ingester
	logger   *zap.Logger
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(ingester Ingester, logger *zap.Logger) UploadHandler {
	return &UploadHandlerImpl{ingester: ingester, logger: logger}
}

// HandleUpload ingests every file of a multipart request as one job
func (h *UploadHandlerImpl) HandleUpload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart body", err)
	}

	headers := form.File[UploadField]
	if len(headers) == 0 {
		return NewValidationError(UploadField)
	}

	docs := make([]models.Document, len(headers))
	for i, fh := range headers {
		docs[i] = formDocument(fh)
	}

	job, err := h.ingester.Process(c.Request().Context(), docs)
	if err != nil {
		return NewInternalError("upload failed", err)
	}

	return c.JSON(http.StatusOK, uploadResponse{
		Message: fmt.Sprintf("Successfully processed %d files.", len(job.Files)),
		BatchID: job.ID,
		Files:   job.Files,
	})
}

// HandleGetUploadJob returns the state of an ingest job
func (h *UploadHandlerImpl) HandleGetUploadJob(c echo.Context) error {
	id := c.Param("id")
	job, ok := h.ingester.GetJob(id)
	if !ok {
		return NewNotFoundError("upload job", id)
	}
	return c.JSON(http.StatusOK, job)
}

func formDocument(fh *multipart.FileHeader) models.Document {
	return models.NewDocument(fh.Filename, fh.Header.Get(echo.HeaderContentType), fh.Size, func() (io.ReadCloser, error) {
		return fh.Open()
	})
}

// Request/Response types

type uploadResponse struct {
	Message string              `json:"message"`
	BatchID string              `json:"batchId"`
	Files   []ingest.FileResult `json:"files"`
}
