// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/ragchat/widget/internal/ingest"
	"github.com/ragchat/widget/internal/models"
)

// ChatHandler answers chat messages
type ChatHandler interface {
	HandleChat(c echo.Context) error
}

// UploadHandler handles document uploads and their ingest jobs
type UploadHandler interface {
	HandleUpload(c echo.Context) error
	HandleGetUploadJob(c echo.Context) error
}

// DocumentHandler manages stored documents
type DocumentHandler interface {
	HandleListDocuments(c echo.Context) error
	HandleDeleteDocument(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Answerer produces a reply for one chat message
type Answerer interface {
	Ask(ctx context.Context, question string) (*models.Answer, error)
}

// Ingester runs uploaded documents through storage and indexing
type Ingester interface {
	Process(ctx context.Context, docs []models.Document) (*ingest.Job, error)
	GetJob(id string) (*ingest.Job, bool)
}

// ChunkIndex is the part of the chunk index the handlers manage directly
type ChunkIndex interface {
	DeleteFile(ctx context.Context, fileID string) error
	Count(ctx context.Context) (int, error)
}
