package widget

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ragchat/widget/internal/chatclient"
	"github.com/ragchat/widget/internal/models"
	"go.uber.org/zap"
)

// UploadElements are the page elements owned by an Uploader. Alerter is optional.
type UploadElements struct {
	Files   FileList
	Alerter Alerter
}

// Uploader validates dropped or picked documents and submits them in batches.
type Uploader struct {
	el      UploadElements
	api     UploadAPI
	timeout time.Duration
	logger  *zap.Logger

	pending map[string]*Batch
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithUploadTimeout bounds each upload request. Zero disables the bound.
func WithUploadTimeout(d time.Duration) UploaderOption {
	return func(u *Uploader) {
		u.timeout = d
	}
}

// WithUploaderLogger sets the logger used for failed batches.
func WithUploaderLogger(l *zap.Logger) UploaderOption {
	return func(u *Uploader) {
		if l != nil {
			u.logger = l
		}
	}
}

// NewUploader creates an upload controller over the given elements.
func NewUploader(el UploadElements, api UploadAPI, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		el:      el,
		api:     api,
		logger:  zap.NewNop(),
		pending: make(map[string]*Batch),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Batch is the set of accepted documents submitted together in one request.
type Batch struct {
	ID      string
	Docs    []models.Document
	Entries []models.UploadEntry

	api     UploadAPI
	timeout time.Duration
}

// Pending returns the number of batches awaiting a response.
func (u *Uploader) Pending() int {
	return len(u.pending)
}

// Begin filters docs and registers an "uploading" entry for every accepted
// one. It returns false, with no entries created, when nothing is accepted.
func (u *Uploader) Begin(docs []models.Document) (*Batch, bool) {
	accepted := FilterAccepted(docs)
	if len(accepted) == 0 {
		if len(docs) > 0 {
			u.logger.Debug("no accepted files in drop", zap.Int("offered", len(docs)))
		}
		return nil, false
	}

	b := &Batch{
		ID:      uuid.New().String(),
		Docs:    accepted,
		Entries: make([]models.UploadEntry, 0, len(accepted)),
		api:     u.api,
		timeout: u.timeout,
	}
	for _, doc := range accepted {
		entry := models.UploadEntry{
			ID:      uuid.New().String(),
			BatchID: b.ID,
			Name:    doc.Name,
			Status:  models.UploadStatusUploading,
		}
		b.Entries = append(b.Entries, entry)
		u.el.Files.Prepend(entry)
	}
	u.pending[b.ID] = b
	return b, true
}

// Send submits the batch. It does not touch any element and may run off the
// UI goroutine.
func (b *Batch) Send(ctx context.Context) error {
	ctx, cancel := chatclient.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.api.Upload(ctx, b.Docs)
}

// Complete moves every entry of the batch to its terminal status. Batches
// that are unknown or already completed are ignored.
func (u *Uploader) Complete(b *Batch, err error) {
	if b == nil {
		return
	}
	if _, ok := u.pending[b.ID]; !ok {
		return
	}
	delete(u.pending, b.ID)

	status := u.outcome(b, err)
	for i := range b.Entries {
		b.Entries[i].Status = status
		u.el.Files.SetStatus(b.Entries[i].ID, status)
	}
}

func (u *Uploader) outcome(b *Batch, err error) models.UploadStatus {
	if err == nil {
		u.logger.Info("upload batch stored", zap.String("batch", b.ID), zap.Int("files", len(b.Docs)))
		return models.UploadStatusUploaded
	}

	var apiErr *chatclient.APIError
	switch {
	case errors.As(err, &apiErr):
		u.logger.Warn("upload batch rejected",
			zap.String("batch", b.ID),
			zap.Int("status", apiErr.Status),
			zap.String("detail", apiErr.Detail))
		if u.el.Alerter != nil {
			u.el.Alerter.Alert("Upload failed: " + apiErr.Detail)
		}
		return models.UploadStatusError
	case errors.Is(err, chatclient.ErrTimeout):
		u.logger.Warn("upload batch timed out", zap.String("batch", b.ID), zap.Duration("timeout", b.timeout))
		return models.UploadStatusTimeout
	default:
		u.logger.Error("upload batch failed", zap.String("batch", b.ID), zap.Error(err))
		return models.UploadStatusError
	}
}

// HandleFiles runs a whole upload for docs and blocks until the batch is
// reconciled. Drop and browse both end up here.
func (u *Uploader) HandleFiles(ctx context.Context, docs []models.Document) {
	b, ok := u.Begin(docs)
	if !ok {
		return
	}
	u.Complete(b, b.Send(ctx))
}
