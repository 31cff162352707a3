// Package ingest runs uploaded documents through storage, text extraction,
// chunking and indexing, tracking each upload request as a job.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ragchat/widget/internal/extract"
	"github.com/ragchat/widget/internal/models"
	"go.uber.org/zap"
)

// Status represents the ingest job status.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusStoring    Status = "storing"
	StatusExtracting Status = "extracting"
	StatusIndexing   Status = "indexing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// ErrNoFiles is returned when a job is started without documents.
var ErrNoFiles = errors.New("no files provided")

// FileResult is the outcome for one document of a job.
type FileResult struct {
	Name   string `json:"name"`
	FileID string `json:"fileId,omitempty"`
	Chunks int    `json:"chunks"`
	Error  string `json:"error,omitempty"`
}

// Job represents one upload request being ingested.
type Job struct {
	ID          string       `json:"id"`
	Status      Status       `json:"status"`
	Progress    float64      `json:"progress"`
	Stage       string       `json:"stage"`
	Files       []FileResult `json:"files"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

// Store defines the interface needed from the storage layer.
type Store interface {
	Save(name string, r io.Reader) (*models.FileInfo, error)
	Update(info *models.FileInfo) error
}

// Index defines the interface needed from the chunk index.
type Index interface {
	Add(ctx context.Context, chunks []models.Chunk) error
}

// Manager handles ingest processing.
type Manager struct {
	jobs      map[string]*Job
	mu        sync.RWMutex
	store     Store
	index     Index
	chunkSize int
	logger    *zap.Logger
}

// NewManager creates a new ingest manager.
func NewManager(store Store, index Index, chunkSize int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if chunkSize <= 0 {
		chunkSize = extract.DefaultChunkSize
	}
	return &Manager{
		jobs:      make(map[string]*Job),
		store:     store,
		index:     index,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Process ingests docs as one job and returns a snapshot of the finished job.
// Every document is attempted; the job fails if any of them failed.
func (m *Manager) Process(ctx context.Context, docs []models.Document) (*Job, error) {
	if len(docs) == 0 {
		return nil, ErrNoFiles
	}

	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusProcessing,
		Stage:     "preparing",
		Files:     make([]FileResult, len(docs)),
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	log := m.logger.With(zap.String("job", job.ID[:8]))
	log.Info("ingest started", zap.Int("files", len(docs)))

	var failed []string
	for i, doc := range docs {
		res, err := m.processDocument(ctx, job, i, len(docs), doc)
		m.mu.Lock()
		job.Files[i] = res
		m.mu.Unlock()
		if err != nil {
			log.Warn("document failed", zap.String("name", doc.Name), zap.Error(err))
			failed = append(failed, fmt.Sprintf("%s: %v", doc.Name, err))
			continue
		}
		log.Info("document indexed", zap.String("name", doc.Name), zap.Int("chunks", res.Chunks))
	}

	if len(failed) > 0 {
		msg := fmt.Sprintf("failed to process %d of %d files: %s", len(failed), len(docs), failed[0])
		m.markJobError(job, msg)
		log.Error("ingest failed", zap.String("error", msg))
		return m.snapshot(job), errors.New(msg)
	}

	m.markJobComplete(job)
	log.Info("ingest complete")
	return m.snapshot(job), nil
}

func (m *Manager) processDocument(ctx context.Context, job *Job, i, total int, doc models.Document) (FileResult, error) {
	res := FileResult{Name: doc.Name}
	fail := func(err error) (FileResult, error) {
		res.Error = err.Error()
		return res, err
	}

	// Stage 1: store
	m.updateJobStatus(job, StatusStoring, "storing "+doc.Name, i, total, 0)
	rc, err := doc.Open()
	if err != nil {
		return fail(fmt.Errorf("opening upload: %w", err))
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fail(fmt.Errorf("reading upload: %w", err))
	}

	info, err := m.store.Save(doc.Name, bytes.NewReader(data))
	if err != nil {
		return fail(fmt.Errorf("storing file: %w", err))
	}
	res.FileID = info.ID

	// Stage 2: extract
	m.updateJobStatus(job, StatusExtracting, "extracting "+doc.Name, i, total, 40)
	text, err := extract.Text(doc.Name, bytes.NewReader(data))
	if err != nil {
		m.markFileError(info)
		return fail(err)
	}

	// Stage 3: chunk and index
	m.updateJobStatus(job, StatusIndexing, "indexing "+doc.Name, i, total, 70)
	pieces := extract.Chunk(text, m.chunkSize)
	chunks := make([]models.Chunk, len(pieces))
	for seq, text := range pieces {
		chunks[seq] = models.Chunk{
			ID:       fmt.Sprintf("%s-%d", info.ID, seq),
			FileID:   info.ID,
			Filename: doc.Name,
			Seq:      seq,
			Text:     text,
		}
	}
	if err := m.index.Add(ctx, chunks); err != nil {
		m.markFileError(info)
		return fail(fmt.Errorf("indexing: %w", err))
	}

	info.Status = "indexed"
	info.Chunks = len(chunks)
	if err := m.store.Update(info); err != nil {
		return fail(fmt.Errorf("updating file record: %w", err))
	}

	res.Chunks = len(chunks)
	return res, nil
}

// markFileError records a stored file that could not be indexed. The
// document's own failure is what the caller reports, so an update error is
// only logged.
func (m *Manager) markFileError(info *models.FileInfo) {
	info.Status = "error"
	if err := m.store.Update(info); err != nil {
		m.logger.Warn("failed to record file error",
			zap.String("file", info.ID), zap.String("name", info.Name), zap.Error(err))
	}
}

// GetJob retrieves a snapshot of a job by ID.
func (m *Manager) GetJob(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	return m.snapshotLocked(job), true
}

// updateJobStatus updates job progress (thread-safe). Progress spreads the
// per-document stage progress over the whole batch.
func (m *Manager) updateJobStatus(job *Job, status Status, stage string, i, total int, stageProgress float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = status
	job.Stage = stage
	job.Progress = (float64(i)*100 + stageProgress) / float64(total)
}

// markJobComplete marks job as complete (thread-safe).
func (m *Manager) markJobComplete(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusComplete
	job.Stage = "done"
	job.Progress = 100
	now := time.Now()
	job.CompletedAt = &now
}

// markJobError marks job as failed (thread-safe).
func (m *Manager) markJobError(job *Job, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusError
	job.Error = errMsg
	now := time.Now()
	job.CompletedAt = &now
}

func (m *Manager) snapshot(job *Job) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked(job)
}

func (m *Manager) snapshotLocked(job *Job) *Job {
	c := *job
	c.Files = append([]FileResult(nil), job.Files...)
	return &c
}

// CleanupOldJobs removes finished jobs older than the specified duration.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Status == StatusComplete || job.Status == StatusError {
			if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
				delete(m.jobs, id)
				removed++
			}
		}
	}
	return removed
}
