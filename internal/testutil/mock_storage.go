package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ragchat/widget/internal/index"
	"github.com/ragchat/widget/internal/models"
)

// MockStore is an in-memory document store.
type MockStore struct {
	mu        sync.Mutex
	Files     map[string]*models.FileInfo
	Contents  map[string][]byte
	SaveErr   error
	UpdateErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		Files:    make(map[string]*models.FileInfo),
		Contents: make(map[string][]byte),
	}
}

func (m *MockStore) Save(name string, r io.Reader) (*models.FileInfo, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	info := &models.FileInfo{
		ID:         uuid.New().String(),
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}
	m.Files[info.ID] = info
	m.Contents[info.ID] = data
	c := *info
	return &c, nil
}

func (m *MockStore) Get(id string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.Files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	c := *info
	return &c, nil
}

func (m *MockStore) List(limit int) ([]*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*models.FileInfo, 0, len(m.Files))
	for _, info := range m.Files {
		c := *info
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UploadedAt.After(list[j].UploadedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockStore) Update(info *models.FileInfo) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.Files[info.ID]
	if !ok {
		return fmt.Errorf("file not found: %s", info.ID)
	}
	cur.Status = info.Status
	cur.Chunks = info.Chunks
	return nil
}

func (m *MockStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Files[id]; !ok {
		return fmt.Errorf("file not found: %s", id)
	}
	delete(m.Files, id)
	delete(m.Contents, id)
	return nil
}

func (m *MockStore) GetFilePath(id string) (string, error) {
	return "", errors.New("mock store keeps no files on disk")
}

// MockIndex is an in-memory chunk index using the same term matching as the
// DuckDB index.
type MockIndex struct {
	mu     sync.Mutex
	Chunks []models.Chunk
	AddErr error
}

func (m *MockIndex) Add(ctx context.Context, chunks []models.Chunk) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Chunks = append(m.Chunks, chunks...)
	return nil
}

func (m *MockIndex) Search(ctx context.Context, query string, topK int) ([]models.Chunk, error) {
	terms := index.Terms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var hits []models.Chunk
	for _, c := range m.Chunks {
		lower := strings.ToLower(c.Text)
		n := 0
		for _, term := range terms {
			if strings.Contains(lower, term) {
				n++
			}
		}
		if n > 0 {
			c.Score = float64(n) / float64(len(terms))
			hits = append(hits, c)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *MockIndex) DeleteFile(ctx context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Chunks[:0]
	for _, c := range m.Chunks {
		if c.FileID != fileID {
			kept = append(kept, c)
		}
	}
	m.Chunks = kept
	return nil
}

func (m *MockIndex) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Chunks), nil
}
