package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ragchat/widget/internal/chatclient"
	"github.com/ragchat/widget/internal/models"
	"github.com/ragchat/widget/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(name, mime string) models.Document {
	return models.BytesDocument(name, mime, []byte("content of "+name))
}

func TestAccepted(t *testing.T) {
	tests := []struct {
		name string
		doc  models.Document
		want bool
	}{
		{"plain text mime", doc("notes", "text/plain"), true},
		{"txt suffix", doc("notes.txt", ""), true},
		{"md suffix", doc("README.md", "text/markdown"), true},
		{"pdf suffix", doc("paper.pdf", "application/pdf"), true},
		{"pdf upper case", doc("PAPER.PDF", ""), true},
		{"txt upper case", doc("NOTES.TXT", ""), false},
		{"png", doc("image.png", "image/png"), false},
		{"no extension", doc("Makefile", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accepted(tt.doc))
		})
	}
}

func TestUploader_HandleFiles(t *testing.T) {
	tests := []struct {
		name       string
		docs       []models.Document
		err        error
		wantCalls  int
		wantStatus map[string]models.UploadStatus
		wantAlerts []string
	}{
		{
			name:       "single text file uploaded",
			docs:       []models.Document{doc("notes.txt", "text/plain")},
			wantCalls:  1,
			wantStatus: map[string]models.UploadStatus{"notes.txt": models.UploadStatusUploaded},
		},
		{
			name:       "image filtered out",
			docs:       []models.Document{doc("image.png", "image/png")},
			wantCalls:  0,
			wantStatus: map[string]models.UploadStatus{},
		},
		{
			name: "mixed batch keeps accepted files",
			docs: []models.Document{
				doc("a.md", ""), doc("b.png", "image/png"), doc("c.pdf", "application/pdf"),
			},
			wantCalls: 1,
			wantStatus: map[string]models.UploadStatus{
				"a.md":  models.UploadStatusUploaded,
				"c.pdf": models.UploadStatusUploaded,
			},
		},
		{
			name:       "server rejects batch",
			docs:       []models.Document{doc("notes.txt", "")},
			err:        &chatclient.APIError{Status: 500, Detail: "index unavailable"},
			wantCalls:  1,
			wantStatus: map[string]models.UploadStatus{"notes.txt": models.UploadStatusError},
			wantAlerts: []string{"Upload failed: index unavailable"},
		},
		{
			name:       "transport failure",
			docs:       []models.Document{doc("notes.txt", "")},
			err:        &chatclient.TransportError{Op: "upload", Err: errors.New("connection reset")},
			wantCalls:  1,
			wantStatus: map[string]models.UploadStatus{"notes.txt": models.UploadStatusError},
		},
		{
			name:       "timeout",
			docs:       []models.Document{doc("notes.txt", "")},
			err:        chatclient.ErrTimeout,
			wantCalls:  1,
			wantStatus: map[string]models.UploadStatus{"notes.txt": models.UploadStatusTimeout},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := testutil.NewMockFileList(nil)
			alerter := &testutil.MockAlerter{}
			api := &testutil.StubUploadAPI{Err: tt.err}
			u := NewUploader(UploadElements{Files: files, Alerter: alerter}, api)

			u.HandleFiles(context.Background(), tt.docs)

			assert.Equal(t, tt.wantCalls, api.Calls())
			assert.Equal(t, tt.wantStatus, files.Statuses())
			assert.Equal(t, tt.wantAlerts, alerter.Alerts)
			assert.Zero(t, u.Pending())
		})
	}
}

func TestUploader_BeginCreatesUploadingEntries(t *testing.T) {
	files := testutil.NewMockFileList(nil)
	u := NewUploader(UploadElements{Files: files}, &testutil.StubUploadAPI{})

	batch, ok := u.Begin([]models.Document{doc("one.txt", ""), doc("two.md", ""), doc("x.gif", "")})
	require.True(t, ok)

	require.Len(t, files.Entries, 2)
	assert.Equal(t, "two.md", files.Entries[0].Name, "newest entry first")
	assert.Equal(t, "one.txt", files.Entries[1].Name)
	for _, e := range files.Entries {
		assert.Equal(t, models.UploadStatusUploading, e.Status)
		assert.Equal(t, batch.ID, e.BatchID)
		assert.NotEmpty(t, e.ID)
	}
	assert.Equal(t, 1, u.Pending())
}

func TestUploader_BatchesResolveIndependently(t *testing.T) {
	files := testutil.NewMockFileList(nil)
	u := NewUploader(UploadElements{Files: files}, &testutil.StubUploadAPI{})

	first, ok := u.Begin([]models.Document{doc("first.txt", "")})
	require.True(t, ok)
	second, ok := u.Begin([]models.Document{doc("second.txt", "")})
	require.True(t, ok)
	assert.NotEqual(t, first.ID, second.ID)

	u.Complete(second, &chatclient.APIError{Status: 413, Detail: "too large"})
	assert.Equal(t, map[string]models.UploadStatus{
		"first.txt":  models.UploadStatusUploading,
		"second.txt": models.UploadStatusError,
	}, files.Statuses())

	u.Complete(first, nil)
	assert.Equal(t, map[string]models.UploadStatus{
		"first.txt":  models.UploadStatusUploaded,
		"second.txt": models.UploadStatusError,
	}, files.Statuses())

	// Completing twice does not move a terminal entry.
	u.Complete(first, errors.New("late failure"))
	assert.Equal(t, models.UploadStatusUploaded, files.Statuses()["first.txt"])
}

func TestUploader_Timeout(t *testing.T) {
	files := testutil.NewMockFileList(nil)
	api := &testutil.StubUploadAPI{Block: true}
	u := NewUploader(UploadElements{Files: files}, api, WithUploadTimeout(20*time.Millisecond))

	u.HandleFiles(context.Background(), []models.Document{doc("slow.pdf", "")})

	assert.Equal(t, models.UploadStatusTimeout, files.Statuses()["slow.pdf"])
}

func TestUploader_NoAlerterStillMarksError(t *testing.T) {
	files := testutil.NewMockFileList(nil)
	u := NewUploader(UploadElements{Files: files},
		&testutil.StubUploadAPI{Err: &chatclient.APIError{Status: 500, Detail: "boom"}})

	require.NotPanics(t, func() {
		u.HandleFiles(context.Background(), []models.Document{doc("a.txt", "")})
	})
	assert.Equal(t, models.UploadStatusError, files.Statuses()["a.txt"])
}
