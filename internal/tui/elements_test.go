package tui

import (
	"testing"

	"github.com/ragchat/widget/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFileListView_StatusChangesOnce(t *testing.T) {
	l := &fileListView{}
	l.Prepend(models.UploadEntry{ID: "a", Name: "a.txt", Status: models.UploadStatusUploading})
	l.Prepend(models.UploadEntry{ID: "b", Name: "b.txt", Status: models.UploadStatusUploading})

	l.SetStatus("a", models.UploadStatusUploaded)
	l.SetStatus("a", models.UploadStatusError)
	l.SetStatus("b", models.UploadStatusTimeout)
	l.SetStatus("b", models.UploadStatusUploaded)
	l.SetStatus("missing", models.UploadStatusError)

	assert.Equal(t, []models.UploadEntry{
		{ID: "b", Name: "b.txt", Status: models.UploadStatusTimeout},
		{ID: "a", Name: "a.txt", Status: models.UploadStatusUploaded},
	}, l.entries)
}

func TestUploadStatus_Terminal(t *testing.T) {
	assert.False(t, models.UploadStatusUploading.Terminal())
	for _, s := range []models.UploadStatus{
		models.UploadStatusUploaded,
		models.UploadStatusError,
		models.UploadStatusTimeout,
	} {
		assert.True(t, s.Terminal(), s)
	}
}
