package models

// UploadStatus represents the state of one file in the upload list.
type UploadStatus string

const (
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusUploaded  UploadStatus = "uploaded"
	UploadStatusError     UploadStatus = "error"
	UploadStatusTimeout   UploadStatus = "timeout"
)

// Terminal reports whether the status can no longer change.
func (s UploadStatus) Terminal() bool {
	return s != UploadStatusUploading
}

// UploadEntry is one row of the file status list.
// It is created as "uploading" and transitions exactly once to a terminal status.
type UploadEntry struct {
	ID      string       `json:"id"`
	BatchID string       `json:"batchId"`
	Name    string       `json:"name"`
	Status  UploadStatus `json:"status"`
}
