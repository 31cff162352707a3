package models

import "time"

// FileInfo represents metadata about a document stored by the backend.
type FileInfo struct {
	ID         string    `json:"id" msgpack:"id"`
	Name       string    `json:"name" msgpack:"name"`
	Size       int64     `json:"size" msgpack:"size"`
	UploadedAt time.Time `json:"uploadedAt" msgpack:"uploadedAt"`
	Status     string    `json:"status" msgpack:"status"` // "uploaded", "indexed", "error"
	Chunks     int       `json:"chunks,omitempty" msgpack:"chunks,omitempty"`
}
