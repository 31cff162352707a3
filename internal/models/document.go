package models

import (
	"bytes"
	"io"
	"os"
)

// Document is a candidate file offered to the upload controller by the drop target
// or the file picker.
type Document struct {
	Name     string
	MIMEType string
	Size     int64

	open func() (io.ReadCloser, error)
}

// NewDocument creates a document whose content is produced by open.
func NewDocument(name, mimeType string, size int64, open func() (io.ReadCloser, error)) Document {
	return Document{Name: name, MIMEType: mimeType, Size: size, open: open}
}

// BytesDocument creates an in-memory document.
func BytesDocument(name, mimeType string, data []byte) Document {
	return NewDocument(name, mimeType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// FileDocument creates a document backed by a file on disk.
func FileDocument(name, mimeType, path string, size int64) Document {
	return NewDocument(name, mimeType, size, func() (io.ReadCloser, error) {
		return os.Open(path)
	})
}

// Open returns a reader over the document content.
func (d Document) Open() (io.ReadCloser, error) {
	if d.open == nil {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return d.open()
}
