package tui

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/mattn/go-shellwords"
	"github.com/ragchat/widget/internal/models"
)

// droppedPaths interprets pasted text as a file drop. Most terminals paste
// dragged files as shell-quoted paths or file:// URLs, one per line or
// separated by spaces. It returns nil unless every line parses as shell words
// and every word names a regular file.
func droppedPaths(text string) []string {
	var paths []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		words, err := shellwords.Parse(strings.TrimSpace(line))
		if err != nil {
			return nil
		}
		for _, tok := range words {
			p := tok
			if strings.HasPrefix(p, "file://") {
				u, err := url.Parse(p)
				if err != nil {
					return nil
				}
				p = u.Path
			}
			if p == "~" || strings.HasPrefix(p, "~/") {
				if home, err := os.UserHomeDir(); err == nil {
					p = filepath.Join(home, strings.TrimPrefix(p, "~"))
				}
			}
			info, err := os.Stat(p)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
			paths = append(paths, p)
		}
	}
	return paths
}

// documentsFromPaths builds upload candidates for files on disk.
func documentsFromPaths(paths []string) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		docs = append(docs, models.FileDocument(filepath.Base(p), mimeType(p), p, info.Size()))
	}
	return docs, nil
}

// mimeType reports the media type of a file without parameters: by extension
// when known, otherwise by matching magic numbers, and for anything without
// a signature by sniffing whether it is text.
func mimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	if n == 0 {
		return ""
	}
	if kind, err := filetype.Match(buf[:n]); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	mt, _, err := mime.ParseMediaType(http.DetectContentType(buf[:n]))
	if err != nil {
		return ""
	}
	return mt
}
