// Package extract turns uploaded documents into plain text and splits that
// text into fixed-size chunks.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DefaultChunkSize is the chunk length in characters.
const DefaultChunkSize = 1000

// ErrNotUTF8 is returned for non-PDF documents that are not valid UTF-8.
var ErrNotUTF8 = errors.New("document is not valid UTF-8 text")

// IsPDF reports whether name carries a .pdf extension, ignoring case.
func IsPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// Text reads the whole document and returns its text. PDFs are decoded page
// by page; anything else must be UTF-8.
func Text(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}

	if IsPDF(name) {
		return pdfText(data)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", name, ErrNotUTF8)
	}
	return string(data), nil
}

func pdfText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoding pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// Chunk splits text into consecutive pieces of at most size characters.
// The last piece may be shorter. Empty text yields no chunks.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
