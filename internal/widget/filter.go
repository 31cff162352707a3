package widget

import (
	"strings"

	"github.com/ragchat/widget/internal/models"
)

// Accepted reports whether a document passes the upload type filter:
// text/plain content, or a .md, .txt or .pdf name. Only the .pdf suffix is
// matched case-insensitively.
func Accepted(doc models.Document) bool {
	if doc.MIMEType == "text/plain" {
		return true
	}
	name := doc.Name
	return strings.HasSuffix(name, ".md") ||
		strings.HasSuffix(name, ".txt") ||
		strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// FilterAccepted returns the accepted documents in their original order.
func FilterAccepted(docs []models.Document) []models.Document {
	var out []models.Document
	for _, d := range docs {
		if Accepted(d) {
			out = append(out, d)
		}
	}
	return out
}
