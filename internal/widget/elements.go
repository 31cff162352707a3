// Package widget implements the interaction flow of the document chat widget:
// a conversation controller, an upload controller and the sidebar toggle.
//
// Controllers receive the page elements they drive at construction. They are
// meant to be used from a single UI goroutine; only Turn.Exchange and
// Batch.Send may run elsewhere.
package widget

import (
	"context"

	"github.com/ragchat/widget/internal/models"
)

// Transcript is the message container. Append must place the message after
// every earlier message and before the typing indicator.
type Transcript interface {
	Append(msg models.Message)
	ScrollToBottom()
}

// TextInput is the chat input control.
type TextInput interface {
	Value() string
	SetValue(v string)
	SetEnabled(enabled bool)
	Focus()
}

// Control is a clickable control such as the send button or the menu button.
type Control interface {
	SetEnabled(enabled bool)
}

// Visibility is an element that can be shown or hidden: the typing indicator,
// the suggestions panel, the sidebar.
type Visibility interface {
	Show()
	Hide()
	Visible() bool
}

// FileList is the upload status list. Prepend adds an entry at the top;
// SetStatus updates an existing entry in place.
type FileList interface {
	Prepend(entry models.UploadEntry)
	SetStatus(id string, status models.UploadStatus)
}

// Alerter surfaces a message that needs the user's attention.
type Alerter interface {
	Alert(msg string)
}

// ChatAPI performs one chat exchange.
type ChatAPI interface {
	Chat(ctx context.Context, message string) (string, error)
}

// UploadAPI submits one batch of documents.
type UploadAPI interface {
	Upload(ctx context.Context, docs []models.Document) error
}
